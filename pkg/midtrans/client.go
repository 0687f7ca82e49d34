package midtrans

import (
	"bytes"
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-rise-platform/internal/domain"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	ModeProduction = "PRODUCTION"
	ModeSandbox    = "SANDBOX"
)

var ErrNotConfigured = errors.New("midtrans server key is not configured")

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Snap API (checkout tokens) and the Core API (status checks).
type Client struct {
	httpClient  HTTPClient
	rateLimiter *rate.Limiter
	serverKey   string
	clientKey   string
	mode        string
}

func NewClient(serverKey, clientKey, mode string) *Client {
	mode = strings.ToUpper(mode)
	if mode != ModeProduction {
		mode = ModeSandbox
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		serverKey:  serverKey,
		clientKey:  clientKey,
		mode:       mode,
	}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float64) {
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

func (c *Client) snapBaseURL() string {
	if c.mode == ModeProduction {
		return "https://app.midtrans.com"
	}
	return "https://app.sandbox.midtrans.com"
}

func (c *Client) apiBaseURL() string {
	if c.mode == ModeProduction {
		return "https://api.midtrans.com"
	}
	return "https://api.sandbox.midtrans.com"
}

// Widget describes the Snap.js embed for the current mode.
func (c *Client) Widget() domain.WidgetConfig {
	return domain.WidgetConfig{
		ScriptURL:   c.snapBaseURL() + "/snap/snap.js",
		ClientKey:   c.clientKey,
		ContainerID: domain.SnapContainerID,
		Mode:        c.mode,
	}
}

type snapTransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type snapItem struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

type snapExpiry struct {
	Unit     string `json:"unit"`
	Duration int    `json:"duration"`
}

type snapRequestBody struct {
	TransactionDetails snapTransactionDetails `json:"transaction_details"`
	ItemDetails        []snapItem             `json:"item_details"`
	CustomerDetails    domain.SnapCustomer    `json:"customer_details"`
	EnabledPayments    []string               `json:"enabled_payments,omitempty"`
	Expiry             *snapExpiry            `json:"expiry,omitempty"`
}

type snapErrorResponse struct {
	ErrorMessages []string `json:"error_messages"`
}

func (c *Client) CreateTransaction(ctx context.Context, req domain.SnapRequest) (*domain.SnapResponse, error) {
	if c.serverKey == "" {
		return nil, ErrNotConfigured
	}

	body := snapRequestBody{
		TransactionDetails: snapTransactionDetails{OrderID: req.OrderID, GrossAmount: req.Amount},
		ItemDetails: []snapItem{{
			ID:       req.OrderID,
			Price:    req.Amount,
			Quantity: 1,
			Name:     req.ItemName,
		}},
		CustomerDetails: req.Customer,
		EnabledPayments: req.EnabledPayments,
	}
	if req.ExpiryMinutes > 0 {
		body.Expiry = &snapExpiry{Unit: "minutes", Duration: req.ExpiryMinutes}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	respBody, err := c.sendRequest(ctx, http.MethodPost, c.snapBaseURL()+"/snap/v1/transactions", payload)
	if err != nil {
		return nil, err
	}

	var snapResp domain.SnapResponse
	if err := json.Unmarshal(respBody, &snapResp); err != nil {
		return nil, errors.Wrap(err, "error decoding snap response")
	}
	if snapResp.Token == "" {
		return nil, errors.New("snap response has no token")
	}
	return &snapResp, nil
}

// TransactionStatus fetches the current status of an order from the Core API.
func (c *Client) TransactionStatus(ctx context.Context, orderID string) (*domain.GatewayNotification, error) {
	if c.serverKey == "" {
		return nil, ErrNotConfigured
	}

	respBody, err := c.sendRequest(ctx, http.MethodGet, c.apiBaseURL()+"/v2/"+orderID+"/status", nil)
	if err != nil {
		return nil, err
	}

	var status domain.GatewayNotification
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, errors.Wrap(err, "error decoding status response")
	}
	return &status, nil
}

// Signature computes sha512(order_id + status_code + gross_amount + server_key).
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func (c *Client) VerifySignature(n domain.GatewayNotification) bool {
	if c.serverKey == "" || n.SignatureKey == "" {
		return false
	}
	expected := Signature(n.OrderID, n.StatusCode, n.GrossAmount, c.serverKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(n.SignatureKey))) == 1
}

func (c *Client) sendRequest(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.Wrap(err, "error creating request")
	}
	req.SetBasicAuth(c.serverKey, "")
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "error sending request")
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

func (c *Client) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "error reading response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var snapErr snapErrorResponse
		if json.Unmarshal(body, &snapErr) == nil && len(snapErr.ErrorMessages) > 0 {
			return nil, fmt.Errorf("midtrans request failed with status %d: %s", resp.StatusCode, strings.Join(snapErr.ErrorMessages, "; "))
		}
		return nil, fmt.Errorf("midtrans request failed with status %d, body: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// MapStatus converts a gateway transaction_status to a payment status.
// ok is false for statuses that carry no state change (e.g. "authorize").
func MapStatus(transactionStatus, fraudStatus string) (status string, ok bool) {
	switch strings.ToLower(transactionStatus) {
	case "capture":
		if strings.ToLower(fraudStatus) == "challenge" {
			return domain.PaymentPending, true
		}
		return domain.PaymentPaid, true
	case "settlement":
		return domain.PaymentPaid, true
	case "pending":
		return domain.PaymentPending, true
	case "deny", "cancel", "failure":
		return domain.PaymentFailed, true
	case "expire":
		return domain.PaymentExpired, true
	}
	return "", false
}

// FormatGrossAmount renders amounts the way Midtrans echoes them ("150000.00").
func FormatGrossAmount(amount int64) string {
	return strconv.FormatInt(amount, 10) + ".00"
}
