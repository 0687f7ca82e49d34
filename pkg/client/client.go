// Package client is the typed Go client of the Rise API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNetwork      = errors.New("network error")
)

// APIError is any non-2xx reply. It unwraps to ErrUnauthorized or ErrForbidden
// for 401 and 403.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	}
	return nil
}

// SessionProvider supplies the bearer token; an empty token sends no header.
type SessionProvider interface {
	Token() string
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL        string
	httpClient     HTTPClient
	session        SessionProvider
	onUnauthorized func()
	suggestions    *gocache.Cache
}

type Option func(*Client)

func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithSession(s SessionProvider) Option {
	return func(c *Client) { c.session = s }
}

// WithOnUnauthorized registers the hook run on every 401, before the error returns.
func WithOnUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func New(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		suggestions: gocache.New(5*time.Minute, 10*time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetSession and SetOnUnauthorized exist because the auth store both needs the
// client and is its session provider.
func (c *Client) SetSession(s SessionProvider) { c.session = s }

func (c *Client) SetOnUnauthorized(fn func()) { c.onUnauthorized = fn }

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "error encoding request")
		}
		reader = bytes.NewReader(payload)
	}
	raw, err := c.send(ctx, method, path, reader, "application/json")
	if err != nil {
		return err
	}
	return decodeData(raw, out)
}

// File is an upload picked by the user.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (c *Client) upload(ctx context.Context, path string, f File, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name))
	if f.ContentType != "" {
		header.Set("Content-Type", f.ContentType)
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		return errors.Wrap(err, "error creating form part")
	}
	if _, err := io.Copy(part, f.Body); err != nil {
		return errors.Wrap(err, "error reading file")
	}
	if err := mw.Close(); err != nil {
		return err
	}

	raw, err := c.send(ctx, http.MethodPost, path, &buf, mw.FormDataContentType())
	if err != nil {
		return err
	}
	return decodeData(raw, out)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "error creating request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if c.session != nil {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrNetwork, "%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(ErrNetwork, "error reading response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
	}
	return raw, nil
}

func errorMessage(status int, body []byte) string {
	var env envelope
	if json.Unmarshal(body, &env) == nil && env.Message != "" {
		return env.Message
	}
	switch {
	case status == http.StatusNotFound:
		return "Resource not found."
	case status >= 500:
		return "Server error. Please try again later."
	}
	return http.StatusText(status)
}

func decodeData(raw []byte, out any) error {
	if out == nil || len(raw) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return errors.Wrap(err, "error decoding response")
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.Wrap(err, "error decoding response data")
	}
	return nil
}

// IsServerUnavailable reports transport failures and 5xx replies, the cases
// where callers may fall back to bundled data.
func IsServerUnavailable(err error) bool {
	if errors.Is(err, ErrNetwork) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status >= 500
}
