package domain

import (
	"context"
	"encoding/json"
	"time"
)

const (
	PaymentTypeMidtrans = "MIDTRANS"
	PaymentTypePaypal   = "PAYPAL"

	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
	PaymentFailed  = "FAILED"
	PaymentExpired = "EXPIRED"

	SnapContainerID = "snap-container"
)

// IsTerminalPayment reports whether a payment status can no longer change.
func IsTerminalPayment(status string) bool {
	return status == PaymentPaid || status == PaymentFailed || status == PaymentExpired
}

type PaymentTransaction struct {
	ID             int64           `json:"id"`
	OrderID        string          `json:"order_id"`
	RegistrationID int64           `json:"registration_id"`
	SubmissionID   string          `json:"submission_id"`
	Type           string          `json:"type"`
	Amount         int64           `json:"amount"`
	Currency       string          `json:"currency"`
	Status         string          `json:"status"`
	Token          string          `json:"token,omitempty"`
	RedirectURL    string          `json:"redirect_url,omitempty"`
	ProofFileID    string          `json:"proof_file_id,omitempty"`
	GatewayPayload json.RawMessage `json:"-"`
	ExpiresAt      time.Time       `json:"expires_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type TransactionData struct {
	SubmissionID       string `json:"submission_id"`
	PaymentProofFileID string `json:"payment_proof_file_id,omitempty"`
	PaymentType        string `json:"payment_type,omitempty"` // preferred gateway channel, e.g. "gopay"
}

type CreateTransactionInput struct {
	Type string          `json:"type"`
	Data TransactionData `json:"data"`
}

// GatewayNotification is the HTTP notification (and status response) body of the gateway.
type GatewayNotification struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id,omitempty"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status,omitempty"`
	PaymentType       string `json:"payment_type,omitempty"`
}

// WidgetConfig tells the frontend which checkout script to load and where to mount it.
type WidgetConfig struct {
	ScriptURL   string `json:"script_url"`
	ClientKey   string `json:"client_key"`
	ContainerID string `json:"container_id"`
	Mode        string `json:"mode"`
}

type SnapCustomer struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

type SnapRequest struct {
	OrderID         string
	Amount          int64
	ItemName        string
	Customer        SnapCustomer
	EnabledPayments []string
	ExpiryMinutes   int
}

type SnapResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// PaymentGateway is the hosted-checkout provider (Midtrans Snap).
type PaymentGateway interface {
	CreateTransaction(ctx context.Context, req SnapRequest) (*SnapResponse, error)
	TransactionStatus(ctx context.Context, orderID string) (*GatewayNotification, error)
	VerifySignature(n GatewayNotification) bool
	Widget() WidgetConfig
}

type PaymentRepository interface {
	Create(ctx context.Context, tx *PaymentTransaction) error
	GetByID(ctx context.Context, id int64) (*PaymentTransaction, error)
	GetByOrderID(ctx context.Context, orderID string) (*PaymentTransaction, error)
	GetLatestByRegistration(ctx context.Context, registrationID int64) (*PaymentTransaction, error)
	UpdateStatus(ctx context.Context, id int64, status string, payload json.RawMessage) error
	ListExpiredPending(ctx context.Context, now time.Time) ([]PaymentTransaction, error)
}

type PaymentUsecase interface {
	WidgetConfig(ctx context.Context) WidgetConfig
	CreateTransaction(ctx context.Context, in CreateTransactionInput) (*PaymentTransaction, error)
	HandleNotification(ctx context.Context, n GatewayNotification) error
	GetStatus(ctx context.Context, registrationID int64) (*PaymentTransaction, error)
	AdminUpdateStatus(ctx context.Context, id int64, status string) error
	ExpireStale(ctx context.Context) (int, error)
}
