package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"go-rise-platform/internal/domain"
	"go-rise-platform/internal/events"
	"go-rise-platform/internal/metrics"
	"go-rise-platform/pkg/apperror"
	"go-rise-platform/pkg/logger"
	"go-rise-platform/pkg/midtrans"
	"go-rise-platform/pkg/security"

	"github.com/google/uuid"
)

// PaymentSettings are the RYLS fees and checkout lifetime.
type PaymentSettings struct {
	FeeSelfFunded  int64
	FeeFullyFunded int64
	Currency       string
	Expiry         time.Duration
}

type paymentUsecase struct {
	payRepo    domain.PaymentRepository
	regRepo    domain.RegistrationRepository
	uploadRepo domain.UploadRepository
	gateway    domain.PaymentGateway
	publisher  domain.EventPublisher
	audit      *security.SecurityLogger
	settings   PaymentSettings
	now        func() time.Time
}

func NewPaymentUsecase(
	payRepo domain.PaymentRepository,
	regRepo domain.RegistrationRepository,
	uploadRepo domain.UploadRepository,
	gateway domain.PaymentGateway,
	publisher domain.EventPublisher,
	audit *security.SecurityLogger,
	settings PaymentSettings,
) domain.PaymentUsecase {
	if settings.Currency == "" {
		settings.Currency = domain.DefaultCurrency
	}
	if settings.Expiry <= 0 {
		settings.Expiry = 24 * time.Hour
	}
	if audit == nil {
		audit = security.DefaultLogger()
	}
	return &paymentUsecase{
		payRepo:    payRepo,
		regRepo:    regRepo,
		uploadRepo: uploadRepo,
		gateway:    gateway,
		publisher:  publisher,
		audit:      audit,
		settings:   settings,
		now:        time.Now,
	}
}

func (u *paymentUsecase) WidgetConfig(context.Context) domain.WidgetConfig {
	return u.gateway.Widget()
}

func (u *paymentUsecase) feeFor(scholarshipType string) int64 {
	if scholarshipType == domain.ScholarshipFullyFunded {
		return u.settings.FeeFullyFunded
	}
	return u.settings.FeeSelfFunded
}

func (u *paymentUsecase) CreateTransaction(ctx context.Context, in domain.CreateTransactionInput) (*domain.PaymentTransaction, error) {
	paymentType := strings.ToUpper(strings.TrimSpace(in.Type))
	if paymentType != domain.PaymentTypeMidtrans && paymentType != domain.PaymentTypePaypal {
		return nil, apperror.BadRequest("Payment type must be MIDTRANS or PAYPAL")
	}
	if strings.TrimSpace(in.Data.SubmissionID) == "" {
		return nil, apperror.BadRequest("submission_id is required")
	}

	reg, err := u.regRepo.GetBySubmissionID(ctx, in.Data.SubmissionID)
	if err != nil {
		return nil, notFoundOr(err, "Registration not found")
	}
	if reg.Payment.Status == domain.PaymentPaid {
		return nil, apperror.Conflict("Pembayaran untuk pendaftaran ini sudah lunas")
	}

	now := u.now()
	tx := &domain.PaymentTransaction{
		OrderID:        "RYLS-" + uuid.NewString(),
		RegistrationID: reg.ID,
		SubmissionID:   reg.SubmissionID,
		Type:           paymentType,
		Amount:         u.feeFor(reg.Step1.ScholarshipType),
		Currency:       u.settings.Currency,
		Status:         domain.PaymentPending,
		ExpiresAt:      now.Add(u.settings.Expiry),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	switch paymentType {
	case domain.PaymentTypeMidtrans:
		req := domain.SnapRequest{
			OrderID:  tx.OrderID,
			Amount:   tx.Amount,
			ItemName: "RYLS Registration Fee",
			Customer: domain.SnapCustomer{
				FirstName: reg.Step1.FullName,
				Email:     reg.Step1.Email,
				Phone:     reg.Step1.Whatsapp,
			},
			ExpiryMinutes: int(u.settings.Expiry / time.Minute),
		}
		if in.Data.PaymentType != "" {
			req.EnabledPayments = []string{in.Data.PaymentType}
		}
		snap, err := u.gateway.CreateTransaction(ctx, req)
		if err != nil {
			if errors.Is(err, midtrans.ErrNotConfigured) {
				return nil, apperror.BadGateway("Payment gateway is not configured", err)
			}
			logger.Log.Error("Snap transaction failed", "order_id", tx.OrderID, "error", err)
			return nil, apperror.BadGateway("Gagal membuat transaksi pembayaran", err)
		}
		tx.Token = snap.Token
		tx.RedirectURL = snap.RedirectURL
	case domain.PaymentTypePaypal:
		if in.Data.PaymentProofFileID == "" {
			return nil, apperror.BadRequest("Bukti pembayaran wajib diupload untuk PayPal")
		}
		upload, err := u.uploadRepo.GetByID(ctx, in.Data.PaymentProofFileID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, apperror.BadRequest("Bukti pembayaran tidak ditemukan, silakan upload ulang")
			}
			return nil, apperror.Internal(err)
		}
		if upload.Kind != domain.UploadPaymentProof {
			return nil, apperror.BadRequest("Bukti pembayaran: Jenis file tidak sesuai")
		}
		tx.ProofFileID = upload.ID
	}

	if err := u.payRepo.Create(ctx, tx); err != nil {
		return nil, apperror.Internal(err)
	}

	info := domain.PaymentInfo{ID: tx.OrderID, Type: tx.Type, Status: tx.Status, ProofFileID: tx.ProofFileID}
	if err := u.regRepo.UpdatePayment(ctx, reg.ID, info); err != nil {
		logger.Log.Error("Failed to attach payment to registration", "registration_id", reg.ID, "error", err)
	}

	metrics.PaymentTransitionsTotal.WithLabelValues(tx.Type, tx.Status).Inc()
	logger.Log.Info("Payment transaction created", "order_id", tx.OrderID, "type", tx.Type, "amount", tx.Amount)
	return tx, nil
}

// HandleNotification applies a signed gateway notification. Unknown transaction
// statuses are acknowledged without a state change.
func (u *paymentUsecase) HandleNotification(ctx context.Context, n domain.GatewayNotification) error {
	if !u.gateway.VerifySignature(n) {
		ip, _ := ctx.Value(domain.KeyClientIP).(string)
		u.audit.LogWebhookRejected(ctx, n.OrderID, ip)
		return apperror.Forbidden("Invalid signature")
	}

	tx, err := u.payRepo.GetByOrderID(ctx, n.OrderID)
	if err != nil {
		return notFoundOr(err, "Transaction not found")
	}
	if !amountMatches(n.GrossAmount, tx.Amount) {
		logger.Log.Warn("Notification amount mismatch", "order_id", tx.OrderID, "gross_amount", n.GrossAmount, "expected", tx.Amount)
		return apperror.BadRequest("Gross amount does not match transaction")
	}

	status, ok := midtrans.MapStatus(n.TransactionStatus, n.FraudStatus)
	if !ok {
		logger.Log.Info("Ignoring gateway status", "order_id", tx.OrderID, "transaction_status", n.TransactionStatus)
		return nil
	}

	payload, _ := json.Marshal(n)
	return u.transition(ctx, tx, status, payload)
}

func amountMatches(gross string, amount int64) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(gross), 64)
	if err != nil {
		return false
	}
	return int64(v) == amount
}

// transition moves tx to status. Terminal transactions never change; repeating the
// current status is a no-op.
func (u *paymentUsecase) transition(ctx context.Context, tx *domain.PaymentTransaction, status string, payload json.RawMessage) error {
	if tx.Status == status {
		return nil
	}
	if domain.IsTerminalPayment(tx.Status) {
		logger.Log.Info("Ignoring transition of finalized payment", "order_id", tx.OrderID, "from", tx.Status, "to", status)
		return nil
	}

	if err := u.payRepo.UpdateStatus(ctx, tx.ID, status, payload); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// finalized concurrently
			return nil
		}
		return apperror.Internal(err)
	}

	from := tx.Status
	tx.Status = status
	tx.UpdatedAt = u.now()

	info := domain.PaymentInfo{ID: tx.OrderID, Type: tx.Type, Status: status, ProofFileID: tx.ProofFileID}
	if err := u.regRepo.UpdatePayment(ctx, tx.RegistrationID, info); err != nil {
		logger.Log.Error("Failed to update registration payment", "registration_id", tx.RegistrationID, "error", err)
	}

	metrics.PaymentTransitionsTotal.WithLabelValues(tx.Type, status).Inc()
	logger.Log.Info("Payment status changed", "order_id", tx.OrderID, "from", from, "to", status)
	events.PublishAsync(u.publisher, domain.SubjectPaymentStatusChanged, domain.PaymentStatusChanged{
		OrderID:        tx.OrderID,
		RegistrationID: tx.RegistrationID,
		From:           from,
		To:             status,
		At:             tx.UpdatedAt,
	})
	return nil
}

func (u *paymentUsecase) GetStatus(ctx context.Context, registrationID int64) (*domain.PaymentTransaction, error) {
	tx, err := u.payRepo.GetLatestByRegistration(ctx, registrationID)
	if err != nil {
		return nil, notFoundOr(err, "Payment not found")
	}
	if tx.Status != domain.PaymentPending {
		return tx, nil
	}

	if tx.Type == domain.PaymentTypeMidtrans {
		remote, err := u.gateway.TransactionStatus(ctx, tx.OrderID)
		if err != nil {
			logger.Log.Warn("Gateway status check failed", "order_id", tx.OrderID, "error", err)
		} else if status, ok := midtrans.MapStatus(remote.TransactionStatus, remote.FraudStatus); ok {
			payload, _ := json.Marshal(remote)
			if err := u.transition(ctx, tx, status, payload); err != nil {
				return nil, err
			}
		}
	}

	if tx.Status == domain.PaymentPending && !tx.ExpiresAt.IsZero() && u.now().After(tx.ExpiresAt) {
		if err := u.transition(ctx, tx, domain.PaymentExpired, nil); err != nil {
			return nil, err
		}
	}
	return tx, nil
}

func (u *paymentUsecase) AdminUpdateStatus(ctx context.Context, id int64, status string) error {
	status = strings.ToUpper(strings.TrimSpace(status))
	switch status {
	case domain.PaymentPending, domain.PaymentPaid, domain.PaymentFailed, domain.PaymentExpired:
	default:
		return apperror.BadRequest("Status must be one of PENDING, PAID, FAILED, EXPIRED")
	}

	tx, err := u.payRepo.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Payment not found")
	}
	if domain.IsTerminalPayment(tx.Status) && tx.Status != status {
		return apperror.Conflict("Payment is already " + tx.Status)
	}
	return u.transition(ctx, tx, status, nil)
}

// ExpireStale marks PENDING transactions past their expiry as EXPIRED.
func (u *paymentUsecase) ExpireStale(ctx context.Context) (int, error) {
	stale, err := u.payRepo.ListExpiredPending(ctx, u.now())
	if err != nil {
		return 0, apperror.Internal(err)
	}
	expired := 0
	for i := range stale {
		if err := u.transition(ctx, &stale[i], domain.PaymentExpired, nil); err != nil {
			logger.Log.Error("Failed to expire payment", "order_id", stale[i].OrderID, "error", err)
			continue
		}
		expired++
	}
	if expired > 0 {
		metrics.ExpiredPaymentsTotal.Add(float64(expired))
	}
	return expired, nil
}
