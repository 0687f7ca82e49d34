package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"go-rise-platform/internal/domain"
	"go-rise-platform/internal/events"
	"go-rise-platform/internal/usecase"
	"go-rise-platform/pkg/apperror"
	"go-rise-platform/pkg/midtrans"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var paymentSettings = usecase.PaymentSettings{
	FeeSelfFunded:  1500000,
	FeeFullyFunded: 150000,
	Currency:       "IDR",
	Expiry:         24 * time.Hour,
}

type paymentDeps struct {
	pay     *MockPaymentRepo
	regs    *MockRegistrationRepo
	uploads *MockUploadRepo
	gateway *MockGateway
}

func newPayment(pub domain.EventPublisher) (domain.PaymentUsecase, paymentDeps) {
	d := paymentDeps{new(MockPaymentRepo), new(MockRegistrationRepo), new(MockUploadRepo), new(MockGateway)}
	return usecase.NewPaymentUsecase(d.pay, d.regs, d.uploads, d.gateway, pub, nil, paymentSettings), d
}

func registration(scholarship string) *domain.Registration {
	return &domain.Registration{
		ID:           41,
		SubmissionID: essayID,
		Step1:        step1(scholarship),
		Status:       domain.RegistrationPending,
	}
}

func TestPaymentCreateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("Should open a Snap checkout for the scholarship fee", func(t *testing.T) {
		uc, d := newPayment(events.NoopPublisher{})
		d.regs.On("GetBySubmissionID", mock.Anything, essayID).Return(registration(domain.ScholarshipFullyFunded), nil)
		d.gateway.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(r domain.SnapRequest) bool {
			return strings.HasPrefix(r.OrderID, "RYLS-") && r.Amount == 150000 && r.ExpiryMinutes == 1440 &&
				r.Customer.Email == "Siti@Example.com" && len(r.EnabledPayments) == 1
		})).Return(&domain.SnapResponse{Token: "snap-token", RedirectURL: "https://app.sandbox.midtrans.com/x"}, nil)
		d.pay.On("Create", mock.Anything, mock.Anything).Return(nil)
		d.regs.On("UpdatePayment", mock.Anything, int64(41), mock.MatchedBy(func(p domain.PaymentInfo) bool {
			return p.Status == domain.PaymentPending && p.Type == domain.PaymentTypeMidtrans
		})).Return(nil)

		tx, err := uc.CreateTransaction(ctx, domain.CreateTransactionInput{
			Type: "midtrans",
			Data: domain.TransactionData{SubmissionID: essayID, PaymentType: "gopay"},
		})
		require.NoError(t, err)
		assert.Equal(t, "snap-token", tx.Token)
		assert.Equal(t, int64(150000), tx.Amount)
		assert.Equal(t, domain.PaymentPending, tx.Status)
		d.regs.AssertExpectations(t)
	})

	t.Run("Should charge the self funded fee", func(t *testing.T) {
		uc, d := newPayment(events.NoopPublisher{})
		d.regs.On("GetBySubmissionID", mock.Anything, essayID).Return(registration(domain.ScholarshipSelfFunded), nil)
		d.gateway.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(r domain.SnapRequest) bool {
			return r.Amount == 1500000 && r.EnabledPayments == nil
		})).Return(&domain.SnapResponse{Token: "t"}, nil)
		d.pay.On("Create", mock.Anything, mock.Anything).Return(nil)
		d.regs.On("UpdatePayment", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		tx, err := uc.CreateTransaction(ctx, domain.CreateTransactionInput{Type: "MIDTRANS", Data: domain.TransactionData{SubmissionID: essayID}})
		require.NoError(t, err)
		assert.Equal(t, int64(1500000), tx.Amount)
	})

	t.Run("Should 404 unknown submissions", func(t *testing.T) {
		uc, d := newPayment(events.NoopPublisher{})
		d.regs.On("GetBySubmissionID", mock.Anything, "missing").Return(nil, domain.ErrNotFound)
		_, err := uc.CreateTransaction(ctx, domain.CreateTransactionInput{Type: "MIDTRANS", Data: domain.TransactionData{SubmissionID: "missing"}})
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
	})

	t.Run("Should refuse to charge twice", func(t *testing.T) {
		uc, d := newPayment(events.NoopPublisher{})
		paid := registration(domain.ScholarshipFullyFunded)
		paid.Payment.Status = domain.PaymentPaid
		d.regs.On("GetBySubmissionID", mock.Anything, essayID).Return(paid, nil)

		_, err := uc.CreateTransaction(ctx, domain.CreateTransactionInput{Type: "MIDTRANS", Data: domain.TransactionData{SubmissionID: essayID}})
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
		d.gateway.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
	})

	t.Run("Should require proof for PayPal", func(t *testing.T) {
		uc, d := newPayment(events.NoopPublisher{})
		d.regs.On("GetBySubmissionID", mock.Anything, essayID).Return(registration(domain.ScholarshipSelfFunded), nil)
		_, err := uc.CreateTransaction(ctx, domain.CreateTransactionInput{Type: "PAYPAL", Data: domain.TransactionData{SubmissionID: essayID}})
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("Should record PayPal proof for manual review", func(t *testing.T) {
		uc, d := newPayment(events.NoopPublisher{})
		d.regs.On("GetBySubmissionID", mock.Anything, essayID).Return(registration(domain.ScholarshipSelfFunded), nil)
		d.uploads.On("GetByID", mock.Anything, "proof-1").Return(&domain.Upload{ID: "proof-1", Kind: domain.UploadPaymentProof}, nil)
		d.pay.On("Create", mock.Anything, mock.MatchedBy(func(tx *domain.PaymentTransaction) bool {
			return tx.ProofFileID == "proof-1" && tx.Token == ""
		})).Return(nil)
		d.regs.On("UpdatePayment", mock.Anything, int64(41), mock.Anything).Return(nil)

		tx, err := uc.CreateTransaction(ctx, domain.CreateTransactionInput{
			Type: "PAYPAL",
			Data: domain.TransactionData{SubmissionID: essayID, PaymentProofFileID: "proof-1"},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentTypePaypal, tx.Type)
		d.gateway.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
	})

	t.Run("Should surface gateway failures as 502", func(t *testing.T) {
		uc, d := newPayment(events.NoopPublisher{})
		d.regs.On("GetBySubmissionID", mock.Anything, essayID).Return(registration(domain.ScholarshipSelfFunded), nil)
		d.gateway.On("CreateTransaction", mock.Anything, mock.Anything).Return(nil, midtrans.ErrNotConfigured)
		_, err := uc.CreateTransaction(ctx, domain.CreateTransactionInput{Type: "MIDTRANS", Data: domain.TransactionData{SubmissionID: essayID}})
		assert.Equal(t, http.StatusBadGateway, apperror.CodeOf(err))
		d.pay.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should reject unknown payment types", func(t *testing.T) {
		uc, _ := newPayment(events.NoopPublisher{})
		_, err := uc.CreateTransaction(ctx, domain.CreateTransactionInput{Type: "CASH", Data: domain.TransactionData{SubmissionID: essayID}})
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})
}

func pendingTx() *domain.PaymentTransaction {
	return &domain.PaymentTransaction{
		ID:             7,
		OrderID:        "RYLS-1",
		RegistrationID: 41,
		Type:           domain.PaymentTypeMidtrans,
		Amount:         150000,
		Status:         domain.PaymentPending,
		ExpiresAt:      time.Now().Add(time.Hour),
	}
}

func notification(status string) domain.GatewayNotification {
	return domain.GatewayNotification{
		OrderID:           "RYLS-1",
		StatusCode:        "200",
		GrossAmount:       "150000.00",
		SignatureKey:      "sig",
		TransactionStatus: status,
	}
}

func TestPaymentHandleNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reject a bad signature", func(t *testing.T) {
		uc, d := newPayment(events.NoopPublisher{})
		d.gateway.On("VerifySignature", mock.Anything).Return(false)
		err := uc.HandleNotification(ctx, notification("settlement"))
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
		d.pay.AssertNotCalled(t, "GetByOrderID", mock.Anything, mock.Anything)
	})

	t.Run("Should mark settlement as paid and emit an event", func(t *testing.T) {
		pub := newRecordingPublisher()
		uc, d := newPayment(pub)
		d.gateway.On("VerifySignature", mock.Anything).Return(true)
		d.pay.On("GetByOrderID", mock.Anything, "RYLS-1").Return(pendingTx(), nil)
		d.pay.On("UpdateStatus", mock.Anything, int64(7), domain.PaymentPaid, mock.Anything).Return(nil)
		d.regs.On("UpdatePayment", mock.Anything, int64(41), mock.MatchedBy(func(p domain.PaymentInfo) bool {
			return p.Status == domain.PaymentPaid && p.ID == "RYLS-1"
		})).Return(nil)

		require.NoError(t, uc.HandleNotification(ctx, notification("settlement")))
		d.regs.AssertExpectations(t)

		select {
		case subject := <-pub.events:
			assert.Equal(t, domain.SubjectPaymentStatusChanged, subject)
		case <-time.After(2 * time.Second):
			t.Fatal("payment event was not published")
		}
	})

	t.Run("Should never regress a terminal payment", func(t *testing.T) {
		uc, d := newPayment(events.NoopPublisher{})
		paid := pendingTx()
		paid.Status = domain.PaymentPaid
		d.gateway.On("VerifySignature", mock.Anything).Return(true)
		d.pay.On("GetByOrderID", mock.Anything, "RYLS-1").Return(paid, nil)

		require.NoError(t, uc.HandleNotification(ctx, notification("expire")))
		d.pay.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should acknowledge statuses without a mapping", func(t *testing.T) {
		uc, d := newPayment(events.NoopPublisher{})
		d.gateway.On("VerifySignature", mock.Anything).Return(true)
		d.pay.On("GetByOrderID", mock.Anything, "RYLS-1").Return(pendingTx(), nil)

		require.NoError(t, uc.HandleNotification(ctx, notification("authorize")))
		d.pay.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should reject a mismatched amount", func(t *testing.T) {
		uc, d := newPayment(events.NoopPublisher{})
		d.gateway.On("VerifySignature", mock.Anything).Return(true)
		d.pay.On("GetByOrderID", mock.Anything, "RYLS-1").Return(pendingTx(), nil)

		n := notification("settlement")
		n.GrossAmount = "1.00"
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(uc.HandleNotification(ctx, n)))
	})

	t.Run("Should 404 unknown orders", func(t *testing.T) {
		uc, d := newPayment(events.NoopPublisher{})
		d.gateway.On("VerifySignature", mock.Anything).Return(true)
		d.pay.On("GetByOrderID", mock.Anything, "RYLS-1").Return(nil, domain.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(uc.HandleNotification(ctx, notification("settlement"))))
	})
}

func TestPaymentGetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Should re-check pending gateway payments", func(t *testing.T) {
		uc, d := newPayment(events.NoopPublisher{})
		d.pay.On("GetLatestByRegistration", mock.Anything, int64(41)).Return(pendingTx(), nil)
		d.gateway.On("TransactionStatus", mock.Anything, "RYLS-1").Return(&domain.GatewayNotification{TransactionStatus: "settlement"}, nil)
		d.pay.On("UpdateStatus", mock.Anything, int64(7), domain.PaymentPaid, mock.Anything).Return(nil)
		d.regs.On("UpdatePayment", mock.Anything, int64(41), mock.Anything).Return(nil)

		tx, err := uc.GetStatus(ctx, 41)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentPaid, tx.Status)
	})

	t.Run("Should keep the stored status when the gateway is down", func(t *testing.T) {
		uc, d := newPayment(events.NoopPublisher{})
		d.pay.On("GetLatestByRegistration", mock.Anything, int64(41)).Return(pendingTx(), nil)
		d.gateway.On("TransactionStatus", mock.Anything, "RYLS-1").Return(nil, errors.New("timeout"))

		tx, err := uc.GetStatus(ctx, 41)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentPending, tx.Status)
	})

	t.Run("Should expire lapsed PayPal reviews", func(t *testing.T) {
		uc, d := newPayment(events.NoopPublisher{})
		tx := pendingTx()
		tx.Type = domain.PaymentTypePaypal
		tx.ExpiresAt = time.Now().Add(-time.Minute)
		d.pay.On("GetLatestByRegistration", mock.Anything, int64(41)).Return(tx, nil)
		d.pay.On("UpdateStatus", mock.Anything, int64(7), domain.PaymentExpired, mock.Anything).Return(nil)
		d.regs.On("UpdatePayment", mock.Anything, int64(41), mock.Anything).Return(nil)

		got, err := uc.GetStatus(ctx, 41)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentExpired, got.Status)
		d.gateway.AssertNotCalled(t, "TransactionStatus", mock.Anything, mock.Anything)
	})

	t.Run("Should 404 when nothing was created", func(t *testing.T) {
		uc, d := newPayment(events.NoopPublisher{})
		d.pay.On("GetLatestByRegistration", mock.Anything, int64(5)).Return(nil, domain.ErrNotFound)
		_, err := uc.GetStatus(ctx, 5)
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
	})
}

func TestPaymentAdminAndSweep(t *testing.T) {
	ctx := context.Background()

	t.Run("Should verify a PayPal payment manually", func(t *testing.T) {
		uc, d := newPayment(events.NoopPublisher{})
		d.pay.On("GetByID", mock.Anything, int64(7)).Return(pendingTx(), nil)
		d.pay.On("UpdateStatus", mock.Anything, int64(7), domain.PaymentPaid, mock.Anything).Return(nil)
		d.regs.On("UpdatePayment", mock.Anything, int64(41), mock.Anything).Return(nil)
		assert.NoError(t, uc.AdminUpdateStatus(ctx, 7, "paid"))
	})

	t.Run("Should refuse to reopen a finalized payment", func(t *testing.T) {
		uc, d := newPayment(events.NoopPublisher{})
		failed := pendingTx()
		failed.Status = domain.PaymentFailed
		d.pay.On("GetByID", mock.Anything, int64(7)).Return(failed, nil)
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(uc.AdminUpdateStatus(ctx, 7, "PAID")))
	})

	t.Run("Should reject unknown statuses", func(t *testing.T) {
		uc, _ := newPayment(events.NoopPublisher{})
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(uc.AdminUpdateStatus(ctx, 7, "REFUNDED")))
	})

	t.Run("Should expire every stale pending payment", func(t *testing.T) {
		uc, d := newPayment(events.NoopPublisher{})
		a, b := *pendingTx(), *pendingTx()
		b.ID, b.OrderID = 8, "RYLS-2"
		d.pay.On("ListExpiredPending", mock.Anything, mock.Anything).Return([]domain.PaymentTransaction{a, b}, nil)
		d.pay.On("UpdateStatus", mock.Anything, mock.Anything, domain.PaymentExpired, mock.Anything).Return(nil)
		d.regs.On("UpdatePayment", mock.Anything, int64(41), mock.Anything).Return(nil)

		n, err := uc.ExpireStale(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		d.pay.AssertNumberOfCalls(t, "UpdateStatus", 2)
	})

	t.Run("Should run the sweep from the expirer", func(t *testing.T) {
		uc, d := newPayment(events.NoopPublisher{})
		d.pay.On("ListExpiredPending", mock.Anything, mock.Anything).Return([]domain.PaymentTransaction{}, nil)

		expirer, err := usecase.NewPaymentExpirer(uc, "@every 15m")
		require.NoError(t, err)
		expirer.Sweep()
		d.pay.AssertCalled(t, "ListExpiredPending", mock.Anything, mock.Anything)

		_, err = usecase.NewPaymentExpirer(uc, "not a schedule")
		assert.Error(t, err)
	})
}
