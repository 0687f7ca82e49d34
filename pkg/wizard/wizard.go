// Package wizard drives the RYLS registration: uploads, submission, payment
// creation and status polling. The persisted payment status only ever comes
// from the backend.
package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go-rise-platform/internal/domain"
	"go-rise-platform/pkg/client"
	"go-rise-platform/pkg/logger"
	"go-rise-platform/pkg/midtrans"
	"go-rise-platform/pkg/security"
	"go-rise-platform/pkg/store"
	"go-rise-platform/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

type State string

const (
	StateDraft          State = "DRAFT"
	StateFilesUploaded  State = "FILES_UPLOADED"
	StateSubmitted      State = "SUBMITTED"
	StatePaymentCreated State = "PAYMENT_CREATED"
	StatePaymentPending State = "PAYMENT_PENDING"
	StatePaid           State = "PAID"
	StateFailed         State = "FAILED"
	StateExpired        State = "EXPIRED"
)

const (
	MaxFileBytes        = 10 << 20
	DefaultPollInterval = 5 * time.Second
)

var (
	ErrEssayMissing     = errors.New("File esai wajib diunggah")
	ErrHeadshotMissing  = errors.New("Foto formal wajib diunggah")
	ErrNotSubmitted     = errors.New("registration has not been submitted")
	ErrAlreadySubmitted = errors.New("registration was already submitted")
	ErrProofMissing     = errors.New("Bukti pembayaran wajib diunggah")
	ErrInvalidFile      = errors.New("invalid file")
	ErrIncomplete       = errors.New("registration is incomplete")
)

type API interface {
	UploadEssay(ctx context.Context, f client.File) (*client.UploadResult, error)
	UploadHeadshot(ctx context.Context, f client.File) (*client.UploadResult, error)
	UploadPaymentProof(ctx context.Context, f client.File) (*client.UploadResult, error)
	SubmitRegistration(ctx context.Context, in client.RegistrationInput) (*client.SubmissionResult, error)
	RegistrationStatus(ctx context.Context, submissionID string) (*client.SubmissionStatus, error)
	CreateTransaction(ctx context.Context, in domain.CreateTransactionInput) (*client.PaymentTransaction, error)
	PaymentStatus(ctx context.Context, registrationID int64) (*client.PaymentTransaction, error)
}

// InputError is a local check that failed before any request was made.
type InputError struct {
	Kind    error
	Message string
}

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Unwrap() error { return e.Kind }

// GatewayWidget is the checkout embed: script, client key and mount point.
type GatewayWidget = domain.WidgetConfig

const (
	CallbackSuccess = "success"
	CallbackPending = "pending"
	CallbackError   = "error"
	CallbackClose   = "close"
)

// GatewayEvent is what the checkout widget reported in the browser.
type GatewayEvent struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Config struct {
	GatewayMode      string
	GatewayClientKey string
}

type Wizard struct {
	api      API
	draft    *store.RegistrationStore
	validate *validator.Validate
	widget   GatewayWidget

	mu             sync.RWMutex
	state          State
	submissionID   string
	registrationID int64
	token          string
	redirectURL    string
	lastCallback   *GatewayEvent
	err            string
}

func New(api API, draft *store.RegistrationStore, cfg Config) *Wizard {
	return &Wizard{
		api:      api,
		draft:    draft,
		validate: validation.New(),
		widget:   midtrans.NewClient("", cfg.GatewayClientKey, cfg.GatewayMode).Widget(),
		state:    StateDraft,
	}
}

func (w *Wizard) fail(err error, message string) error {
	w.mu.Lock()
	w.err = message
	w.mu.Unlock()
	return err
}

func (w *Wizard) clearError() {
	w.mu.Lock()
	w.err = ""
	w.mu.Unlock()
}

func apiMessage(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// checkFile rejects oversize files and unexpected MIME types before any upload.
func checkFile(f client.File, policy security.FilePolicy) error {
	if f.Size > MaxFileBytes {
		return &InputError{Kind: ErrInvalidFile, Message: fmt.Sprintf("File terlalu besar. Maksimal %dMB", MaxFileBytes>>20)}
	}
	contentType := strings.ToLower(strings.TrimSpace(f.ContentType))
	if contentType == "image/jpg" {
		contentType = "image/jpeg"
	}
	for _, allowed := range policy.MIMETypes {
		if contentType == allowed {
			return nil
		}
	}
	return &InputError{Kind: ErrInvalidFile, Message: "Tipe file tidak didukung. Gunakan: " + strings.Join(policy.MIMETypes, ", ")}
}

func (w *Wizard) upload(ctx context.Context, f client.File, policy security.FilePolicy,
	send func(context.Context, client.File) (*client.UploadResult, error)) (*client.UploadResult, error) {
	if err := checkFile(f, policy); err != nil {
		return nil, w.fail(err, err.Error())
	}
	w.clearError()
	res, err := send(ctx, f)
	if err != nil {
		return nil, w.fail(err, apiMessage(err, "Upload gagal"))
	}
	return res, nil
}

func (w *Wizard) markFilesUploaded() {
	w.mu.Lock()
	if w.state == StateDraft {
		w.state = StateFilesUploaded
	}
	w.mu.Unlock()
}

func (w *Wizard) UploadEssay(ctx context.Context, f client.File) (*client.UploadResult, error) {
	res, err := w.upload(ctx, f, security.PDFPolicy, w.api.UploadEssay)
	if err != nil {
		return nil, err
	}
	w.draft.SetEssayFile(res.ID)
	w.markFilesUploaded()
	return res, nil
}

func (w *Wizard) UploadHeadshot(ctx context.Context, f client.File) (*client.UploadResult, error) {
	res, err := w.upload(ctx, f, security.ImagePolicy, w.api.UploadHeadshot)
	if err != nil {
		return nil, err
	}
	w.draft.SetHeadshotFile(res.ID)
	w.markFilesUploaded()
	return res, nil
}

func (w *Wizard) UploadPaymentProof(ctx context.Context, f client.File) (*client.UploadResult, error) {
	res, err := w.upload(ctx, f, security.ProofPolicy, w.api.UploadPaymentProof)
	if err != nil {
		return nil, err
	}
	w.draft.SetPaymentProof(res.ID)
	return res, nil
}

// checkDraft validates the draft locally with the server's rules.
func (w *Wizard) checkDraft(in client.RegistrationInput) error {
	switch in.Step1.ScholarshipType {
	case domain.ScholarshipFullyFunded:
		if in.FullyFunded == nil || in.FullyFunded.EssayFileID == "" {
			return ErrEssayMissing
		}
	case domain.ScholarshipSelfFunded:
		if in.SelfFunded == nil || in.SelfFunded.HeadshotFileID == "" {
			return ErrHeadshotMissing
		}
	}

	if err := w.validate.Struct(in.Step1); err != nil {
		return &InputError{Kind: ErrIncomplete, Message: validation.FirstMessage(err)}
	}
	var branch any
	if in.FullyFunded != nil {
		branch = in.FullyFunded
	} else if in.SelfFunded != nil {
		branch = in.SelfFunded
	}
	if branch != nil {
		if err := w.validate.Struct(branch); err != nil {
			return &InputError{Kind: ErrIncomplete, Message: validation.FirstMessage(err)}
		}
	}
	return nil
}

// Submit sends the draft. On success the draft is cleared and the wizard
// moves to SUBMITTED; on failure the draft and state stay as they were.
func (w *Wizard) Submit(ctx context.Context) (*client.SubmissionResult, error) {
	w.mu.RLock()
	submitted := w.submissionID != ""
	w.mu.RUnlock()
	if submitted {
		return nil, w.fail(ErrAlreadySubmitted, "Pendaftaran sudah dikirim")
	}

	in := w.draft.Data().Input()
	if err := w.checkDraft(in); err != nil {
		return nil, w.fail(err, err.Error())
	}

	w.clearError()
	res, err := w.api.SubmitRegistration(ctx, in)
	if err != nil {
		return nil, w.fail(err, apiMessage(err, "Gagal mengirim pendaftaran"))
	}

	w.mu.Lock()
	w.submissionID = res.SubmissionID
	w.registrationID = res.RegistrationID
	w.state = StateSubmitted
	w.mu.Unlock()

	w.draft.ResetAll()
	logger.Log.Info("registration submitted", "submission_id", res.SubmissionID)
	return res, nil
}

// Resume picks up an earlier submission, e.g. when the payment page is opened
// from a link.
func (w *Wizard) Resume(ctx context.Context, submissionID string) (*client.SubmissionStatus, error) {
	st, err := w.api.RegistrationStatus(ctx, submissionID)
	if err != nil {
		return nil, w.fail(err, apiMessage(err, "Pendaftaran tidak ditemukan"))
	}

	w.mu.Lock()
	w.submissionID = st.SubmissionID
	w.registrationID = st.RegistrationID
	w.state = StateSubmitted
	if st.PaymentStatus != "" {
		w.state = stateForPayment(st.PaymentStatus)
	}
	w.err = ""
	w.mu.Unlock()

	if st.PaymentStatus != "" {
		w.draft.SetPaymentStatus(st.PaymentStatus)
	}
	return st, nil
}

// CreatePayment starts a MIDTRANS checkout or a PAYPAL manual review. A
// failure leaves the state untouched and sets Error.
func (w *Wizard) CreatePayment(ctx context.Context, paymentType string) (*client.PaymentTransaction, error) {
	w.mu.RLock()
	submissionID := w.submissionID
	w.mu.RUnlock()
	if submissionID == "" {
		return nil, w.fail(ErrNotSubmitted, "Kirim pendaftaran terlebih dahulu")
	}

	paymentType = strings.ToUpper(strings.TrimSpace(paymentType))
	data := domain.TransactionData{SubmissionID: submissionID}
	if paymentType == domain.PaymentTypePaypal {
		data.PaymentProofFileID = w.draft.Payment().ProofFileID
		if data.PaymentProofFileID == "" {
			return nil, w.fail(ErrProofMissing, ErrProofMissing.Error())
		}
	}

	w.clearError()
	tx, err := w.api.CreateTransaction(ctx, domain.CreateTransactionInput{Type: paymentType, Data: data})
	if err != nil {
		return nil, w.fail(err, apiMessage(err, "Failed to create transaction"))
	}

	w.mu.Lock()
	w.state = StatePaymentCreated
	w.token = tx.Token
	w.redirectURL = tx.RedirectURL
	w.mu.Unlock()

	w.draft.SetPaymentType(paymentType)
	w.draft.SetPaymentID(strconv.FormatInt(tx.ID, 10))
	w.draft.SetPaymentStatus(tx.Status)
	if tx.Token != "" {
		payload, _ := json.Marshal(map[string]string{"token": tx.Token, "redirect_url": tx.RedirectURL})
		w.draft.SetGatewayPayload(payload)
	}
	return tx, nil
}

func (w *Wizard) Widget() GatewayWidget {
	return w.widget
}

// HandleCallback records a widget outcome for display. It never changes the
// payment status; PollStatus does.
func (w *Wizard) HandleCallback(ev GatewayEvent) {
	ev.Payload = append(json.RawMessage(nil), ev.Payload...)
	w.mu.Lock()
	w.lastCallback = &ev
	w.mu.Unlock()
	logger.Log.Debug("checkout widget callback", "kind", ev.Kind)
}

func stateForPayment(status string) State {
	switch status {
	case domain.PaymentPaid:
		return StatePaid
	case domain.PaymentFailed:
		return StateFailed
	case domain.PaymentExpired:
		return StateExpired
	}
	return StatePaymentPending
}

// PollStatus asks the backend for the payment status at most once per
// interval until it is terminal or maxAttempts is used up.
func (w *Wizard) PollStatus(ctx context.Context, interval time.Duration, maxAttempts int) (string, error) {
	w.mu.RLock()
	registrationID := w.registrationID
	w.mu.RUnlock()
	if registrationID == 0 {
		return "", w.fail(ErrNotSubmitted, "Kirim pendaftaran terlebih dahulu")
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	var status string
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return status, err
		}
		tx, err := w.api.PaymentStatus(ctx, registrationID)
		if err != nil {
			return status, w.fail(err, apiMessage(err, "Gagal memuat status pembayaran"))
		}

		status = tx.Status
		w.mu.Lock()
		w.state = stateForPayment(status)
		w.err = ""
		w.mu.Unlock()
		w.draft.SetPaymentStatus(status)

		if domain.IsTerminalPayment(status) {
			break
		}
	}
	return status, nil
}

func (w *Wizard) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

func (w *Wizard) SubmissionID() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.submissionID
}

func (w *Wizard) RegistrationID() int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.registrationID
}

func (w *Wizard) Token() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.token
}

func (w *Wizard) RedirectURL() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.redirectURL
}

func (w *Wizard) LastCallback() *GatewayEvent {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.lastCallback == nil {
		return nil
	}
	ev := *w.lastCallback
	return &ev
}

func (w *Wizard) Error() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.err
}
