package usecase_test

import (
	"context"
	"encoding/json"
	"time"

	"go-rise-platform/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}
func (m *MockUserRepo) UpdateRole(ctx context.Context, id, role string) error {
	return m.Called(ctx, id, role).Error(0)
}
func (m *MockUserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

type MockTokens struct {
	mock.Mock
}

func (m *MockTokens) Issue(userID, email, role string) (string, time.Time, error) {
	args := m.Called(userID, email, role)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type MockRevoker struct {
	mock.Mock
}

func (m *MockRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	return m.Called(ctx, tokenID, until).Error(0)
}

type MockGuard struct {
	mock.Mock
}

func (m *MockGuard) IsBlocked(ctx context.Context, email, ip string) (bool, error) {
	args := m.Called(ctx, email, ip)
	return args.Bool(0), args.Error(1)
}
func (m *MockGuard) RecordFailedAttempt(ctx context.Context, email, ip, ua, reqID string) (bool, int, error) {
	args := m.Called(ctx, email, ip, ua, reqID)
	return args.Bool(0), args.Int(1), args.Error(2)
}
func (m *MockGuard) ClearAttempts(ctx context.Context, email, ip string) error {
	return m.Called(ctx, email, ip).Error(0)
}

type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) Create(ctx context.Context, job *domain.Job) error {
	return m.Called(ctx, job).Error(0)
}
func (m *MockJobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}
func (m *MockJobRepo) Fetch(ctx context.Context, filter domain.JobFilter) ([]domain.Job, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Job), args.Get(1).(int64), args.Error(2)
}
func (m *MockJobRepo) Search(ctx context.Context, term string, limit int) ([]domain.Job, error) {
	args := m.Called(ctx, term, limit)
	return args.Get(0).([]domain.Job), args.Error(1)
}
func (m *MockJobRepo) Update(ctx context.Context, job *domain.Job) error {
	return m.Called(ctx, job).Error(0)
}
func (m *MockJobRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockCatalogRepo struct {
	mock.Mock
}

func (m *MockCatalogRepo) List(ctx context.Context, kind domain.CatalogKind) ([]domain.CatalogItem, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).([]domain.CatalogItem), args.Error(1)
}
func (m *MockCatalogRepo) GetBySlug(ctx context.Context, kind domain.CatalogKind, slug string) (*domain.CatalogItem, error) {
	args := m.Called(ctx, kind, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CatalogItem), args.Error(1)
}
func (m *MockCatalogRepo) Upsert(ctx context.Context, item *domain.CatalogItem) error {
	return m.Called(ctx, item).Error(0)
}
func (m *MockCatalogRepo) Delete(ctx context.Context, kind domain.CatalogKind, slug string) error {
	return m.Called(ctx, kind, slug).Error(0)
}

type MockEnrollmentRepo struct {
	mock.Mock
}

func (m *MockEnrollmentRepo) Create(ctx context.Context, e *domain.Enrollment) error {
	return m.Called(ctx, e).Error(0)
}
func (m *MockEnrollmentRepo) Get(ctx context.Context, userID string, itemID int64) (*domain.Enrollment, error) {
	args := m.Called(ctx, userID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Enrollment), args.Error(1)
}
func (m *MockEnrollmentRepo) ListByUser(ctx context.Context, userID string) ([]domain.Enrollment, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Enrollment), args.Error(1)
}
func (m *MockEnrollmentRepo) UpdateProgress(ctx context.Context, e *domain.Enrollment) error {
	return m.Called(ctx, e).Error(0)
}

type MockUploadRepo struct {
	mock.Mock
}

func (m *MockUploadRepo) Create(ctx context.Context, upload *domain.Upload) error {
	return m.Called(ctx, upload).Error(0)
}
func (m *MockUploadRepo) GetByID(ctx context.Context, id string) (*domain.Upload, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Upload), args.Error(1)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, key, contentType, data)
	return args.String(0), args.Error(1)
}

type MockUploadLimiter struct {
	mock.Mock
}

func (m *MockUploadLimiter) AllowUpload(ctx context.Context, ip, userID string) (bool, int, error) {
	args := m.Called(ctx, ip, userID)
	return args.Bool(0), args.Int(1), args.Error(2)
}

type MockRegistrationRepo struct {
	mock.Mock
}

func (m *MockRegistrationRepo) Create(ctx context.Context, reg *domain.Registration) error {
	return m.Called(ctx, reg).Error(0)
}
func (m *MockRegistrationRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}
func (m *MockRegistrationRepo) GetByID(ctx context.Context, id int64) (*domain.Registration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}
func (m *MockRegistrationRepo) GetBySubmissionID(ctx context.Context, submissionID string) (*domain.Registration, error) {
	args := m.Called(ctx, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}
func (m *MockRegistrationRepo) List(ctx context.Context, filter domain.RegistrationFilter) ([]domain.Registration, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Registration), args.Get(1).(int64), args.Error(2)
}
func (m *MockRegistrationRepo) Stats(ctx context.Context) (*domain.RegistrationStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegistrationStats), args.Error(1)
}
func (m *MockRegistrationRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *MockRegistrationRepo) UpdatePayment(ctx context.Context, id int64, payment domain.PaymentInfo) error {
	return m.Called(ctx, id, payment).Error(0)
}
func (m *MockRegistrationRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Create(ctx context.Context, tx *domain.PaymentTransaction) error {
	return m.Called(ctx, tx).Error(0)
}
func (m *MockPaymentRepo) GetByID(ctx context.Context, id int64) (*domain.PaymentTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentTransaction), args.Error(1)
}
func (m *MockPaymentRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentTransaction, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentTransaction), args.Error(1)
}
func (m *MockPaymentRepo) GetLatestByRegistration(ctx context.Context, registrationID int64) (*domain.PaymentTransaction, error) {
	args := m.Called(ctx, registrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentTransaction), args.Error(1)
}
func (m *MockPaymentRepo) UpdateStatus(ctx context.Context, id int64, status string, payload json.RawMessage) error {
	return m.Called(ctx, id, status, payload).Error(0)
}
func (m *MockPaymentRepo) ListExpiredPending(ctx context.Context, now time.Time) ([]domain.PaymentTransaction, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.PaymentTransaction), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateTransaction(ctx context.Context, req domain.SnapRequest) (*domain.SnapResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SnapResponse), args.Error(1)
}
func (m *MockGateway) TransactionStatus(ctx context.Context, orderID string) (*domain.GatewayNotification, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GatewayNotification), args.Error(1)
}
func (m *MockGateway) VerifySignature(n domain.GatewayNotification) bool {
	return m.Called(n).Bool(0)
}
func (m *MockGateway) Widget() domain.WidgetConfig {
	return m.Called().Get(0).(domain.WidgetConfig)
}

// recordingPublisher hands published events to a channel so tests can wait on them.
type recordingPublisher struct {
	events chan string
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(chan string, 8)}
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, _ any) error {
	p.events <- subject
	return nil
}
