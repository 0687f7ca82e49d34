package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-rise-platform/config"
	v1 "go-rise-platform/internal/delivery/http/v1"
	"go-rise-platform/internal/domain"
	"go-rise-platform/internal/usecase"
	"go-rise-platform/pkg/apperror"
	"go-rise-platform/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Mocks embed the usecase interface so only the methods a test exercises need a body.

type mockAuthUC struct {
	domain.AuthUsecase
	mock.Mock
}

func (m *mockAuthUC) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockAuthUC) Login(ctx context.Context, in domain.LoginInput) (*domain.AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *mockAuthUC) ListUsers(ctx context.Context, page, pageSize int) ([]domain.User, int64, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

type mockJobUC struct {
	domain.JobUsecase
	mock.Mock
}

func (m *mockJobUC) ListJobs(ctx context.Context, search, location string, page, pageSize int) ([]domain.Job, int64, error) {
	args := m.Called(ctx, search, location, page, pageSize)
	return args.Get(0).([]domain.Job), args.Get(1).(int64), args.Error(2)
}

func (m *mockJobUC) CreateJob(ctx context.Context, job *domain.Job) error {
	return m.Called(ctx, job).Error(0)
}

type mockCatalogUC struct {
	domain.CatalogUsecase
	mock.Mock
}

func (m *mockCatalogUC) List(ctx context.Context, kind domain.CatalogKind) ([]domain.CatalogItem, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).([]domain.CatalogItem), args.Error(1)
}

func (m *mockCatalogUC) Get(ctx context.Context, kind domain.CatalogKind, slug string) (*domain.CatalogItem, error) {
	args := m.Called(ctx, kind, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CatalogItem), args.Error(1)
}

type mockEnrollmentUC struct {
	domain.EnrollmentUsecase
	mock.Mock
}

func (m *mockEnrollmentUC) Enroll(ctx context.Context, userID, slug string) (*domain.Enrollment, error) {
	args := m.Called(ctx, userID, slug)
	return args.Get(0).(*domain.Enrollment), args.Error(1)
}

type mockUploadUC struct {
	mock.Mock
}

func (m *mockUploadUC) Upload(ctx context.Context, in domain.UploadInput) (*domain.Upload, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Upload), args.Error(1)
}

type mockRegistrationUC struct {
	domain.RegistrationUsecase
	mock.Mock
}

func (m *mockRegistrationUC) CheckEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockRegistrationUC) Submit(ctx context.Context, in domain.RegistrationInput, forcedType string) (*domain.SubmissionResult, error) {
	args := m.Called(ctx, in, forcedType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubmissionResult), args.Error(1)
}

func (m *mockRegistrationUC) Export(ctx context.Context, filter domain.RegistrationFilter) ([]byte, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]byte), args.Error(1)
}

type mockPaymentUC struct {
	domain.PaymentUsecase
	mock.Mock
}

func (m *mockPaymentUC) WidgetConfig(context.Context) domain.WidgetConfig {
	return domain.WidgetConfig{ScriptURL: "https://app.sandbox.midtrans.com/snap/snap.js", ContainerID: domain.SnapContainerID, Mode: "SANDBOX"}
}

func (m *mockPaymentUC) HandleNotification(ctx context.Context, n domain.GatewayNotification) error {
	return m.Called(ctx, n).Error(0)
}

type stubTokens struct{}

func (stubTokens) Parse(token string) (*auth.Claims, error) {
	switch token {
	case "admin-token":
		return &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{ID: "t-admin", Subject: "admin-1"}}, nil
	case "user-token":
		return &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{ID: "t-user", Subject: "user-1"}}, nil
	}
	return nil, errors.New("invalid token")
}

type fixture struct {
	router       *gin.Engine
	auth         *mockAuthUC
	jobs         *mockJobUC
	catalog      *mockCatalogUC
	enrollment   *mockEnrollmentUC
	uploads      *mockUploadUC
	registration *mockRegistrationUC
	payments     *mockPaymentUC
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		auth:         new(mockAuthUC),
		jobs:         new(mockJobUC),
		catalog:      new(mockCatalogUC),
		enrollment:   new(mockEnrollmentUC),
		uploads:      new(mockUploadUC),
		registration: new(mockRegistrationUC),
		payments:     new(mockPaymentUC),
	}
	f.auth.On("GetCurrentUser", mock.Anything, "admin-1").Return(&domain.User{ID: "admin-1", Role: domain.RoleAdmin}, nil).Maybe()
	f.auth.On("GetCurrentUser", mock.Anything, "user-1").Return(&domain.User{ID: "user-1", Role: domain.RoleUser}, nil).Maybe()

	f.router = v1.NewRouter(v1.RouterDeps{
		AuthUC:         f.auth,
		JobUC:          f.jobs,
		CatalogUC:      f.catalog,
		EnrollmentUC:   f.enrollment,
		UploadUC:       f.uploads,
		RegistrationUC: f.registration,
		PaymentUC:      f.payments,
		HealthUC: usecase.NewHealthUsecase(map[string]usecase.HealthCheck{
			"database": func(context.Context) error { return nil },
		}),
		Tokens: stubTokens{},
		Config: &config.Config{
			FrontendURL:              "http://localhost:3000",
			RateLimitWindowSeconds:   60,
			RateLimitGlobalThreshold: 10000,
			RateLimitLoginThreshold:  10000,
			RateLimitUploadThreshold: 10000,
			UploadMaxBytes:           1 << 20,
			UploadDir:                t.TempDir(),
		},
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path, token string, body []byte, contentType string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w, env := f.do(t, http.MethodGet, "/v1/health", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"database":"ok"`)
}

func TestJobHandler(t *testing.T) {
	f := newFixture(t)

	t.Run("Should list active jobs with the clamped page", func(t *testing.T) {
		f.jobs.On("ListJobs", mock.Anything, "golang", "Jakarta", 2, 100).
			Return([]domain.Job{{ID: 1, Title: "Go Engineer"}}, int64(101), nil).Once()

		w, env := f.do(t, http.MethodGet, "/v1/jobs?search=golang&location=Jakarta&page=2&page_size=500", "", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var data v1.JobListResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, int64(101), data.Total)
		assert.Equal(t, 100, data.PageSize)
		assert.Len(t, data.Jobs, 1)
	})

	t.Run("Should reject a non numeric id", func(t *testing.T) {
		w, _ := f.do(t, http.MethodGet, "/v1/jobs/abc", "", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should require a token to create", func(t *testing.T) {
		w, _ := f.do(t, http.MethodPost, "/v1/jobs", "", []byte(`{}`), "application/json")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should forbid non admins", func(t *testing.T) {
		w, env := f.do(t, http.MethodPost, "/v1/jobs", "user-token", []byte(`{}`), "application/json")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Access forbidden: Admin privileges required", env.Message)
	})

	t.Run("Should create as admin", func(t *testing.T) {
		f.jobs.On("CreateJob", mock.Anything, mock.MatchedBy(func(j *domain.Job) bool {
			return j.Title == "Data Analyst" && j.ID == 0
		})).Return(nil).Once()

		w, _ := f.do(t, http.MethodPost, "/v1/jobs", "admin-token", []byte(`{"id":99,"title":"Data Analyst"}`), "application/json")
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	f.jobs.AssertExpectations(t)
}

func TestCatalogHandler(t *testing.T) {
	f := newFixture(t)
	f.catalog.On("List", mock.Anything, domain.KindBootcamp).Return([]domain.CatalogItem{{Slug: "data-science"}}, nil).Once()
	f.catalog.On("Get", mock.Anything, domain.KindCourse, "missing").Return(nil, apperror.NotFound("Course not found")).Once()

	w, env := f.do(t, http.MethodGet, "/v1/bootcamps", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "data-science")

	w, env = f.do(t, http.MethodGet, "/v1/courses/missing", "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Course not found", env.Message)

	w, _ = f.do(t, http.MethodPut, "/v1/admin/catalog/workshops/x", "admin-token", []byte(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.catalog.AssertExpectations(t)
}

func TestEnrollmentHandler(t *testing.T) {
	f := newFixture(t)
	f.enrollment.On("Enroll", mock.Anything, "user-1", "leadership").
		Return(&domain.Enrollment{ItemSlug: "leadership", UserID: "user-1", Status: domain.EnrollmentActive}, nil).Once()

	w, env := f.do(t, http.MethodPost, "/v1/programs/leadership/enroll", "user-token", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"status":"ACTIVE"`)
	f.enrollment.AssertExpectations(t)
}

func TestUploadHandler(t *testing.T) {
	f := newFixture(t)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "essay.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, mw.Close())

	f.uploads.On("Upload", mock.Anything, mock.MatchedBy(func(in domain.UploadInput) bool {
		return in.Kind == domain.UploadEssay && in.Filename == "essay.pdf" && string(in.Data) == "%PDF-1.4 test"
	})).Return(&domain.Upload{ID: "u-1", Kind: domain.UploadEssay, URL: "http://localhost:8080/files/essay/u-1.pdf"}, nil).Once()

	w, env := f.do(t, http.MethodPost, "/v1/uploads/essay", "", body.Bytes(), mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, w.Code)

	var data v1.UploadResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "u-1", data.ID)
	assert.Equal(t, domain.UploadEssay, data.Kind)

	w, _ = f.do(t, http.MethodPost, "/v1/uploads/avatar", "", body.Bytes(), mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = f.do(t, http.MethodPost, "/v1/uploads/essay", "", []byte(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File wajib diunggah pada field 'file'", env.Message)

	f.uploads.AssertExpectations(t)
}

func TestUploadHandler_ShouldReportSizeForOversizedBody(t *testing.T) {
	f := newFixture(t)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "essay.pdf")
	require.NoError(t, err)
	_, _ = part.Write(bytes.Repeat([]byte("a"), 3<<20))
	require.NoError(t, mw.Close())

	w, env := f.do(t, http.MethodPost, "/v1/uploads/essay", "", body.Bytes(), mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Ukuran file maksimal 1 MB", env.Message)
	f.uploads.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestRegistrationHandler(t *testing.T) {
	f := newFixture(t)

	t.Run("Should report email existence", func(t *testing.T) {
		f.registration.On("CheckEmail", mock.Anything, "siti@example.com").Return(true, nil).Once()
		_, env := f.do(t, http.MethodGet, "/v1/registrations/check-email/siti@example.com", "", nil, "")
		assert.JSONEq(t, `{"email_exists":true}`, string(env.Data))
	})

	t.Run("Should force the branch on typed routes", func(t *testing.T) {
		f.registration.On("Submit", mock.Anything, mock.Anything, domain.ScholarshipSelfFunded).
			Return(&domain.SubmissionResult{SubmissionID: "s-1", RegistrationID: 7, Status: domain.RegistrationPending}, nil).Once()

		w, env := f.do(t, http.MethodPost, "/v1/registrations/self-funded", "", []byte(`{"step1":{"full_name":"Siti"}}`), "application/json")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, string(env.Data), `"submission_id":"s-1"`)
	})

	t.Run("Should surface conflicts", func(t *testing.T) {
		f.registration.On("Submit", mock.Anything, mock.Anything, "").
			Return(nil, apperror.Conflict("Email sudah terdaftar untuk RYLS")).Once()

		w, env := f.do(t, http.MethodPost, "/v1/registrations", "", []byte(`{}`), "application/json")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Email sudah terdaftar untuk RYLS", env.Message)
	})

	t.Run("Should export an attachment", func(t *testing.T) {
		f.registration.On("Export", mock.Anything, mock.MatchedBy(func(fl domain.RegistrationFilter) bool {
			return fl.Status == "APPROVED"
		})).Return([]byte("PK"), nil).Once()

		w, _ := f.do(t, http.MethodGet, "/v1/admin/registrations/export?status=APPROVED", "admin-token", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=\"ryls-registrations-")
		assert.Equal(t, "PK", w.Body.String())
	})

	f.registration.AssertExpectations(t)
}

func TestPaymentHandler(t *testing.T) {
	f := newFixture(t)

	_, env := f.do(t, http.MethodGet, "/v1/payments/ryls/config", "", nil, "")
	assert.Contains(t, string(env.Data), `"container_id":"snap-container"`)

	w, _ := f.do(t, http.MethodGet, "/v1/payments/ryls/abc/status", "", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.payments.On("HandleNotification", mock.Anything, mock.MatchedBy(func(n domain.GatewayNotification) bool {
		return n.OrderID == "RYLS-1" && n.TransactionStatus == "settlement"
	})).Return(apperror.Forbidden("Invalid signature")).Once()

	w, env = f.do(t, http.MethodPost, "/v1/payments/ryls/notifications", "",
		[]byte(`{"order_id":"RYLS-1","transaction_status":"settlement","signature_key":"bad"}`), "application/json")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Invalid signature", env.Message)

	f.payments.AssertExpectations(t)
}

func TestAuthHandler(t *testing.T) {
	f := newFixture(t)

	f.auth.On("Login", mock.Anything, mock.MatchedBy(func(in domain.LoginInput) bool {
		return in.Email == "a@b.co" && in.IP != "" && in.RequestID != ""
	})).Return(&domain.AuthResult{Token: "jwt", ExpiresIn: int64(time.Hour.Seconds())}, nil).Once()

	w, env := f.do(t, http.MethodPost, "/v1/auth/login", "", []byte(`{"email":"a@b.co","password":"secret123"}`), "application/json")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"token":"jwt"`)

	w, _ = f.do(t, http.MethodPost, "/v1/auth/login", "", []byte(`{"email":""}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, http.MethodGet, "/v1/auth/profile", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = f.do(t, http.MethodGet, "/v1/auth/profile", "user-token", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"id":"user-1"`)
}

func TestAdminUsers(t *testing.T) {
	f := newFixture(t)
	f.auth.On("ListUsers", mock.Anything, 1, 20).Return([]domain.User{{ID: "user-1"}}, int64(1), nil).Once()

	w, env := f.do(t, http.MethodGet, "/v1/admin/users", "admin-token", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"page_size":20`)
	f.auth.AssertExpectations(t)
}
