package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go-rise-platform/internal/domain"
	"go-rise-platform/internal/usecase"
	"go-rise-platform/pkg/apperror"
	"go-rise-platform/pkg/security"
	"go-rise-platform/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuth() (domain.AuthUsecase, *MockUserRepo, *MockTokens, *MockRevoker, *MockGuard) {
	users, tokens, revoker, guard := new(MockUserRepo), new(MockTokens), new(MockRevoker), new(MockGuard)
	return usecase.NewAuthUsecase(users, tokens, revoker, guard, validation.New()), users, tokens, revoker, guard
}

func TestAuthRegister(t *testing.T) {
	t.Run("Should hash the password and issue a token", func(t *testing.T) {
		uc, users, tokens, _, _ := newAuth()
		users.On("GetByEmail", mock.Anything, "siti@example.com").Return(nil, domain.ErrNotFound)
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Role == domain.RoleUser && u.PasswordHash != "rahasia123" && security.CheckPassword(u.PasswordHash, "rahasia123")
		})).Return(nil)
		tokens.On("Issue", mock.Anything, "siti@example.com", domain.RoleUser).Return("tok", time.Now().Add(time.Hour), nil)

		res, err := uc.Register(context.Background(), "Siti", " Siti@Example.com ", "rahasia123")
		require.NoError(t, err)
		assert.Equal(t, "tok", res.Token)
		assert.Greater(t, res.ExpiresIn, int64(3500))
	})

	t.Run("Should reject a duplicate email", func(t *testing.T) {
		uc, users, _, _, _ := newAuth()
		users.On("GetByEmail", mock.Anything, "siti@example.com").Return(&domain.User{ID: "u1"}, nil)

		_, err := uc.Register(context.Background(), "Siti", "siti@example.com", "rahasia123")
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
	})

	t.Run("Should reject a short password", func(t *testing.T) {
		uc, _, _, _, _ := newAuth()
		_, err := uc.Register(context.Background(), "Siti", "siti@example.com", "short")
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
		assert.Contains(t, err.Error(), "Minimal 8")
	})
}

func TestAuthLogin(t *testing.T) {
	hash, err := security.HashPassword("rahasia123")
	require.NoError(t, err)
	user := &domain.User{ID: "u1", Email: "siti@example.com", PasswordHash: hash, Role: domain.RoleUser}
	in := domain.LoginInput{Email: "siti@example.com", Password: "rahasia123", IP: "10.0.0.1"}

	t.Run("Should clear failed attempts on success", func(t *testing.T) {
		uc, users, tokens, _, guard := newAuth()
		guard.On("IsBlocked", mock.Anything, "siti@example.com", "10.0.0.1").Return(false, nil)
		users.On("GetByEmail", mock.Anything, "siti@example.com").Return(user, nil)
		guard.On("ClearAttempts", mock.Anything, "siti@example.com", "10.0.0.1").Return(nil)
		tokens.On("Issue", "u1", "siti@example.com", domain.RoleUser).Return("tok", time.Now().Add(time.Hour), nil)

		res, err := uc.Login(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, "u1", res.User.ID)
		guard.AssertExpectations(t)
	})

	t.Run("Should record a failed attempt on a wrong password", func(t *testing.T) {
		uc, users, _, _, guard := newAuth()
		guard.On("IsBlocked", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
		users.On("GetByEmail", mock.Anything, "siti@example.com").Return(user, nil)
		guard.On("RecordFailedAttempt", mock.Anything, "siti@example.com", "10.0.0.1", "", "").Return(false, 1, nil)

		bad := in
		bad.Password = "salah"
		_, err := uc.Login(context.Background(), bad)
		assert.Equal(t, http.StatusUnauthorized, apperror.CodeOf(err))
		guard.AssertCalled(t, "RecordFailedAttempt", mock.Anything, "siti@example.com", "10.0.0.1", "", "")
	})

	t.Run("Should answer 429 while blocked", func(t *testing.T) {
		uc, users, _, _, guard := newAuth()
		guard.On("IsBlocked", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

		_, err := uc.Login(context.Background(), in)
		assert.Equal(t, http.StatusTooManyRequests, apperror.CodeOf(err))
		users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	})

	t.Run("Should not reveal unknown emails", func(t *testing.T) {
		uc, users, _, _, guard := newAuth()
		guard.On("IsBlocked", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
		users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, domain.ErrNotFound)
		guard.On("RecordFailedAttempt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, 1, nil)

		_, err := uc.Login(context.Background(), domain.LoginInput{Email: "nobody@example.com", Password: "x"})
		assert.Equal(t, http.StatusUnauthorized, apperror.CodeOf(err))
		assert.Equal(t, "Email atau password salah", err.Error())
	})
}

func TestAuthChangePassword(t *testing.T) {
	hash, _ := security.HashPassword("rahasia123")
	uc, users, _, _, _ := newAuth()
	users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", PasswordHash: hash}, nil)
	users.On("UpdatePassword", mock.Anything, "u1", mock.AnythingOfType("string")).Return(nil)

	t.Run("Should reject a wrong current password", func(t *testing.T) {
		err := uc.ChangePassword(context.Background(), "u1", "salah", "passwordbaru")
		assert.Equal(t, "Password saat ini salah", err.Error())
	})

	t.Run("Should store a new hash", func(t *testing.T) {
		require.NoError(t, uc.ChangePassword(context.Background(), "u1", "rahasia123", "passwordbaru"))
		users.AssertCalled(t, "UpdatePassword", mock.Anything, "u1", mock.AnythingOfType("string"))
	})
}

func TestAuthAssignRole(t *testing.T) {
	uc, users, _, _, _ := newAuth()
	users.On("UpdateRole", mock.Anything, "u2", domain.RoleAdmin).Return(nil)
	users.On("UpdateRole", mock.Anything, "missing", domain.RoleAdmin).Return(domain.ErrNotFound)

	t.Run("Should fail when the caller is not an admin", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), domain.KeyUserRole, domain.RoleUser)
		err := uc.AssignRole(ctx, "u2", "ADMIN")
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})

	t.Run("Should fail safely when the role is missing from context", func(t *testing.T) {
		err := uc.AssignRole(context.Background(), "u2", "ADMIN")
		assert.Contains(t, err.Error(), "Only admins")
	})

	admin := context.WithValue(context.Background(), domain.KeyUserRole, domain.RoleAdmin)
	t.Run("Should reject unknown roles", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(uc.AssignRole(admin, "u2", "OWNER")))
	})
	t.Run("Should assign a role", func(t *testing.T) {
		assert.NoError(t, uc.AssignRole(admin, "u2", "admin"))
	})
	t.Run("Should map a missing user to 404", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(uc.AssignRole(admin, "missing", "ADMIN")))
	})
}

func TestAuthListUsers(t *testing.T) {
	uc, users, _, _, _ := newAuth()
	users.On("List", mock.Anything, 100, 100).Return([]domain.User{}, int64(150), nil)

	_, total, err := uc.ListUsers(context.Background(), 2, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(150), total)
}

func TestJobUsecase(t *testing.T) {
	t.Run("Should list active jobs with default paging", func(t *testing.T) {
		repo := new(MockJobRepo)
		repo.On("Fetch", mock.Anything, domain.JobFilter{Search: "go", Status: domain.JobStatusActive, Limit: 12, Offset: 12}).
			Return([]domain.Job{{ID: 1}}, int64(13), nil)

		jobs, total, err := usecase.NewJobUsecase(repo).ListJobs(context.Background(), "go", "", 2, 0)
		require.NoError(t, err)
		assert.Len(t, jobs, 1)
		assert.Equal(t, int64(13), total)
	})

	t.Run("Should skip the repository for blank search terms", func(t *testing.T) {
		repo := new(MockJobRepo)
		jobs, err := usecase.NewJobUsecase(repo).SearchJobs(context.Background(), "   ")
		require.NoError(t, err)
		assert.Empty(t, jobs)
		repo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should cap search results", func(t *testing.T) {
		repo := new(MockJobRepo)
		repo.On("Search", mock.Anything, "golang", 50).Return([]domain.Job{}, nil)
		_, err := usecase.NewJobUsecase(repo).SearchJobs(context.Background(), "golang")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Should derive slugs and defaults on create", func(t *testing.T) {
		repo := new(MockJobRepo)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		job := &domain.Job{Title: "Senior Go Engineer", Company: domain.Company{Name: "Acme, Inc."}}

		require.NoError(t, usecase.NewJobUsecase(repo).CreateJob(context.Background(), job))
		assert.Equal(t, "acme-inc", job.Company.Slug)
		assert.Equal(t, "senior-go-engineer", job.Slug)
		assert.Equal(t, "FULL_TIME", job.EmploymentType)
		assert.Equal(t, "IDR", job.Currency)
		assert.NotNil(t, job.Skills)
		assert.False(t, job.PostedAt.IsZero())
	})

	t.Run("Should reject an inverted salary range", func(t *testing.T) {
		job := &domain.Job{Title: "x", Company: domain.Company{Name: "y"}, SalaryMin: 10, SalaryMax: 5}
		err := usecase.NewJobUsecase(new(MockJobRepo)).CreateJob(context.Background(), job)
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("Should keep the original posting date on update", func(t *testing.T) {
		posted := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
		repo := new(MockJobRepo)
		repo.On("GetByID", mock.Anything, int64(7)).Return(&domain.Job{ID: 7, PostedAt: posted, CreatedAt: posted}, nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)

		job := &domain.Job{ID: 7, Title: "x", Company: domain.Company{Name: "y"}}
		require.NoError(t, usecase.NewJobUsecase(repo).UpdateJob(context.Background(), job))
		assert.Equal(t, posted, job.PostedAt)
	})

	t.Run("Should map missing jobs to 404", func(t *testing.T) {
		repo := new(MockJobRepo)
		repo.On("GetByID", mock.Anything, int64(9)).Return(nil, domain.ErrNotFound)
		repo.On("Delete", mock.Anything, int64(9)).Return(domain.ErrNotFound)
		uc := usecase.NewJobUsecase(repo)

		_, err := uc.GetJob(context.Background(), 9)
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(uc.DeleteJob(context.Background(), 9)))
	})

	t.Run("Should hide repository failures behind a 500", func(t *testing.T) {
		repo := new(MockJobRepo)
		repo.On("GetByID", mock.Anything, int64(1)).Return(nil, errors.New("connection reset"))
		_, err := usecase.NewJobUsecase(repo).GetJob(context.Background(), 1)
		assert.Equal(t, http.StatusInternalServerError, apperror.CodeOf(err))
		assert.Equal(t, "Internal Server Error", err.Error())
	})
}

func TestCatalogUsecase(t *testing.T) {
	t.Run("Should serve details from cache until a write", func(t *testing.T) {
		repo := new(MockCatalogRepo)
		item := &domain.CatalogItem{ID: 1, Kind: domain.KindBootcamp, Slug: "data", Title: "Data"}
		repo.On("GetBySlug", mock.Anything, domain.KindBootcamp, "data").Return(item, nil)
		repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		uc := usecase.NewCatalogUsecase(repo, time.Minute)

		for i := 0; i < 3; i++ {
			got, err := uc.Get(context.Background(), domain.KindBootcamp, "data")
			require.NoError(t, err)
			assert.Equal(t, "Data", got.Title)
		}
		repo.AssertNumberOfCalls(t, "GetBySlug", 1)

		require.NoError(t, uc.Upsert(context.Background(), &domain.CatalogItem{Kind: domain.KindBootcamp, Slug: "data", Title: "Data"}))
		_, err := uc.Get(context.Background(), domain.KindBootcamp, "data")
		require.NoError(t, err)
		repo.AssertNumberOfCalls(t, "GetBySlug", 2)
	})

	t.Run("Should name the kind in 404s", func(t *testing.T) {
		repo := new(MockCatalogRepo)
		repo.On("GetBySlug", mock.Anything, domain.KindAcademy, "nope").Return(nil, domain.ErrNotFound)
		_, err := usecase.NewCatalogUsecase(repo, time.Minute).Get(context.Background(), domain.KindAcademy, "nope")
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
		assert.Equal(t, "Academy not found", err.Error())
	})

	t.Run("Should derive a slug and defaults on upsert", func(t *testing.T) {
		repo := new(MockCatalogRepo)
		repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		item := &domain.CatalogItem{Kind: domain.KindCourse, Title: "Intro to SQL"}

		require.NoError(t, usecase.NewCatalogUsecase(repo, time.Minute).Upsert(context.Background(), item))
		assert.Equal(t, "intro-to-sql", item.Slug)
		assert.Equal(t, domain.CatalogPublished, item.Status)
		assert.Equal(t, "IDR", item.Pricing.Currency)
		assert.NotNil(t, item.FAQ)
	})

	t.Run("Should reject out of range ratings", func(t *testing.T) {
		err := usecase.NewCatalogUsecase(new(MockCatalogRepo), time.Minute).
			Upsert(context.Background(), &domain.CatalogItem{Kind: domain.KindCourse, Title: "x", Rating: 6})
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})
}

func TestHealthUsecase(t *testing.T) {
	uc := usecase.NewHealthUsecase(map[string]usecase.HealthCheck{
		"database": func(context.Context) error { return nil },
		"redis":    nil,
		"storage":  func(context.Context) error { return errors.New("bucket missing") },
	})

	report := uc.Check(context.Background())
	assert.Equal(t, "degraded", report.Status)
	assert.Equal(t, "ok", report.Checks["database"])
	assert.Equal(t, "disabled", report.Checks["redis"])
	assert.Equal(t, "error: bucket missing", report.Checks["storage"])

	assert.Equal(t, "ok", usecase.NewHealthUsecase(nil).Check(context.Background()).Status)
}
