package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-rise-platform/internal/domain"
	"go-rise-platform/pkg/apperror"
	"go-rise-platform/pkg/logger"
	"go-rise-platform/pkg/security"
	"go-rise-platform/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const invalidCredentials = "Email atau password salah"

type authUsecase struct {
	userRepo domain.UserRepository
	tokens   TokenIssuer
	revoker  TokenRevoker
	guard    LoginGuard
	validate *validator.Validate
}

func NewAuthUsecase(userRepo domain.UserRepository, tokens TokenIssuer, revoker TokenRevoker, guard LoginGuard, validate *validator.Validate) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo, tokens: tokens, revoker: revoker, guard: guard, validate: validate}
}

type registerInput struct {
	Name     string `validate:"required,min=2,max=120"`
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=8,max=72"`
}

type passwordInput struct {
	NewPassword string `validate:"required,min=8,max=72"`
}

func (u *authUsecase) Register(ctx context.Context, name, email, password string) (*domain.AuthResult, error) {
	in := registerInput{Name: strings.TrimSpace(name), Email: strings.ToLower(strings.TrimSpace(email)), Password: password}
	if err := u.validate.Struct(in); err != nil {
		return nil, apperror.BadRequest(validation.FirstMessage(err))
	}

	if _, err := u.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperror.Conflict("Email sudah terdaftar")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.Conflict("Email sudah terdaftar")
		}
		return nil, apperror.Internal(err)
	}

	logger.Log.Info("User registered", "user_id", user.ID)
	return u.issue(user)
}

func (u *authUsecase) Login(ctx context.Context, in domain.LoginInput) (*domain.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, apperror.BadRequest("Email dan password wajib diisi")
	}

	blocked, err := u.guard.IsBlocked(ctx, email, in.IP)
	if err != nil {
		logger.Log.Warn("Login block check failed", "error", err)
	}
	if blocked {
		return nil, apperror.TooManyRequests("Terlalu banyak percobaan login. Coba lagi nanti.")
	}

	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}
	if user == nil || !security.CheckPassword(user.PasswordHash, in.Password) {
		nowBlocked, _, trackErr := u.guard.RecordFailedAttempt(ctx, email, in.IP, in.UserAgent, in.RequestID)
		if trackErr != nil {
			logger.Log.Warn("Failed to record login attempt", "error", trackErr)
		}
		if nowBlocked {
			return nil, apperror.TooManyRequests("Terlalu banyak percobaan login. Coba lagi nanti.")
		}
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	if err := u.guard.ClearAttempts(ctx, email, in.IP); err != nil {
		logger.Log.Warn("Failed to clear login attempts", "error", err)
	}
	return u.issue(user)
}

func (u *authUsecase) issue(user *domain.User) (*domain.AuthResult, error) {
	token, expiresAt, err := u.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.AuthResult{
		User:      user,
		Token:     token,
		ExpiresIn: int64(time.Until(expiresAt).Seconds()),
	}, nil
}

func (u *authUsecase) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if err := u.revoker.Revoke(ctx, tokenID, expiresAt); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	return user, nil
}

func (u *authUsecase) UpdateProfile(ctx context.Context, id, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 || len(name) > 120 {
		return nil, apperror.BadRequest("Nama: Minimal 2 karakter, maksimal 120 karakter")
	}

	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	user.Name = name
	user.UpdatedAt = time.Now()
	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	return user, nil
}

func (u *authUsecase) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	if err := u.validate.Struct(passwordInput{NewPassword: newPassword}); err != nil {
		return apperror.BadRequest(validation.FirstMessage(err))
	}

	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "User not found")
	}
	if !security.CheckPassword(user.PasswordHash, currentPassword) {
		return apperror.BadRequest("Password saat ini salah")
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return apperror.Internal(err)
	}
	if err := u.userRepo.UpdatePassword(ctx, id, hash); err != nil {
		return notFoundOr(err, "User not found")
	}
	return nil
}

func (u *authUsecase) ListUsers(ctx context.Context, page, pageSize int) ([]domain.User, int64, error) {
	page, pageSize = normalizePage(page, pageSize, 20, 100)
	users, total, err := u.userRepo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return users, total, nil
}

func (u *authUsecase) AssignRole(ctx context.Context, userID, role string) error {
	ctxRole, ok := ctx.Value(domain.KeyUserRole).(string)
	if !ok || ctxRole != domain.RoleAdmin {
		return apperror.Forbidden("Only admins can assign roles")
	}

	role = strings.ToUpper(strings.TrimSpace(role))
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return apperror.BadRequest("Role must be USER or ADMIN")
	}

	if err := u.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return notFoundOr(err, "User not found")
	}
	logger.Log.Info("Role assigned", "user_id", userID, "role", role)
	return nil
}
