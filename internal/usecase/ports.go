package usecase

import (
	"context"
	"errors"
	"time"

	"go-rise-platform/internal/domain"
	"go-rise-platform/pkg/apperror"
)

// LoginGuard tracks failed logins and blocks brute force attempts.
type LoginGuard interface {
	IsBlocked(ctx context.Context, email, ip string) (bool, error)
	RecordFailedAttempt(ctx context.Context, email, ip, userAgent, requestID string) (bool, int, error)
	ClearAttempts(ctx context.Context, email, ip string) error
}

type TokenIssuer interface {
	Issue(userID, email, role string) (string, time.Time, error)
}

type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
}

type UploadLimiter interface {
	AllowUpload(ctx context.Context, ip, userID string) (bool, int, error)
}

// notFoundOr maps domain.ErrNotFound to a 404 with msg and anything else to a 500.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.NotFound(msg)
	}
	return apperror.Internal(err)
}

// normalizePage clamps page to >= 1 and size to [1, max], using def when size <= 0.
func normalizePage(page, size, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = def
	}
	if size > max {
		size = max
	}
	return page, size
}
