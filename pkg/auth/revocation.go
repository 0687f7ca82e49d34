package auth

import (
	"context"
	"time"

	"go-rise-platform/pkg/redis"
)

const revokedPrefix = "revoked:jwt:"

// RevocationList remembers logged-out token ids until they would have expired anyway.
// Without Redis, logout is purely client-side and revocation checks fail open.
type RevocationList struct{}

func NewRevocationList() *RevocationList {
	return &RevocationList{}
}

func (r *RevocationList) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	client := redis.Client()
	if client == nil || tokenID == "" {
		return nil
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return client.Set(ctx, revokedPrefix+tokenID, "1", ttl).Err()
}

func (r *RevocationList) IsRevoked(ctx context.Context, tokenID string) bool {
	client := redis.Client()
	if client == nil || tokenID == "" {
		return false
	}
	n, err := client.Exists(ctx, revokedPrefix+tokenID).Result()
	return err == nil && n > 0
}
