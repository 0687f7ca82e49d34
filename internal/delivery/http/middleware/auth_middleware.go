package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go-rise-platform/internal/delivery/http/response"
	"go-rise-platform/internal/domain"
	"go-rise-platform/pkg/auth"
	"go-rise-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

type TokenParser interface {
	Parse(tokenString string) (*auth.Claims, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) bool
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie("auth_token"); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware verifies the session token and reloads the user so the role
// always comes from the database, never from the token.
func AuthMiddleware(tokens TokenParser, revocations RevocationChecker, authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			logger.Log.Debug("Token validation failed", "error", err)
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		if revocations != nil && revocations.IsRevoked(c.Request.Context(), claims.ID) {
			response.Error(c, http.StatusUnauthorized, "Token has been revoked", nil)
			c.Abort()
			return
		}

		user, err := authUC.GetCurrentUser(c.Request.Context(), claims.Subject)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "User not found", nil)
			c.Abort()
			return
		}

		role := user.Role
		if role == "" {
			role = domain.RoleUser
		}
		var expiresAt time.Time
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}

		c.Set(string(domain.KeyUserID), user.ID)
		c.Set(string(domain.KeyUserEmail), user.Email)
		c.Set(string(domain.KeyUserRole), role)
		c.Set(string(domain.KeyTokenID), claims.ID)
		c.Set(string(domain.KeyTokenExp), expiresAt)

		ctx := context.WithValue(c.Request.Context(), domain.KeyUserID, user.ID)
		ctx = context.WithValue(ctx, domain.KeyUserRole, role)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(string(domain.KeyUserRole)) != role {
			response.Error(c, http.StatusForbidden, "Access forbidden: Admin privileges required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
