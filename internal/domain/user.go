package domain

import (
	"context"
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthResult is what login and register hand back to the client.
type AuthResult struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type LoginInput struct {
	Email     string
	Password  string
	IP        string
	UserAgent string
	RequestID string
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateRole(ctx context.Context, id, role string) error
	List(ctx context.Context, limit, offset int) ([]User, int64, error)
}

type AuthUsecase interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	GetCurrentUser(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, id, name string) (*User, error)
	ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error
	ListUsers(ctx context.Context, page, pageSize int) ([]User, int64, error)
	AssignRole(ctx context.Context, userID, role string) error
}
