package domain

import (
	"context"
	"time"
)

const (
	EnrollmentActive    = "ACTIVE"
	EnrollmentCompleted = "COMPLETED"
)

type Enrollment struct {
	ID                int64     `json:"id"`
	ItemID            int64     `json:"item_id"`
	ItemSlug          string    `json:"item_slug"`
	UserID            string    `json:"user_id"`
	Status            string    `json:"status"`
	CompletedSessions []string  `json:"completed_sessions"`
	ProgressPercent   int       `json:"progress_percent"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type EnrollmentRepository interface {
	Create(ctx context.Context, e *Enrollment) error
	Get(ctx context.Context, userID string, itemID int64) (*Enrollment, error)
	ListByUser(ctx context.Context, userID string) ([]Enrollment, error)
	UpdateProgress(ctx context.Context, e *Enrollment) error
}

type EnrollmentUsecase interface {
	Enroll(ctx context.Context, userID, slug string) (*Enrollment, error)
	GetProgress(ctx context.Context, userID, slug string) (*Enrollment, error)
	UpdateProgress(ctx context.Context, userID, slug string, completed []string) (*Enrollment, error)
	ListMine(ctx context.Context, userID string) ([]Enrollment, error)
}
