package domain

import (
	"context"
	"time"
)

type UploadKind string

const (
	UploadEssay        UploadKind = "essay"
	UploadHeadshot     UploadKind = "headshot"
	UploadPaymentProof UploadKind = "payment-proof"
)

func ParseUploadKind(s string) (UploadKind, bool) {
	switch UploadKind(s) {
	case UploadEssay, UploadHeadshot, UploadPaymentProof:
		return UploadKind(s), true
	}
	return "", false
}

type Upload struct {
	ID          string     `json:"id"`
	Kind        UploadKind `json:"kind"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"content_type"`
	Size        int64      `json:"size"`
	StorageKey  string     `json:"-"`
	URL         string     `json:"url"`
	UploaderIP  string     `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
}

type UploadInput struct {
	Kind     UploadKind
	Filename string
	Data     []byte
	ClientIP string
	UserID   string
}

// FileStorage persists uploaded bytes and returns a URL the frontend can show.
type FileStorage interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type UploadRepository interface {
	Create(ctx context.Context, upload *Upload) error
	GetByID(ctx context.Context, id string) (*Upload, error)
}

type UploadUsecase interface {
	Upload(ctx context.Context, in UploadInput) (*Upload, error)
}
