package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go-rise-platform/internal/domain"
	"go-rise-platform/internal/metrics"
	"go-rise-platform/pkg/apperror"
	"go-rise-platform/pkg/logger"
	"go-rise-platform/pkg/security"
	"go-rise-platform/pkg/security/antivirus"

	"github.com/google/uuid"
)

type uploadUsecase struct {
	repo     domain.UploadRepository
	storage  domain.FileStorage
	scanner  antivirus.Scanner
	limiter  UploadLimiter
	audit    *security.SecurityLogger
	maxBytes int64
}

func NewUploadUsecase(repo domain.UploadRepository, storage domain.FileStorage, scanner antivirus.Scanner, limiter UploadLimiter, audit *security.SecurityLogger, maxBytes int64) domain.UploadUsecase {
	if scanner == nil {
		scanner = antivirus.NewNoOpScanner()
	}
	if audit == nil {
		audit = security.DefaultLogger()
	}
	return &uploadUsecase{repo: repo, storage: storage, scanner: scanner, limiter: limiter, audit: audit, maxBytes: maxBytes}
}

func policyFor(kind domain.UploadKind) (security.FilePolicy, string) {
	switch kind {
	case domain.UploadEssay:
		return security.PDFPolicy, "File esai harus berformat PDF"
	case domain.UploadHeadshot:
		return security.ImagePolicy, "Foto harus berformat JPG atau PNG"
	default:
		return security.ProofPolicy, "Bukti pembayaran harus berformat PDF, JPG, atau PNG"
	}
}

func (u *uploadUsecase) reject(ctx context.Context, in domain.UploadInput, reason string, err error) error {
	metrics.UploadsTotal.WithLabelValues(string(in.Kind), "rejected").Inc()
	u.audit.LogUploadRejected(ctx, in.ClientIP, string(in.Kind), reason)
	return err
}

func (u *uploadUsecase) Upload(ctx context.Context, in domain.UploadInput) (*domain.Upload, error) {
	if _, ok := domain.ParseUploadKind(string(in.Kind)); !ok {
		return nil, apperror.BadRequest("Unknown upload kind")
	}

	if u.limiter != nil {
		allowed, retryAfter, err := u.limiter.AllowUpload(ctx, in.ClientIP, in.UserID)
		if err != nil {
			logger.Log.Warn("Upload rate limit check failed", "error", err)
		}
		if !allowed {
			return nil, u.reject(ctx, in, "rate_limited",
				apperror.TooManyRequests(fmt.Sprintf("Terlalu banyak upload. Coba lagi dalam %d detik.", retryAfter)))
		}
	}

	policy, typeMsg := policyFor(in.Kind)
	result := security.ValidateFile(in.Filename, in.Data, policy.WithMaxBytes(u.maxBytes))
	if !result.Valid {
		msg := typeMsg
		if result.Error == "file exceeds maximum size" {
			msg = fmt.Sprintf("Ukuran file maksimal %d MB", u.maxBytes>>20)
		} else if result.Error == "file is empty" {
			msg = "File kosong"
		}
		return nil, u.reject(ctx, in, result.Error, apperror.BadRequest(msg))
	}

	scan := u.scanner.Scan(ctx, in.Filename, in.Data)
	if scan.Rejected() {
		if scan.Error != nil {
			logger.Log.Error("Antivirus scan failed", "scanner", scan.ScannerName, "error", scan.Error)
		}
		return nil, u.reject(ctx, in, "malware:"+scan.ThreatName,
			apperror.Unprocessable("File ditolak oleh pemindai keamanan"))
	}

	data := in.Data
	contentType := result.DetectedMIME
	ext := result.Extension
	if in.Kind == domain.UploadHeadshot {
		compressed, err := security.CompressImage(data, security.HeadshotMaxDimension, security.HeadshotJPEGQuality)
		if err != nil {
			return nil, u.reject(ctx, in, "decode_failed", apperror.BadRequest(typeMsg))
		}
		data, contentType, ext = compressed, "image/jpeg", ".jpg"
	}

	id := uuid.NewString()
	key := fmt.Sprintf("%s/%s/%s%s", in.Kind, time.Now().UTC().Format("2006/01"), id, ext)

	url, err := u.storage.Put(ctx, key, contentType, data)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	upload := &domain.Upload{
		ID:          id,
		Kind:        in.Kind,
		Filename:    sanitizeFilename(in.Filename),
		ContentType: contentType,
		Size:        int64(len(data)),
		StorageKey:  key,
		URL:         url,
		UploaderIP:  in.ClientIP,
		CreatedAt:   time.Now(),
	}
	if err := u.repo.Create(ctx, upload); err != nil {
		return nil, apperror.Internal(err)
	}

	metrics.UploadsTotal.WithLabelValues(string(in.Kind), "ok").Inc()
	logger.Log.Info("File uploaded", "upload_id", id, "kind", in.Kind, "size", upload.Size)
	return upload, nil
}

// sanitizeFilename keeps the base name with only ASCII letters, digits, dot, dash and underscore.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
