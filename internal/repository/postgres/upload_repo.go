package postgres

import (
	"context"

	"go-rise-platform/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type uploadRepo struct {
	db *pgxpool.Pool
}

func NewUploadRepository(db *pgxpool.Pool) domain.UploadRepository {
	return &uploadRepo{db: db}
}

func (r *uploadRepo) Create(ctx context.Context, u *domain.Upload) error {
	query := `INSERT INTO uploads (id, kind, filename, content_type, size, storage_key, url, uploader_ip, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Exec(ctx, query,
		u.ID, string(u.Kind), u.Filename, u.ContentType, u.Size, u.StorageKey, u.URL, u.UploaderIP, u.CreatedAt)
	return mapError(err)
}

func (r *uploadRepo) GetByID(ctx context.Context, id string) (*domain.Upload, error) {
	query := `SELECT id, kind, filename, content_type, size, storage_key, url, uploader_ip, created_at FROM uploads WHERE id = $1`
	var u domain.Upload
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Kind, &u.Filename, &u.ContentType, &u.Size, &u.StorageKey, &u.URL, &u.UploaderIP, &u.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}
