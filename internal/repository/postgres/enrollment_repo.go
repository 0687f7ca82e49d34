package postgres

import (
	"context"

	"go-rise-platform/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type enrollmentRepo struct {
	db *pgxpool.Pool
}

func NewEnrollmentRepository(db *pgxpool.Pool) domain.EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

const enrollmentColumns = `id, item_id, item_slug, user_id, status, completed_sessions, progress_percent, created_at, updated_at`

func scanEnrollment(row pgx.Row) (*domain.Enrollment, error) {
	var e domain.Enrollment
	err := row.Scan(&e.ID, &e.ItemID, &e.ItemSlug, &e.UserID, &e.Status,
		pq.Array(&e.CompletedSessions), &e.ProgressPercent, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if e.CompletedSessions == nil {
		e.CompletedSessions = []string{}
	}
	return &e, nil
}

func (r *enrollmentRepo) Create(ctx context.Context, e *domain.Enrollment) error {
	query := `INSERT INTO enrollments (item_id, item_slug, user_id, status, completed_sessions, progress_percent, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := r.db.QueryRow(ctx, query,
		e.ItemID, e.ItemSlug, e.UserID, e.Status, pq.Array(e.CompletedSessions), e.ProgressPercent, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	return mapError(err)
}

func (r *enrollmentRepo) Get(ctx context.Context, userID string, itemID int64) (*domain.Enrollment, error) {
	e, err := scanEnrollment(r.db.QueryRow(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE user_id = $1 AND item_id = $2`, userID, itemID))
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

func (r *enrollmentRepo) ListByUser(ctx context.Context, userID string) ([]domain.Enrollment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []domain.Enrollment{}
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

func (r *enrollmentRepo) UpdateProgress(ctx context.Context, e *domain.Enrollment) error {
	query := `UPDATE enrollments SET status = $2, completed_sessions = $3, progress_percent = $4, updated_at = $5 WHERE id = $1`
	return affected(r.db.Exec(ctx, query, e.ID, e.Status, pq.Array(e.CompletedSessions), e.ProgressPercent, e.UpdatedAt))
}
