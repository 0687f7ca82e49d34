package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go-rise-platform/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type registrationRepo struct {
	db *pgxpool.Pool
}

func NewRegistrationRepository(db *pgxpool.Pool) domain.RegistrationRepository {
	return &registrationRepo{db: db}
}

const registrationColumns = `id, submission_id, step1, fully_funded, self_funded,
	payment_id, payment_type, payment_status, payment_proof_file_id, status, created_at, updated_at`

// sortable admin columns, keyed by the query-string name
var registrationSortColumns = map[string]string{
	"created_at":       "created_at",
	"updated_at":       "updated_at",
	"full_name":        "full_name",
	"email":            "email",
	"status":           "status",
	"scholarship_type": "scholarship_type",
}

func scanRegistration(row pgx.Row) (*domain.Registration, error) {
	var reg domain.Registration
	var step1, fully, self []byte
	err := row.Scan(&reg.ID, &reg.SubmissionID, &step1, &fully, &self,
		&reg.Payment.ID, &reg.Payment.Type, &reg.Payment.Status, &reg.Payment.ProofFileID,
		&reg.Status, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(step1, &reg.Step1); err != nil {
		return nil, fmt.Errorf("decode step1: %w", err)
	}
	if len(fully) > 0 {
		reg.FullyFunded = &domain.FullyFundedData{}
		if err := json.Unmarshal(fully, reg.FullyFunded); err != nil {
			return nil, fmt.Errorf("decode fully_funded: %w", err)
		}
	}
	if len(self) > 0 {
		reg.SelfFunded = &domain.SelfFundedData{}
		if err := json.Unmarshal(self, reg.SelfFunded); err != nil {
			return nil, fmt.Errorf("decode self_funded: %w", err)
		}
	}
	return &reg, nil
}

// nullableJSON encodes v as a jsonb literal, or nil when v is a nil pointer.
func nullableJSON[T any](v *T) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *registrationRepo) Create(ctx context.Context, reg *domain.Registration) error {
	step1, err := json.Marshal(reg.Step1)
	if err != nil {
		return err
	}
	fully, err := nullableJSON(reg.FullyFunded)
	if err != nil {
		return err
	}
	self, err := nullableJSON(reg.SelfFunded)
	if err != nil {
		return err
	}

	query := `INSERT INTO registrations (submission_id, email, full_name, scholarship_type, step1, fully_funded, self_funded,
                  payment_id, payment_type, payment_status, payment_proof_file_id, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7::jsonb, $8, $9, $10, $11, $12, $13, $14)
              RETURNING id`
	err = r.db.QueryRow(ctx, query,
		reg.SubmissionID, reg.Step1.Email, reg.Step1.FullName, reg.Step1.ScholarshipType,
		string(step1), fully, self,
		reg.Payment.ID, reg.Payment.Type, reg.Payment.Status, reg.Payment.ProofFileID,
		reg.Status, reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
	return mapError(err)
}

func (r *registrationRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM registrations WHERE LOWER(email) = LOWER($1))`, strings.TrimSpace(email),
	).Scan(&exists)
	return exists, err
}

func (r *registrationRepo) GetByID(ctx context.Context, id int64) (*domain.Registration, error) {
	reg, err := scanRegistration(r.db.QueryRow(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return reg, nil
}

func (r *registrationRepo) GetBySubmissionID(ctx context.Context, submissionID string) (*domain.Registration, error) {
	reg, err := scanRegistration(r.db.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE submission_id = $1`, submissionID))
	if err != nil {
		return nil, mapError(err)
	}
	return reg, nil
}

func buildRegistrationQuery(filter domain.RegistrationFilter) (where string, order string, args []interface{}) {
	var conds []string
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d OR submission_id ILIKE $%d)", n, n, n))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.ScholarshipType != "" {
		args = append(args, filter.ScholarshipType)
		conds = append(conds, fmt.Sprintf("scholarship_type = $%d", len(args)))
	}
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	col, ok := registrationSortColumns[filter.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		dir = "ASC"
	}
	order = fmt.Sprintf(" ORDER BY %s %s, id %s", col, dir, dir)
	return where, order, args
}

func (r *registrationRepo) List(ctx context.Context, filter domain.RegistrationFilter) ([]domain.Registration, int64, error) {
	where, order, args := buildRegistrationQuery(filter)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM registrations`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + registrationColumns + ` FROM registrations` + where + order
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := []domain.Registration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *reg)
	}
	return list, total, rows.Err()
}

func (r *registrationRepo) countBy(ctx context.Context, column string) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT `+column+`, COUNT(*) FROM registrations GROUP BY `+column)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		if key == "" {
			key = "NONE"
		}
		out[key] = n
	}
	return out, rows.Err()
}

func (r *registrationRepo) Stats(ctx context.Context) (*domain.RegistrationStats, error) {
	stats := &domain.RegistrationStats{}
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM registrations`).Scan(&stats.Total); err != nil {
		return nil, err
	}
	var err error
	if stats.ByStatus, err = r.countBy(ctx, "status"); err != nil {
		return nil, err
	}
	if stats.ByScholarshipType, err = r.countBy(ctx, "scholarship_type"); err != nil {
		return nil, err
	}
	if stats.ByPaymentStatus, err = r.countBy(ctx, "payment_status"); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *registrationRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return affected(r.db.Exec(ctx, `UPDATE registrations SET status = $2, updated_at = NOW() WHERE id = $1`, id, status))
}

func (r *registrationRepo) UpdatePayment(ctx context.Context, id int64, p domain.PaymentInfo) error {
	query := `UPDATE registrations SET payment_id = $2, payment_type = $3, payment_status = $4,
                  payment_proof_file_id = $5, updated_at = NOW()
              WHERE id = $1`
	return affected(r.db.Exec(ctx, query, id, p.ID, p.Type, p.Status, p.ProofFileID))
}

func (r *registrationRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.db.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id))
}
