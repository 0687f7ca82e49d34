package postgres

import (
	"context"
	"encoding/json"
	"time"

	"go-rise-platform/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type paymentRepo struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) domain.PaymentRepository {
	return &paymentRepo{db: db}
}

const paymentColumns = `id, order_id, registration_id, submission_id, type, amount, currency, status,
	token, redirect_url, proof_file_id, gateway_payload, expires_at, created_at, updated_at`

func scanPayment(row pgx.Row) (*domain.PaymentTransaction, error) {
	var p domain.PaymentTransaction
	var payload []byte
	err := row.Scan(&p.ID, &p.OrderID, &p.RegistrationID, &p.SubmissionID, &p.Type, &p.Amount, &p.Currency, &p.Status,
		&p.Token, &p.RedirectURL, &p.ProofFileID, &payload, &p.ExpiresAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		p.GatewayPayload = json.RawMessage(payload)
	}
	return &p, nil
}

func rawJSON(m json.RawMessage) interface{} {
	if len(m) == 0 {
		return nil
	}
	return string(m)
}

func (r *paymentRepo) Create(ctx context.Context, p *domain.PaymentTransaction) error {
	query := `INSERT INTO payment_transactions (order_id, registration_id, submission_id, type, amount, currency, status,
                  token, redirect_url, proof_file_id, gateway_payload, expires_at, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12, $13, $14)
              RETURNING id`
	err := r.db.QueryRow(ctx, query,
		p.OrderID, p.RegistrationID, p.SubmissionID, p.Type, p.Amount, p.Currency, p.Status,
		p.Token, p.RedirectURL, p.ProofFileID, rawJSON(p.GatewayPayload), p.ExpiresAt, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	return mapError(err)
}

func (r *paymentRepo) getOne(ctx context.Context, where string, args ...interface{}) (*domain.PaymentTransaction, error) {
	p, err := scanPayment(r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payment_transactions WHERE `+where, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (r *paymentRepo) GetByID(ctx context.Context, id int64) (*domain.PaymentTransaction, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *paymentRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentTransaction, error) {
	return r.getOne(ctx, `order_id = $1`, orderID)
}

func (r *paymentRepo) GetLatestByRegistration(ctx context.Context, registrationID int64) (*domain.PaymentTransaction, error) {
	return r.getOne(ctx, `registration_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`, registrationID)
}

// UpdateStatus never moves a terminal transaction; such updates report ErrNotFound.
func (r *paymentRepo) UpdateStatus(ctx context.Context, id int64, status string, payload json.RawMessage) error {
	query := `UPDATE payment_transactions
              SET status = $2, gateway_payload = COALESCE($3::jsonb, gateway_payload), updated_at = NOW()
              WHERE id = $1 AND (status = 'PENDING' OR status = $2)`
	return affected(r.db.Exec(ctx, query, id, status, rawJSON(payload)))
}

func (r *paymentRepo) ListExpiredPending(ctx context.Context, now time.Time) ([]domain.PaymentTransaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+paymentColumns+` FROM payment_transactions WHERE status = 'PENDING' AND expires_at < $1 ORDER BY id`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []domain.PaymentTransaction{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}
