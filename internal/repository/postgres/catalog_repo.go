package postgres

import (
	"context"
	"encoding/json"

	"go-rise-platform/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type catalogRepo struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) domain.CatalogRepository {
	return &catalogRepo{db: db}
}

const catalogColumns = `id, kind, slug, title, subtitle, description, category, level, duration, format, image,
	original_price, discount_price, currency, features, content, rating, rating_count, certificate, status,
	created_at, updated_at`

func scanCatalogItem(row pgx.Row) (*domain.CatalogItem, error) {
	var item domain.CatalogItem
	var content []byte
	err := row.Scan(
		&item.ID, &item.Kind, &item.Slug, &item.Title, &item.Subtitle, &item.Description,
		&item.Category, &item.Level, &item.Duration, &item.Format, &item.Image,
		&item.Pricing.OriginalPrice, &item.Pricing.DiscountPrice, &item.Pricing.Currency,
		pq.Array(&item.Features), &content, &item.Rating, &item.RatingCount, &item.Certificate, &item.Status,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(content) > 0 {
		if err := json.Unmarshal(content, &item.CatalogContent); err != nil {
			return nil, err
		}
	}
	item.ApplyDefaults()
	return &item, nil
}

func (r *catalogRepo) List(ctx context.Context, kind domain.CatalogKind) ([]domain.CatalogItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+catalogColumns+` FROM catalog_items WHERE kind = $1 AND status = 'published' ORDER BY created_at DESC`,
		string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.CatalogItem{}
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *catalogRepo) GetBySlug(ctx context.Context, kind domain.CatalogKind, slug string) (*domain.CatalogItem, error) {
	item, err := scanCatalogItem(r.db.QueryRow(ctx,
		`SELECT `+catalogColumns+` FROM catalog_items WHERE kind = $1 AND slug = $2`, string(kind), slug))
	if err != nil {
		return nil, mapError(err)
	}
	return item, nil
}

// Upsert inserts or replaces the item identified by (kind, slug).
func (r *catalogRepo) Upsert(ctx context.Context, item *domain.CatalogItem) error {
	content, err := json.Marshal(item.CatalogContent)
	if err != nil {
		return err
	}

	query := `INSERT INTO catalog_items (kind, slug, title, subtitle, description, category, level, duration, format, image,
                  original_price, discount_price, currency, features, content, rating, rating_count, certificate, status,
                  created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15::jsonb, $16, $17, $18, $19, $20, $21)
              ON CONFLICT (kind, slug) DO UPDATE SET
                  title = EXCLUDED.title, subtitle = EXCLUDED.subtitle, description = EXCLUDED.description,
                  category = EXCLUDED.category, level = EXCLUDED.level, duration = EXCLUDED.duration,
                  format = EXCLUDED.format, image = EXCLUDED.image, original_price = EXCLUDED.original_price,
                  discount_price = EXCLUDED.discount_price, currency = EXCLUDED.currency, features = EXCLUDED.features,
                  content = EXCLUDED.content, rating = EXCLUDED.rating, rating_count = EXCLUDED.rating_count,
                  certificate = EXCLUDED.certificate, status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
              RETURNING id, created_at`
	err = r.db.QueryRow(ctx, query,
		string(item.Kind), item.Slug, item.Title, item.Subtitle, item.Description, item.Category, item.Level,
		item.Duration, item.Format, item.Image, item.Pricing.OriginalPrice, item.Pricing.DiscountPrice,
		item.Pricing.Currency, pq.Array(item.Features), string(content), item.Rating, item.RatingCount,
		item.Certificate, item.Status, item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID, &item.CreatedAt)
	return mapError(err)
}

func (r *catalogRepo) Delete(ctx context.Context, kind domain.CatalogKind, slug string) error {
	return affected(r.db.Exec(ctx, `DELETE FROM catalog_items WHERE kind = $1 AND slug = $2`, string(kind), slug))
}
