package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-rise-platform/internal/domain"
	"go-rise-platform/pkg/apperror"
	"go-rise-platform/pkg/format"

	gocache "github.com/patrickmn/go-cache"
)

type catalogUsecase struct {
	repo  domain.CatalogRepository
	cache *gocache.Cache
}

// NewCatalogUsecase caches list and detail reads for ttl; admin writes flush the kind.
func NewCatalogUsecase(repo domain.CatalogRepository, ttl time.Duration) domain.CatalogUsecase {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &catalogUsecase{repo: repo, cache: gocache.New(ttl, 2*ttl)}
}

func listKey(kind domain.CatalogKind) string { return fmt.Sprintf("list:%s", kind) }

func itemKey(kind domain.CatalogKind, slug string) string {
	return fmt.Sprintf("item:%s:%s", kind, slug)
}

// kindLabel renders "bootcamp" as "Bootcamp" for error messages.
func kindLabel(kind domain.CatalogKind) string {
	s := string(kind)
	if s == "" {
		return "Item"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (u *catalogUsecase) List(ctx context.Context, kind domain.CatalogKind) ([]domain.CatalogItem, error) {
	if cached, ok := u.cache.Get(listKey(kind)); ok {
		return cached.([]domain.CatalogItem), nil
	}
	items, err := u.repo.List(ctx, kind)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	u.cache.Set(listKey(kind), items, gocache.DefaultExpiration)
	return items, nil
}

func (u *catalogUsecase) Get(ctx context.Context, kind domain.CatalogKind, slug string) (*domain.CatalogItem, error) {
	if cached, ok := u.cache.Get(itemKey(kind, slug)); ok {
		item := cached.(domain.CatalogItem)
		return &item, nil
	}
	item, err := u.repo.GetBySlug(ctx, kind, slug)
	if err != nil {
		return nil, notFoundOr(err, kindLabel(kind)+" not found")
	}
	u.cache.Set(itemKey(kind, slug), *item, gocache.DefaultExpiration)
	return item, nil
}

func (u *catalogUsecase) Upsert(ctx context.Context, item *domain.CatalogItem) error {
	if strings.TrimSpace(item.Title) == "" {
		return apperror.BadRequest("Title is required")
	}
	if item.Slug == "" {
		item.Slug = format.NormalizeJobTitle(item.Title)
	}
	if item.Pricing.OriginalPrice < 0 || item.Pricing.DiscountPrice < 0 {
		return apperror.BadRequest("Price cannot be negative")
	}
	if item.Rating < 0 || item.Rating > 5 {
		return apperror.BadRequest("Rating must be between 0 and 5")
	}
	item.ApplyDefaults()

	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	if err := u.repo.Upsert(ctx, item); err != nil {
		return apperror.Internal(err)
	}
	u.invalidate(item.Kind, item.Slug)
	return nil
}

func (u *catalogUsecase) Delete(ctx context.Context, kind domain.CatalogKind, slug string) error {
	if err := u.repo.Delete(ctx, kind, slug); err != nil {
		return notFoundOr(err, "Item not found")
	}
	u.invalidate(kind, slug)
	return nil
}

func (u *catalogUsecase) invalidate(kind domain.CatalogKind, slug string) {
	u.cache.Delete(listKey(kind))
	u.cache.Delete(itemKey(kind, slug))
}
