package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"strings"
	"sync"

	"go-rise-platform/internal/domain"
	"go-rise-platform/pkg/client"
	"go-rise-platform/pkg/logger"

	"github.com/samber/lo"
)

//go:embed fallback.json
var fallbackJSON []byte

var (
	fallbackOnce  sync.Once
	fallbackItems []client.CatalogItem
)

// Fallback returns the bundled items of kind, shown when the API is down.
func Fallback(kind domain.CatalogKind) []client.CatalogItem {
	fallbackOnce.Do(func() {
		if err := json.Unmarshal(fallbackJSON, &fallbackItems); err != nil {
			logger.Log.Error("invalid bundled catalog data", "error", err)
		}
	})
	return lo.Filter(fallbackItems, func(item client.CatalogItem, _ int) bool { return item.Kind == kind })
}

type ItemSource interface {
	Catalog(ctx context.Context, kind domain.CatalogKind) ([]client.CatalogItem, error)
	CatalogItem(ctx context.Context, kind domain.CatalogKind, slug string) (*client.CatalogItem, error)
	Enroll(ctx context.Context, slug string) (*client.Enrollment, error)
	Progress(ctx context.Context, slug string) (*client.Enrollment, error)
	UpdateProgress(ctx context.Context, slug string, completed []string) (*client.Enrollment, error)
}

const (
	PriceFree = "free"
	PricePaid = "paid"
)

type ItemFilter struct {
	Category string
	Level    string
	Price    string
}

// Items serves one product kind: programs, bootcamps, academies or courses.
type Items struct {
	src  ItemSource
	kind domain.CatalogKind

	mu           sync.RWMutex
	items        []client.CatalogItem
	loading      bool
	fromFallback bool
	err          string
}

func NewItems(src ItemSource, kind domain.CatalogKind) *Items {
	return &Items{src: src, kind: kind}
}

func (it *Items) Kind() domain.CatalogKind { return it.kind }

// Fetch loads the published items. Transport errors and 5xx replies fall
// back to the bundled data without an error.
func (it *Items) Fetch(ctx context.Context) ([]client.CatalogItem, error) {
	it.mu.Lock()
	if it.loading {
		current := append([]client.CatalogItem(nil), it.items...)
		it.mu.Unlock()
		return current, nil
	}
	it.loading = true
	it.err = ""
	it.mu.Unlock()

	items, err := it.src.Catalog(ctx, it.kind)

	it.mu.Lock()
	defer it.mu.Unlock()
	it.loading = false
	it.fromFallback = false
	if err != nil {
		if client.IsServerUnavailable(err) {
			logger.Log.Warn("catalog unavailable, using bundled data", "kind", it.kind, "error", err)
			it.items = Fallback(it.kind)
			it.fromFallback = true
			return append([]client.CatalogItem(nil), it.items...), nil
		}
		it.err = errorMessage(err, "Gagal memuat data "+string(it.kind))
		it.items = nil
		return []client.CatalogItem{}, err
	}
	it.items = items
	return append([]client.CatalogItem(nil), items...), nil
}

func (it *Items) BySlug(ctx context.Context, slug string) (*client.CatalogItem, error) {
	item, err := it.src.CatalogItem(ctx, it.kind, slug)
	if err == nil {
		return item, nil
	}
	if client.IsServerUnavailable(err) {
		if found, ok := lo.Find(Fallback(it.kind), func(i client.CatalogItem) bool { return i.Slug == slug }); ok {
			return &found, nil
		}
	}
	it.setError(errorMessage(err, "Data tidak ditemukan"))
	return nil, err
}

// Filter narrows the fetched items. Category and level match as
// case-insensitive substrings; price is "free", "paid" or open.
func (it *Items) Filter(f ItemFilter) []client.CatalogItem {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return lo.Filter(it.items, func(item client.CatalogItem, _ int) bool {
		if !isOpen(f.Category) && !containsFold(item.Category, f.Category) {
			return false
		}
		if !isOpen(f.Level) && !containsFold(item.Level, f.Level) {
			return false
		}
		switch strings.ToLower(f.Price) {
		case PriceFree:
			return item.Pricing.Effective() == 0
		case PricePaid:
			return item.Pricing.Effective() > 0
		}
		return true
	})
}

func (it *Items) Enroll(ctx context.Context, slug string) (*client.Enrollment, error) {
	e, err := it.src.Enroll(ctx, slug)
	if err != nil {
		it.setError(errorMessage(err, "Gagal mendaftar program"))
	}
	return e, err
}

func (it *Items) Progress(ctx context.Context, slug string) (*client.Enrollment, error) {
	e, err := it.src.Progress(ctx, slug)
	if err != nil {
		it.setError(errorMessage(err, "Gagal memuat progress program"))
	}
	return e, err
}

func (it *Items) UpdateProgress(ctx context.Context, slug string, completed []string) (*client.Enrollment, error) {
	e, err := it.src.UpdateProgress(ctx, slug, completed)
	if err != nil {
		it.setError(errorMessage(err, "Gagal update progress program"))
	}
	return e, err
}

func (it *Items) setError(msg string) {
	it.mu.Lock()
	it.err = msg
	it.mu.Unlock()
}

func (it *Items) All() []client.CatalogItem {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return append([]client.CatalogItem(nil), it.items...)
}

func (it *Items) FromFallback() bool {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.fromFallback
}

func (it *Items) Loading() bool {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.loading
}

func (it *Items) Error() string {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.err
}
