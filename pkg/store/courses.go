package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go-rise-platform/internal/domain"
	"go-rise-platform/pkg/catalog"
	"go-rise-platform/pkg/client"

	"github.com/asaskevich/EventBus"
	"github.com/samber/lo"
)

const DefaultTopRating = 4.5

// CoursesStore caches course listings, details and the user's progress on top
// of catalog.Items, so it shares the bundled fallback.
type CoursesStore struct {
	items  *catalog.Items
	notify notifier

	mu          sync.RWMutex
	courses     []client.CatalogItem
	bySlug      map[string]client.CatalogItem
	progress    map[string]client.Enrollment
	initialized bool
}

func NewCoursesStore(items *catalog.Items, bus EventBus.Bus) *CoursesStore {
	return &CoursesStore{
		items:    items,
		notify:   notifier{bus: bus},
		bySlug:   map[string]client.CatalogItem{},
		progress: map[string]client.Enrollment{},
	}
}

func (s *CoursesStore) Fetch(ctx context.Context) ([]client.CatalogItem, error) {
	courses, err := s.items.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.courses = courses
	s.initialized = true
	s.mu.Unlock()

	s.notify.publish(TopicCoursesChanged, CoursesChanged{Count: len(courses)})
	return append([]client.CatalogItem(nil), courses...), nil
}

// Init fetches once; later calls return the loaded list.
func (s *CoursesStore) Init(ctx context.Context) ([]client.CatalogItem, error) {
	s.mu.RLock()
	ready := s.initialized && len(s.courses) > 0
	s.mu.RUnlock()
	if ready {
		return s.Courses(), nil
	}
	return s.Fetch(ctx)
}

// BySlug serves from the detail cache, then the loaded list, then the API.
func (s *CoursesStore) BySlug(ctx context.Context, slug string) (*client.CatalogItem, error) {
	s.mu.RLock()
	cached, ok := s.bySlug[slug]
	if !ok {
		cached, ok = lo.Find(s.courses, func(c client.CatalogItem) bool { return c.Slug == slug })
	}
	s.mu.RUnlock()
	if ok {
		s.cache(cached)
		return &cached, nil
	}

	item, err := s.items.BySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.cache(*item)
	return item, nil
}

func (s *CoursesStore) cache(item client.CatalogItem) {
	s.mu.Lock()
	s.bySlug[item.Slug] = item
	s.mu.Unlock()
}

func (s *CoursesStore) LoadProgress(ctx context.Context, slug string) (*client.Enrollment, error) {
	e, err := s.items.Progress(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.SetProgress(slug, *e)
	return e, nil
}

func (s *CoursesStore) SetProgress(slug string, e client.Enrollment) {
	e.CompletedSessions = append([]string(nil), e.CompletedSessions...)
	s.mu.Lock()
	s.progress[slug] = e
	s.mu.Unlock()
}

func (s *CoursesStore) Progress(slug string) (client.Enrollment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.progress[slug]
	e.CompletedSessions = append([]string(nil), e.CompletedSessions...)
	return e, ok
}

func (s *CoursesStore) Courses() []client.CatalogItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]client.CatalogItem(nil), s.courses...)
}

func (s *CoursesStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.courses)
}

func (s *CoursesStore) where(keep func(client.CatalogItem) bool) []client.CatalogItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Filter(s.courses, func(c client.CatalogItem, _ int) bool { return keep(c) })
}

func (s *CoursesStore) ByCategory(category string) []client.CatalogItem {
	if category == "" || category == catalog.AllValues {
		return s.Courses()
	}
	return s.where(func(c client.CatalogItem) bool { return strings.EqualFold(c.Category, category) })
}

func (s *CoursesStore) ByLevel(level string) []client.CatalogItem {
	if level == "" || level == catalog.AllValues {
		return s.Courses()
	}
	return s.where(func(c client.CatalogItem) bool { return strings.EqualFold(c.Level, level) })
}

func (s *CoursesStore) isCompletedLocked(slug string) bool {
	e, ok := s.progress[slug]
	return ok && e.Status == domain.EnrollmentCompleted
}

// Completed lists courses whose enrollment is COMPLETED.
func (s *CoursesStore) Completed() []client.CatalogItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Filter(s.courses, func(c client.CatalogItem, _ int) bool { return s.isCompletedLocked(c.Slug) })
}

// InProgress lists courses with an enrollment that is not yet completed.
func (s *CoursesStore) InProgress() []client.CatalogItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Filter(s.courses, func(c client.CatalogItem, _ int) bool {
		_, enrolled := s.progress[c.Slug]
		return enrolled && !s.isCompletedLocked(c.Slug)
	})
}

func (s *CoursesStore) TopRated(minRating float64) []client.CatalogItem {
	if minRating <= 0 {
		minRating = DefaultTopRating
	}
	return s.where(func(c client.CatalogItem) bool { return c.Rating >= minRating })
}

func (s *CoursesStore) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := lo.Uniq(lo.Compact(lo.Map(s.courses, func(c client.CatalogItem, _ int) string { return c.Category })))
	sort.Strings(out)
	return out
}
