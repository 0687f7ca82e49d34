package store

import (
	"context"
	"sync"

	"go-rise-platform/pkg/catalog"
	"go-rise-platform/pkg/client"
	"go-rise-platform/pkg/kv"

	"github.com/asaskevich/EventBus"
	"github.com/samber/lo"
)

const defaultFavoritesLimit = 5

// JobsStore holds favorite job ids and, when persistSelection is set, the
// selected job and the last filters.
type JobsStore struct {
	kv               kv.Store
	notify           notifier
	persistSelection bool

	mu        sync.RWMutex
	favorites []int64
	selected  *client.Job
	filters   catalog.JobFilter
}

func NewJobsStore(store kv.Store, bus EventBus.Bus, persistSelection bool) *JobsStore {
	return &JobsStore{kv: store, notify: notifier{bus: bus}, persistSelection: persistSelection}
}

// Init loads persisted state. Unreadable favorites reset to empty.
func (s *JobsStore) Init(ctx context.Context) error {
	var ids []int64
	if _, err := kv.GetJSON(ctx, s.kv, kv.KeyFavoriteJobs, &ids); err != nil {
		ids = nil
	}

	var selected *client.Job
	var filters catalog.JobFilter
	if s.persistSelection {
		var job client.Job
		found, err := kv.GetJSON(ctx, s.kv, kv.KeySelectedJob, &job)
		if err != nil {
			return err
		}
		if found {
			selected = &job
		}
		if _, err := kv.GetJSON(ctx, s.kv, kv.KeyJobFilters, &filters); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.favorites = lo.Uniq(ids)
	s.selected = selected
	s.filters = filters
	s.mu.Unlock()
	return nil
}

func (s *JobsStore) saveFavorites(ctx context.Context, ids []int64) error {
	s.notify.publish(TopicFavoritesChanged, FavoritesChanged{IDs: ids})
	return kv.SetJSON(ctx, s.kv, kv.KeyFavoriteJobs, ids)
}

func (s *JobsStore) Add(ctx context.Context, id int64) error {
	s.mu.Lock()
	if lo.Contains(s.favorites, id) {
		s.mu.Unlock()
		return nil
	}
	s.favorites = append(s.favorites, id)
	ids := append([]int64(nil), s.favorites...)
	s.mu.Unlock()
	return s.saveFavorites(ctx, ids)
}

func (s *JobsStore) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	if !lo.Contains(s.favorites, id) {
		s.mu.Unlock()
		return nil
	}
	s.favorites = lo.Without(s.favorites, id)
	ids := append([]int64(nil), s.favorites...)
	s.mu.Unlock()
	return s.saveFavorites(ctx, ids)
}

// Toggle flips id and reports whether it is now a favorite.
func (s *JobsStore) Toggle(ctx context.Context, id int64) (bool, error) {
	if s.IsFavorite(id) {
		return false, s.Remove(ctx, id)
	}
	return true, s.Add(ctx, id)
}

func (s *JobsStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.favorites = nil
	s.mu.Unlock()
	return s.saveFavorites(ctx, []int64{})
}

func (s *JobsStore) IsFavorite(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Contains(s.favorites, id)
}

func (s *JobsStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.favorites)
}

func (s *JobsStore) FavoriteIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int64{}, s.favorites...)
}

// FavoriteJobs picks the favorites out of all, keeping the order of all.
func (s *JobsStore) FavoriteJobs(all []client.Job) []client.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Filter(all, func(job client.Job, _ int) bool { return lo.Contains(s.favorites, job.ID) })
}

func (s *JobsStore) LimitedFavorites(all []client.Job, limit int) []client.Job {
	if limit <= 0 {
		limit = defaultFavoritesLimit
	}
	favs := s.FavoriteJobs(all)
	if len(favs) > limit {
		favs = favs[:limit]
	}
	return favs
}

func (s *JobsStore) SelectJob(ctx context.Context, job *client.Job) error {
	var copied *client.Job
	if job != nil {
		j := *job
		copied = &j
	}
	s.mu.Lock()
	s.selected = copied
	s.mu.Unlock()

	s.notify.publish(TopicSelectionChanged, SelectionChanged{Job: copied})
	if !s.persistSelection {
		return nil
	}
	if copied == nil {
		return s.kv.Delete(ctx, kv.KeySelectedJob)
	}
	return kv.SetJSON(ctx, s.kv, kv.KeySelectedJob, copied)
}

func (s *JobsStore) SelectedJob() *client.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return nil
	}
	j := *s.selected
	return &j
}

func (s *JobsStore) SetFilters(ctx context.Context, f catalog.JobFilter) error {
	s.mu.Lock()
	s.filters = f
	s.mu.Unlock()

	if !s.persistSelection {
		return nil
	}
	return kv.SetJSON(ctx, s.kv, kv.KeyJobFilters, f)
}

func (s *JobsStore) Filters() catalog.JobFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}
