package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go-rise-platform/pkg/client"
	"go-rise-platform/pkg/logger"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const fetchPageSize = 100

type JobSource interface {
	Jobs(ctx context.Context, q client.JobQuery) (*client.JobList, error)
	SearchJobs(ctx context.Context, term string) ([]client.Job, error)
	JobByID(ctx context.Context, id int64) (*client.Job, error)
}

// Jobs keeps the fetched listings with the user's filter, sort and page.
type Jobs struct {
	src JobSource

	mu        sync.RWMutex
	all       []client.Job
	filtered  []client.Job
	filter    JobFilter
	sortBy    string
	sortOrder string
	page      int
	perPage   int
	loading   bool
	err       string
}

func NewJobs(src JobSource) *Jobs {
	return &Jobs{src: src, page: 1, perPage: DefaultItemsPerPage}
}

// errorMessage prefers the server's message over the generic fallback.
func errorMessage(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" && apiErr.Status < 500 {
		return apiErr.Message
	}
	return fallback
}

// Fetch loads every active job. A call made while another is in flight
// returns the current data without a request. On failure it returns an empty
// list and the message is available from Error.
func (j *Jobs) Fetch(ctx context.Context) []client.Job {
	j.mu.Lock()
	if j.loading {
		current := append([]client.Job(nil), j.all...)
		j.mu.Unlock()
		return current
	}
	j.loading = true
	j.err = ""
	j.mu.Unlock()

	jobs, err := j.fetchAll(ctx)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.loading = false
	if err != nil {
		logger.Log.Warn("failed to fetch jobs", "error", err)
		j.err = errorMessage(err, "Gagal memuat data jobs")
		j.all = nil
		j.filtered = nil
		return []client.Job{}
	}
	j.all = jobs
	j.applyLocked()
	return append([]client.Job(nil), j.all...)
}

func (j *Jobs) fetchAll(ctx context.Context) ([]client.Job, error) {
	var jobs []client.Job
	for page := 1; ; page++ {
		list, err := j.src.Jobs(ctx, client.JobQuery{Page: page, PageSize: fetchPageSize})
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, list.Jobs...)
		if len(list.Jobs) == 0 || int64(len(jobs)) >= list.Total {
			return jobs, nil
		}
	}
}

// Search replaces the listings with the server's matches and drops local
// filters. The chosen sort order is kept.
func (j *Jobs) Search(ctx context.Context, term string) []client.Job {
	j.mu.Lock()
	j.loading = true
	j.err = ""
	j.mu.Unlock()

	jobs, err := j.src.SearchJobs(ctx, term)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.loading = false
	if err != nil {
		logger.Log.Warn("failed to search jobs", "term", term, "error", err)
		j.err = errorMessage(err, "Gagal mencari jobs")
		return []client.Job{}
	}
	j.all = jobs
	j.filter = JobFilter{}
	j.applyLocked()
	return append([]client.Job(nil), jobs...)
}

// ByID returns nil when the job cannot be loaded; see Error.
func (j *Jobs) ByID(ctx context.Context, id int64) *client.Job {
	job, err := j.src.JobByID(ctx, id)
	if err != nil {
		j.mu.Lock()
		j.err = errorMessage(err, "Job tidak ditemukan")
		j.mu.Unlock()
		return nil
	}
	return job
}

// BySlug looks a job up among the fetched listings.
func (j *Jobs) BySlug(companySlug, jobSlug string) (*client.Job, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	job, ok := lo.Find(j.all, func(job client.Job) bool {
		return job.Company.Slug == companySlug && job.Slug == jobSlug
	})
	if !ok {
		return nil, false
	}
	return &job, true
}

func (j *Jobs) Similar(excludeID int64, industry string, limit int) []client.Job {
	if limit <= 0 {
		limit = 4
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	similar := lo.Filter(j.all, func(job client.Job, _ int) bool {
		return job.ID != excludeID && job.Company.Industry == industry
	})
	if len(similar) > limit {
		similar = similar[:limit]
	}
	return similar
}

func (j *Jobs) applyLocked() {
	j.filtered = FilterJobs(j.all, j.filter)
	if j.sortBy != "" {
		SortJobs(j.filtered, j.sortBy, j.sortOrder)
	}
	j.page = 1
}

// SetFilter replaces the active filter and returns to the first page.
func (j *Jobs) SetFilter(f JobFilter) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.filter = f
	j.applyLocked()
}

func (j *Jobs) ClearFilters() {
	j.SetFilter(JobFilter{})
}

func (j *Jobs) Filter() JobFilter {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.filter
}

func (j *Jobs) HasActiveFilters() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.filter.Active()
}

func (j *Jobs) Filtered() []client.Job {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return append([]client.Job(nil), j.filtered...)
}

// Sort orders the filtered listings and keeps that order across later
// filter changes and fetches.
func (j *Jobs) Sort(by, order string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.sortBy, j.sortOrder = by, order
	SortJobs(j.filtered, by, order)
}

func (j *Jobs) totalPagesLocked() int {
	return TotalPages(len(j.filtered), j.perPage)
}

func (j *Jobs) TotalPages() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.totalPagesLocked()
}

// SetPage ignores pages outside 1..TotalPages.
func (j *Jobs) SetPage(page int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if page >= 1 && page <= j.totalPagesLocked() {
		j.page = page
	}
}

func (j *Jobs) NextPage() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.page < j.totalPagesLocked() {
		j.page++
	}
}

func (j *Jobs) PrevPage() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.page > 1 {
		j.page--
	}
}

func (j *Jobs) SetItemsPerPage(n int) {
	if n <= 0 {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.perPage = n
	j.page = 1
}

func (j *Jobs) CurrentPage() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.page
}

// Page returns the filtered jobs of the current page.
func (j *Jobs) Page() []client.Job {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return Paginate(j.filtered, j.page, j.perPage)
}

// UniqueLocations lists one place per job (city, else region, else country)
// plus "Remote" when any job is remote.
func (j *Jobs) UniqueLocations() []string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var locations []string
	for _, job := range j.all {
		for _, place := range []string{job.Location.City, job.Location.Region, job.Location.Country} {
			if place = strings.TrimSpace(place); place != "" {
				locations = append(locations, place)
				break
			}
		}
		if job.Location.IsRemote {
			locations = append(locations, "Remote")
		}
	}
	return sortedUnique(locations)
}

func (j *Jobs) UniqueIndustries() []string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return sortedUnique(lo.Map(j.all, func(job client.Job, _ int) string { return job.Company.Industry }))
}

func (j *Jobs) UniqueJobTypes() []string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return sortedUnique(lo.Map(j.all, func(job client.Job, _ int) string { return job.EmploymentType }))
}

func sortedUnique(values []string) []string {
	out := lo.Uniq(lo.Compact(values))
	sort.Strings(out)
	return out
}

func (j *Jobs) Loading() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.loading
}

func (j *Jobs) Error() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.err
}
