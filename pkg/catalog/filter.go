// Package catalog holds the client-side data access for job listings and
// academy products: fetching, in-memory filtering, sorting and paging.
package catalog

import (
	"sort"
	"strings"
	"time"

	"go-rise-platform/pkg/client"
)

const (
	DefaultItemsPerPage = 12
	AllValues           = "all"
)

// JobFilter narrows the fetched listings. Empty strings and "all" match everything;
// nil salary bounds are open.
type JobFilter struct {
	Title      string `json:"title"`
	Company    string `json:"company"`
	Location   string `json:"location"`
	Industry   string `json:"industry"`
	JobType    string `json:"job_type"`
	Experience string `json:"experience"`
	SalaryMin  *int64 `json:"salary_min,omitempty"`
	SalaryMax  *int64 `json:"salary_max,omitempty"`
}

func isOpen(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, AllValues)
}

func (f JobFilter) Active() bool {
	return strings.TrimSpace(f.Title) != "" ||
		strings.TrimSpace(f.Company) != "" ||
		!isOpen(f.Location) ||
		!isOpen(f.Industry) ||
		!isOpen(f.JobType) ||
		!isOpen(f.Experience) ||
		f.SalaryMin != nil ||
		f.SalaryMax != nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

// FilterJobs returns the jobs matching every criterion of f, in their original order.
func FilterJobs(jobs []client.Job, f JobFilter) []client.Job {
	out := make([]client.Job, 0, len(jobs))
	for _, job := range jobs {
		if matches(job, f) {
			out = append(out, job)
		}
	}
	return out
}

func matches(job client.Job, f JobFilter) bool {
	if strings.TrimSpace(f.Title) != "" && !containsFold(job.Title, f.Title) {
		return false
	}
	if strings.TrimSpace(f.Company) != "" && !containsFold(job.Company.Name, f.Company) {
		return false
	}
	if !isOpen(f.Location) && !matchesLocation(job, f.Location) {
		return false
	}
	if !isOpen(f.Industry) && !containsFold(job.Company.Industry, f.Industry) {
		return false
	}
	if !isOpen(f.JobType) && !containsFold(job.EmploymentType, f.JobType) {
		return false
	}
	if !isOpen(f.Experience) && !containsFold(job.ExperienceLevel, f.Experience) {
		return false
	}
	if f.SalaryMin != nil || f.SalaryMax != nil {
		return salaryOverlaps(job, f.SalaryMin, f.SalaryMax)
	}
	return true
}

func matchesLocation(job client.Job, location string) bool {
	if strings.EqualFold(strings.TrimSpace(location), "remote") {
		return job.Location.IsRemote
	}
	return containsFold(job.Location.City, location) ||
		containsFold(job.Location.Region, location) ||
		containsFold(job.Location.Country, location)
}

// salaryOverlaps treats a zero job maximum and a nil filter bound as unbounded.
func salaryOverlaps(job client.Job, min, max *int64) bool {
	var filterMin int64
	if min != nil {
		filterMin = *min
	}
	if job.SalaryMax > 0 && job.SalaryMax < filterMin {
		return false
	}
	if max != nil && *max > 0 && job.SalaryMin > *max {
		return false
	}
	return true
}

// TotalPages is ceil(n / perPage).
func TotalPages(n, perPage int) int {
	if perPage <= 0 || n <= 0 {
		return 0
	}
	return (n + perPage - 1) / perPage
}

// Paginate returns the 1-based page of items; out-of-range pages are empty.
func Paginate[T any](items []T, page, perPage int) []T {
	if page < 1 || perPage <= 0 {
		return []T{}
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return []T{}
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return append([]T(nil), items[start:end]...)
}

// SortJobs orders jobs by date, title, company, location or salary.
// Unknown keys leave the order untouched.
func SortJobs(jobs []client.Job, by, order string) {
	var less func(a, b client.Job) bool
	switch by {
	case "date", "":
		less = func(a, b client.Job) bool { return postedAt(a).Before(postedAt(b)) }
	case "title":
		less = func(a, b client.Job) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case "company":
		less = func(a, b client.Job) bool {
			return strings.ToLower(a.Company.Name) < strings.ToLower(b.Company.Name)
		}
	case "location":
		less = func(a, b client.Job) bool {
			return strings.ToLower(a.Location.City) < strings.ToLower(b.Location.City)
		}
	case "salary":
		less = func(a, b client.Job) bool { return a.SalaryMax < b.SalaryMax }
	default:
		return
	}

	desc := order != "asc"
	sort.SliceStable(jobs, func(i, j int) bool {
		if desc {
			return less(jobs[j], jobs[i])
		}
		return less(jobs[i], jobs[j])
	})
}

func postedAt(j client.Job) time.Time {
	if !j.PostedAt.IsZero() {
		return j.PostedAt
	}
	return j.CreatedAt
}
