package domain

import (
	"context"
	"time"

	"go-rise-platform/pkg/format"
)

const (
	JobStatusActive = "active"
	JobStatusClosed = "closed"

	DefaultCurrency = "IDR"
)

var EmploymentTypes = []string{
	"CONTRACTOR", "FULL_TIME", "INTERN", "OTHER", "PART_TIME", "TEMPORARY", "VOLUNTEER",
}

var ExperienceLevels = []string{
	"Internship", "Entry level", "Associate", "Mid-Senior level", "Director", "Executive", "Not Applicable",
}

type Company struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	LogoURL  string `json:"logo_url,omitempty"`
	Industry string `json:"industry,omitempty"`
}

type Location struct {
	City     string `json:"city,omitempty"`
	Region   string `json:"region,omitempty"`
	Country  string `json:"country,omitempty"`
	IsRemote bool   `json:"is_remote"`
}

type Job struct {
	ID              int64     `json:"id"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Company         Company   `json:"company"`
	Location        Location  `json:"location"`
	EmploymentType  string    `json:"employment_type"`
	ExperienceLevel string    `json:"experience_level,omitempty"`
	SalaryMin       int64     `json:"salary_min"`
	SalaryMax       int64     `json:"salary_max"`
	Currency        string    `json:"currency"`
	Skills          []string  `json:"skills"`
	Benefits        []string  `json:"benefits"`
	Requirements    []string  `json:"requirements"`
	Status          string    `json:"status"`
	PostedAt        time.Time `json:"posted_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ApplyDefaults fills the optional fields so every job leaving the API has
// the same shape: derived slugs, non-nil arrays, FULL_TIME and IDR.
func (j *Job) ApplyDefaults() {
	if j.Company.Slug == "" {
		j.Company.Slug = format.NormalizeCompanyName(j.Company.Name)
	}
	if j.Slug == "" {
		j.Slug = format.NormalizeJobTitle(j.Title)
	}
	if j.EmploymentType == "" {
		j.EmploymentType = "FULL_TIME"
	}
	if j.Currency == "" {
		j.Currency = DefaultCurrency
	}
	if j.Status == "" {
		j.Status = JobStatusActive
	}
	if j.Skills == nil {
		j.Skills = []string{}
	}
	if j.Benefits == nil {
		j.Benefits = []string{}
	}
	if j.Requirements == nil {
		j.Requirements = []string{}
	}
}

type JobFilter struct {
	Search   string
	Location string
	Status   string
	Limit    int
	Offset   int
}

type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id int64) (*Job, error)
	Fetch(ctx context.Context, filter JobFilter) ([]Job, int64, error)
	Search(ctx context.Context, term string, limit int) ([]Job, error)
	Update(ctx context.Context, job *Job) error
	Delete(ctx context.Context, id int64) error
}

type JobUsecase interface {
	ListJobs(ctx context.Context, search, location string, page, pageSize int) ([]Job, int64, error)
	SearchJobs(ctx context.Context, term string) ([]Job, error)
	GetJob(ctx context.Context, id int64) (*Job, error)
	CreateJob(ctx context.Context, job *Job) error
	UpdateJob(ctx context.Context, job *Job) error
	DeleteJob(ctx context.Context, id int64) error
}
