package client

import "go-rise-platform/internal/domain"

// The wire types are shared with the server.
type (
	Job                = domain.Job
	CatalogItem        = domain.CatalogItem
	Enrollment         = domain.Enrollment
	User               = domain.User
	AuthResult         = domain.AuthResult
	Upload             = domain.Upload
	Registration       = domain.Registration
	RegistrationInput  = domain.RegistrationInput
	RegistrationStats  = domain.RegistrationStats
	SubmissionResult   = domain.SubmissionResult
	SubmissionStatus   = domain.SubmissionStatus
	PaymentTransaction = domain.PaymentTransaction
	WidgetConfig       = domain.WidgetConfig
	Pagination         = domain.Pagination
)

type JobList struct {
	Jobs     []Job `json:"jobs"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

type JobQuery struct {
	Search   string
	Location string
	Page     int
	PageSize int
}

type RegistrationList struct {
	Registrations []Registration `json:"registrations"`
	Pagination    Pagination     `json:"pagination"`
}

type RegistrationQuery struct {
	Page            int
	Limit           int
	Search          string
	Status          string
	ScholarshipType string
	SortBy          string
	SortOrder       string
}

type UploadResult struct {
	ID   string            `json:"id"`
	URL  string            `json:"url"`
	Kind domain.UploadKind `json:"kind"`
}
