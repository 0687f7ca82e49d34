package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go-rise-platform/internal/domain"

	"github.com/samber/lo"
)

const suggestionLimit = 8

func (c *Client) Jobs(ctx context.Context, q JobQuery) (*JobList, error) {
	query := url.Values{}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Location != "" {
		query.Set("location", q.Location)
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(q.PageSize))
	}
	var out JobList
	if err := c.get(ctx, "/jobs", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) JobByID(ctx context.Context, id int64) (*Job, error) {
	var job Job
	if err := c.get(ctx, "/jobs/"+strconv.FormatInt(id, 10), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) SearchJobs(ctx context.Context, term string) ([]Job, error) {
	var jobs []Job
	if err := c.get(ctx, "/jobs/search", url.Values{"search": {term}}, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// SuggestJobs returns distinct job titles for autocomplete. Results are
// cached per normalised term.
func (c *Client) SuggestJobs(ctx context.Context, term string) ([]string, error) {
	key := strings.ToLower(strings.TrimSpace(term))
	if key == "" {
		return []string{}, nil
	}
	if cached, ok := c.suggestions.Get(key); ok {
		return append([]string(nil), cached.([]string)...), nil
	}

	jobs, err := c.SearchJobs(ctx, key)
	if err != nil {
		return nil, err
	}
	titles := lo.Uniq(lo.Map(jobs, func(j Job, _ int) string { return j.Title }))
	if len(titles) > suggestionLimit {
		titles = titles[:suggestionLimit]
	}
	c.suggestions.SetDefault(key, titles)
	return append([]string(nil), titles...), nil
}

func (c *Client) listCatalog(ctx context.Context, segment string) ([]CatalogItem, error) {
	var items []CatalogItem
	if err := c.get(ctx, "/"+segment, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) getCatalog(ctx context.Context, segment, slug string) (*CatalogItem, error) {
	var item CatalogItem
	if err := c.get(ctx, "/"+segment+"/"+url.PathEscape(slug), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Catalog lists items of kind; it backs the typed Programs/Bootcamps/... calls.
func (c *Client) Catalog(ctx context.Context, kind domain.CatalogKind) ([]CatalogItem, error) {
	return c.listCatalog(ctx, catalogSegment(kind))
}

func (c *Client) CatalogItem(ctx context.Context, kind domain.CatalogKind, slug string) (*CatalogItem, error) {
	return c.getCatalog(ctx, catalogSegment(kind), slug)
}

func catalogSegment(kind domain.CatalogKind) string {
	switch kind {
	case domain.KindBootcamp:
		return "bootcamps"
	case domain.KindAcademy:
		return "academies"
	case domain.KindCourse:
		return "courses"
	}
	return "programs"
}

func (c *Client) Programs(ctx context.Context) ([]CatalogItem, error) {
	return c.listCatalog(ctx, "programs")
}

func (c *Client) Program(ctx context.Context, slug string) (*CatalogItem, error) {
	return c.getCatalog(ctx, "programs", slug)
}

func (c *Client) Bootcamps(ctx context.Context) ([]CatalogItem, error) {
	return c.listCatalog(ctx, "bootcamps")
}

func (c *Client) Bootcamp(ctx context.Context, slug string) (*CatalogItem, error) {
	return c.getCatalog(ctx, "bootcamps", slug)
}

func (c *Client) Academies(ctx context.Context) ([]CatalogItem, error) {
	return c.listCatalog(ctx, "academies")
}

func (c *Client) Academy(ctx context.Context, slug string) (*CatalogItem, error) {
	return c.getCatalog(ctx, "academies", slug)
}

func (c *Client) Courses(ctx context.Context) ([]CatalogItem, error) {
	return c.listCatalog(ctx, "courses")
}

func (c *Client) Course(ctx context.Context, slug string) (*CatalogItem, error) {
	return c.getCatalog(ctx, "courses", slug)
}

func (c *Client) Enroll(ctx context.Context, slug string) (*Enrollment, error) {
	var e Enrollment
	if err := c.doJSON(ctx, http.MethodPost, "/programs/"+url.PathEscape(slug)+"/enroll", nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) Progress(ctx context.Context, slug string) (*Enrollment, error) {
	var e Enrollment
	if err := c.get(ctx, "/programs/"+url.PathEscape(slug)+"/progress", nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) UpdateProgress(ctx context.Context, slug string, completed []string) (*Enrollment, error) {
	body := map[string][]string{"completed_sessions": completed}
	var e Enrollment
	if err := c.doJSON(ctx, http.MethodPut, "/programs/"+url.PathEscape(slug)+"/progress", body, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) MyPrograms(ctx context.Context) ([]Enrollment, error) {
	var out []Enrollment
	if err := c.get(ctx, "/me/programs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var res AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var res AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *Client) Profile(ctx context.Context) (*User, error) {
	var u User
	if err := c.get(ctx, "/auth/profile", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, name string) (*User, error) {
	var u User
	if err := c.doJSON(ctx, http.MethodPut, "/auth/profile", map[string]string{"name": name}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"current_password": current, "new_password": next}
	return c.doJSON(ctx, http.MethodPost, "/auth/change-password", body, nil)
}

func (c *Client) CheckEmail(ctx context.Context, email string) (bool, error) {
	var out struct {
		EmailExists bool `json:"email_exists"`
	}
	if err := c.get(ctx, "/registrations/check-email/"+url.PathEscape(email), nil, &out); err != nil {
		return false, err
	}
	return out.EmailExists, nil
}

// SubmitRegistration posts to the branch endpoint matching the scholarship type.
func (c *Client) SubmitRegistration(ctx context.Context, in RegistrationInput) (*SubmissionResult, error) {
	path := "/registrations"
	switch in.Step1.ScholarshipType {
	case domain.ScholarshipFullyFunded:
		path += "/fully-funded"
	case domain.ScholarshipSelfFunded:
		path += "/self-funded"
	}
	var res SubmissionResult
	if err := c.doJSON(ctx, http.MethodPost, path, in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Registration(ctx context.Context, submissionID string) (*Registration, error) {
	var reg Registration
	if err := c.get(ctx, "/registrations/submission/"+url.PathEscape(submissionID), nil, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (c *Client) RegistrationStatus(ctx context.Context, submissionID string) (*SubmissionStatus, error) {
	var st SubmissionStatus
	if err := c.get(ctx, "/registrations/submission/"+url.PathEscape(submissionID)+"/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) uploadKind(ctx context.Context, kind domain.UploadKind, f File) (*UploadResult, error) {
	var res UploadResult
	if err := c.upload(ctx, "/uploads/"+string(kind), f, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) UploadEssay(ctx context.Context, f File) (*UploadResult, error) {
	return c.uploadKind(ctx, domain.UploadEssay, f)
}

func (c *Client) UploadHeadshot(ctx context.Context, f File) (*UploadResult, error) {
	return c.uploadKind(ctx, domain.UploadHeadshot, f)
}

func (c *Client) UploadPaymentProof(ctx context.Context, f File) (*UploadResult, error) {
	return c.uploadKind(ctx, domain.UploadPaymentProof, f)
}

func (c *Client) PaymentConfig(ctx context.Context) (*WidgetConfig, error) {
	var cfg WidgetConfig
	if err := c.get(ctx, "/payments/ryls/config", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Client) CreateTransaction(ctx context.Context, in domain.CreateTransactionInput) (*PaymentTransaction, error) {
	var tx PaymentTransaction
	if err := c.doJSON(ctx, http.MethodPost, "/payments/ryls/transactions", in, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (c *Client) PaymentStatus(ctx context.Context, registrationID int64) (*PaymentTransaction, error) {
	var tx PaymentTransaction
	path := "/payments/ryls/" + strconv.FormatInt(registrationID, 10) + "/status"
	if err := c.get(ctx, path, nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}
