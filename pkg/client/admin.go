package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) CreateJob(ctx context.Context, job Job) (*Job, error) {
	var out Job
	if err := c.doJSON(ctx, http.MethodPost, "/jobs", job, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateJob(ctx context.Context, id int64, job Job) (*Job, error) {
	var out Job
	if err := c.doJSON(ctx, http.MethodPut, "/jobs/"+strconv.FormatInt(id, 10), job, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteJob(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/jobs/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) AdminRegistrations(ctx context.Context, q RegistrationQuery) (*RegistrationList, error) {
	query := url.Values{}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	for k, v := range map[string]string{
		"search":           q.Search,
		"status":           q.Status,
		"scholarship_type": q.ScholarshipType,
		"sort_by":          q.SortBy,
		"sort_order":       q.SortOrder,
	} {
		if v != "" {
			query.Set(k, v)
		}
	}

	var out RegistrationList
	if err := c.get(ctx, "/admin/registrations", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRegistrationStatus(ctx context.Context, id int64, status string) error {
	path := "/admin/registrations/" + strconv.FormatInt(id, 10) + "/status"
	return c.doJSON(ctx, http.MethodPatch, path, map[string]string{"status": status}, nil)
}

func (c *Client) DeleteRegistration(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/admin/registrations/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) RegistrationStats(ctx context.Context) (*RegistrationStats, error) {
	var st RegistrationStats
	if err := c.get(ctx, "/admin/registrations/stats", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
