package postgres

import (
	"context"
	"fmt"
	"strings"

	"go-rise-platform/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type jobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepo{db: db}
}

const jobColumns = `id, slug, title, description, company_name, company_slug, company_logo_url, company_industry,
	city, region, country, is_remote, employment_type, experience_level, salary_min, salary_max, currency,
	skills, benefits, requirements, status, posted_at, created_at, updated_at`

func scanJob(row pgx.Row) (*domain.Job, error) {
	var j domain.Job
	err := row.Scan(
		&j.ID, &j.Slug, &j.Title, &j.Description,
		&j.Company.Name, &j.Company.Slug, &j.Company.LogoURL, &j.Company.Industry,
		&j.Location.City, &j.Location.Region, &j.Location.Country, &j.Location.IsRemote,
		&j.EmploymentType, &j.ExperienceLevel, &j.SalaryMin, &j.SalaryMax, &j.Currency,
		pq.Array(&j.Skills), pq.Array(&j.Benefits), pq.Array(&j.Requirements),
		&j.Status, &j.PostedAt, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	j.ApplyDefaults()
	return &j, nil
}

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	query := `INSERT INTO jobs (slug, title, description, company_name, company_slug, company_logo_url, company_industry,
                  city, region, country, is_remote, employment_type, experience_level, salary_min, salary_max, currency,
                  skills, benefits, requirements, status, posted_at, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
              RETURNING id`
	err := r.db.QueryRow(ctx, query,
		job.Slug, job.Title, job.Description, job.Company.Name, job.Company.Slug, job.Company.LogoURL, job.Company.Industry,
		job.Location.City, job.Location.Region, job.Location.Country, job.Location.IsRemote,
		job.EmploymentType, job.ExperienceLevel, job.SalaryMin, job.SalaryMax, job.Currency,
		pq.Array(job.Skills), pq.Array(job.Benefits), pq.Array(job.Requirements),
		job.Status, job.PostedAt, job.CreatedAt, job.UpdatedAt,
	).Scan(&job.ID)
	return mapError(err)
}

func (r *jobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	job, err := scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return job, nil
}

// buildJobWhere turns a filter into a WHERE clause with positional args.
func buildJobWhere(filter domain.JobFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR company_name ILIKE $%d OR description ILIKE $%d)", n, n, n))
	}
	if l := strings.TrimSpace(filter.Location); l != "" {
		args = append(args, "%"+l+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(city ILIKE $%d OR region ILIKE $%d OR country ILIKE $%d)", n, n, n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *jobRepo) Fetch(ctx context.Context, filter domain.JobFilter) ([]domain.Job, int64, error) {
	where, args := buildJobWhere(filter)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM jobs%s ORDER BY posted_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		jobColumns, where, len(args)+1, len(args)+2)
	jobs, err := r.query(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// Search matches title, company and skills for the type-ahead box.
func (r *jobRepo) Search(ctx context.Context, term string, limit int) ([]domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs
              WHERE status = 'active'
                AND (title ILIKE $1 OR company_name ILIKE $1 OR array_to_string(skills, ' ') ILIKE $1)
              ORDER BY posted_at DESC LIMIT $2`
	return r.query(ctx, query, "%"+term+"%", limit)
}

func (r *jobRepo) query(ctx context.Context, query string, args ...interface{}) ([]domain.Job, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []domain.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func (r *jobRepo) Update(ctx context.Context, job *domain.Job) error {
	query := `UPDATE jobs SET slug = $2, title = $3, description = $4, company_name = $5, company_slug = $6,
                  company_logo_url = $7, company_industry = $8, city = $9, region = $10, country = $11, is_remote = $12,
                  employment_type = $13, experience_level = $14, salary_min = $15, salary_max = $16, currency = $17,
                  skills = $18, benefits = $19, requirements = $20, status = $21, updated_at = $22
              WHERE id = $1`
	return affected(r.db.Exec(ctx, query,
		job.ID, job.Slug, job.Title, job.Description, job.Company.Name, job.Company.Slug,
		job.Company.LogoURL, job.Company.Industry, job.Location.City, job.Location.Region, job.Location.Country, job.Location.IsRemote,
		job.EmploymentType, job.ExperienceLevel, job.SalaryMin, job.SalaryMax, job.Currency,
		pq.Array(job.Skills), pq.Array(job.Benefits), pq.Array(job.Requirements), job.Status, job.UpdatedAt,
	))
}

func (r *jobRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id))
}
