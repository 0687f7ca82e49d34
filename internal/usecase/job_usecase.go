package usecase

import (
	"context"
	"strings"
	"time"

	"go-rise-platform/internal/domain"
	"go-rise-platform/pkg/apperror"
)

const jobSearchLimit = 50

type jobUsecase struct {
	jobRepo domain.JobRepository
}

func NewJobUsecase(jobRepo domain.JobRepository) domain.JobUsecase {
	return &jobUsecase{jobRepo: jobRepo}
}

func validateJob(job *domain.Job) error {
	if strings.TrimSpace(job.Title) == "" {
		return apperror.BadRequest("Title is required")
	}
	if strings.TrimSpace(job.Company.Name) == "" {
		return apperror.BadRequest("Company name is required")
	}
	if job.SalaryMin < 0 || job.SalaryMax < 0 {
		return apperror.BadRequest("Salary cannot be negative")
	}
	if job.SalaryMax > 0 && job.SalaryMin > job.SalaryMax {
		return apperror.BadRequest("SalaryMin cannot be greater than SalaryMax")
	}
	return nil
}

func (u *jobUsecase) ListJobs(ctx context.Context, search, location string, page, pageSize int) ([]domain.Job, int64, error) {
	page, pageSize = normalizePage(page, pageSize, 12, 100)
	jobs, total, err := u.jobRepo.Fetch(ctx, domain.JobFilter{
		Search:   search,
		Location: location,
		Status:   domain.JobStatusActive,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	})
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return jobs, total, nil
}

func (u *jobUsecase) SearchJobs(ctx context.Context, term string) ([]domain.Job, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.Job{}, nil
	}
	jobs, err := u.jobRepo.Search(ctx, term, jobSearchLimit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return jobs, nil
}

func (u *jobUsecase) GetJob(ctx context.Context, id int64) (*domain.Job, error) {
	job, err := u.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Job not found")
	}
	return job, nil
}

func (u *jobUsecase) CreateJob(ctx context.Context, job *domain.Job) error {
	if err := validateJob(job); err != nil {
		return err
	}
	job.ApplyDefaults()

	now := time.Now()
	if job.PostedAt.IsZero() {
		job.PostedAt = now
	}
	job.CreatedAt = now
	job.UpdatedAt = now

	if err := u.jobRepo.Create(ctx, job); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (u *jobUsecase) UpdateJob(ctx context.Context, job *domain.Job) error {
	if err := validateJob(job); err != nil {
		return err
	}
	existing, err := u.jobRepo.GetByID(ctx, job.ID)
	if err != nil {
		return notFoundOr(err, "Job not found")
	}

	job.ApplyDefaults()
	job.CreatedAt = existing.CreatedAt
	job.PostedAt = existing.PostedAt
	job.UpdatedAt = time.Now()

	if err := u.jobRepo.Update(ctx, job); err != nil {
		return notFoundOr(err, "Job not found")
	}
	return nil
}

func (u *jobUsecase) DeleteJob(ctx context.Context, id int64) error {
	if err := u.jobRepo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Job not found")
	}
	return nil
}
