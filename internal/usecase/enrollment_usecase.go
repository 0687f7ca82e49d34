package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-rise-platform/internal/domain"
	"go-rise-platform/pkg/apperror"

	"github.com/samber/lo"
)

type enrollmentUsecase struct {
	enrollRepo  domain.EnrollmentRepository
	catalogRepo domain.CatalogRepository
}

func NewEnrollmentUsecase(enrollRepo domain.EnrollmentRepository, catalogRepo domain.CatalogRepository) domain.EnrollmentUsecase {
	return &enrollmentUsecase{enrollRepo: enrollRepo, catalogRepo: catalogRepo}
}

func (u *enrollmentUsecase) program(ctx context.Context, slug string) (*domain.CatalogItem, error) {
	item, err := u.catalogRepo.GetBySlug(ctx, domain.KindProgram, slug)
	if err != nil {
		return nil, notFoundOr(err, "Program not found")
	}
	return item, nil
}

// Enroll is idempotent: a second call returns the existing enrollment.
func (u *enrollmentUsecase) Enroll(ctx context.Context, userID, slug string) (*domain.Enrollment, error) {
	item, err := u.program(ctx, slug)
	if err != nil {
		return nil, err
	}

	existing, err := u.enrollRepo.Get(ctx, userID, item.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	now := time.Now()
	e := &domain.Enrollment{
		ItemID:            item.ID,
		ItemSlug:          item.Slug,
		UserID:            userID,
		Status:            domain.EnrollmentActive,
		CompletedSessions: []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := u.enrollRepo.Create(ctx, e); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return u.enrollRepo.Get(ctx, userID, item.ID)
		}
		return nil, apperror.Internal(err)
	}
	return e, nil
}

func (u *enrollmentUsecase) GetProgress(ctx context.Context, userID, slug string) (*domain.Enrollment, error) {
	item, err := u.program(ctx, slug)
	if err != nil {
		return nil, err
	}
	e, err := u.enrollRepo.Get(ctx, userID, item.ID)
	if err != nil {
		return nil, notFoundOr(err, "Not enrolled in this program")
	}
	return e, nil
}

// UpdateProgress replaces the completed session list. Every title must exist in the syllabus.
func (u *enrollmentUsecase) UpdateProgress(ctx context.Context, userID, slug string, completed []string) (*domain.Enrollment, error) {
	item, err := u.program(ctx, slug)
	if err != nil {
		return nil, err
	}
	e, err := u.enrollRepo.Get(ctx, userID, item.ID)
	if err != nil {
		return nil, notFoundOr(err, "Not enrolled in this program")
	}

	completed = lo.Uniq(completed)
	for _, title := range completed {
		if !item.HasSession(title) {
			return nil, apperror.BadRequest(fmt.Sprintf("Unknown session: %s", title))
		}
	}

	e.CompletedSessions = completed
	e.ProgressPercent = ProgressPercent(len(completed), item.TotalSessions())
	e.Status = domain.EnrollmentActive
	if e.ProgressPercent >= 100 {
		e.Status = domain.EnrollmentCompleted
	}
	e.UpdatedAt = time.Now()

	if err := u.enrollRepo.UpdateProgress(ctx, e); err != nil {
		return nil, notFoundOr(err, "Not enrolled in this program")
	}
	return e, nil
}

func (u *enrollmentUsecase) ListMine(ctx context.Context, userID string) ([]domain.Enrollment, error) {
	list, err := u.enrollRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return list, nil
}

// ProgressPercent rounds down; a syllabus without sessions is never complete.
func ProgressPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return completed * 100 / total
}
