package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-rise-platform/internal/domain"
	"go-rise-platform/internal/events"
	"go-rise-platform/internal/metrics"
	"go-rise-platform/pkg/apperror"
	"go-rise-platform/pkg/logger"
	"go-rise-platform/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
)

const duplicateRegistration = "Email sudah terdaftar untuk RYLS"

type registrationUsecase struct {
	regRepo    domain.RegistrationRepository
	uploadRepo domain.UploadRepository
	validate   *validator.Validate
	mailer     domain.RegistrationMailer
	publisher  domain.EventPublisher
}

func NewRegistrationUsecase(
	regRepo domain.RegistrationRepository,
	uploadRepo domain.UploadRepository,
	validate *validator.Validate,
	mailer domain.RegistrationMailer,
	publisher domain.EventPublisher,
) domain.RegistrationUsecase {
	return &registrationUsecase{
		regRepo:    regRepo,
		uploadRepo: uploadRepo,
		validate:   validate,
		mailer:     mailer,
		publisher:  publisher,
	}
}

// requireUpload checks that id names a stored upload of the given kind.
func (u *registrationUsecase) requireUpload(ctx context.Context, id string, kind domain.UploadKind, label string) error {
	upload, err := u.uploadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.BadRequest(label + ": File tidak ditemukan, silakan upload ulang")
		}
		return apperror.Internal(err)
	}
	if upload.Kind != kind {
		return apperror.BadRequest(label + ": Jenis file tidak sesuai")
	}
	return nil
}

func (u *registrationUsecase) Submit(ctx context.Context, in domain.RegistrationInput, forcedType string) (*domain.SubmissionResult, error) {
	in.Step1.Email = strings.ToLower(strings.TrimSpace(in.Step1.Email))
	in.Step1.FullName = strings.TrimSpace(in.Step1.FullName)
	in.Step1.Whatsapp = validation.NormalizePhone(in.Step1.Whatsapp)

	if forcedType != "" {
		if in.Step1.ScholarshipType == "" {
			in.Step1.ScholarshipType = forcedType
		}
		if in.Step1.ScholarshipType != forcedType {
			return nil, apperror.BadRequest(fmt.Sprintf("Jenis Beasiswa: Endpoint ini hanya menerima %s", forcedType))
		}
	}

	if err := u.validate.Struct(in.Step1); err != nil {
		return nil, apperror.BadRequest(validation.FirstMessage(err))
	}

	switch in.Step1.ScholarshipType {
	case domain.ScholarshipFullyFunded:
		if in.FullyFunded == nil {
			return nil, apperror.BadRequest("Data esai wajib diisi untuk beasiswa Fully Funded")
		}
		if err := u.validate.Struct(in.FullyFunded); err != nil {
			return nil, apperror.BadRequest(validation.FirstMessage(err))
		}
		if err := u.requireUpload(ctx, in.FullyFunded.EssayFileID, domain.UploadEssay, "File Esai"); err != nil {
			return nil, err
		}
		in.SelfFunded = nil
	case domain.ScholarshipSelfFunded:
		if in.SelfFunded == nil {
			return nil, apperror.BadRequest("Data paspor dan foto wajib diisi untuk Self Funded")
		}
		in.SelfFunded.PassportNumber = strings.ToUpper(strings.TrimSpace(in.SelfFunded.PassportNumber))
		if err := u.validate.Struct(in.SelfFunded); err != nil {
			return nil, apperror.BadRequest(validation.FirstMessage(err))
		}
		if err := u.requireUpload(ctx, in.SelfFunded.HeadshotFileID, domain.UploadHeadshot, "Foto Formal"); err != nil {
			return nil, err
		}
		in.FullyFunded = nil
	}

	exists, err := u.regRepo.ExistsByEmail(ctx, in.Step1.Email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if exists {
		return nil, apperror.Conflict(duplicateRegistration)
	}

	now := time.Now()
	reg := &domain.Registration{
		SubmissionID: uuid.NewString(),
		Step1:        in.Step1,
		FullyFunded:  in.FullyFunded,
		SelfFunded:   in.SelfFunded,
		Status:       domain.RegistrationPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.regRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.Conflict(duplicateRegistration)
		}
		return nil, apperror.Internal(err)
	}

	metrics.RegistrationsTotal.WithLabelValues(reg.Step1.ScholarshipType).Inc()
	logger.Log.Info("Registration submitted",
		"registration_id", reg.ID,
		"submission_id", reg.SubmissionID,
		"scholarship_type", reg.Step1.ScholarshipType,
	)

	events.PublishAsync(u.publisher, domain.SubjectRegistrationSubmitted, domain.RegistrationSubmitted{
		SubmissionID:    reg.SubmissionID,
		RegistrationID:  reg.ID,
		Email:           reg.Step1.Email,
		ScholarshipType: reg.Step1.ScholarshipType,
		At:              now,
	})

	if u.mailer != nil && u.mailer.IsConfigured() {
		go func(r domain.Registration) {
			if err := u.mailer.SendRegistrationConfirmation(&r); err != nil {
				logger.Log.Error("Failed to send registration confirmation", "submission_id", r.SubmissionID, "error", err)
			}
		}(*reg)
	}

	return &domain.SubmissionResult{
		SubmissionID:   reg.SubmissionID,
		RegistrationID: reg.ID,
		Status:         reg.Status,
	}, nil
}

func (u *registrationUsecase) CheckEmail(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, apperror.BadRequest("Email wajib diisi")
	}
	exists, err := u.regRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return false, apperror.Internal(err)
	}
	return exists, nil
}

func (u *registrationUsecase) GetBySubmission(ctx context.Context, submissionID string) (*domain.Registration, error) {
	if _, err := uuid.Parse(submissionID); err != nil {
		return nil, apperror.NotFound("Registration not found")
	}
	reg, err := u.regRepo.GetBySubmissionID(ctx, submissionID)
	if err != nil {
		return nil, notFoundOr(err, "Registration not found")
	}
	return reg, nil
}

func (u *registrationUsecase) GetSubmissionStatus(ctx context.Context, submissionID string) (*domain.SubmissionStatus, error) {
	reg, err := u.GetBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	return &domain.SubmissionStatus{
		SubmissionID:    reg.SubmissionID,
		RegistrationID:  reg.ID,
		Status:          reg.Status,
		ScholarshipType: reg.Step1.ScholarshipType,
		PaymentType:     reg.Payment.Type,
		PaymentStatus:   reg.Payment.Status,
		UpdatedAt:       reg.UpdatedAt,
	}, nil
}

func (u *registrationUsecase) AdminList(ctx context.Context, filter domain.RegistrationFilter) ([]domain.Registration, domain.Pagination, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit, 10, 100)
	filter.Search = strings.TrimSpace(filter.Search)

	regs, total, err := u.regRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, apperror.Internal(err)
	}
	if regs == nil {
		regs = []domain.Registration{}
	}
	return regs, domain.NewPagination(filter.Page, filter.Limit, total), nil
}

func (u *registrationUsecase) AdminGet(ctx context.Context, id int64) (*domain.Registration, error) {
	reg, err := u.regRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Registration not found")
	}
	return reg, nil
}

func (u *registrationUsecase) Stats(ctx context.Context) (*domain.RegistrationStats, error) {
	stats, err := u.regRepo.Stats(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return stats, nil
}

func (u *registrationUsecase) UpdateStatus(ctx context.Context, id int64, status string) error {
	status = strings.ToUpper(strings.TrimSpace(status))
	if !lo.Contains(domain.RegistrationStatuses, status) {
		return apperror.BadRequest("Status must be one of PENDING, APPROVED, REJECTED")
	}
	if err := u.regRepo.UpdateStatus(ctx, id, status); err != nil {
		return notFoundOr(err, "Registration not found")
	}
	logger.Log.Info("Registration status updated", "registration_id", id, "status", status)
	return nil
}

func (u *registrationUsecase) Delete(ctx context.Context, id int64) error {
	if err := u.regRepo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Registration not found")
	}
	return nil
}

var exportHeaders = []string{
	"ID", "SUBMISSION ID", "FULL NAME", "EMAIL", "WHATSAPP", "RESIDENCE", "NATIONALITY",
	"INSTITUTION", "DATE OF BIRTH", "GENDER", "DISCOVER SOURCE", "SCHOLARSHIP TYPE",
	"ESSAY TOPIC", "PASSPORT NUMBER", "NEED VISA", "STATUS", "PAYMENT TYPE", "PAYMENT STATUS",
	"SUBMITTED AT",
}

func exportRow(r domain.Registration) []interface{} {
	var essayTopic, passport, needVisa string
	if r.FullyFunded != nil {
		essayTopic = r.FullyFunded.EssayTopic
	}
	if r.SelfFunded != nil {
		passport = r.SelfFunded.PassportNumber
		needVisa = r.SelfFunded.NeedVisa
	}
	return []interface{}{
		r.ID, r.SubmissionID, r.Step1.FullName, r.Step1.Email, r.Step1.Whatsapp, r.Step1.Residence,
		r.Step1.Nationality, r.Step1.Institution, r.Step1.DateOfBirth, r.Step1.Gender,
		r.Step1.DiscoverSource, r.Step1.ScholarshipType, essayTopic, passport, needVisa, r.Status,
		r.Payment.Type, r.Payment.Status, r.CreatedAt.Format("2006-01-02 15:04"),
	}
}

// Export renders every registration matching the filter (no paging) as an XLSX workbook.
func (u *registrationUsecase) Export(ctx context.Context, filter domain.RegistrationFilter) ([]byte, error) {
	filter.Page, filter.Limit = 1, 0
	regs, _, err := u.regRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Registrations"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, apperror.Internal(err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	f.SetCellStyle(sheet, "A1", endCell, headerStyle)

	for rowIdx, reg := range regs {
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		row := exportRow(reg)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, apperror.Internal(err)
		}
	}

	for i := range exportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to write Excel file: %w", err))
	}
	return buf.Bytes(), nil
}
