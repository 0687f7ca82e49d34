package usecase_test

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"go-rise-platform/internal/domain"
	"go-rise-platform/internal/events"
	"go-rise-platform/internal/usecase"
	"go-rise-platform/pkg/apperror"
	"go-rise-platform/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const (
	essayID    = "5b0b8a4e-8a1f-4c38-9d44-0f8d2a4f6a11"
	headshotID = "9e3c2f1a-7b6d-4e5f-8a9b-0c1d2e3f4a5b"
)

func step1(scholarship string) domain.Step1 {
	return domain.Step1{
		FullName:        "Siti Aminah",
		Email:           "Siti@Example.com",
		Residence:       "Jakarta",
		Nationality:     "Indonesia",
		Whatsapp:        "+62 812-3456-789",
		Institution:     "Universitas Indonesia",
		DateOfBirth:     "2004-05-06",
		Gender:          domain.GenderFemale,
		DiscoverSource:  domain.DiscoverFriends,
		ScholarshipType: scholarship,
	}
}

func fullyFundedInput() domain.RegistrationInput {
	return domain.RegistrationInput{
		Step1: step1(domain.ScholarshipFullyFunded),
		FullyFunded: &domain.FullyFundedData{
			EssayTopic:       "GREEN_ACTION",
			EssayFileID:      essayID,
			EssayDescription: "Mangrove restoration with local schools",
		},
	}
}

func newRegistration(pub domain.EventPublisher) (domain.RegistrationUsecase, *MockRegistrationRepo, *MockUploadRepo) {
	regs, uploads := new(MockRegistrationRepo), new(MockUploadRepo)
	return usecase.NewRegistrationUsecase(regs, uploads, validation.New(), nil, pub), regs, uploads
}

func TestRegistrationSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("Should store a fully funded registration and emit an event", func(t *testing.T) {
		pub := newRecordingPublisher()
		uc, regs, uploads := newRegistration(pub)
		uploads.On("GetByID", mock.Anything, essayID).Return(&domain.Upload{ID: essayID, Kind: domain.UploadEssay}, nil)
		regs.On("ExistsByEmail", mock.Anything, "siti@example.com").Return(false, nil)
		regs.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Registration) bool {
			return r.Step1.Email == "siti@example.com" &&
				r.Step1.Whatsapp == "+628123456789" &&
				r.SelfFunded == nil &&
				r.Status == domain.RegistrationPending
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Registration).ID = 41
		}).Return(nil)

		in := fullyFundedInput()
		in.SelfFunded = &domain.SelfFundedData{PassportNumber: "ignored"}
		res, err := uc.Submit(ctx, in, "")
		require.NoError(t, err)
		assert.Equal(t, int64(41), res.RegistrationID)
		assert.Len(t, res.SubmissionID, 36)
		assert.Equal(t, domain.RegistrationPending, res.Status)

		select {
		case subject := <-pub.events:
			assert.Equal(t, domain.SubjectRegistrationSubmitted, subject)
		case <-time.After(2 * time.Second):
			t.Fatal("registration event was not published")
		}
	})

	t.Run("Should reject a branch mismatch on a forced endpoint", func(t *testing.T) {
		uc, _, _ := newRegistration(events.NoopPublisher{})
		_, err := uc.Submit(ctx, fullyFundedInput(), domain.ScholarshipSelfFunded)
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("Should take the scholarship type from a forced endpoint", func(t *testing.T) {
		uc, regs, uploads := newRegistration(events.NoopPublisher{})
		uploads.On("GetByID", mock.Anything, headshotID).Return(&domain.Upload{ID: headshotID, Kind: domain.UploadHeadshot}, nil)
		regs.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
		regs.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Registration) bool {
			return r.Step1.ScholarshipType == domain.ScholarshipSelfFunded && r.SelfFunded.PassportNumber == "A1234567"
		})).Return(nil)

		in := domain.RegistrationInput{
			Step1: step1(""),
			SelfFunded: &domain.SelfFundedData{
				PassportNumber: "a1234567",
				NeedVisa:       domain.No,
				HeadshotFileID: headshotID,
				ReadPolicies:   domain.Yes,
			},
		}
		_, err := uc.Submit(ctx, in, domain.ScholarshipSelfFunded)
		require.NoError(t, err)
		regs.AssertExpectations(t)
	})

	t.Run("Should require the branch payload", func(t *testing.T) {
		uc, _, _ := newRegistration(events.NoopPublisher{})
		_, err := uc.Submit(ctx, domain.RegistrationInput{Step1: step1(domain.ScholarshipSelfFunded)}, "")
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("Should require policies to be read", func(t *testing.T) {
		uc, _, _ := newRegistration(events.NoopPublisher{})
		in := domain.RegistrationInput{
			Step1: step1(domain.ScholarshipSelfFunded),
			SelfFunded: &domain.SelfFundedData{
				PassportNumber: "A1234567", NeedVisa: domain.Yes, HeadshotFileID: headshotID, ReadPolicies: domain.No,
			},
		}
		_, err := uc.Submit(ctx, in, "")
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
		assert.Contains(t, err.Error(), "Persetujuan Kebijakan")
	})

	t.Run("Should reject a file id of the wrong kind", func(t *testing.T) {
		uc, _, uploads := newRegistration(events.NoopPublisher{})
		uploads.On("GetByID", mock.Anything, essayID).Return(&domain.Upload{ID: essayID, Kind: domain.UploadHeadshot}, nil)
		_, err := uc.Submit(ctx, fullyFundedInput(), "")
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("Should answer 409 for a registered email", func(t *testing.T) {
		uc, regs, uploads := newRegistration(events.NoopPublisher{})
		uploads.On("GetByID", mock.Anything, essayID).Return(&domain.Upload{ID: essayID, Kind: domain.UploadEssay}, nil)
		regs.On("ExistsByEmail", mock.Anything, "siti@example.com").Return(true, nil)
		_, err := uc.Submit(ctx, fullyFundedInput(), "")
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
	})

	t.Run("Should answer 409 when the insert races", func(t *testing.T) {
		uc, regs, uploads := newRegistration(events.NoopPublisher{})
		uploads.On("GetByID", mock.Anything, essayID).Return(&domain.Upload{ID: essayID, Kind: domain.UploadEssay}, nil)
		regs.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
		regs.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicate)
		_, err := uc.Submit(ctx, fullyFundedInput(), "")
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
	})

	t.Run("Should reject a malformed step one", func(t *testing.T) {
		uc, _, _ := newRegistration(events.NoopPublisher{})
		in := fullyFundedInput()
		in.Step1.Email = "not-an-email"
		_, err := uc.Submit(ctx, in, "")
		assert.Equal(t, "Email: Format email tidak valid", err.Error())
	})
}

func TestRegistrationQueries(t *testing.T) {
	ctx := context.Background()
	reg := &domain.Registration{
		ID:           41,
		SubmissionID: essayID,
		Step1:        step1(domain.ScholarshipSelfFunded),
		SelfFunded:   &domain.SelfFundedData{PassportNumber: "A1234567", NeedVisa: domain.Yes},
		Payment:      domain.PaymentInfo{Type: domain.PaymentTypeMidtrans, Status: domain.PaymentPending},
		Status:       domain.RegistrationPending,
	}

	t.Run("Should report submission status", func(t *testing.T) {
		uc, regs, _ := newRegistration(events.NoopPublisher{})
		regs.On("GetBySubmissionID", mock.Anything, essayID).Return(reg, nil)

		status, err := uc.GetSubmissionStatus(ctx, essayID)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentPending, status.PaymentStatus)
		assert.Equal(t, domain.ScholarshipSelfFunded, status.ScholarshipType)
	})

	t.Run("Should 404 malformed submission ids without a query", func(t *testing.T) {
		uc, regs, _ := newRegistration(events.NoopPublisher{})
		_, err := uc.GetBySubmission(ctx, "nope")
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
		regs.AssertNotCalled(t, "GetBySubmissionID", mock.Anything, mock.Anything)
	})

	t.Run("Should paginate admin listings", func(t *testing.T) {
		uc, regs, _ := newRegistration(events.NoopPublisher{})
		regs.On("List", mock.Anything, domain.RegistrationFilter{Page: 1, Limit: 10, Search: "siti"}).
			Return([]domain.Registration{*reg}, int64(21), nil)

		list, page, err := uc.AdminList(ctx, domain.RegistrationFilter{Page: 0, Search: " siti "})
		require.NoError(t, err)
		assert.Len(t, list, 1)
		assert.Equal(t, domain.Pagination{Page: 1, Limit: 10, Total: 21, TotalPages: 3}, page)
	})

	t.Run("Should validate status updates", func(t *testing.T) {
		uc, regs, _ := newRegistration(events.NoopPublisher{})
		regs.On("UpdateStatus", mock.Anything, int64(41), domain.RegistrationApproved).Return(nil)
		regs.On("UpdateStatus", mock.Anything, int64(99), domain.RegistrationRejected).Return(domain.ErrNotFound)

		assert.NoError(t, uc.UpdateStatus(ctx, 41, "approved"))
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(uc.UpdateStatus(ctx, 41, "ARCHIVED")))
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(uc.UpdateStatus(ctx, 99, "REJECTED")))
	})

	t.Run("Should export a styled workbook", func(t *testing.T) {
		uc, regs, _ := newRegistration(events.NoopPublisher{})
		regs.On("List", mock.Anything, domain.RegistrationFilter{Page: 1, Limit: 0, Status: "PENDING"}).
			Return([]domain.Registration{*reg}, int64(1), nil)

		data, err := uc.Export(ctx, domain.RegistrationFilter{Page: 3, Limit: 10, Status: "PENDING"})
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer f.Close()
		header, _ := f.GetCellValue("Registrations", "C1")
		name, _ := f.GetCellValue("Registrations", "C2")
		passport, _ := f.GetCellValue("Registrations", "N2")
		assert.Equal(t, "FULL NAME", header)
		assert.Equal(t, "Siti Aminah", name)
		assert.Equal(t, "A1234567", passport)
	})
}
