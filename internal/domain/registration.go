package domain

import (
	"context"
	"time"
)

// Scholarship (RYLS) registration enums.
const (
	ScholarshipFullyFunded = "FULLY_FUNDED"
	ScholarshipSelfFunded  = "SELF_FUNDED"

	RegistrationPending  = "PENDING"
	RegistrationApproved = "APPROVED"
	RegistrationRejected = "REJECTED"

	GenderMale           = "MALE"
	GenderFemale         = "FEMALE"
	GenderPreferNotToSay = "PREFER_NOT_TO_SAY"

	DiscoverRiseInstagram  = "RISE_INSTAGRAM"
	DiscoverOtherInstagram = "OTHER_INSTAGRAM"
	DiscoverFriends        = "FRIENDS"
	DiscoverOther          = "OTHER"

	Yes = "YES"
	No  = "NO"
)

var EssayTopics = []string{
	"GREEN_CLIMATE", "GREEN_CURRICULUM", "GREEN_INNOVATION", "GREEN_ACTION", "GREEN_TRANSITION",
}

var RegistrationStatuses = []string{RegistrationPending, RegistrationApproved, RegistrationRejected}

// Step1 is the personal-details page of the wizard, common to both branches.
type Step1 struct {
	FullName          string `json:"full_name" validate:"required,min=2,max=120,valid_name,no_emoji"`
	Email             string `json:"email" validate:"required,email,max=254"`
	Residence         string `json:"residence" validate:"required,max=120"`
	Nationality       string `json:"nationality" validate:"required,max=80"`
	SecondNationality string `json:"second_nationality,omitempty" validate:"omitempty,max=80"`
	Whatsapp          string `json:"whatsapp" validate:"required,valid_phone"`
	Institution       string `json:"institution" validate:"required,max=160"`
	DateOfBirth       string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Gender            string `json:"gender" validate:"required,oneof=MALE FEMALE PREFER_NOT_TO_SAY"`
	DiscoverSource    string `json:"discover_source" validate:"required,oneof=RISE_INSTAGRAM OTHER_INSTAGRAM FRIENDS OTHER"`
	DiscoverOtherText string `json:"discover_other_text,omitempty" validate:"required_if=DiscoverSource OTHER,max=200"`
	ScholarshipType   string `json:"scholarship_type" validate:"required,scholarship_type"`
}

type FullyFundedData struct {
	EssayTopic       string `json:"essay_topic" validate:"required,essay_topic"`
	EssayFileID      string `json:"essay_file_id" validate:"required,uuid"`
	EssayDescription string `json:"essay_description" validate:"required,max=2000"`
}

type SelfFundedData struct {
	PassportNumber string `json:"passport_number" validate:"required,alphanum,min=5,max=20"`
	NeedVisa       string `json:"need_visa" validate:"required,yes_no"`
	HeadshotFileID string `json:"headshot_file_id" validate:"required,uuid"`
	ReadPolicies   string `json:"read_policies" validate:"required,eq=YES"`
}

// PaymentInfo is the payment sub-object carried on a registration.
type PaymentInfo struct {
	ID          string `json:"id,omitempty"`
	Type        string `json:"type,omitempty"`
	Status      string `json:"status,omitempty"`
	ProofFileID string `json:"proof_file_id,omitempty"`
}

type Registration struct {
	ID           int64            `json:"id"`
	SubmissionID string           `json:"submission_id"`
	Step1        Step1            `json:"step1"`
	FullyFunded  *FullyFundedData `json:"fully_funded,omitempty"`
	SelfFunded   *SelfFundedData  `json:"self_funded,omitempty"`
	Payment      PaymentInfo      `json:"payment"`
	Status       string           `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// RegistrationInput is the single payload the wizard posts on submit.
type RegistrationInput struct {
	Step1       Step1            `json:"step1"`
	FullyFunded *FullyFundedData `json:"fully_funded,omitempty"`
	SelfFunded  *SelfFundedData  `json:"self_funded,omitempty"`
}

type SubmissionResult struct {
	SubmissionID   string `json:"submission_id"`
	RegistrationID int64  `json:"registration_id"`
	Status         string `json:"status"`
}

type SubmissionStatus struct {
	SubmissionID    string    `json:"submission_id"`
	RegistrationID  int64     `json:"registration_id"`
	Status          string    `json:"status"`
	ScholarshipType string    `json:"scholarship_type"`
	PaymentType     string    `json:"payment_type,omitempty"`
	PaymentStatus   string    `json:"payment_status,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type RegistrationFilter struct {
	Page            int
	Limit           int
	Search          string
	Status          string
	ScholarshipType string
	SortBy          string
	SortOrder       string
}

type RegistrationStats struct {
	Total             int64            `json:"total"`
	ByStatus          map[string]int64 `json:"by_status"`
	ByScholarshipType map[string]int64 `json:"by_scholarship_type"`
	ByPaymentStatus   map[string]int64 `json:"by_payment_status"`
}

type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetByID(ctx context.Context, id int64) (*Registration, error)
	GetBySubmissionID(ctx context.Context, submissionID string) (*Registration, error)
	List(ctx context.Context, filter RegistrationFilter) ([]Registration, int64, error)
	Stats(ctx context.Context) (*RegistrationStats, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	UpdatePayment(ctx context.Context, id int64, payment PaymentInfo) error
	Delete(ctx context.Context, id int64) error
}

// RegistrationMailer sends the submission confirmation to the applicant.
type RegistrationMailer interface {
	IsConfigured() bool
	SendRegistrationConfirmation(reg *Registration) error
}

type RegistrationUsecase interface {
	// Submit stores a registration. forcedType, when non-empty, must match step1.scholarship_type.
	Submit(ctx context.Context, in RegistrationInput, forcedType string) (*SubmissionResult, error)
	CheckEmail(ctx context.Context, email string) (bool, error)
	GetBySubmission(ctx context.Context, submissionID string) (*Registration, error)
	GetSubmissionStatus(ctx context.Context, submissionID string) (*SubmissionStatus, error)
	AdminList(ctx context.Context, filter RegistrationFilter) ([]Registration, Pagination, error)
	AdminGet(ctx context.Context, id int64) (*Registration, error)
	Stats(ctx context.Context) (*RegistrationStats, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
	Export(ctx context.Context, filter RegistrationFilter) ([]byte, error)
}
