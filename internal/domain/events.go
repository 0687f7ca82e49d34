package domain

import (
	"context"
	"time"
)

const (
	SubjectRegistrationSubmitted = "rise.registration.submitted"
	SubjectPaymentStatusChanged  = "rise.payment.status_changed"
)

type RegistrationSubmitted struct {
	SubmissionID    string    `json:"submission_id"`
	RegistrationID  int64     `json:"registration_id"`
	Email           string    `json:"email"`
	ScholarshipType string    `json:"scholarship_type"`
	At              time.Time `json:"at"`
}

type PaymentStatusChanged struct {
	OrderID        string    `json:"order_id"`
	RegistrationID int64     `json:"registration_id"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	At             time.Time `json:"at"`
}

// EventPublisher fans domain events out to other services. Publishing is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}
