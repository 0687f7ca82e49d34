package email

import (
	"net/smtp"
	"testing"

	"go-rise-platform/config"
	"go-rise-platform/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistration() *domain.Registration {
	return &domain.Registration{
		SubmissionID: "6f1c2b0e-8a51-4c47-9a39-3f3c7a1d2e10",
		Step1: domain.Step1{
			FullName:        "Siti <Aminah>",
			Email:           "siti@example.com",
			ScholarshipType: domain.ScholarshipSelfFunded,
		},
	}
}

func TestBuildRegistrationConfirmation(t *testing.T) {
	svc := NewEmailService(&config.Config{SMTPFromEmail: "noreply@rise.id"})

	msg, err := svc.BuildRegistrationConfirmation(testRegistration())
	require.NoError(t, err)

	body := string(msg)
	assert.Contains(t, body, "To: siti@example.com\r\n")
	assert.Contains(t, body, "6f1c2b0e-8a51-4c47-9a39-3f3c7a1d2e10")
	assert.Contains(t, body, "Siti &lt;Aminah&gt;")
	assert.Contains(t, body, "selesaikan pembayaran")
}

func TestSendRegistrationConfirmation(t *testing.T) {
	svc := NewEmailService(&config.Config{
		SMTPHost:      "smtp.test",
		SMTPPort:      "587",
		SMTPUsername:  "user",
		SMTPPassword:  "pass",
		SMTPFromEmail: "noreply@rise.id",
	})
	require.True(t, svc.IsConfigured())

	var gotAddr string
	var gotTo []string
	svc.sendMail = func(addr string, _ smtp.Auth, _ string, to []string, _ []byte) error {
		gotAddr, gotTo = addr, to
		return nil
	}

	require.NoError(t, svc.SendRegistrationConfirmation(testRegistration()))
	assert.Equal(t, "smtp.test:587", gotAddr)
	assert.Equal(t, []string{"siti@example.com"}, gotTo)
}
