package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"go-rise-platform/config"
	"go-rise-platform/internal/domain"
)

// EmailService handles sending emails via SMTP
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	sendMail  func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailService creates a new email service with Brevo SMTP configuration
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.SMTPFromEmail,
		sendMail:  smtp.SendMail,
	}
}

type confirmationData struct {
	FullName        string
	SubmissionID    string
	ScholarshipType string
	NeedsPayment    bool
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>RYLS Registration Received</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0f7b4a; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .code { font-family: monospace; font-size: 16px; background: white; padding: 10px; border-left: 4px solid #0f7b4a; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Pendaftaran Diterima</h1>
        </div>
        <div class="content">
            <p>Halo {{.FullName}},</p>
            <p>Terima kasih telah mendaftar RYLS ({{.ScholarshipType}}). Simpan kode pendaftaran berikut:</p>
            <p class="code">{{.SubmissionID}}</p>
            {{if .NeedsPayment}}<p>Silakan selesaikan pembayaran agar pendaftaran dapat diproses.</p>{{end}}
        </div>
        <div class="footer">
            <p>Email ini dikirim otomatis oleh Rise Social.</p>
        </div>
    </div>
</body>
</html>`))

// BuildRegistrationConfirmation renders the MIME message for a new registration.
func (s *EmailService) BuildRegistrationConfirmation(reg *domain.Registration) ([]byte, error) {
	var body bytes.Buffer
	err := confirmationTemplate.Execute(&body, confirmationData{
		FullName:        reg.Step1.FullName,
		SubmissionID:    reg.SubmissionID,
		ScholarshipType: reg.Step1.ScholarshipType,
		NeedsPayment:    reg.Step1.ScholarshipType == domain.ScholarshipSelfFunded,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute email template: %w", err)
	}

	msg := fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail,
		reg.Step1.Email,
		"Pendaftaran RYLS diterima - "+reg.SubmissionID,
		body.String(),
	)
	return []byte(msg), nil
}

// SendRegistrationConfirmation mails the applicant their submission id.
func (s *EmailService) SendRegistrationConfirmation(reg *domain.Registration) error {
	msg, err := s.BuildRegistrationConfirmation(reg)
	if err != nil {
		return err
	}

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.sendMail(addr, auth, s.fromEmail, []string{reg.Step1.Email}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}
