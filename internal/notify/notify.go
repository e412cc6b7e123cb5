// Package notify sends escalation emails to the support team via
// SendGrid when the triage engine files something a human must see.
package notify

import (
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"mailagent/internal/config"
)

// Service sends support-team notifications. A missing API key
// disables it without failing triage.
type Service struct {
	apiKey       string
	supportEmail string
	fromEmail    string
}

func NewService(cfg *config.Config) *Service {
	return &Service{
		apiKey:       cfg.SendGridAPIKey,
		supportEmail: cfg.SupportEmail,
		fromEmail:    cfg.FromEmail,
	}
}

// NotifyUnhandled alerts the support team about an email the agent
// could not answer.
func (s *Service) NotifyUnhandled(senderEmail, subject, reason string) error {
	if s.apiKey == "" {
		return fmt.Errorf("SendGrid API key not configured")
	}

	from := mail.NewEmail("Mail Agent", s.fromEmail)
	to := mail.NewEmail("Support Team", s.supportEmail)

	body := fmt.Sprintf(`An inbound customer email needs human attention.

Customer: %s
Subject: %s
Reason: %s
Timestamp: %s`, senderEmail, subject, reason, time.Now().Format(time.RFC3339))

	message := mail.NewSingleEmail(from, "Customer email needs review", to, body, body)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send escalation email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid API error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}
