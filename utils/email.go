// utils/email.go
package utils

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService sends transactional mail through SendGrid. A nil
// *EmailService is valid and sends nothing, so mail stays optional.
type EmailService struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewEmailService returns an EmailService, or nil when no API key is
// configured.
func NewEmailService(apiKey, fromName, fromAddress string) *EmailService {
	if apiKey == "" {
		return nil
	}
	return &EmailService{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromAddress),
	}
}

// SendWelcomeEmail sends a welcome message to a freshly registered user.
func (es *EmailService) SendWelcomeEmail(name, email string) error {
	if es == nil {
		return nil
	}

	to := mail.NewEmail(name, email)
	subject := "Welcome to Storefront"
	htmlContent := fmt.Sprintf(
		"<strong>Hi %s,</strong><br><br>Your account has been created. Happy shopping!",
		name,
	)
	plainContent := fmt.Sprintf("Hi %s, your account has been created. Happy shopping!", name)

	message := mail.NewSingleEmail(es.from, subject, to, plainContent, htmlContent)
	response, err := es.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected email: status %d", response.StatusCode)
	}
	return nil
}
