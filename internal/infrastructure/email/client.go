// Package email provides the email client for sending transactional emails.
package email

import (
	"errors"
	"fmt"

	"github.com/resendlabs/resend-go"

	"github.com/fundroad/fundroad-go/internal/infrastructure/email/templates"
)

var ErrNotConfigured = errors.New("email service is not configured")

// Message is one outgoing email with a rendered HTML body.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

// Sender defines the interface for sending emails, allowing for mock implementations in tests.
type Sender interface {
	Send(msg Message) (string, error)
}

// ResendClient is the concrete implementation of Sender using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

// NewResendClient creates a new email client. An empty API key is an error so
// callers can report the function as unconfigured.
func NewResendClient(apiKey, fromEmail, fromName string) (*ResendClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: RESEND_API_KEY is empty", ErrNotConfigured)
	}
	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}, nil
}

// Send delivers msg and returns the provider's message id.
func (c *ResendClient) Send(msg Message) (string, error) {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	if msg.ReplyTo != "" {
		params.ReplyTo = msg.ReplyTo
	}

	sent, err := c.client.Emails.Send(params)
	if err != nil {
		return "", fmt.Errorf("failed to send email via Resend: %w", err)
	}
	return sent.Id, nil
}

// ContactNotification composes the email delivered to the form's recipient.
func ContactNotification(to string, props templates.ContactProps) Message {
	subject := props.Subject
	if subject == "" {
		subject = "Nouvelle demande de contact"
	}
	return Message{
		To:      to,
		ReplyTo: props.Email,
		Subject: subject,
		HTML: templates.GetEmailLayout(templates.EmailLayoutProps{
			Preheader: "Demande de contact de " + props.Name,
			Title:     subject,
			Content:   templates.GetContactNotificationContent(props),
		}),
	}
}

// ContactConfirmation composes the acknowledgement sent to the person who wrote in.
func ContactConfirmation(props templates.ContactProps) Message {
	const subject = "Nous avons bien reçu votre message"
	return Message{
		To:      props.Email,
		Subject: subject,
		HTML: templates.GetEmailLayout(templates.EmailLayoutProps{
			Preheader: subject,
			Title:     subject,
			Content:   templates.GetContactConfirmationContent(props),
		}),
	}
}
