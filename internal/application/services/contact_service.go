package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/fundroad/fundroad-go/internal/infrastructure/email"
	"github.com/fundroad/fundroad-go/internal/infrastructure/email/templates"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/performance"
)

var ErrInvalidContact = errors.New("invalid contact request")

// ContactRequest is the contact form payload.
type ContactRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	ProjectType    string `json:"projectType"`
	ProjectStage   string `json:"projectStage,omitempty"`
	Message        string `json:"message"`
	RecipientEmail string `json:"recipientEmail"`
	Subject        string `json:"subject"`
}

// Validate reports the first missing or malformed field.
func (r ContactRequest) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"name", r.Name},
		{"email", r.Email},
		{"projectType", r.ProjectType},
		{"message", r.Message},
		{"recipientEmail", r.RecipientEmail},
		{"subject", r.Subject},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidContact, f.field)
		}
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("%w: email is not a valid address", ErrInvalidContact)
	}
	if _, err := mail.ParseAddress(r.RecipientEmail); err != nil {
		return fmt.Errorf("%w: recipientEmail is not a valid address", ErrInvalidContact)
	}
	return nil
}

// ContactService relays contact form submissions by email to a fixed set of
// recipients.
type ContactService struct {
	sender      email.Sender
	recipients  map[string]struct{}
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewContactService creates the service. Only addresses in recipients are
// accepted as recipientEmail. A nil sender makes every send fail with
// email.ErrNotConfigured.
func NewContactService(sender email.Sender, recipients []string, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ContactService {
	allowed := make(map[string]struct{}, len(recipients))
	for _, r := range recipients {
		if addr, err := mail.ParseAddress(r); err == nil {
			allowed[strings.ToLower(addr.Address)] = struct{}{}
		}
	}
	return &ContactService{sender: sender, recipients: allowed, logger: logger, perfTracker: perfTracker}
}

func (s *ContactService) recipientAllowed(recipient string) bool {
	addr, err := mail.ParseAddress(recipient)
	if err != nil {
		return false
	}
	_, ok := s.recipients[strings.ToLower(addr.Address)]
	return ok
}

// Send delivers the notification to the recipient, then a confirmation to the
// sender. Only the notification decides the outcome; a failed confirmation is
// logged.
func (s *ContactService) Send(ctx context.Context, req ContactRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if !s.recipientAllowed(req.RecipientEmail) {
		s.logger.Functions().Warn("Contact request for unknown recipient refused", "recipient", req.RecipientEmail)
		return fmt.Errorf("%w: recipientEmail is not an accepted recipient", ErrInvalidContact)
	}
	if s.sender == nil {
		s.logger.Functions().Error("Contact email requested but no email provider is configured")
		return email.ErrNotConfigured
	}

	marker := s.perfTracker.StartOperationWithContext(ctx, "functions:contact", req.Email)
	defer marker.Complete()

	props := templates.ContactProps{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		ProjectType:  req.ProjectType,
		ProjectStage: req.ProjectStage,
		Message:      req.Message,
		Subject:      req.Subject,
	}

	id, err := s.sender.Send(email.ContactNotification(req.RecipientEmail, props))
	if err != nil {
		marker.SetError(err)
		s.logger.Functions().Error("Contact notification failed", "recipient", req.RecipientEmail, "error", err.Error())
		return fmt.Errorf("send contact notification: %w", err)
	}
	s.logger.Functions().Info("Contact notification sent", "recipient", req.RecipientEmail, "messageId", id)

	if _, err := s.sender.Send(email.ContactConfirmation(props)); err != nil {
		s.logger.Functions().Warn("Contact confirmation failed", "error", err.Error())
	}
	return nil
}
