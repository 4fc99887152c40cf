package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/logger"
)

type sendGridEmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &sendGridEmailService{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridEmailService) SendReservationAccepted(ctx context.Context, to domain.User, assetName string, r domain.Reservation) error {
	subject := fmt.Sprintf("Reservation confirmed: %s", assetName)
	body := fmt.Sprintf("Hello %s,\n\nYour reservation of %s from %s to %s has been accepted.\n\nPurpose: %s",
		to.Name, assetName, r.StartDate, r.EndDate, r.Purpose)
	return s.send(ctx, "SendReservationAccepted", to, subject, body)
}

func (s *sendGridEmailService) SendReservationDeclined(ctx context.Context, to domain.User, assetName string, r domain.Reservation) error {
	subject := fmt.Sprintf("Reservation declined: %s", assetName)
	body := fmt.Sprintf("Hello %s,\n\nYour reservation of %s from %s to %s was declined.\n\nReason: %s",
		to.Name, assetName, r.StartDate, r.EndDate, r.DeclineReason)
	return s.send(ctx, "SendReservationDeclined", to, subject, body)
}

func (s *sendGridEmailService) SendCompletionReminder(ctx context.Context, to domain.User, assetName string, r domain.Reservation) error {
	subject := fmt.Sprintf("Please complete your reservation: %s", assetName)
	body := fmt.Sprintf("Hello %s,\n\nThe reservation of %s ended on %s. Please mark it as completed once the asset has been returned.",
		to.Name, assetName, r.EndDate)
	return s.send(ctx, "SendCompletionReminder", to, subject, body)
}

func (s *sendGridEmailService) send(ctx context.Context, operation string, to domain.User, subject, plainText string) error {
	if to.Email == "" {
		return fmt.Errorf("user %s has no email address", to.ID)
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(to.Name, to.Email)
	htmlContent := "<p>" + strings.ReplaceAll(html.EscapeString(plainText), "\n", "<br>") + "</p>"
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	logger.ExternalServiceCall("sendgrid", operation, "to", to.Email)
	response, err := s.client.Send(message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", operation, err, "to", to.Email)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type logEmailService struct{}

// NewLogEmailService logs notifications instead of sending them. Used when no
// SendGrid API key is configured.
func NewLogEmailService() EmailService {
	return logEmailService{}
}

func (logEmailService) SendReservationAccepted(ctx context.Context, to domain.User, assetName string, r domain.Reservation) error {
	logger.InfoContext(ctx, "Email suppressed", "template", "reservation_accepted", "to", to.Email, "reservationID", r.ID, "asset", assetName)
	return nil
}

func (logEmailService) SendReservationDeclined(ctx context.Context, to domain.User, assetName string, r domain.Reservation) error {
	logger.InfoContext(ctx, "Email suppressed", "template", "reservation_declined", "to", to.Email, "reservationID", r.ID, "asset", assetName)
	return nil
}

func (logEmailService) SendCompletionReminder(ctx context.Context, to domain.User, assetName string, r domain.Reservation) error {
	logger.InfoContext(ctx, "Email suppressed", "template", "completion_reminder", "to", to.Email, "reservationID", r.ID, "asset", assetName)
	return nil
}
