package service

import (
	"context"
	"time"

	"fleet-booking-backend/internal/logger"
	"fleet-booking-backend/internal/metrics"
	"fleet-booking-backend/internal/repository"
	"fleet-booking-backend/internal/utils"
)

type reminderService struct {
	reservations repository.ReservationRepository
	assets       repository.AssetRepository
	users        repository.UserRepository
	emailSvc     EmailService
	metrics      *metrics.BookingMetrics
	location     *time.Location
	now          func() time.Time
}

func NewReminderService(
	reservations repository.ReservationRepository,
	assets repository.AssetRepository,
	users repository.UserRepository,
	emailSvc EmailService,
	m *metrics.BookingMetrics,
	location *time.Location,
) ReminderService {
	if location == nil {
		location = time.UTC
	}
	return &reminderService{
		reservations: reservations,
		assets:       assets,
		users:        users,
		emailSvc:     emailSvc,
		metrics:      m,
		location:     location,
		now:          time.Now,
	}
}

// SendCompletionReminders emails the requester of every ACCEPTED reservation whose end
// date has passed. Per-reservation failures are logged and skipped.
func (s *reminderService) SendCompletionReminders(ctx context.Context) (int, error) {
	today := utils.DateFromTime(s.now().In(s.location))
	logger.EnterMethod("reminderService.SendCompletionReminders", "today", today.String())

	elapsed, err := s.reservations.ListElapsedAccepted(ctx, today)
	if err != nil {
		logger.ExitMethodWithError("reminderService.SendCompletionReminders", err)
		return 0, err
	}

	sent := 0
	for _, r := range elapsed {
		requester, err := s.users.GetByID(ctx, r.RequestedByID)
		if err != nil {
			logger.Warn("Skipping reminder, requester not found", "reservationID", r.ID, "userID", r.RequestedByID, "error", err)
			continue
		}
		if err := s.emailSvc.SendCompletionReminder(ctx, *requester, assetDisplayName(ctx, s.assets, r.AssetID), r); err != nil {
			logger.Error("Failed to send completion reminder", "reservationID", r.ID, "error", err)
			continue
		}
		s.metrics.RecordReminderSent()
		sent++
	}

	logger.ExitMethod("reminderService.SendCompletionReminders", "elapsed", len(elapsed), "sent", sent)
	return sent, nil
}
