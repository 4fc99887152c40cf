package service

import (
	"context"

	"fleet-booking-backend/internal/booking"
	"fleet-booking-backend/internal/domain"
)

type ReservationService interface {
	// CreateReservation normalizes a loosely keyed record, validates it against the
	// asset's current bookings and stores it as PENDING on behalf of actorID.
	CreateReservation(ctx context.Context, actorID string, raw map[string]any) (*domain.Reservation, error)
	// UpdateReservation replaces the editable fields of a PENDING reservation.
	UpdateReservation(ctx context.Context, actorID, id string, raw map[string]any) (*domain.Reservation, error)
	// CheckConflicts is the advisory check used while a form is being filled in.
	CheckConflicts(ctx context.Context, p booking.Proposal) ([]booking.Conflict, error)
	AcceptReservation(ctx context.Context, actorID, id string, report *domain.PrecheckReport) (*domain.Reservation, error)
	DeclineReservation(ctx context.Context, actorID, id, reason string) (*domain.Reservation, error)
	CompleteReservation(ctx context.Context, actorID, id string) (*domain.Reservation, error)
	GetReservation(ctx context.Context, id string) (*domain.Reservation, error)
	ListAssetReservations(ctx context.Context, assetID string, status domain.ReservationStatus) ([]domain.Reservation, error)
}

// ReminderService nudges requesters whose accepted bookings have run past their end
// date. It never changes a reservation's status.
type ReminderService interface {
	SendCompletionReminders(ctx context.Context) (int, error)
}

// AssetSignaler hands the asset effect of a transition to the asset management system.
type AssetSignaler interface {
	SignalAssetEffect(ctx context.Context, r domain.Reservation, effect booking.AssetEffect, actorID string) error
}

type EmailService interface {
	SendReservationAccepted(ctx context.Context, to domain.User, assetName string, r domain.Reservation) error
	SendReservationDeclined(ctx context.Context, to domain.User, assetName string, r domain.Reservation) error
	SendCompletionReminder(ctx context.Context, to domain.User, assetName string, r domain.Reservation) error
}
