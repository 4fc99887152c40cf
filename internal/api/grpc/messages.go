package grpc

import (
	"fleet-booking-backend/internal/booking"
	"fleet-booking-backend/internal/domain"
)

// Create and update take the same loosely keyed record as the HTTP API.
type CreateReservationRequest struct {
	Record map[string]any `json:"record" validate:"required"`
}

type UpdateReservationRequest struct {
	ID     string         `json:"id" validate:"required"`
	Record map[string]any `json:"record" validate:"required"`
}

type GetReservationRequest struct {
	ID string `json:"id" validate:"required"`
}

type ListAssetReservationsRequest struct {
	AssetID string `json:"asset_id" validate:"required"`
	Status  string `json:"status" validate:"omitempty,oneof=PENDING ACCEPTED DECLINED COMPLETED pending accepted declined completed"`
}

type CheckConflictsRequest struct {
	ReservationID string `json:"reservation_id"`
	AssetID       string `json:"asset_id" validate:"required"`
	StartDate     string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type AcceptReservationRequest struct {
	ID             string                 `json:"id" validate:"required"`
	PrecheckReport *domain.PrecheckReport `json:"precheck_report,omitempty"`
}

type DeclineReservationRequest struct {
	ID     string `json:"id" validate:"required"`
	Reason string `json:"reason" validate:"max=1000"`
}

type CompleteReservationRequest struct {
	ID string `json:"id" validate:"required"`
}

type ReservationResponse struct {
	Reservation *domain.Reservation `json:"reservation"`
}

type ListReservationsResponse struct {
	Reservations []domain.Reservation `json:"reservations"`
}

type CheckConflictsResponse struct {
	Conflicts []booking.Conflict `json:"conflicts"`
}
