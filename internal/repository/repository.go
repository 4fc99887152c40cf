package repository

import (
	"context"

	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/utils"
)

type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	Update(ctx context.Context, r *domain.Reservation) error
	// ListByAsset returns the asset's reservations ordered by start date. An empty
	// status lists every status.
	ListByAsset(ctx context.Context, assetID string, status domain.ReservationStatus) ([]domain.Reservation, error)
	// ListElapsedAccepted returns ACCEPTED reservations whose end date is before today.
	ListElapsedAccepted(ctx context.Context, today utils.Date) ([]domain.Reservation, error)
}

// AssetRepository reads assets owned by the asset management system.
type AssetRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// AssetLocker serializes booking writes per asset. fn runs inside a transaction that
// holds the asset's lock, with a reservation repository bound to that transaction.
// An error returned by fn rolls the transaction back.
type AssetLocker interface {
	WithAssetLock(ctx context.Context, assetID string, fn func(ReservationRepository) error) error
}
