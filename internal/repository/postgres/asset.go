package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/logger"
	"fleet-booking-backend/internal/repository"
)

type assetRepository struct {
	db dbtx
}

func NewAssetRepository(db dbtx) repository.AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	a := &domain.Asset{}
	query := `SELECT id, type, name, condition, reservation_status FROM assets WHERE id = $1`

	logger.DatabaseCall("SELECT", "assets", "assetID", id)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Type, &a.Name, &a.Condition, &a.ReservationStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAssetNotFound
	}
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err, "assetID", id)
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	logger.DatabaseResult("SELECT", 1, nil, "assetID", id)
	return a, nil
}
