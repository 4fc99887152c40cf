package postgres

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"fleet-booking-backend/internal/logger"
	"fleet-booking-backend/internal/repository"
)

// psql builds PostgreSQL-flavoured ($n) statements.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db           *sql.DB
	Reservations repository.ReservationRepository
	Assets       repository.AssetRepository
	Users        repository.UserRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:           db,
		Reservations: NewReservationRepository(db),
		Assets:       NewAssetRepository(db),
		Users:        NewUserRepository(db),
	}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithAssetLock runs fn in a transaction holding pg_advisory_xact_lock for the asset.
// The lock is released when the transaction ends, so concurrent writers for the same
// asset see each other's committed rows.
func (s *Store) WithAssetLock(ctx context.Context, assetID string, fn func(repository.ReservationRepository) error) (err error) {
	logger.EnterMethod("Store.WithAssetLock", "assetID", assetID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("Store.WithAssetLock", err, "assetID", assetID)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("Failed to roll back transaction", "assetID", assetID, "error", rbErr)
			}
		}
	}()

	logger.DatabaseCall("LOCK", "pg_advisory_xact_lock", "assetID", assetID)
	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, assetID); err != nil {
		logger.DatabaseResult("LOCK", 0, err, "assetID", assetID)
		return fmt.Errorf("failed to lock asset %s: %w", assetID, err)
	}

	if err = fn(NewReservationRepository(tx)); err != nil {
		logger.ExitMethodWithError("Store.WithAssetLock", err, "assetID", assetID)
		return err
	}

	if err = tx.Commit(); err != nil {
		logger.ExitMethodWithError("Store.WithAssetLock", err, "assetID", assetID)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.ExitMethod("Store.WithAssetLock", "assetID", assetID)
	return nil
}
