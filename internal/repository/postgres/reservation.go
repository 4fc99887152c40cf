package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/logger"
	"fleet-booking-backend/internal/repository"
	"fleet-booking-backend/internal/utils"
)

var reservationColumns = []string{
	"id", "asset_id", "asset_type", "requested_by_id", "assigned_to_id", "assigned_to_name",
	"start_date", "end_date", "start_time", "end_time", "reservation_type", "purpose", "notes",
	"status", "decline_reason", "precheck_report", "created_at", "updated_at",
}

type reservationRepository struct {
	db dbtx
}

func NewReservationRepository(db dbtx) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	logger.EnterMethod("reservationRepository.Create", "reservationID", res.ID, "assetID", res.AssetID)

	report, err := encodePrecheck(res.PrecheckReport)
	if err != nil {
		logger.ExitMethodWithError("reservationRepository.Create", err, "reservationID", res.ID)
		return err
	}

	now := time.Now().UTC()
	res.CreatedAt = now
	res.UpdatedAt = now

	query := `INSERT INTO reservations (id, asset_id, asset_type, requested_by_id, assigned_to_id, assigned_to_name,
	            start_date, end_date, start_time, end_time, reservation_type, purpose, notes,
	            status, decline_reason, precheck_report, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	logger.DatabaseCall("INSERT", "reservations", "reservationID", res.ID)
	result, err := r.db.ExecContext(ctx, query,
		res.ID, res.AssetID, res.AssetType, res.RequestedByID, res.AssignedToID, res.AssignedToName,
		res.StartDate, res.EndDate, res.StartTime, res.EndTime, res.ReservationType, res.Purpose, res.Notes,
		res.Status, res.DeclineReason, report, res.CreatedAt, res.UpdatedAt)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err, "reservationID", res.ID)
		logger.ExitMethodWithError("reservationRepository.Create", err, "reservationID", res.ID)
		return fmt.Errorf("failed to insert reservation: %w", err)
	}
	rows, _ := result.RowsAffected()
	logger.DatabaseResult("INSERT", rows, nil, "reservationID", res.ID)

	logger.ExitMethod("reservationRepository.Create", "reservationID", res.ID)
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	logger.EnterMethod("reservationRepository.GetByID", "reservationID", id)

	query, args, err := psql.Select(reservationColumns...).From("reservations").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	res, err := scanReservation(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		logger.ExitMethodWithError("reservationRepository.GetByID", domain.ErrReservationNotFound, "reservationID", id)
		return nil, domain.ErrReservationNotFound
	}
	if err != nil {
		logger.ExitMethodWithError("reservationRepository.GetByID", err, "reservationID", id)
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	logger.ExitMethod("reservationRepository.GetByID", "reservationID", id)
	return res, nil
}

func (r *reservationRepository) Update(ctx context.Context, res *domain.Reservation) error {
	logger.EnterMethod("reservationRepository.Update", "reservationID", res.ID, "status", res.Status)

	report, err := encodePrecheck(res.PrecheckReport)
	if err != nil {
		logger.ExitMethodWithError("reservationRepository.Update", err, "reservationID", res.ID)
		return err
	}
	res.UpdatedAt = time.Now().UTC()

	query := `UPDATE reservations SET assigned_to_id=$1, assigned_to_name=$2, start_date=$3, end_date=$4,
	            start_time=$5, end_time=$6, reservation_type=$7, purpose=$8, notes=$9, status=$10,
	            decline_reason=$11, precheck_report=$12, updated_at=$13
	          WHERE id=$14`

	logger.DatabaseCall("UPDATE", "reservations", "reservationID", res.ID)
	result, err := r.db.ExecContext(ctx, query,
		res.AssignedToID, res.AssignedToName, res.StartDate, res.EndDate,
		res.StartTime, res.EndTime, res.ReservationType, res.Purpose, res.Notes, res.Status,
		res.DeclineReason, report, res.UpdatedAt, res.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "reservationID", res.ID)
		logger.ExitMethodWithError("reservationRepository.Update", err, "reservationID", res.ID)
		return fmt.Errorf("failed to update reservation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	logger.DatabaseResult("UPDATE", rows, nil, "reservationID", res.ID)
	if rows == 0 {
		return domain.ErrReservationNotFound
	}

	logger.ExitMethod("reservationRepository.Update", "reservationID", res.ID)
	return nil
}

func (r *reservationRepository) ListByAsset(ctx context.Context, assetID string, status domain.ReservationStatus) ([]domain.Reservation, error) {
	logger.EnterMethod("reservationRepository.ListByAsset", "assetID", assetID, "status", status)

	builder := psql.Select(reservationColumns...).From("reservations").Where(sq.Eq{"asset_id": assetID})
	if status != "" {
		builder = builder.Where(sq.Eq{"status": status})
	}
	list, err := r.list(ctx, builder.OrderBy("start_date ASC", "created_at ASC"))
	if err != nil {
		logger.ExitMethodWithError("reservationRepository.ListByAsset", err, "assetID", assetID)
		return nil, err
	}

	logger.ExitMethod("reservationRepository.ListByAsset", "assetID", assetID, "count", len(list))
	return list, nil
}

func (r *reservationRepository) ListElapsedAccepted(ctx context.Context, today utils.Date) ([]domain.Reservation, error) {
	logger.EnterMethod("reservationRepository.ListElapsedAccepted", "today", today.String())

	builder := psql.Select(reservationColumns...).From("reservations").
		Where(sq.Eq{"status": domain.ReservationStatusAccepted}).
		Where(sq.Lt{"end_date": today}).
		OrderBy("end_date ASC")
	list, err := r.list(ctx, builder)
	if err != nil {
		logger.ExitMethodWithError("reservationRepository.ListElapsedAccepted", err)
		return nil, err
	}

	logger.ExitMethod("reservationRepository.ListElapsedAccepted", "count", len(list))
	return list, nil
}

func (r *reservationRepository) list(ctx context.Context, builder sq.SelectBuilder) ([]domain.Reservation, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	logger.DatabaseCall("SELECT", query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var (
		list    []domain.Reservation
		skipped int
	)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			skipped++
			logger.Warn("Skipping unreadable reservation row", "error", err)
			continue
		}
		list = append(list, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reservations: %w", err)
	}
	logger.DatabaseResult("SELECT", int64(len(list)), nil, "skipped", skipped)
	return list, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanReservation reads one row. Dates and the precheck report are decoded per
// column: a value that does not decode is left empty so the record stays visible
// but can never take part in a conflict.
func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var (
		res              domain.Reservation
		startRaw, endRaw any
		report           []byte
	)
	err := row.Scan(&res.ID, &res.AssetID, &res.AssetType, &res.RequestedByID, &res.AssignedToID, &res.AssignedToName,
		&startRaw, &endRaw, &res.StartTime, &res.EndTime, &res.ReservationType, &res.Purpose, &res.Notes,
		&res.Status, &res.DeclineReason, &report, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}

	res.StartDate = decodeDate(res.ID, "start_date", startRaw)
	res.EndDate = decodeDate(res.ID, "end_date", endRaw)
	res.PrecheckReport = decodePrecheck(res.ID, report)
	return &res, nil
}

func decodeDate(id, column string, raw any) utils.Date {
	var d utils.Date
	if err := d.Scan(raw); err != nil {
		logger.Warn("Ignoring unreadable reservation date", "reservationID", id, "column", column, "error", err)
		return utils.Date{}
	}
	return d
}

func decodePrecheck(id string, data []byte) *domain.PrecheckReport {
	if len(data) == 0 {
		return nil
	}
	report := &domain.PrecheckReport{}
	if err := json.Unmarshal(data, report); err != nil {
		logger.Warn("Ignoring unreadable precheck report", "reservationID", id, "error", err)
		return nil
	}
	return report
}

// encodePrecheck renders the report for the JSONB column; nil stays NULL.
func encodePrecheck(report *domain.PrecheckReport) (any, error) {
	if report == nil {
		return nil, nil
	}
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode precheck report: %w", err)
	}
	return data, nil
}
