package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fleet-booking-backend/internal/booking"
	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/logger"
	"fleet-booking-backend/internal/metrics"
	"fleet-booking-backend/internal/repository"
	"fleet-booking-backend/internal/utils"
)

type reservationService struct {
	reservations repository.ReservationRepository
	assets       repository.AssetRepository
	users        repository.UserRepository
	locker       repository.AssetLocker
	signaler     AssetSignaler
	emailSvc     EmailService
	metrics      *metrics.BookingMetrics
	location     *time.Location
	now          func() time.Time
}

// NewReservationService wires the booking rules to storage. location is the business
// time zone used to decide what "today" is; nil means UTC.
func NewReservationService(
	reservations repository.ReservationRepository,
	assets repository.AssetRepository,
	users repository.UserRepository,
	locker repository.AssetLocker,
	signaler AssetSignaler,
	emailSvc EmailService,
	m *metrics.BookingMetrics,
	location *time.Location,
) ReservationService {
	if signaler == nil {
		signaler = NewLoggingAssetSignaler()
	}
	if emailSvc == nil {
		emailSvc = NewLogEmailService()
	}
	if location == nil {
		location = time.UTC
	}
	return &reservationService{
		reservations: reservations,
		assets:       assets,
		users:        users,
		locker:       locker,
		signaler:     signaler,
		emailSvc:     emailSvc,
		metrics:      m,
		location:     location,
		now:          time.Now,
	}
}

func (s *reservationService) today() utils.Date {
	return utils.DateFromTime(s.now().In(s.location))
}

func (s *reservationService) CreateReservation(ctx context.Context, actorID string, raw map[string]any) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.CreateReservation", "actorID", actorID)

	r := booking.NormalizeReservation(raw)
	r.ID = ""
	r.Status = domain.ReservationStatusPending
	r.RequestedByID = actorID
	r.DeclineReason = ""
	r.PrecheckReport = nil

	if err := s.resolveParties(ctx, &r); err != nil {
		logger.ExitMethodWithError("reservationService.CreateReservation", err, "actorID", actorID)
		return nil, err
	}

	opts := booking.ValidationOptions{Today: s.today()}
	if r.AssetID == "" {
		validated, res := booking.ValidateProposal(r, nil, opts)
		err := s.rejected(validated, res)
		logger.ExitMethodWithError("reservationService.CreateReservation", err, "actorID", actorID)
		return nil, err
	}

	err := s.locker.WithAssetLock(ctx, r.AssetID, func(repo repository.ReservationRepository) error {
		existing, err := repo.ListByAsset(ctx, r.AssetID, "")
		if err != nil {
			return err
		}
		validated, res := booking.ValidateProposal(r, existing, opts)
		s.metrics.RecordConflictCheck("create", len(res.Conflicts))
		if !res.Valid() {
			return s.rejected(validated, res)
		}

		validated.ID = uuid.NewString()
		if err := repo.Create(ctx, &validated); err != nil {
			return err
		}
		r = validated
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("reservationService.CreateReservation", err, "actorID", actorID, "assetID", r.AssetID)
		return nil, err
	}

	s.metrics.RecordReservationDays(string(r.ReservationType), utils.DaysBetweenInclusive(r.StartDate, r.EndDate))
	logger.Info("Reservation created", "reservationID", r.ID, "assetID", r.AssetID,
		"start", r.StartDate.String(), "end", r.EndDate.String(), "type", r.ReservationType)
	logger.ExitMethod("reservationService.CreateReservation", "reservationID", r.ID)
	return &r, nil
}

// UpdateReservation replaces the editable fields of a PENDING reservation with the
// values in raw. The asset, the requester and the status cannot be changed here.
func (s *reservationService) UpdateReservation(ctx context.Context, actorID, id string, raw map[string]any) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.UpdateReservation", "actorID", actorID, "reservationID", id)

	current, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("reservationService.UpdateReservation", err, "reservationID", id)
		return nil, err
	}
	if err := s.authorizeEditor(ctx, actorID, current); err != nil {
		logger.ExitMethodWithError("reservationService.UpdateReservation", err, "reservationID", id)
		return nil, err
	}
	if current.Status != domain.ReservationStatusPending {
		err := fmt.Errorf("%w: reservation %s is %s", domain.ErrReservationNotEditable, id, current.Status)
		logger.ExitMethodWithError("reservationService.UpdateReservation", err, "reservationID", id)
		return nil, err
	}

	r := booking.NormalizeReservation(raw)
	r.ID = current.ID
	r.AssetID = current.AssetID
	r.RequestedByID = current.RequestedByID
	r.Status = current.Status
	r.PrecheckReport = current.PrecheckReport
	r.CreatedAt = current.CreatedAt
	r.DeclineReason = ""

	if err := s.resolveParties(ctx, &r); err != nil {
		logger.ExitMethodWithError("reservationService.UpdateReservation", err, "reservationID", id)
		return nil, err
	}

	opts := booking.ValidationOptions{Today: s.today(), Update: true}
	err = s.locker.WithAssetLock(ctx, r.AssetID, func(repo repository.ReservationRepository) error {
		fresh, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if fresh.Status != domain.ReservationStatusPending {
			return fmt.Errorf("%w: reservation %s is %s", domain.ErrReservationNotEditable, id, fresh.Status)
		}

		existing, err := repo.ListByAsset(ctx, r.AssetID, "")
		if err != nil {
			return err
		}
		validated, res := booking.ValidateProposal(r, existing, opts)
		s.metrics.RecordConflictCheck("update", len(res.Conflicts))
		if !res.Valid() {
			return s.rejected(validated, res)
		}

		if err := repo.Update(ctx, &validated); err != nil {
			return err
		}
		r = validated
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("reservationService.UpdateReservation", err, "reservationID", id)
		return nil, err
	}

	logger.ExitMethod("reservationService.UpdateReservation", "reservationID", id)
	return &r, nil
}

func (s *reservationService) CheckConflicts(ctx context.Context, p booking.Proposal) ([]booking.Conflict, error) {
	if strings.TrimSpace(p.AssetID) == "" {
		return nil, newFieldError(domain.Reservation{}, booking.FieldAssetID, booking.ReasonRequired)
	}

	existing, err := s.reservations.ListByAsset(ctx, p.AssetID, "")
	if err != nil {
		return nil, err
	}
	conflicts := booking.FindConflicts(p, existing)
	s.metrics.RecordConflictCheck("advisory", len(conflicts))
	return conflicts, nil
}

func (s *reservationService) AcceptReservation(ctx context.Context, actorID, id string, report *domain.PrecheckReport) (*domain.Reservation, error) {
	return s.transition(ctx, "reservationService.AcceptReservation", actorID, id, transitionInput{
		to:     domain.ReservationStatusAccepted,
		report: report,
	})
}

func (s *reservationService) DeclineReservation(ctx context.Context, actorID, id, reason string) (*domain.Reservation, error) {
	return s.transition(ctx, "reservationService.DeclineReservation", actorID, id, transitionInput{
		to:     domain.ReservationStatusDeclined,
		reason: reason,
	})
}

func (s *reservationService) CompleteReservation(ctx context.Context, actorID, id string) (*domain.Reservation, error) {
	return s.transition(ctx, "reservationService.CompleteReservation", actorID, id, transitionInput{
		to: domain.ReservationStatusCompleted,
	})
}

func (s *reservationService) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

func (s *reservationService) ListAssetReservations(ctx context.Context, assetID string, status domain.ReservationStatus) ([]domain.Reservation, error) {
	return s.reservations.ListByAsset(ctx, assetID, status)
}

type transitionInput struct {
	to     domain.ReservationStatus
	report *domain.PrecheckReport
	reason string
}

// transition re-reads the reservation under the asset lock, asks the status machine
// whether the move is allowed and stores it. The asset effect and notifications are
// sent after the transaction has committed.
func (s *reservationService) transition(ctx context.Context, method, actorID, id string, in transitionInput) (*domain.Reservation, error) {
	logger.EnterMethod(method, "actorID", actorID, "reservationID", id, "to", in.to)

	if err := s.authorizeResolver(ctx, actorID); err != nil {
		logger.ExitMethodWithError(method, err, "actorID", actorID)
		return nil, err
	}

	current, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError(method, err, "reservationID", id)
		return nil, err
	}

	var (
		updated domain.Reservation
		result  booking.TransitionResult
	)
	err = s.locker.WithAssetLock(ctx, current.AssetID, func(repo repository.ReservationRepository) error {
		r, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		report := r.PrecheckReport
		if in.report != nil {
			report = in.report
		}
		req := booking.TransitionRequest{
			Current:        r.Status,
			Requested:      in.to,
			AssetType:      r.AssetType,
			PrecheckReport: report,
			DeclineReason:  in.reason,
		}
		if in.to == domain.ReservationStatusAccepted && booking.CanTransition(r.Status, in.to) {
			existing, err := repo.ListByAsset(ctx, r.AssetID, "")
			if err != nil {
				return err
			}
			req.Conflicts = booking.FindConflicts(booking.ProposalFor(*r), existing)
			s.metrics.RecordConflictCheck("accept", len(req.Conflicts))
		}

		result = booking.EvaluateTransition(req)
		if !result.Allowed {
			s.metrics.RecordTransition(string(in.to), string(result.Reason))
			terr := &TransitionError{ReservationID: id, From: r.Status, To: in.to, Result: result, Conflicts: req.Conflicts}
			if result.Reason == booking.ReasonPrecheckIncomplete {
				terr.Unanswered = booking.UnansweredItems(report)
			}
			return terr
		}

		r.Status = in.to
		switch in.to {
		case domain.ReservationStatusAccepted:
			if report != nil {
				stamped := *report
				if stamped.InspectorID == "" {
					stamped.InspectorID = actorID
				}
				if stamped.CompletedAt == nil {
					completedAt := s.now().UTC()
					stamped.CompletedAt = &completedAt
				}
				r.PrecheckReport = &stamped
			}
		case domain.ReservationStatusDeclined:
			r.DeclineReason = strings.TrimSpace(in.reason)
		}

		if err := repo.Update(ctx, r); err != nil {
			return err
		}
		updated = *r
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError(method, err, "reservationID", id)
		return nil, err
	}

	s.metrics.RecordTransition(string(in.to), "allowed")
	logger.WithReservation(id, updated.AssetID).Info("Reservation status changed", "status", updated.Status, "actorID", actorID, "effect", result.Effect)

	s.signal(ctx, updated, result.Effect, actorID)
	s.notify(ctx, updated)

	logger.ExitMethod(method, "reservationID", id, "status", updated.Status)
	return &updated, nil
}

func (s *reservationService) signal(ctx context.Context, r domain.Reservation, effect booking.AssetEffect, actorID string) {
	if effect == booking.AssetEffectNone {
		return
	}
	err := s.signaler.SignalAssetEffect(ctx, r, effect, actorID)
	s.metrics.RecordAssetSignal(string(effect), err)
	if err != nil {
		logger.Error("Failed to signal asset effect", "reservationID", r.ID, "assetID", r.AssetID, "effect", effect, "error", err)
	}
}

func (s *reservationService) notify(ctx context.Context, r domain.Reservation) {
	var send func(context.Context, domain.User, string, domain.Reservation) error
	switch r.Status {
	case domain.ReservationStatusAccepted:
		send = s.emailSvc.SendReservationAccepted
	case domain.ReservationStatusDeclined:
		send = s.emailSvc.SendReservationDeclined
	default:
		return
	}

	assignee, err := s.users.GetByID(ctx, r.AssignedToID)
	if err != nil {
		logger.Warn("Cannot notify assignee", "reservationID", r.ID, "userID", r.AssignedToID, "error", err)
		return
	}
	if err := send(ctx, *assignee, assetDisplayName(ctx, s.assets, r.AssetID), r); err != nil {
		logger.Error("Failed to send reservation notification", "reservationID", r.ID, "status", r.Status, "error", err)
	}
}

// resolveParties takes the asset type from the asset record and the assignee's name
// from the user directory, so neither depends on what the client sent.
func (s *reservationService) resolveParties(ctx context.Context, r *domain.Reservation) error {
	if r.AssetID != "" {
		asset, err := s.assets.GetByID(ctx, r.AssetID)
		if errors.Is(err, domain.ErrAssetNotFound) {
			return newFieldError(*r, booking.FieldAssetID, booking.ReasonInvalidValue)
		}
		if err != nil {
			return err
		}
		r.AssetType = asset.Type
	}

	if r.AssignedToID != "" {
		assignee, err := s.users.GetByID(ctx, r.AssignedToID)
		if errors.Is(err, domain.ErrUserNotFound) {
			return newFieldError(*r, booking.FieldAssignedToID, booking.ReasonInvalidValue)
		}
		if err != nil {
			return err
		}
		r.AssignedToName = assignee.Name
	}
	return nil
}

func (s *reservationService) rejected(r domain.Reservation, res booking.ValidationResult) error {
	for _, code := range res.Fields {
		s.metrics.RecordValidationFailure(string(code))
	}
	return &ValidationError{Reservation: r, Result: res}
}

func (s *reservationService) authorizeResolver(ctx context.Context, actorID string) error {
	actor, err := s.users.GetByID(ctx, actorID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrUnauthorized
	}
	if err != nil {
		return err
	}
	if !actor.Role.CanResolveReservations() {
		return fmt.Errorf("%w: role %s cannot resolve reservations", domain.ErrUnauthorized, actor.Role)
	}
	return nil
}

// authorizeEditor lets the requester edit their own booking; resolvers may edit any.
func (s *reservationService) authorizeEditor(ctx context.Context, actorID string, r *domain.Reservation) error {
	if actorID != "" && actorID == r.RequestedByID {
		return nil
	}
	return s.authorizeResolver(ctx, actorID)
}

func assetDisplayName(ctx context.Context, assets repository.AssetRepository, assetID string) string {
	asset, err := assets.GetByID(ctx, assetID)
	if err != nil || asset.Name == "" {
		return assetID
	}
	return asset.Name
}
