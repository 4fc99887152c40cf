package service

import (
	"fmt"
	"sort"
	"strings"

	"fleet-booking-backend/internal/booking"
	"fleet-booking-backend/internal/domain"
)

// ValidationError carries the structured result of a rejected proposal.
// errors.Is(err, domain.ErrValidationFailed) holds for it.
type ValidationError struct {
	Reservation domain.Reservation
	Result      booking.ValidationResult
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Result.Fields))
	for field, code := range e.Result.Fields {
		fields = append(fields, field+"="+string(code))
	}
	sort.Strings(fields)
	return fmt.Sprintf("%s: %s", domain.ErrValidationFailed, strings.Join(fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return domain.ErrValidationFailed
}

func newFieldError(r domain.Reservation, field string, code booking.ReasonCode) *ValidationError {
	return &ValidationError{
		Reservation: r,
		Result:      booking.ValidationResult{Fields: map[string]booking.ReasonCode{field: code}},
	}
}

// TransitionError is a refused status transition. It unwraps to the domain error
// matching the refusal reason.
type TransitionError struct {
	ReservationID string
	From          domain.ReservationStatus
	To            domain.ReservationStatus
	Result        booking.TransitionResult
	// Unanswered lists the missing checklist items of a precheck_incomplete refusal.
	Unanswered []domain.ChecklistItemID
	// Conflicts lists the bookings that blocked an accept.
	Conflicts []booking.Conflict
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("reservation %s: %s -> %s refused: %s", e.ReservationID, e.From, e.To, e.Result.Reason)
}

func (e *TransitionError) Unwrap() error {
	return e.Result.Err()
}
