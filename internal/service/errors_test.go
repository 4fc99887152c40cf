package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"fleet-booking-backend/internal/booking"
	"fleet-booking-backend/internal/domain"
)

func TestValidationError(t *testing.T) {
	err := error(&ValidationError{Result: booking.ValidationResult{Fields: map[string]booking.ReasonCode{
		booking.FieldPurpose: booking.ReasonRequired,
		booking.FieldEndDate: booking.ReasonEndDateLocked,
	}}})

	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Equal(t, "reservation validation failed: end_date=end_date_locked, purpose=required", err.Error())

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestTransitionError(t *testing.T) {
	err := error(&TransitionError{
		ReservationID: "r-1",
		From:          domain.ReservationStatusPending,
		To:            domain.ReservationStatusAccepted,
		Result:        booking.TransitionResult{Reason: booking.ReasonPrecheckIncomplete},
	})

	assert.ErrorIs(t, err, domain.ErrPrecheckIncomplete)
	assert.NotErrorIs(t, err, domain.ErrIllegalTransition)
	assert.Contains(t, err.Error(), "PENDING -> ACCEPTED refused: precheck_incomplete")
}
