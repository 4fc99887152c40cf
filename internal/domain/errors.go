package domain

import "errors"

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrAssetNotFound       = errors.New("asset not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrUnauthorized        = errors.New("unauthorized")

	// ErrValidationFailed wraps a proposal that broke one of the booking rules.
	ErrValidationFailed = errors.New("reservation validation failed")
	// ErrReservationConflict means another non-declined booking holds an overlapping interval.
	ErrReservationConflict = errors.New("reservation conflicts with an existing booking")

	// ErrIllegalTransition signals a caller that is out of sync with the status machine.
	ErrIllegalTransition      = errors.New("illegal reservation status transition")
	ErrPrecheckIncomplete     = errors.New("vehicle precheck incomplete")
	ErrDeclineReasonRequired  = errors.New("decline reason is required")
	ErrReservationNotEditable = errors.New("only pending reservations can be edited")
)
