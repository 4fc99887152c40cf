package booking

import (
	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/utils"
)

const (
	seasonalMonths = 3
	annualYears    = 1
)

// ResolveEndDate returns the end date mandated by the reservation type. The boolean is
// false when the type leaves the end date to manual entry, or when start is absent.
func ResolveEndDate(t domain.ReservationType, start utils.Date) (utils.Date, bool) {
	if !start.Valid() {
		return utils.Date{}, false
	}
	switch t {
	case domain.ReservationTypeSeasonal:
		return start.AddMonths(seasonalMonths), true
	case domain.ReservationTypeAnnual:
		return start.AddYears(annualYears), true
	}
	return utils.Date{}, false
}

// EndDateLocked reports whether interactive consumers must treat the end date as
// read-only for this reservation type.
func EndDateLocked(t domain.ReservationType) bool {
	return t == domain.ReservationTypeSeasonal || t == domain.ReservationTypeAnnual
}
