package booking

import (
	"strings"

	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/utils"
)

// Field keys used in ValidationResult.Fields.
const (
	FieldAssetID       = "asset_id"
	FieldAssetType     = "asset_type"
	FieldRequestedByID = "requested_by_id"
	FieldAssignedToID  = "assigned_to_id"
	FieldPurpose       = "purpose"
	FieldStartDate     = "start_date"
	FieldEndDate       = "end_date"
	FieldEndTime       = "end_time"
	FieldInterval      = "interval"
)

type ValidationOptions struct {
	// Today is the caller's current local date; the zero value skips the past-start rule.
	Today utils.Date
	// Update marks an edit of a stored reservation. Edits may keep a start date that
	// has already passed.
	Update bool
}

// ValidationResult is the outcome of ValidateProposal. It is data, not an error: the
// caller decides how to surface it.
type ValidationResult struct {
	Fields        map[string]ReasonCode `json:"fields,omitempty"`
	Conflicts     []Conflict            `json:"conflicts,omitempty"`
	EndDate       utils.Date            `json:"end_date"`
	EndDateLocked bool                  `json:"end_date_locked"`
}

func (v ValidationResult) Valid() bool {
	return len(v.Fields) == 0
}

// OnlyConflicts reports a failed result whose every field failed with ReasonConflict.
func (v ValidationResult) OnlyConflicts() bool {
	if len(v.Fields) == 0 {
		return false
	}
	for _, code := range v.Fields {
		if code != ReasonConflict {
			return false
		}
	}
	return true
}

// fail keeps the first reason recorded per field.
func (v *ValidationResult) fail(field string, code ReasonCode) {
	if v.Fields == nil {
		v.Fields = make(map[string]ReasonCode)
	}
	if _, ok := v.Fields[field]; !ok {
		v.Fields[field] = code
	}
}

// ValidateProposal applies the reservation-type end date to r and checks it against
// the booking invariants and the existing reservations of its asset. It returns r with
// the resolved end date and defaulted reservation type, together with the result.
func ValidateProposal(r domain.Reservation, existing []domain.Reservation, opts ValidationOptions) (domain.Reservation, ValidationResult) {
	var res ValidationResult

	if r.ReservationType == "" {
		r.ReservationType = domain.ReservationTypeNormal
	}

	if strings.TrimSpace(r.AssetID) == "" {
		res.fail(FieldAssetID, ReasonRequired)
	}
	if r.AssetType == "" {
		res.fail(FieldAssetType, ReasonRequired)
	}
	if strings.TrimSpace(r.RequestedByID) == "" {
		res.fail(FieldRequestedByID, ReasonRequired)
	}
	if strings.TrimSpace(r.AssignedToID) == "" {
		res.fail(FieldAssignedToID, ReasonRequired)
	}
	if strings.TrimSpace(r.Purpose) == "" {
		res.fail(FieldPurpose, ReasonRequired)
	}

	startOK := checkDate(&res, FieldStartDate, r.StartDate)
	if startOK && !opts.Update && !opts.Today.IsZero() && r.StartDate.Before(opts.Today) {
		res.fail(FieldStartDate, ReasonStartInPast)
	}

	res.EndDateLocked = EndDateLocked(r.ReservationType)
	if policyEnd, ok := ResolveEndDate(r.ReservationType, r.StartDate); ok {
		if !r.EndDate.IsZero() && !r.EndDate.Equal(policyEnd) {
			res.fail(FieldEndDate, ReasonEndDateLocked)
		}
		r.EndDate = policyEnd
	}
	endOK := checkDate(&res, FieldEndDate, r.EndDate)
	res.EndDate = r.EndDate

	if !startOK || !endOK {
		return r, res
	}

	if r.EndDate.Before(r.StartDate) {
		res.fail(FieldEndDate, ReasonEndBeforeStart)
		return r, res
	}
	if r.EndDate.Equal(r.StartDate) && r.StartTime != "" && r.EndTime != "" && r.EndTime < r.StartTime {
		res.fail(FieldEndTime, ReasonEndBeforeStart)
	}

	if r.AssetID != "" {
		res.Conflicts = FindConflicts(ProposalFor(r), existing)
		if len(res.Conflicts) > 0 {
			res.fail(FieldInterval, ReasonConflict)
		}
	}

	return r, res
}

func checkDate(res *ValidationResult, field string, d utils.Date) bool {
	if d.IsZero() {
		res.fail(field, ReasonRequired)
		return false
	}
	if !d.Valid() {
		res.fail(field, ReasonInvalidDate)
		return false
	}
	return true
}
