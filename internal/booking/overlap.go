package booking

import (
	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/utils"
)

// Proposal is an interval someone wants to book. ReservationID is set when an
// existing reservation is being edited, so it is not compared with itself.
type Proposal struct {
	ReservationID string     `json:"reservation_id,omitempty"`
	AssetID       string     `json:"asset_id"`
	StartDate     utils.Date `json:"start_date"`
	EndDate       utils.Date `json:"end_date"`
}

// Conflict describes an existing booking that blocks a proposal.
type Conflict struct {
	ReservationID  string     `json:"reservation_id"`
	AssignedToName string     `json:"assigned_to_name"`
	Start          utils.Date `json:"start"`
	End            utils.Date `json:"end"`
}

// Overlaps is inclusive at both ends: intervals sharing a boundary day overlap.
func Overlaps(aStart, aEnd, bStart, bEnd utils.Date) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// FindConflicts returns every reservation in existing that blocks p. Records for
// other assets, p's own record, declined bookings and records without two valid
// dates never conflict.
func FindConflicts(p Proposal, existing []domain.Reservation) []Conflict {
	if !p.StartDate.Valid() || !p.EndDate.Valid() {
		return nil
	}

	var conflicts []Conflict
	for _, r := range existing {
		if r.AssetID != p.AssetID {
			continue
		}
		if p.ReservationID != "" && r.ID == p.ReservationID {
			continue
		}
		if r.Status == domain.ReservationStatusDeclined {
			continue
		}
		if !r.StartDate.Valid() || !r.EndDate.Valid() {
			continue
		}
		if !Overlaps(p.StartDate, p.EndDate, r.StartDate, r.EndDate) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			ReservationID:  r.ID,
			AssignedToName: r.AssignedToName,
			Start:          r.StartDate,
			End:            r.EndDate,
		})
	}
	return conflicts
}

// ProposalFor builds the proposal describing r's current interval.
func ProposalFor(r domain.Reservation) Proposal {
	return Proposal{
		ReservationID: r.ID,
		AssetID:       r.AssetID,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
	}
}
