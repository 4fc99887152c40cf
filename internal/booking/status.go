package booking

import (
	"strings"

	"fleet-booking-backend/internal/domain"
)

var allowedTransitions = map[domain.ReservationStatus]map[domain.ReservationStatus]bool{
	domain.ReservationStatusPending:   {domain.ReservationStatusAccepted: true, domain.ReservationStatusDeclined: true},
	domain.ReservationStatusAccepted:  {domain.ReservationStatusCompleted: true},
	domain.ReservationStatusDeclined:  {},
	domain.ReservationStatusCompleted: {},
}

// CanTransition reports whether the status machine has an edge from -> to.
// Terminal statuses have no outgoing edges.
func CanTransition(from, to domain.ReservationStatus) bool {
	if from.IsTerminal() {
		return false
	}
	return allowedTransitions[from][to]
}

// AssetEffect is what a successful transition asks the asset management system to do.
// The booking rules only name the effect; carrying it out is someone else's job.
type AssetEffect string

const (
	AssetEffectNone    AssetEffect = ""
	AssetEffectReserve AssetEffect = "RESERVE"
	AssetEffectRelease AssetEffect = "RELEASE"
)

// AssetStatus is the asset reservation status the effect leads to.
func (e AssetEffect) AssetStatus() (domain.AssetReservationStatus, bool) {
	switch e {
	case AssetEffectReserve:
		return domain.AssetReservationStatusReserved, true
	case AssetEffectRelease:
		return domain.AssetReservationStatusAvailable, true
	}
	return "", false
}

type TransitionRequest struct {
	Current        domain.ReservationStatus
	Requested      domain.ReservationStatus
	AssetType      domain.AssetType
	PrecheckReport *domain.PrecheckReport
	DeclineReason  string
	// Conflicts found for the reservation's current interval; only consulted on accept.
	Conflicts []Conflict
}

type TransitionResult struct {
	Allowed bool        `json:"allowed"`
	Reason  ReasonCode  `json:"reason,omitempty"`
	Effect  AssetEffect `json:"effect,omitempty"`
}

// Err maps a refused transition onto the matching domain error, or nil when allowed.
func (r TransitionResult) Err() error {
	if r.Allowed {
		return nil
	}
	switch r.Reason {
	case ReasonPrecheckIncomplete:
		return domain.ErrPrecheckIncomplete
	case ReasonConflict:
		return domain.ErrReservationConflict
	case ReasonDeclineReasonRequired:
		return domain.ErrDeclineReasonRequired
	}
	return domain.ErrIllegalTransition
}

func deny(reason ReasonCode) TransitionResult {
	return TransitionResult{Allowed: false, Reason: reason}
}

// EvaluateTransition decides whether a reservation may move from req.Current to
// req.Requested.
//
// PENDING -> ACCEPTED needs a conflict-free interval and, unless the asset is a tool,
// a fully answered precheck report. PENDING -> DECLINED needs a reason.
// ACCEPTED -> COMPLETED only checks the prior state. DECLINED and COMPLETED are final.
func EvaluateTransition(req TransitionRequest) TransitionResult {
	if !CanTransition(req.Current, req.Requested) {
		return deny(ReasonIllegalTransition)
	}

	switch req.Requested {
	case domain.ReservationStatusAccepted:
		if len(req.Conflicts) > 0 {
			return deny(ReasonConflict)
		}
		if !CanAccept(req.AssetType, req.PrecheckReport) {
			return deny(ReasonPrecheckIncomplete)
		}
		return TransitionResult{Allowed: true, Effect: AssetEffectReserve}
	case domain.ReservationStatusDeclined:
		if strings.TrimSpace(req.DeclineReason) == "" {
			return deny(ReasonDeclineReasonRequired)
		}
		return TransitionResult{Allowed: true, Effect: AssetEffectRelease}
	case domain.ReservationStatusCompleted:
		return TransitionResult{Allowed: true, Effect: AssetEffectRelease}
	}
	return deny(ReasonIllegalTransition)
}
