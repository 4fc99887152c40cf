package booking

// ReasonCode is a machine-readable rejection reason. Wording is left to the client.
type ReasonCode string

const (
	ReasonRequired       ReasonCode = "required"
	ReasonInvalidDate    ReasonCode = "invalid_date"
	ReasonEndBeforeStart ReasonCode = "end_before_start"
	ReasonStartInPast    ReasonCode = "start_in_past"
	ReasonEndDateLocked  ReasonCode = "end_date_locked"
	ReasonConflict       ReasonCode = "conflict"
	ReasonInvalidValue   ReasonCode = "invalid_value"

	ReasonIllegalTransition     ReasonCode = "illegal_transition"
	ReasonPrecheckIncomplete    ReasonCode = "precheck_incomplete"
	ReasonDeclineReasonRequired ReasonCode = "decline_reason_required"
)

// IsCallerError reports reasons that mean the client's view of the status machine is
// stale, as opposed to the user having entered bad data.
func (c ReasonCode) IsCallerError() bool {
	return c == ReasonIllegalTransition
}
