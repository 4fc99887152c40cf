package domain

import (
	"strings"
	"time"

	"fleet-booking-backend/internal/utils"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusAccepted  ReservationStatus = "ACCEPTED"
	ReservationStatusDeclined  ReservationStatus = "DECLINED"
	ReservationStatusCompleted ReservationStatus = "COMPLETED"
)

// ParseReservationStatus is case-insensitive. Unknown values return "" and false.
func ParseReservationStatus(s string) (ReservationStatus, bool) {
	switch st := ReservationStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case ReservationStatusPending, ReservationStatusAccepted, ReservationStatusDeclined, ReservationStatusCompleted:
		return st, true
	}
	return "", false
}

// IsTerminal reports whether no further transition can leave this status.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationStatusDeclined || s == ReservationStatusCompleted
}

type ReservationType string

const (
	ReservationTypeNormal   ReservationType = "NORMAL"
	ReservationTypeSeasonal ReservationType = "SEASONAL"
	ReservationTypeAnnual   ReservationType = "ANNUAL"
)

func ParseReservationType(s string) (ReservationType, bool) {
	switch rt := ReservationType(strings.ToUpper(strings.TrimSpace(s))); rt {
	case ReservationTypeNormal, ReservationTypeSeasonal, ReservationTypeAnnual:
		return rt, true
	}
	return "", false
}

type Reservation struct {
	ID              string            `json:"id,omitempty"`
	AssetID         string            `json:"asset_id"`
	AssetType       AssetType         `json:"asset_type"`
	RequestedByID   string            `json:"requested_by_id"`
	AssignedToID    string            `json:"assigned_to_id"`
	AssignedToName  string            `json:"assigned_to_name,omitempty"`
	StartDate       utils.Date        `json:"start_date"`
	EndDate         utils.Date        `json:"end_date"`
	StartTime       string            `json:"start_time,omitempty"` // HH:MM
	EndTime         string            `json:"end_time,omitempty"`   // HH:MM
	ReservationType ReservationType   `json:"reservation_type"`
	Purpose         string            `json:"purpose"`
	Notes           string            `json:"notes,omitempty"`
	Status          ReservationStatus `json:"status"`
	DeclineReason   string            `json:"decline_reason,omitempty"`
	PrecheckReport  *PrecheckReport   `json:"precheck_report,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
