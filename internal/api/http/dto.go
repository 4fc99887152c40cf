package http

import (
	"strings"

	"fleet-booking-backend/internal/booking"
	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/utils"
)

type conflictCheckRequest struct {
	ReservationID string `json:"reservation_id"`
	AssetID       string `json:"asset_id" validate:"required"`
	StartDate     string `json:"start_date" validate:"required,date_ymd"`
	EndDate       string `json:"end_date" validate:"required,date_ymd"`
}

// proposal assumes the request has passed validation.
func (req conflictCheckRequest) proposal() booking.Proposal {
	start, _ := utils.ParseDate(req.StartDate)
	end, _ := utils.ParseDate(req.EndDate)
	return booking.Proposal{
		ReservationID: strings.TrimSpace(req.ReservationID),
		AssetID:       strings.TrimSpace(req.AssetID),
		StartDate:     start,
		EndDate:       end,
	}
}

type conflictCheckResponse struct {
	Conflicts []booking.Conflict `json:"conflicts"`
}

type checklistAnswer struct {
	ID     string `json:"id" validate:"required,checklist_item"`
	Passed *bool  `json:"passed"`
}

// acceptRequest carries the vehicle precheck. Tools are accepted with an empty body.
type acceptRequest struct {
	Items          []checklistAnswer `json:"items" validate:"omitempty,dive"`
	FreeTextReport string            `json:"free_text_report" validate:"max=4000"`
}

func (req acceptRequest) report() *domain.PrecheckReport {
	if len(req.Items) == 0 && strings.TrimSpace(req.FreeTextReport) == "" {
		return nil
	}
	report := &domain.PrecheckReport{FreeTextReport: strings.TrimSpace(req.FreeTextReport)}
	for _, item := range req.Items {
		report.Items = append(report.Items, domain.ChecklistItem{
			ID:     domain.ChecklistItemID(strings.ToUpper(strings.TrimSpace(item.ID))),
			Passed: item.Passed,
		})
	}
	return report
}

// The reason is not required here; an empty reason is refused by the status machine.
type declineRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

type listQuery struct {
	Status string `json:"status" validate:"omitempty,reservation_status"`
}

type endDateQuery struct {
	Type  string `json:"type" validate:"required,reservation_type"`
	Start string `json:"start" validate:"required,date_ymd"`
}

type endDateResponse struct {
	ReservationType domain.ReservationType `json:"reservation_type"`
	StartDate       utils.Date             `json:"start_date"`
	EndDate         utils.Date             `json:"end_date"`
	EndDateLocked   bool                   `json:"end_date_locked"`
}

type checklistResponse struct {
	Items []domain.ChecklistItem `json:"items"`
}

type errorResponse struct {
	Error      string                        `json:"error"`
	Allowed    *bool                         `json:"allowed,omitempty"`
	Reason     booking.ReasonCode            `json:"reason,omitempty"`
	Fields     map[string]booking.ReasonCode `json:"fields,omitempty"`
	Conflicts  []booking.Conflict            `json:"conflicts,omitempty"`
	Unanswered []domain.ChecklistItemID      `json:"unanswered,omitempty"`
	Invalid    map[string]string             `json:"invalid,omitempty"`
}
