package domain

import "time"

type ChecklistItemID string

const (
	ChecklistBodyCondition    ChecklistItemID = "BODY_CONDITION"
	ChecklistTireCondition    ChecklistItemID = "TIRE_CONDITION"
	ChecklistLighting         ChecklistItemID = "LIGHTING"
	ChecklistServiceInterval  ChecklistItemID = "SERVICE_INTERVAL"
	ChecklistFluidLevels      ChecklistItemID = "FLUID_LEVELS"
	ChecklistWarningLights    ChecklistItemID = "WARNING_LIGHTS"
	ChecklistCleanliness      ChecklistItemID = "CLEANLINESS"
	ChecklistDocumentsPresent ChecklistItemID = "DOCUMENTS_PRESENT"
)

// VehicleChecklist is the fixed, ordered list of inspection items of a vehicle precheck.
var VehicleChecklist = []ChecklistItemID{
	ChecklistBodyCondition,
	ChecklistTireCondition,
	ChecklistLighting,
	ChecklistServiceInterval,
	ChecklistFluidLevels,
	ChecklistWarningLights,
	ChecklistCleanliness,
	ChecklistDocumentsPresent,
}

// ChecklistItem keeps "failed" (false) apart from "not answered" (nil) for audit.
type ChecklistItem struct {
	ID     ChecklistItemID `json:"id"`
	Passed *bool           `json:"passed"`
}

type PrecheckReport struct {
	Items          []ChecklistItem `json:"items"`
	FreeTextReport string          `json:"free_text_report,omitempty"`
	InspectorID    string          `json:"inspector_id,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}

// Item returns the entry for id, if the report carries one.
func (r *PrecheckReport) Item(id ChecklistItemID) (ChecklistItem, bool) {
	if r == nil {
		return ChecklistItem{}, false
	}
	for _, item := range r.Items {
		if item.ID == id {
			return item, true
		}
	}
	return ChecklistItem{}, false
}
