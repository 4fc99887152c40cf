package booking

import "fleet-booking-backend/internal/domain"

// NewChecklist returns the vehicle checklist in order with every item unanswered.
func NewChecklist() []domain.ChecklistItem {
	items := make([]domain.ChecklistItem, 0, len(domain.VehicleChecklist))
	for _, id := range domain.VehicleChecklist {
		items = append(items, domain.ChecklistItem{ID: id})
	}
	return items
}

// UnansweredItems lists the required checklist items that are missing from report or
// carry no answer, in checklist order.
func UnansweredItems(report *domain.PrecheckReport) []domain.ChecklistItemID {
	var missing []domain.ChecklistItemID
	for _, id := range domain.VehicleChecklist {
		item, ok := report.Item(id)
		if !ok || item.Passed == nil {
			missing = append(missing, id)
		}
	}
	return missing
}

// CanAccept is the vehicle precheck gate. Tools are never gated. Any other asset type
// needs a report in which every checklist item was answered; failed answers still
// pass, since the person accepting the booking makes the call.
func CanAccept(assetType domain.AssetType, report *domain.PrecheckReport) bool {
	if assetType == domain.AssetTypeTool {
		return true
	}
	if report == nil {
		return false
	}
	return len(UnansweredItems(report)) == 0
}
