package domain

import "strings"

type AssetType string

const (
	AssetTypeVehicle AssetType = "VEHICLE"
	AssetTypeTool    AssetType = "TOOL"
)

func ParseAssetType(s string) (AssetType, bool) {
	switch at := AssetType(strings.ToUpper(strings.TrimSpace(s))); at {
	case AssetTypeVehicle, AssetTypeTool:
		return at, true
	}
	return "", false
}

type AssetReservationStatus string

const (
	AssetReservationStatusAvailable AssetReservationStatus = "AVAILABLE"
	AssetReservationStatusReserved  AssetReservationStatus = "RESERVED"
)

type AssetCondition string

const (
	AssetConditionGood         AssetCondition = "GOOD"
	AssetConditionNeedsService AssetCondition = "NEEDS_SERVICE"
	AssetConditionOutOfService AssetCondition = "OUT_OF_SERVICE"
)

// Asset is owned by the asset management system; the booking backend only reads it.
type Asset struct {
	ID                string                 `json:"id"`
	Type              AssetType              `json:"type"`
	Name              string                 `json:"name"`
	Condition         AssetCondition         `json:"condition"`
	ReservationStatus AssetReservationStatus `json:"reservation_status"`
}
