package kafka

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeReservationAccepted  EventType = "reservation.accepted"
	EventTypeReservationDeclined  EventType = "reservation.declined"
	EventTypeReservationCompleted EventType = "reservation.completed"
)

// TopicReservationEvents carries asset effects of reservation transitions, keyed by
// asset id so that one asset's events stay ordered within a partition.
const TopicReservationEvents = "fleet.reservation.events"

// ReservationEvent tells the asset management system which reservation status an
// asset should move to.
type ReservationEvent struct {
	EventID       string    `json:"event_id"`
	EventType     EventType `json:"event_type"`
	ReservationID string    `json:"reservation_id"`
	AssetID       string    `json:"asset_id"`
	AssetType     string    `json:"asset_type"`
	Effect        string    `json:"effect"`
	AssetStatus   string    `json:"asset_status"`
	ActorID       string    `json:"actor_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewReservationEvent(eventType EventType, reservationID, assetID, assetType, effect, assetStatus, actorID string) *ReservationEvent {
	return &ReservationEvent{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		ReservationID: reservationID,
		AssetID:       assetID,
		AssetType:     assetType,
		Effect:        effect,
		AssetStatus:   assetStatus,
		ActorID:       actorID,
		Timestamp:     time.Now().UTC(),
	}
}
