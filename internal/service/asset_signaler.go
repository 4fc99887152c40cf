package service

import (
	"context"
	"fmt"

	"fleet-booking-backend/internal/booking"
	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/logger"
	"fleet-booking-backend/internal/messaging/kafka"
)

// EventPublisher is the part of kafka.Producer the signaler needs.
type EventPublisher interface {
	PublishEvent(topic string, key string, event any) error
}

type kafkaAssetSignaler struct {
	publisher EventPublisher
	topic     string
}

// NewKafkaAssetSignaler publishes asset effects as reservation events keyed by asset id.
// An empty topic selects kafka.TopicReservationEvents.
func NewKafkaAssetSignaler(publisher EventPublisher, topic string) AssetSignaler {
	if topic == "" {
		topic = kafka.TopicReservationEvents
	}
	return &kafkaAssetSignaler{publisher: publisher, topic: topic}
}

func (s *kafkaAssetSignaler) SignalAssetEffect(ctx context.Context, r domain.Reservation, effect booking.AssetEffect, actorID string) error {
	eventType, ok := eventTypeFor(r.Status)
	if !ok {
		return fmt.Errorf("no event for reservation status %s", r.Status)
	}
	assetStatus, ok := effect.AssetStatus()
	if !ok {
		return fmt.Errorf("no asset status for effect %q", effect)
	}

	event := kafka.NewReservationEvent(eventType, r.ID, r.AssetID, string(r.AssetType), string(effect), string(assetStatus), actorID)
	if err := s.publisher.PublishEvent(s.topic, r.AssetID, event); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}

func eventTypeFor(status domain.ReservationStatus) (kafka.EventType, bool) {
	switch status {
	case domain.ReservationStatusAccepted:
		return kafka.EventTypeReservationAccepted, true
	case domain.ReservationStatusDeclined:
		return kafka.EventTypeReservationDeclined, true
	case domain.ReservationStatusCompleted:
		return kafka.EventTypeReservationCompleted, true
	}
	return "", false
}

type loggingAssetSignaler struct{}

// NewLoggingAssetSignaler only logs effects. Used when no broker is configured.
func NewLoggingAssetSignaler() AssetSignaler {
	return loggingAssetSignaler{}
}

func (loggingAssetSignaler) SignalAssetEffect(ctx context.Context, r domain.Reservation, effect booking.AssetEffect, actorID string) error {
	status, _ := effect.AssetStatus()
	logger.InfoContext(ctx, "Asset effect", "reservationID", r.ID, "assetID", r.AssetID,
		"effect", effect, "assetStatus", status, "actorID", actorID)
	return nil
}
