package kafka

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"fleet-booking-backend/internal/logger"
)

// Producer publishes JSON events to Kafka.
type Producer struct {
	producer sarama.SyncProducer
	logger   *slog.Logger
}

func NewProducer(brokers []string, clientID string) (*Producer, error) {
	config := sarama.NewConfig()
	if clientID != "" {
		config.ClientID = clientID
	}
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewProducerFromSarama(producer), nil
}

// NewProducerFromSarama wraps an existing sarama producer.
func NewProducerFromSarama(producer sarama.SyncProducer) *Producer {
	return &Producer{
		producer: producer,
		logger:   logger.Get().With("component", "kafka-producer"),
	}
}

func (p *Producer) PublishEvent(topic string, key string, event any) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(eventData),
		Timestamp: time.Now(),
	}

	logger.ExternalServiceCall("kafka", "SendMessage", "topic", topic, "key", key)
	partition, offset, err := p.producer.SendMessage(msg)
	logger.ExternalServiceResult("kafka", "SendMessage", err, "topic", topic, "key", key)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	p.logger.Debug("message sent to kafka", "topic", topic, "key", key, "partition", partition, "offset", offset)
	return nil
}

func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}
