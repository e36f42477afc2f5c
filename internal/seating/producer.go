package seating

import (
	"encoding/json"
	"fmt"
	"time"

	"cinerama/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Seat lifecycle event types published to the seats topic.
const (
	EventSeatHeld      = "seat.held"
	EventSeatConfirmed = "seat.confirmed"
	EventSeatReleased  = "seat.released"
	EventSeatsSwept    = "seats.swept"
)

// SeatEvent is the wire format for seat lifecycle events. Swept events
// carry a count instead of a seat id.
type SeatEvent struct {
	Type       string     `json:"type"`
	ShowtimeID uuid.UUID  `json:"showtime_id,omitempty"`
	SeatID     *uuid.UUID `json:"seat_id,omitempty"`
	SeatCode   string     `json:"seat_code,omitempty"`
	HeldBy     *uuid.UUID `json:"held_by,omitempty"`
	SweptCount int64      `json:"swept_count,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// EventPublisher is the contract for emitting seat lifecycle events.
type EventPublisher interface {
	PublishSeatEvent(event *SeatEvent) error
	Close() error
}

// KafkaPublisherConfig contains configuration for the Kafka seat event publisher
type KafkaPublisherConfig struct {
	Brokers          []string
	SeatsTopic       string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
}

// DefaultKafkaPublisherConfig returns a default publisher configuration
func DefaultKafkaPublisherConfig() *KafkaPublisherConfig {
	return &KafkaPublisherConfig{
		Brokers:          []string{"localhost:9092"},
		SeatsTopic:       "seat-events",
		RetryMax:         3,
		TimeoutMs:        10000,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
	}
}

// KafkaEventPublisher publishes seat lifecycle events to Kafka
type KafkaEventPublisher struct {
	producer sarama.SyncProducer
	config   *KafkaPublisherConfig
	log      *logger.Logger
}

// NewKafkaEventPublisher creates a new Kafka seat event publisher
func NewKafkaEventPublisher(config *KafkaPublisherConfig) (EventPublisher, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites

	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keys events by showtime so per-showtime ordering holds
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer: producer,
		config:   config,
		log:      logger.GetDefault().WithComponent("seat-events"),
	}, nil
}

// PublishSeatEvent publishes a single seat lifecycle event
func (kep *KafkaEventPublisher) PublishSeatEvent(event *SeatEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal seat event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: kep.config.SeatsTopic,
		Key:   sarama.StringEncoder(event.ShowtimeID.String()),
		Value: sarama.ByteEncoder(messageBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
			{Key: []byte("producer"), Value: []byte("cinerama-seating")},
			{Key: []byte("occurred_at"), Value: []byte(event.OccurredAt.Format(time.RFC3339))},
		},
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := kep.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send seat event to Kafka: %w", err)
	}

	kep.log.Debug("seat event published",
		"topic", kep.config.SeatsTopic,
		"partition", partition,
		"offset", offset,
		"type", event.Type,
	)
	return nil
}

// Close closes the Kafka producer
func (kep *KafkaEventPublisher) Close() error {
	if kep.producer != nil {
		if err := kep.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}
