package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/Ramsey-B/aster/pkg/tracing"
)

// Producer handles Kafka event emission
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	topic  string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	compression := kafka.Snappy
	switch cfg.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	case "none":
		compression = 0
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:            compression,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		topic:  cfg.Topic,
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// DecisionEvent records one review decision for audit and undo downstream
type DecisionEvent struct {
	Kind      string    `json:"kind"` // accept, reject, manual, batch_accept, batch_reject
	TenantID  string    `json:"tenant_id"`
	SessionID string    `json:"session_id"`
	MatchIDs  []string  `json:"match_ids"`
	Value     *string   `json:"value,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PublishDecisionEvent publishes a review decision event to Kafka
func (p *Producer) PublishDecisionEvent(ctx context.Context, event *DecisionEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishDecisionEvent")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.SessionID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(event.Kind)},
			{Key: "tenant_id", Value: []byte(event.TenantID)},
			{Key: "session_id", Value: []byte(event.SessionID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish decision event")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"kind":       event.Kind,
		"session_id": event.SessionID,
		"match_ids":  len(event.MatchIDs),
	}).Debug("Published decision event")

	return nil
}
