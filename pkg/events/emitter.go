// Package events publishes review decision events to the host action bus
package events

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/aster/pkg/kafka"
	"github.com/Ramsey-B/aster/pkg/metrics"
	"github.com/Ramsey-B/aster/pkg/tracing"
)

// Decision kinds recorded on the action bus
const (
	KindAccept      = "accept"
	KindReject      = "reject"
	KindManual      = "manual"
	KindBatchAccept = "batch_accept"
	KindBatchReject = "batch_reject"
)

// Decision is one review outcome to record for audit/undo
type Decision struct {
	Kind      string
	TenantID  string
	SessionID string
	MatchIDs  []string
	Value     *string
}

// Sink receives review decisions. Emission is fire-and-forget: the review
// state machine never blocks on, or fails because of, the sink.
type Sink interface {
	Record(ctx context.Context, decision Decision)
}

// Emitter publishes decisions to Kafka
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
	timeout  time.Duration
}

// NewEmitter creates a Kafka-backed decision sink
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
		timeout:  5 * time.Second,
	}
}

// Record publishes one decision event. Failures are logged and dropped.
func (e *Emitter) Record(ctx context.Context, decision Decision) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.Record")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	event := &kafka.DecisionEvent{
		Kind:      decision.Kind,
		TenantID:  decision.TenantID,
		SessionID: decision.SessionID,
		MatchIDs:  decision.MatchIDs,
		Value:     decision.Value,
	}

	if err := e.producer.PublishDecisionEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"kind":       decision.Kind,
			"session_id": decision.SessionID,
		}).Error("Failed to record review decision")
		return
	}

	metrics.ReviewDecisionsTotal.WithLabelValues(decision.TenantID, decision.Kind).Inc()
}

// NopSink discards decisions. Used in tests and when Kafka is disabled.
type NopSink struct{}

// Record discards the decision
func (NopSink) Record(ctx context.Context, decision Decision) {}
