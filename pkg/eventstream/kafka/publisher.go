// Package kafka publishes indexing run events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	segmentio "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/pedalworks/catalogiq/pkg/eventstream"
)

// Publisher writes index run events to a single Kafka topic, keyed by run id.
type Publisher struct {
	writer *segmentio.Writer
	logger *zap.Logger
}

// NewPublisher creates a Kafka publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string, logger *zap.Logger) *Publisher {
	return &Publisher{
		writer: &segmentio.Writer{
			Addr:         segmentio.TCP(brokers...),
			Topic:        topic,
			Balancer:     &segmentio.LeastBytes{},
			RequiredAcks: segmentio.RequireOne,
		},
		logger: logger,
	}
}

// PublishIndexRun serializes the event as JSON and writes it to the topic.
func (p *Publisher) PublishIndexRun(ctx context.Context, event *eventstream.IndexRunCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal index run event: %w", err)
	}

	msg := segmentio.Message{
		Key:   []byte(event.Run.RunID),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish index run event: %w", err)
	}

	p.logger.Debug("published index run event",
		zap.String("event_id", event.EventID),
		zap.String("run_id", event.Run.RunID))

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
