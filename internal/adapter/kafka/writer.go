package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/wind-weibull-service/internal/config"
	"github.com/couchcryptid/wind-weibull-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces recomputation events to a Kafka topic.
// It implements publisher.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic. Messages are
// keyed by session ID so one session's events stay ordered in a partition.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes events in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, events []domain.RecomputeEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d recomputation events: %w", len(msgs), err)
	}
	w.logger.Debug("recomputation events written", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func serializeToMessage(event domain.RecomputeEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize recomputation event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.SessionID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "computation", Value: []byte(event.Computation)},
			{Key: "trigger", Value: []byte(event.Trigger)},
			{Key: "recomputed_at", Value: []byte(event.At.Format(time.RFC3339Nano))},
		},
	}, nil
}
