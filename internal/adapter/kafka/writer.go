package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/datacenter-atlas/internal/config"
	"github.com/couchcryptid/datacenter-atlas/internal/domain"
)

// Writer publishes year snapshots to a Kafka topic, one message per year.
// It implements pipeline.SnapshotLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured snapshot topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSnapshotTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// LoadBatch publishes every snapshot in a single WriteMessages call. The year
// is the message key, so compacted topics keep the latest snapshot per year.
func (w *Writer) LoadBatch(ctx context.Context, snapshots []domain.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(snapshots))
	for i := range snapshots {
		msg, err := serializeToMessage(snapshots[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write snapshots to %s: %w", w.writer.Topic, err)
	}
	w.logger.Debug("snapshots published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Snapshot into a Kafka message.
func serializeToMessage(snap domain.Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot %d: %w", snap.Year, err)
	}
	year := []byte(strconv.Itoa(snap.Year))
	return kafkago.Message{
		Key:   year,
		Value: data,
		Headers: []kafkago.Header{
			{Key: "year", Value: year},
			{Key: "dataset_version", Value: []byte(snap.DatasetVersion)},
			{Key: "generated_at", Value: []byte(snap.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
