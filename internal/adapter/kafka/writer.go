// Package kafka publishes feed snapshots and alert notifications to Kafka
// topics for downstream consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/cosmicwatch/neo-monitor-service/internal/config"
	"github.com/cosmicwatch/neo-monitor-service/internal/domain"
)

// SnapshotWriter produces freshly fetched feed snapshots to a Kafka topic.
// It implements feed.Publisher.
type SnapshotWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewSnapshotWriter creates a Kafka producer for the snapshot topic.
func NewSnapshotWriter(cfg *config.Config, logger *slog.Logger) *SnapshotWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSnapshotTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &SnapshotWriter{writer: w, logger: logger}
}

// PublishSnapshot serializes and publishes one snapshot. Called once per
// upstream fetch, never per cache hit.
func (w *SnapshotWriter) PublishSnapshot(ctx context.Context, snapshot domain.FeedSnapshot) error {
	msg, err := serializeSnapshot(snapshot)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write snapshot message: %w", err)
	}
	w.logger.Debug("snapshot published",
		"topic", w.writer.Topic,
		"objects", len(snapshot.Objects),
	)
	return nil
}

func (w *SnapshotWriter) Close() error {
	return w.writer.Close()
}

// serializeSnapshot marshals a snapshot into a Kafka message keyed by the
// date range so compacted topics retain the latest per window.
func serializeSnapshot(snapshot domain.FeedSnapshot) (kafkago.Message, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot: %w", err)
	}
	key := fmt.Sprintf("%s:%s",
		snapshot.StartDate.Format("2006-01-02"),
		snapshot.EndDate.Format("2006-01-02"))
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "object_count", Value: []byte(fmt.Sprintf("%d", len(snapshot.Objects)))},
			{Key: "generated_at", Value: []byte(snapshot.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
