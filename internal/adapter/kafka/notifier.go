package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/cosmicwatch/neo-monitor-service/internal/config"
)

// notification is the wire shape consumed by the delivery workers.
type notification struct {
	UserID    int64     `json:"user_id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier enqueues alert notifications on a Kafka topic. It implements
// alert.Notifier; delivery workers consume the topic and fan out to users.
type Notifier struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewNotifier creates a Kafka producer for the alert topic.
func NewNotifier(cfg *config.Config, logger *slog.Logger) *Notifier {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAlertTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Notifier{writer: w, logger: logger}
}

func (n *Notifier) Notify(ctx context.Context, userID int64, subject, body string) error {
	msg, err := serializeNotification(notification{
		UserID:    userID,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write alert message: %w", err)
	}
	n.logger.Debug("alert enqueued", "topic", n.writer.Topic, "user_id", userID)
	return nil
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}

// serializeNotification marshals a notification into a Kafka message keyed by
// user so per-user ordering is preserved within a partition.
func serializeNotification(note notification) (kafkago.Message, error) {
	data, err := json.Marshal(note)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize notification: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.FormatInt(note.UserID, 10)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "created_at", Value: []byte(note.CreatedAt.Format(time.RFC3339))},
		},
	}, nil
}
