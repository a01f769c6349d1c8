package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/nativeiq/market-radar/internal/models"
)

// BatchHeader carries the id shared by every message published for one request.
const BatchHeader = "batch_id"

// Message is the wire format between the API and the archive worker.
type Message struct {
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
	Industry  string `json:"industry"`
	Location  string `json:"location"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher hands fetched headlines to Kafka for archiving.
type Publisher struct {
	w     messageWriter
	log   *slog.Logger
	now   func() time.Time
	close func() error
}

// NewKafkaPublisher builds an async publisher for topic. Delivery errors are
// reported through the logger only.
func NewKafkaPublisher(brokers []string, topic string, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				log.Warn("archive delivery failed", slog.Int("messages", len(msgs)), slog.Any("err", err))
			}
		},
	}
	return &Publisher{w: w, log: log, now: time.Now, close: w.Close}
}

// NewPublisher wraps an arbitrary writer; used by tests and the CLI.
func NewPublisher(w messageWriter, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Publisher{w: w, log: log, now: time.Now}
}

// Publish writes items as one batch keyed by location. Items that already
// carry a timestamp keep it; the rest are stamped with the publish time. It is
// a no-op for an empty batch or a nil publisher.
func (p *Publisher) Publish(ctx context.Context, items []models.NewsItem) error {
	if p == nil || len(items) == 0 {
		return nil
	}

	batchID := uuid.NewString()
	stamped := p.now().UTC()
	msgs := make([]kafka.Message, 0, len(items))
	for _, item := range items {
		ts := stamped
		if !item.Timestamp.IsZero() {
			ts = item.Timestamp.UTC()
		}
		value, err := json.Marshal(Message{
			Title:     item.Title,
			Snippet:   item.Snippet,
			Industry:  item.Industry,
			Location:  item.Location,
			Source:    item.Source,
			Timestamp: ts.Format(time.RFC3339),
		})
		if err != nil {
			return fmt.Errorf("marshal archive message: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:     []byte(item.Location),
			Value:   value,
			Headers: []kafka.Header{{Key: BatchHeader, Value: []byte(batchID)}},
		})
	}

	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish archive batch: %w", err)
	}
	p.log.Debug("archived news batch", slog.String("batch_id", batchID), slog.Int("items", len(msgs)))
	return nil
}

// Close flushes and closes the underlying writer when it owns one.
func (p *Publisher) Close() error {
	if p == nil || p.close == nil {
		return nil
	}
	return p.close()
}
