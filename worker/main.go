package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"github.com/nativeiq/market-radar/internal/archive"
	"github.com/nativeiq/market-radar/internal/config"
	"github.com/nativeiq/market-radar/internal/dedupe"
	"github.com/nativeiq/market-radar/internal/elasticsearch"
	"github.com/nativeiq/market-radar/internal/logger"
	"github.com/nativeiq/market-radar/internal/models"
	"github.com/nativeiq/market-radar/internal/processing"
)

type newsIndexer interface {
	IndexNews(ctx context.Context, item models.NewsItem) error
}

func main() {
	_ = godotenv.Load()

	log := logger.New("worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	cache := dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaConsumer,
		QueueCapacity:  cfg.BatchSize,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})
	defer reader.Close()

	dlqTopic := cfg.KafkaTopic + "_dlq"
	dlqWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       dlqTopic,
		MaxAttempts: 3,
	})
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group", cfg.KafkaConsumer),
		slog.String("dlq_topic", dlqTopic),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := processMessage(ctx, log, esClient, cache, msg); err != nil {
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)
			if !sendToDLQ(ctx, log, dlqWriter, msg, err) {
				if ctx.Err() != nil {
					return
				}
				// not committed, but the next commit moves the group offset past it
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

// sendToDLQ retries with exponential backoff and reports whether the write landed.
func sendToDLQ(ctx context.Context, log *slog.Logger, w *kafka.Writer, msg kafka.Message, cause error) bool {
	dlqMsg := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Headers: append(msg.Headers,
			kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
			kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
			kafka.Header{Key: "error", Value: []byte(cause.Error())},
			kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		),
	}

	for attempt := range 5 {
		dlqErr := w.WriteMessages(ctx, dlqMsg)
		if dlqErr == nil {
			log.Info("message sent to DLQ", slog.Int64("offset", msg.Offset), slog.Int("attempt", attempt+1))
			return true
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		log.Warn("DLQ write failed, retrying",
			slog.Any("err", dlqErr),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return false
		}
	}

	log.Error("DLQ write exhausted retries, message may be lost if later messages commit",
		slog.Int("partition", msg.Partition),
		slog.Int64("offset", msg.Offset),
	)
	return false
}

func processMessage(ctx context.Context, log *slog.Logger, idx newsIndexer, cache *dedupe.Cache, msg kafka.Message) error {
	var payload archive.Message
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return fmt.Errorf("decode archive message: %w", err)
	}

	item, err := toNewsItem(payload)
	if err != nil {
		return err
	}

	if cache.IsSeen(item.ID) {
		log.Debug("duplicate headline", slog.String("id", item.ID))
		return nil
	}

	if err := idx.IndexNews(ctx, item); err != nil {
		return err
	}

	cache.MarkSeen(item.ID)
	log.Info("archived headline",
		slog.String("id", item.ID),
		slog.String("title", item.Title),
		slog.String("batch_id", headerValue(msg, archive.BatchHeader)),
	)
	return nil
}

func toNewsItem(payload archive.Message) (models.NewsItem, error) {
	title := processing.NormalizeText(payload.Title)
	snippet := processing.NormalizeText(payload.Snippet)
	if title == "" && snippet == "" {
		return models.NewsItem{}, errors.New("empty payload")
	}

	location := strings.ToUpper(strings.TrimSpace(payload.Location))
	item := models.NewsItem{
		ID:        processing.BuildDocumentID(title, snippet, location),
		Title:     title,
		Snippet:   snippet,
		Industry:  strings.ToLower(strings.TrimSpace(payload.Industry)),
		Location:  location,
		Source:    strings.TrimSpace(payload.Source),
		Timestamp: parseTimestamp(payload.Timestamp),
	}
	if item.Source == "" {
		item.Source = "unknown"
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now().UTC()
	}
	item.Keywords = processing.CountKeywords([]models.NewsItem{item}, processing.Vocabulary).Top(len(processing.Vocabulary))
	return item, nil
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	for _, f := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(f, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
