package archive_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/nativeiq/market-radar/internal/archive"
	"github.com/nativeiq/market-radar/internal/models"
)

type stubWriter struct {
	msgs []kafka.Message
	err  error
}

func (s *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if s.err != nil {
		return s.err
	}
	s.msgs = append(s.msgs, msgs...)
	return nil
}

func TestPublishWritesBatch(t *testing.T) {
	w := &stubWriter{}
	pub := archive.NewPublisher(w, nil)

	items := []models.NewsItem{
		{Title: "Turkey prices rise", Snippet: "Ahead of Thanksgiving", Location: "US", Industry: "food", Source: "AP"},
		{Title: "Pumpkin shortage", Location: "US", Industry: "food"},
	}
	require.NoError(t, pub.Publish(context.Background(), items))
	require.Len(t, w.msgs, 2)

	var first archive.Message
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &first))
	require.Equal(t, "Turkey prices rise", first.Title)
	require.Equal(t, "Ahead of Thanksgiving", first.Snippet)
	require.Equal(t, "AP", first.Source)
	require.NotEmpty(t, first.Timestamp)
	require.Equal(t, "US", string(w.msgs[0].Key))

	require.Len(t, w.msgs[0].Headers, 1)
	require.Equal(t, archive.BatchHeader, w.msgs[0].Headers[0].Key)
	require.Equal(t, w.msgs[0].Headers[0].Value, w.msgs[1].Headers[0].Value)
}

func TestPublishNoop(t *testing.T) {
	w := &stubWriter{}
	require.NoError(t, archive.NewPublisher(w, nil).Publish(context.Background(), nil))
	require.Empty(t, w.msgs)

	var nilPub *archive.Publisher
	require.NoError(t, nilPub.Publish(context.Background(), []models.NewsItem{{Title: "x"}}))
	require.NoError(t, nilPub.Close())
}

func TestPublishError(t *testing.T) {
	w := &stubWriter{err: errors.New("broker down")}
	err := archive.NewPublisher(w, nil).Publish(context.Background(), []models.NewsItem{{Title: "x"}})
	require.ErrorContains(t, err, "broker down")
}

func TestPublishKeepsItemTimestamp(t *testing.T) {
	w := &stubWriter{}
	stored := time.Date(2025, time.March, 1, 8, 30, 0, 0, time.UTC)

	items := []models.NewsItem{
		{Title: "Archived headline", Location: "US", Timestamp: stored},
		{Title: "Fresh headline", Location: "US"},
	}
	require.NoError(t, archive.NewPublisher(w, nil).Publish(context.Background(), items))
	require.Len(t, w.msgs, 2)

	var old, fresh archive.Message
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &old))
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &fresh))
	require.Equal(t, "2025-03-01T08:30:00Z", old.Timestamp)

	got, err := time.Parse(time.RFC3339, fresh.Timestamp)
	require.NoError(t, err)
	require.True(t, got.After(stored))
}
