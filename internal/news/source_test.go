package news_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nativeiq/market-radar/internal/models"
	"github.com/nativeiq/market-radar/internal/news"
)

type stubSource struct {
	items []models.NewsItem
	err   error
	got   news.Query
}

func (s *stubSource) Search(_ context.Context, q news.Query) ([]models.NewsItem, error) {
	s.got = q
	return s.items, s.err
}

func (s *stubSource) Name() string { return "stub" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchTruncates(t *testing.T) {
	src := &stubSource{}
	for i := 0; i < 10; i++ {
		src.items = append(src.items, models.NewsItem{Title: "headline"})
	}

	items := news.Fetch(context.Background(), discardLogger(), src, news.BuildQuery("food", "US"))
	require.Len(t, items, news.DefaultLimit)
	require.Equal(t, "food US seasonal trends festival demand news", src.got.Text)
}

func TestFetchDegradesOnError(t *testing.T) {
	src := &stubSource{err: errors.New("provider down")}
	items := news.Fetch(context.Background(), discardLogger(), src, news.BuildQuery("retail", "UK"))
	require.NotNil(t, items)
	require.Empty(t, items)
}

func TestFetchNilSource(t *testing.T) {
	items := news.Fetch(context.Background(), discardLogger(), nil, news.BuildQuery("food", "US"))
	require.NotNil(t, items)
	require.Empty(t, items)
}
