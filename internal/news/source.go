package news

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nativeiq/market-radar/internal/models"
)

// DefaultLimit is how many headlines a suggestion request considers.
const DefaultLimit = 6

// Query describes one news lookup.
type Query struct {
	Text     string
	Industry string
	Location string
	Limit    int
}

// Source is anything that can return headlines for a query.
type Source interface {
	Search(ctx context.Context, q Query) ([]models.NewsItem, error)
	Name() string
}

// BuildQuery produces the free-text query sent to the provider.
func BuildQuery(industry, location string) Query {
	return Query{
		Text:     fmt.Sprintf("%s %s seasonal trends festival demand news", industry, location),
		Industry: industry,
		Location: location,
		Limit:    DefaultLimit,
	}
}

// Fetch runs q against src and never fails: provider errors are logged and
// replaced by an empty list. The result is truncated to q.Limit.
func Fetch(ctx context.Context, log *slog.Logger, src Source, q Query) []models.NewsItem {
	if src == nil {
		return []models.NewsItem{}
	}

	items, err := src.Search(ctx, q)
	if err != nil {
		log.Warn("news provider unavailable, continuing without news",
			slog.String("provider", src.Name()),
			slog.Any("err", err),
		)
		return []models.NewsItem{}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(items) > limit {
		items = items[:limit]
	}
	if items == nil {
		items = []models.NewsItem{}
	}
	return items
}
