package suggest

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/nativeiq/market-radar/internal/models"
	"github.com/nativeiq/market-radar/internal/news"
)

const (
	DefaultIndustry = "food"
	DefaultLocation = "US"
)

// Calendar supplies seasonal hints.
type Calendar interface {
	Lookup(location string, now time.Time) []string
}

// Archiver receives fetched headlines. Failures never affect the response.
type Archiver interface {
	Publish(ctx context.Context, items []models.NewsItem) error
}

// Service answers market suggestion requests.
type Service struct {
	news     news.Source
	calendar Calendar
	archive  Archiver
	now      func() time.Time
	log      *slog.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithArchive publishes every fetched batch to a.
func WithArchive(a Archiver) Option {
	return func(s *Service) { s.archive = a }
}

// WithClock replaces the wall clock used for seasonal lookups.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires a Service. src may be nil, in which case no news is ever fetched.
func NewService(src news.Source, calendar Calendar, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Service{news: src, calendar: calendar, now: time.Now, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Normalize applies defaults and case rules to raw query values.
func Normalize(industry, location string) (string, string) {
	industry = strings.ToLower(strings.TrimSpace(industry))
	if industry == "" {
		industry = DefaultIndustry
	}
	location = strings.ToUpper(strings.TrimSpace(location))
	if location == "" {
		location = DefaultLocation
	}
	return industry, location
}

// Suggest fetches news for the market and assembles suggestions. It always
// returns a usable response.
func (s *Service) Suggest(ctx context.Context, industry, location string) *models.SuggestionsResponse {
	industry, location = Normalize(industry, location)

	items := news.Fetch(ctx, s.log, s.news, news.BuildQuery(industry, location))

	var hint []string
	if s.calendar != nil {
		hint = s.calendar.Lookup(location, s.now())
	}

	suggestions := Build(ParseIndustry(industry), location, hint, items)

	if s.archive != nil {
		if err := s.archive.Publish(ctx, items); err != nil {
			s.log.Warn("archive publish failed", slog.Any("err", err))
		}
	}

	s.log.Debug("built suggestions",
		slog.String("industry", industry),
		slog.String("location", location),
		slog.Int("news", len(items)),
		slog.Int("suggestions", len(suggestions)),
	)

	return &models.SuggestionsResponse{Suggestions: suggestions, NewsCount: len(items)}
}
