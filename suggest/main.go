package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nativeiq/market-radar/internal/logger"
	"github.com/nativeiq/market-radar/internal/models"
	"github.com/nativeiq/market-radar/internal/news"
	"github.com/nativeiq/market-radar/internal/processing"
	"github.com/nativeiq/market-radar/internal/seasonal"
	"github.com/nativeiq/market-radar/internal/suggest"
)

type options struct {
	industry string
	location string
	month    int
	newsFile string
	calendar string
	live     bool
	timeout  time.Duration
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdout, logger.New("suggest")).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer, log *slog.Logger) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "suggest",
		Short:         "Print market suggestions for an industry and location",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSuggest(cmd.Context(), out, log, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.industry, "industry", suggest.DefaultIndustry, "industry tag (food or anything else)")
	flags.StringVar(&opts.location, "location", suggest.DefaultLocation, "location code, e.g. US, IN, UK, CA")
	flags.StringVar(&opts.newsFile, "news-file", "", "JSON file with [{title, snippet}] headlines")
	root.Flags().IntVar(&opts.month, "month", 0, "calendar month 1-12 (default: current month)")
	root.Flags().StringVar(&opts.calendar, "calendar", os.Getenv("SEASONAL_CALENDAR_FILE"), "YAML file with extra seasonal rows")
	root.Flags().BoolVar(&opts.live, "live", false, "fetch headlines from Serper using SERPER_API_KEY")
	root.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "news request timeout")

	root.AddCommand(newKeywordsCmd(out, opts))
	return root
}

func newKeywordsCmd(out io.Writer, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "keywords",
		Short: "Print the keyword tally for a news file",
		RunE: func(_ *cobra.Command, _ []string) error {
			items, err := readNewsFile(opts.newsFile)
			if err != nil {
				return err
			}
			tally := processing.CountKeywords(items, processing.Vocabulary)
			rows := make([]map[string]any, 0, len(tally))
			for _, kc := range tally {
				rows = append(rows, map[string]any{"keyword": kc.Keyword, "count": kc.Count})
			}
			return writeOut(out, map[string]any{
				"tally": rows,
				"top":   tally.Top(processing.TopKeywordLimit),
			})
		},
	}
}

func runSuggest(ctx context.Context, out io.Writer, log *slog.Logger, opts *options) error {
	if opts.month < 0 || opts.month > 12 {
		return fmt.Errorf("--month must be between 1 and 12")
	}
	if opts.live && opts.newsFile != "" {
		return fmt.Errorf("--live and --news-file are mutually exclusive")
	}

	calendar, err := seasonal.Load(opts.calendar)
	if err != nil {
		return err
	}
	log.Debug("seasonal calendar loaded", slog.Int("locations", calendar.Locations()))

	var src news.Source
	switch {
	case opts.live:
		src = news.NewSerperClient(os.Getenv("SERPER_API_KEY"), os.Getenv("SERPER_URL"), opts.timeout)
	case opts.newsFile != "":
		items, err := readNewsFile(opts.newsFile)
		if err != nil {
			return err
		}
		src = fileSource(items)
	}

	now := time.Now
	if opts.month != 0 {
		month := time.Month(opts.month)
		now = func() time.Time {
			t := time.Now()
			return time.Date(t.Year(), month, 1, 12, 0, 0, 0, time.UTC)
		}
	}

	svc := suggest.NewService(src, calendar, log, suggest.WithClock(now))
	if ctx == nil {
		ctx = context.Background()
	}
	return writeOut(out, svc.Suggest(ctx, opts.industry, opts.location))
}

type fileSource []models.NewsItem

func (f fileSource) Search(context.Context, news.Query) ([]models.NewsItem, error) {
	return f, nil
}

func (f fileSource) Name() string { return "file" }

func readNewsFile(path string) ([]models.NewsItem, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read news file: %w", err)
	}
	var items []models.NewsItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse news file: %w", err)
	}
	return items, nil
}

func writeOut(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
