package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nativeiq/market-radar/internal/archive"
	"github.com/nativeiq/market-radar/internal/assistant"
	"github.com/nativeiq/market-radar/internal/config"
	"github.com/nativeiq/market-radar/internal/elasticsearch"
	"github.com/nativeiq/market-radar/internal/logger"
	"github.com/nativeiq/market-radar/internal/news"
	"github.com/nativeiq/market-radar/internal/ratelimit"
	"github.com/nativeiq/market-radar/internal/seasonal"
	"github.com/nativeiq/market-radar/internal/suggest"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	calendar, err := seasonal.Load(cfg.SeasonalCalendarFile)
	if err != nil {
		log.Error("load seasonal calendar", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("seasonal calendar loaded", slog.Int("locations", calendar.Locations()))

	srv := &server{log: log}

	var source news.Source
	switch cfg.NewsProvider {
	case config.ProviderElasticsearch:
		esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
		if err != nil {
			log.Error("init elasticsearch", slog.Any("err", err))
			os.Exit(1)
		}
		source = esClient
		srv.health = esClient
	default:
		if cfg.SerperAPIKey == "" {
			log.Warn("SERPER_API_KEY is empty, news requests will fail and suggestions will be static")
		}
		source = news.NewSerperClient(cfg.SerperAPIKey, cfg.SerperURL, cfg.NewsTimeout)
	}

	opts := []suggest.Option{}
	switch {
	case cfg.ArchiveEnabled && cfg.NewsProvider == config.ProviderElasticsearch:
		log.Warn("ARCHIVE_ENABLED ignored: news already comes from the archive")
	case cfg.ArchiveEnabled:
		pub := archive.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer pub.Close()
		opts = append(opts, suggest.WithArchive(pub))
	}
	srv.suggestions = suggest.NewService(source, calendar, log, opts...)

	if cfg.OpenAIAPIKey != "" {
		chat, err := assistant.New(assistant.Config{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			MaxTokens:   int64(cfg.OpenAIMaxTokens),
			Temperature: cfg.OpenAITemperature,
			MaxRetries:  2,
		})
		if err != nil {
			log.Error("init assistant", slog.Any("err", err))
			os.Exit(1)
		}
		srv.chat = chat
	} else {
		log.Warn("OPENAI_API_KEY is empty, chat proxy disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	limiter := ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst, 5*time.Minute)
	go limiter.Run(ctx, time.Minute)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(limiter),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		log.Info("api server starting",
			slog.String("addr", cfg.BindAddr),
			slog.String("news_provider", source.Name()),
			slog.Bool("archive", cfg.ArchiveEnabled),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}
