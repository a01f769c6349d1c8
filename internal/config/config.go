package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// News provider names accepted by NEWS_PROVIDER.
const (
	ProviderSerper        = "serper"
	ProviderElasticsearch = "elasticsearch"
)

// Common contains Elasticsearch parameters shared by every service.
type Common struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// Kafka holds the archive topic settings shared by the API and the worker.
type Kafka struct {
	KafkaBrokers []string
	KafkaTopic   string
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	Kafka
	BindAddr             string
	NewsProvider         string
	SerperAPIKey         string
	SerperURL            string
	NewsTimeout          time.Duration
	SeasonalCalendarFile string
	ArchiveEnabled       bool
	RateLimitRPS         float64
	RateLimitBurst       int
	OpenAIAPIKey         string
	OpenAIBaseURL        string
	OpenAIModel          string
	OpenAIMaxTokens      int
	OpenAITemperature    float64
}

// Worker holds configuration for the Kafka -> Elasticsearch archive worker.
type Worker struct {
	Common
	Kafka
	KafkaConsumer  string
	DedupeCapacity int
	DedupeTTL      time.Duration
	BatchSize      int
}

// Retention configures the cleanup loop.
type Retention struct {
	Common
	Interval  time.Duration
	MaxAge    time.Duration
	BatchSize int
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "market_news"),
	}
}

func loadKafka() Kafka {
	return Kafka{
		KafkaBrokers: splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "market_news"),
	}
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Common:               loadCommon(),
		Kafka:                loadKafka(),
		BindAddr:             getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		NewsProvider:         strings.ToLower(getEnv("NEWS_PROVIDER", ProviderSerper)),
		SerperAPIKey:         getEnv("SERPER_API_KEY", ""),
		SerperURL:            getEnv("SERPER_URL", "https://google.serper.dev/news"),
		NewsTimeout:          getDuration("NEWS_TIMEOUT", "5s"),
		SeasonalCalendarFile: getEnv("SEASONAL_CALENDAR_FILE", ""),
		ArchiveEnabled:       getBool("ARCHIVE_ENABLED", false),
		RateLimitRPS:         getFloat("API_RATE_LIMIT_RPS", 5),
		RateLimitBurst:       getInt("API_RATE_LIMIT_BURST", 10),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:        getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIMaxTokens:      getInt("OPENAI_MAX_TOKENS", 220),
		OpenAITemperature:    getFloat("OPENAI_TEMPERATURE", 0.6),
	}

	switch c.NewsProvider {
	case ProviderSerper, ProviderElasticsearch:
	default:
		return nil, fmt.Errorf("NEWS_PROVIDER must be %q or %q", ProviderSerper, ProviderElasticsearch)
	}
	if c.NewsTimeout <= 0 {
		return nil, fmt.Errorf("NEWS_TIMEOUT must be positive")
	}
	if c.ArchiveEnabled && len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker when ARCHIVE_ENABLED is set")
	}
	if c.RateLimitRPS <= 0 {
		return nil, fmt.Errorf("API_RATE_LIMIT_RPS must be positive")
	}
	if c.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("API_RATE_LIMIT_BURST must be positive")
	}
	if c.OpenAIMaxTokens <= 0 {
		return nil, fmt.Errorf("OPENAI_MAX_TOKENS must be positive")
	}
	if c.OpenAITemperature < 0 || c.OpenAITemperature > 2 {
		return nil, fmt.Errorf("OPENAI_TEMPERATURE must be within [0, 2]")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Common:         loadCommon(),
		Kafka:          loadKafka(),
		KafkaConsumer:  getEnv("KAFKA_CONSUMER_GROUP", "market-news-worker"),
		DedupeCapacity: getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:      getDuration("WORKER_DEDUPE_TTL", "24h"),
		BatchSize:      getInt("WORKER_BATCH_SIZE", 10),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Common:    loadCommon(),
		Interval:  getDuration("RETENTION_INTERVAL", "24h"),
		MaxAge:    getDuration("RETENTION_MAX_AGE", "720h"),
		BatchSize: getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_INTERVAL must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// getDuration falls back when the variable is unset or unparsable. The
// fallback literal must itself parse.
func getDuration(key, fallback string) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, fallback)); err == nil {
		return d
	}
	d, err := time.ParseDuration(fallback)
	if err != nil {
		panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, err))
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
