package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	Database   DatabaseConfig   `envconfig:"DATABASE"`
	ClickHouse ClickHouseConfig `envconfig:"CLICKHOUSE"`
	Redis      RedisConfig      `envconfig:"REDIS"`
	Feeds      FeedsConfig      `envconfig:"FEEDS"`
	LLM        LLMConfig        `envconfig:"LLM"`
	Classifier ClassifierConfig `envconfig:"CLASSIFIER"`
	Embeddings EmbeddingsConfig `envconfig:"EMBEDDINGS"`
	RAG        RAGConfig        `envconfig:"RAG"`
	Candidates CandidatesConfig `envconfig:"CANDIDATES"`
	Telegram   TelegramConfig   `envconfig:"TELEGRAM"`
	Pipeline   PipelineConfig   `envconfig:"PIPELINE"`
	Logging    LoggingConfig    `envconfig:"LOGGING"`
}

// DatabaseConfig represents Postgres connection parameters
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"newsintel"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// ClickHouseConfig represents metrics storage parameters
type ClickHouseConfig struct {
	Enabled  bool   `envconfig:"CLICKHOUSE_ENABLED" default:"false"`
	Host     string `envconfig:"CLICKHOUSE_HOST" default:"localhost"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	Database string `envconfig:"CLICKHOUSE_DATABASE" default:"newsintel_metrics"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD" required:"false"`
}

// RedisConfig represents Redis connection for the distributed run lock
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" required:"false"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// FeedsConfig represents RSS feed collection configuration
type FeedsConfig struct {
	URLs          []string      `envconfig:"FEED_URLS" default:"https://feeds.finance.yahoo.com/rss/2.0/headline,https://www.cnbc.com/id/100003114/device/rss/rss.html"`
	LookbackHours int           `envconfig:"FEED_LOOKBACK_HOURS" default:"24"`
	FetchTimeout  time.Duration `envconfig:"FEED_FETCH_TIMEOUT" default:"30s"`
}

// LLMConfig represents the local LLM service used for ticker and sentiment extraction
type LLMConfig struct {
	Enabled      bool          `envconfig:"LLM_ENABLED" default:"true"`
	URL          string        `envconfig:"LLM_URL" default:"http://localhost:11434"`
	Model        string        `envconfig:"LLM_MODEL" default:"mistral"`
	Timeout      time.Duration `envconfig:"LLM_TIMEOUT" default:"10s"`
	ProbeTimeout time.Duration `envconfig:"LLM_PROBE_TIMEOUT" default:"2s"`
}

// ClassifierConfig represents the financial sentiment classifier service
type ClassifierConfig struct {
	Enabled bool          `envconfig:"CLASSIFIER_ENABLED" default:"true"`
	URL     string        `envconfig:"CLASSIFIER_URL" default:"http://localhost:8085"`
	Timeout time.Duration `envconfig:"CLASSIFIER_TIMEOUT" default:"10s"`
}

// EmbeddingsConfig represents embedding generation parameters
type EmbeddingsConfig struct {
	APIKey        string `envconfig:"OPENAI_API_KEY" required:"false"`
	Model         string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	Deduplication bool   `envconfig:"EMBEDDING_DEDUPLICATION" default:"true"`
}

// RAGConfig represents retrieval ranking parameters
type RAGConfig struct {
	RecencyWeight float64 `envconfig:"RAG_RECENCY_WEIGHT" default:"0.3"`
	MinSimilarity float64 `envconfig:"RAG_MIN_SIMILARITY" default:"0.5"`
}

// CandidatesConfig represents candidate selection parameters
type CandidatesConfig struct {
	LookbackHours      int     `envconfig:"CANDIDATES_LOOKBACK_HOURS" default:"24"`
	SentimentThreshold float64 `envconfig:"CANDIDATES_SENTIMENT_THRESHOLD" default:"0.3"`
	NoveltyThreshold   float64 `envconfig:"CANDIDATES_NOVELTY_THRESHOLD" default:"0.6"`
	BaselineSize       int     `envconfig:"CANDIDATES_BASELINE_SIZE" default:"10"`
	// Positions is an optional static list of held tickers, comma separated
	Positions []string `envconfig:"CANDIDATES_POSITIONS" required:"false"`
}

// TelegramConfig represents the optional run-digest notifier
type TelegramConfig struct {
	Enabled  bool   `envconfig:"TELEGRAM_ENABLED" default:"false"`
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"false"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID" required:"false"`
}

// PipelineConfig represents batch run scheduling
type PipelineConfig struct {
	Interval      time.Duration `envconfig:"PIPELINE_INTERVAL" default:"30m"`
	RetentionDays int           `envconfig:"PIPELINE_RETENTION_DAYS" default:"30"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" required:"false"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if len(c.Feeds.URLs) == 0 {
		return fmt.Errorf("at least one feed URL must be configured")
	}

	if c.RAG.RecencyWeight < 0 || c.RAG.RecencyWeight > 1 {
		return fmt.Errorf("recency_weight must be between 0 and 1")
	}

	if c.Candidates.BaselineSize < 1 {
		return fmt.Errorf("baseline_size must be at least 1")
	}

	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == 0) {
		return fmt.Errorf("telegram enabled but bot token or chat_id missing")
	}

	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// GetDSN returns ClickHouse connection string
func (c *ClickHouseConfig) GetDSN() string {
	return fmt.Sprintf(
		"clickhouse://%s:%s@%s:%d/%s",
		c.User, c.Password, c.Host, c.Port, c.Database,
	)
}
