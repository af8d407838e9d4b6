package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/lib/pq"
	"github.com/sashabaranov/go-openai"

	"github.com/MegaGuyRy/market-prediction/internal/adapters/classifier"
	"github.com/MegaGuyRy/market-prediction/internal/adapters/config"
	"github.com/MegaGuyRy/market-prediction/internal/adapters/database"
	embeddingsRepo "github.com/MegaGuyRy/market-prediction/internal/adapters/embeddings"
	"github.com/MegaGuyRy/market-prediction/internal/adapters/feeds"
	"github.com/MegaGuyRy/market-prediction/internal/adapters/llm"
	metricsAdapter "github.com/MegaGuyRy/market-prediction/internal/adapters/metrics"
	redisAdapter "github.com/MegaGuyRy/market-prediction/internal/adapters/redis"
	"github.com/MegaGuyRy/market-prediction/internal/adapters/telegram"
	"github.com/MegaGuyRy/market-prediction/internal/candidates"
	"github.com/MegaGuyRy/market-prediction/internal/extract"
	"github.com/MegaGuyRy/market-prediction/internal/market"
	"github.com/MegaGuyRy/market-prediction/internal/news"
	"github.com/MegaGuyRy/market-prediction/internal/workers"
	"github.com/MegaGuyRy/market-prediction/pkg/embeddings"
	"github.com/MegaGuyRy/market-prediction/pkg/logger"
	"github.com/MegaGuyRy/market-prediction/pkg/metrics"
	"github.com/MegaGuyRy/market-prediction/pkg/worker"
)

func main() {
	once := flag.Bool("once", false, "run a single pipeline iteration and exit")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx, *once); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, once bool) error {
	cfg, err := initConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("News Intelligence Pipeline starting...",
		zap.Duration("interval", cfg.Pipeline.Interval),
		zap.Int("feeds", len(cfg.Feeds.URLs)),
	)

	db, err := initDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// ClickHouse is optional, metrics are dropped when it is unavailable
	chDB, err := initClickHouse(cfg)
	if err != nil {
		logger.Warn("ClickHouse not available, pipeline metrics disabled", zap.Error(err))
		chDB = nil
	}
	if chDB != nil {
		defer chDB.Close()
	}

	metricsBuffer := initMetrics(chDB)
	if metricsBuffer != nil {
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := metricsBuffer.Close(shutdownCtx); err != nil {
				logger.Warn("failed to close metrics buffer", zap.Error(err))
			}
		}()
	}

	runLock, redisClient := initRunLock(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Extraction services, both optional
	var llmService extract.LLMService
	if cfg.LLM.Enabled {
		llmService = llm.NewClient(&cfg.LLM)
		logger.Info("LLM extraction enabled",
			zap.String("url", cfg.LLM.URL),
			zap.String("model", cfg.LLM.Model),
		)
	}

	var classifierService extract.ClassifierService
	if cfg.Classifier.Enabled {
		classifierService = classifier.NewClient(&cfg.Classifier)
		logger.Info("sentiment classifier enabled", zap.String("url", cfg.Classifier.URL))
	}

	embedder := initEmbeddings(cfg, db, metricsBuffer)

	// Core pipeline components
	newsRepo := news.NewRepository(db.DB())
	parser := news.NewParser(
		extract.NewTickerExtractor(llmService, metricsBuffer),
		extract.NewSentimentExtractor(classifierService, llmService, metricsBuffer),
	)
	rag := news.NewRAG(newsRepo, embedder, cfg.RAG.RecencyWeight, cfg.RAG.MinSimilarity)

	collector := feeds.NewCollector(buildProviders(cfg))

	selector := initSelector(cfg, newsRepo, market.NewRepository(db.DB()))

	notifier := initTelegram(cfg)

	pipelineWorker := workers.NewPipelineWorker(
		runLock,
		collector,
		embedder,
		parser,
		newsRepo,
		selector,
		rag,
		notifier,
		metricsBuffer,
		time.Duration(cfg.Feeds.LookbackHours)*time.Hour,
	)

	if once {
		return pipelineWorker.Run(ctx)
	}

	cleanupWorker := workers.NewCleanupWorker(
		newsRepo,
		time.Duration(cfg.Pipeline.RetentionDays)*24*time.Hour,
	)

	pipeline := worker.NewPeriodicWorker(pipelineWorker, cfg.Pipeline.Interval)
	pipeline.Start(ctx)

	cleanup := worker.NewPeriodicWorker(cleanupWorker, 24*time.Hour)
	cleanup.Start(ctx)

	<-ctx.Done()

	logger.Info("shutting down...")
	pipeline.Stop(30 * time.Second)
	cleanup.Stop(10 * time.Second)

	return nil
}

// initConfig loads configuration and initializes the logger
func initConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, nil
}

// initDatabase initializes database connection with sqlx
func initDatabase(cfg *config.Config) (*database.DB, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	migrationsPath := "./migrations"
	if err := database.RunMigrations(db.Conn(), migrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("database connection established (sqlx)",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Name),
	)

	return db, nil
}

// initClickHouse initializes ClickHouse connection for metrics
func initClickHouse(cfg *config.Config) (*database.DB, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, fmt.Errorf("ClickHouse disabled in config")
	}

	ch, err := database.NewClickHouse(cfg.ClickHouse.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := ch.DB().Ping(); err != nil {
		ch.Close()
		return nil, fmt.Errorf("ClickHouse ping failed: %w", err)
	}

	logger.Info("ClickHouse connection established",
		zap.String("host", cfg.ClickHouse.Host),
		zap.String("database", cfg.ClickHouse.Database),
	)

	return ch, nil
}

// initMetrics builds the buffered metrics pipeline over ClickHouse.
// Returns nil when ClickHouse is unavailable, callers treat that as
// metrics disabled.
func initMetrics(chDB *database.DB) metrics.Buffer {
	if chDB == nil {
		return nil
	}

	writer := metricsAdapter.NewWriter(metricsAdapter.NewClickHouseRepository(chDB.DB()))
	return metrics.NewBufferedMetrics(metrics.BufferConfig{
		Writer:        writer,
		BatchSize:     100,
		FlushInterval: 10 * time.Second,
	})
}

// initRunLock returns a distributed run lock when Redis is enabled,
// otherwise a no-op lock for single-instance deployments.
func initRunLock(cfg *config.Config) (redisAdapter.RunLock, *redisAdapter.Client) {
	if !cfg.Redis.Enabled {
		logger.Info("Redis disabled, using in-process run lock")
		return redisAdapter.NoopRunLock{}, nil
	}

	client, err := redisAdapter.New(&cfg.Redis)
	if err != nil {
		logger.Warn("Redis not available, using in-process run lock", zap.Error(err))
		return redisAdapter.NoopRunLock{}, nil
	}

	logger.Info("Redis run lock initialized",
		zap.String("host", cfg.Redis.Host),
	)

	return redisAdapter.NewDistributedRunLock(client.GetLockManager(), "news"), client
}

// initEmbeddings creates the OpenAI embedding client, with the Postgres
// cache when deduplication is on
func initEmbeddings(cfg *config.Config, db *database.DB, metricsBuffer metrics.Buffer) *embeddings.Client {
	clientCfg := embeddings.Config{
		MetricsBuffer: metricsBuffer,
		Model:         openai.EmbeddingModel(cfg.Embeddings.Model),
	}

	if cfg.Embeddings.APIKey != "" {
		clientCfg.OpenAIClient = openai.NewClient(cfg.Embeddings.APIKey)
		logger.Info("OpenAI embeddings client initialized")
	} else {
		logger.Warn("OPENAI_API_KEY not set, items will be stored without embeddings")
	}

	if cfg.Embeddings.Deduplication {
		clientCfg.Repository = embeddingsRepo.NewRepository(db.DB())
	}

	return embeddings.NewClient(clientCfg)
}

// buildProviders creates an RSS provider per configured feed URL
func buildProviders(cfg *config.Config) []feeds.Provider {
	providers := make([]feeds.Provider, 0, len(cfg.Feeds.URLs))
	for _, url := range cfg.Feeds.URLs {
		providers = append(providers, feeds.NewRSSProvider(url, cfg.Feeds.FetchTimeout))
	}
	return providers
}

// initSelector wires all candidate strategies into the selector
func initSelector(cfg *config.Config, newsRepo *news.Repository, marketRepo *market.Repository) *candidates.Selector {
	strategies := []candidates.Strategy{
		candidates.NewNewsStrategy(
			newsRepo,
			time.Duration(cfg.Candidates.LookbackHours)*time.Hour,
			cfg.Candidates.SentimentThreshold,
			cfg.Candidates.NoveltyThreshold,
		),
		candidates.NewMarketStrategy(marketRepo),
	}

	// Precedence: news, market, portfolio, baseline
	if len(cfg.Candidates.Positions) > 0 {
		strategies = append(strategies,
			candidates.NewPortfolioStrategy(candidates.StaticPositions(cfg.Candidates.Positions)))
	}

	strategies = append(strategies, candidates.NewBaselineStrategy(cfg.Candidates.BaselineSize))

	return candidates.NewSelector(strategies...)
}

// initTelegram creates the run-digest notifier when configured
func initTelegram(cfg *config.Config) workers.DigestNotifier {
	if !cfg.Telegram.Enabled {
		return nil
	}

	notifier, err := telegram.NewNotifier(&cfg.Telegram)
	if err != nil {
		logger.Warn("failed to initialize telegram notifier", zap.Error(err))
		return nil
	}

	logger.Info("telegram notifier initialized")
	return notifier
}
