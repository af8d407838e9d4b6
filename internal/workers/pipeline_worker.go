package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/MegaGuyRy/market-prediction/internal/adapters/redis"
	"github.com/MegaGuyRy/market-prediction/pkg/logger"
	"github.com/MegaGuyRy/market-prediction/pkg/metrics"
	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

// NewsFetcher collects fresh items from all configured feed providers
type NewsFetcher interface {
	Collect(ctx context.Context, since time.Time) []models.NewsItem
}

// BatchEmbedder produces embeddings for a batch of texts
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// ItemParser runs the extraction cascades over fetched items
type ItemParser interface {
	ParseBatch(ctx context.Context, items []models.NewsItem, existing [][]float32)
}

// NewsStore persists parsed items and serves recent embeddings for novelty
type NewsStore interface {
	InsertBatch(ctx context.Context, items []models.NewsItem) int
	RecentEmbeddings(ctx context.Context, lookback time.Duration, limit int) ([][]float32, error)
}

// CandidateSelector merges candidates from all strategies
type CandidateSelector interface {
	Select(ctx context.Context) []models.Candidate
}

// ContextBuilder summarizes stored sentiment for the digest
type ContextBuilder interface {
	SectorContext(ctx context.Context, tickers []string, maxAge time.Duration, topK int) (*models.SectorContext, error)
}

// DigestNotifier sends per-run summaries to an external channel
type DigestNotifier interface {
	SendRunDigest(stored int, sector *models.SectorContext, candidates []models.Candidate) error
}

const (
	// noveltyLookback bounds how far back prior embeddings are loaded
	// when scoring the current batch for novelty.
	noveltyLookback = 7 * 24 * time.Hour
	noveltyLimit    = 500
)

// PipelineWorker runs one full ingestion cycle: fetch feeds, embed,
// extract tickers and sentiment, score novelty, persist, then rebuild
// the candidate list.
type PipelineWorker struct {
	lock          redis.RunLock
	fetcher       NewsFetcher
	embedder      BatchEmbedder
	parser        ItemParser
	store         NewsStore
	selector      CandidateSelector
	contextRAG    ContextBuilder
	notifier      DigestNotifier
	metricsBuffer metrics.Buffer
	lookback      time.Duration
}

// NewPipelineWorker creates new pipeline worker. Notifier, context builder
// and metrics buffer may be nil.
func NewPipelineWorker(
	lock redis.RunLock,
	fetcher NewsFetcher,
	embedder BatchEmbedder,
	parser ItemParser,
	store NewsStore,
	selector CandidateSelector,
	contextRAG ContextBuilder,
	notifier DigestNotifier,
	metricsBuffer metrics.Buffer,
	lookback time.Duration,
) *PipelineWorker {
	return &PipelineWorker{
		lock:          lock,
		fetcher:       fetcher,
		embedder:      embedder,
		parser:        parser,
		store:         store,
		selector:      selector,
		contextRAG:    contextRAG,
		notifier:      notifier,
		metricsBuffer: metricsBuffer,
		lookback:      lookback,
	}
}

// Name returns worker name for logging
func (w *PipelineWorker) Name() string {
	return "news_pipeline"
}

// Run executes one pipeline iteration
func (w *PipelineWorker) Run(ctx context.Context) error {
	acquired, err := w.lock.TryAcquire(ctx)
	if err != nil {
		return err
	}
	if !acquired {
		logger.Info("pipeline run skipped, another instance holds the lock")
		return nil
	}
	defer func() {
		if err := w.lock.Release(ctx); err != nil {
			logger.Warn("failed to release pipeline lock", zap.Error(err))
		}
	}()

	startTime := time.Now()

	since := startTime.Add(-w.lookback)
	items := w.fetcher.Collect(ctx, since)

	// Quiet news windows still produce candidates and a digest: the
	// baseline rotation exists exactly for days with nothing to ingest.
	stored := 0
	parsedCount := 0
	if len(items) == 0 {
		logger.Info("no new items fetched")
	} else {
		parsed := w.processItems(ctx, items)
		parsedCount = len(parsed)
		stored = w.store.InsertBatch(ctx, parsed)
	}

	candidates := w.selector.Select(ctx)

	w.notify(ctx, stored, candidates)

	w.recordRun(len(items), parsedCount, stored, len(candidates), time.Since(startTime))

	logger.Info("pipeline run complete",
		zap.Int("fetched", len(items)),
		zap.Int("stored", stored),
		zap.Int("candidates", len(candidates)),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	return nil
}

// processItems embeds the batch and runs the extraction cascades.
// Embedding failure is fail-soft: items go through without embeddings
// and get neutral novelty downstream.
func (w *PipelineWorker) processItems(ctx context.Context, items []models.NewsItem) []models.NewsItem {
	texts := make([]string, len(items))
	for i := range items {
		texts[i] = items[i].Text()
	}

	vectors, err := w.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		logger.Error("batch embedding failed, scoring without embeddings", zap.Error(err))
	} else {
		model := w.embedder.Model()
		for i := range items {
			if i < len(vectors) {
				items[i].Embedding = vectors[i]
				items[i].EmbeddingModel = model
			}
		}
	}

	existing, err := w.store.RecentEmbeddings(ctx, noveltyLookback, noveltyLimit)
	if err != nil {
		logger.Warn("failed to load prior embeddings for novelty", zap.Error(err))
		existing = nil
	}

	w.parser.ParseBatch(ctx, items, existing)
	return items
}

// notify builds a sector view over candidate tickers and sends the digest
func (w *PipelineWorker) notify(ctx context.Context, stored int, candidates []models.Candidate) {
	if w.notifier == nil {
		return
	}

	var sector *models.SectorContext
	if w.contextRAG != nil && len(candidates) > 0 {
		tickers := make([]string, 0, len(candidates))
		for _, c := range candidates {
			tickers = append(tickers, c.Ticker)
		}

		sc, err := w.contextRAG.SectorContext(ctx, tickers, w.lookback, 5)
		if err != nil {
			logger.Warn("failed to build sector context for digest", zap.Error(err))
		} else {
			sector = sc
		}
	}

	if err := w.notifier.SendRunDigest(stored, sector, candidates); err != nil {
		logger.Warn("failed to send run digest", zap.Error(err))
	}
}

func (w *PipelineWorker) recordRun(fetched, parsed, stored, candidates int, elapsed time.Duration) {
	if w.metricsBuffer == nil {
		return
	}

	metric := &metrics.PipelineRunMetric{
		Timestamp:    time.Now(),
		ItemsFetched: fetched,
		ItemsParsed:  parsed,
		ItemsStored:  stored,
		Candidates:   candidates,
		DurationMs:   int(elapsed.Milliseconds()),
	}
	if err := w.metricsBuffer.Add(metric); err != nil {
		logger.Warn("failed to record pipeline metric", zap.Error(err))
	}
}
