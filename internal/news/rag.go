package news

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/MegaGuyRy/market-prediction/pkg/logger"
	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

// maxAgeHours is the horizon beyond which recency contributes nothing
const maxAgeHours = 168.0 // one week

// Embedder turns query text into a vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Storage is the subset of the repository the retriever needs
type Storage interface {
	SearchSimilar(ctx context.Context, embedding []float32, ticker string, limit int, minSimilarity float64) ([]models.NewsItem, error)
	ItemsForTicker(ctx context.Context, ticker string, lookback time.Duration, limit int) ([]models.NewsItem, error)
}

// RAG retrieves news context by vector similarity, re-ranked so that
// fresh items beat equally similar stale ones
type RAG struct {
	storage       Storage
	embedder      Embedder
	recencyWeight float64
	minSimilarity float64
}

// NewRAG creates a retriever. recencyWeight in [0, 1] controls how
// much freshness matters relative to similarity.
func NewRAG(storage Storage, embedder Embedder, recencyWeight, minSimilarity float64) *RAG {
	return &RAG{
		storage:       storage,
		embedder:      embedder,
		recencyWeight: recencyWeight,
		minSimilarity: minSimilarity,
	}
}

// RetrieveSimilar returns up to limit items relevant to the query
// text, ranked by combined similarity and recency. The similarity
// search over-fetches double the limit so re-ranking has slack.
func (r *RAG) RetrieveSimilar(ctx context.Context, queryText, ticker string, limit int) ([]models.NewsItem, error) {
	queryEmbedding, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	items, err := r.storage.SearchSimilar(ctx, queryEmbedding, ticker, limit*2, r.minSimilarity)
	if err != nil {
		return nil, fmt.Errorf("failed to search similar news: %w", err)
	}

	ranked := rankByRecency(items, r.recencyWeight, time.Now().UTC())
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	logger.Debug("retrieved similar news",
		zap.String("ticker", ticker),
		zap.Int("count", len(ranked)),
	)

	return ranked, nil
}

// TickerContext aggregates recent news for one ticker into mean
// sentiment and a categorical trend
func (r *RAG) TickerContext(ctx context.Context, ticker string, maxAge time.Duration, limit int) (*models.TickerContext, error) {
	items, err := r.storage.ItemsForTicker(ctx, ticker, maxAge, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get news for ticker: %w", err)
	}

	sentiments := make([]float64, len(items))
	for i, item := range items {
		sentiments[i] = item.Sentiment
	}

	context := &models.TickerContext{
		GeneratedAt:  time.Now().UTC(),
		Ticker:       ticker,
		Items:        items,
		Count:        len(items),
		AvgSentiment: mean(sentiments),
		Trend:        sentimentTrend(sentiments),
	}

	logger.Debug("generated ticker context",
		zap.String("ticker", ticker),
		zap.Int("count", context.Count),
		zap.Float64("avg_sentiment", context.AvgSentiment),
		zap.String("trend", context.Trend),
	)

	return context, nil
}

// SectorContext pools per-ticker contexts into aggregate sentiment
// counts and the most emphatic items across the group
func (r *RAG) SectorContext(ctx context.Context, tickers []string, maxAge time.Duration, topK int) (*models.SectorContext, error) {
	var (
		pooled     []models.NewsItem
		sentiments []float64
	)

	for _, ticker := range tickers {
		tc, err := r.TickerContext(ctx, ticker, maxAge, topK)
		if err != nil {
			// A failed ticker contributes nothing, the sector view
			// degrades instead of aborting.
			logger.Warn("failed to build ticker context, skipping",
				zap.String("ticker", ticker),
				zap.Error(err),
			)
			continue
		}

		pooled = append(pooled, tc.Items...)
		for _, item := range tc.Items {
			sentiments = append(sentiments, item.Sentiment)
		}
	}

	bullish := 0
	bearish := 0
	for _, s := range sentiments {
		if s > models.SentimentThreshold {
			bullish++
		}
		if s < -models.SentimentThreshold {
			bearish++
		}
	}

	// Most emphatic first, regardless of direction
	sort.SliceStable(pooled, func(i, j int) bool {
		return abs(pooled[i].Sentiment) > abs(pooled[j].Sentiment)
	})

	topNews := pooled
	if len(topNews) > 5 {
		topNews = topNews[:5]
	}

	context := &models.SectorContext{
		GeneratedAt:      time.Now().UTC(),
		Tickers:          tickers,
		TopNews:          topNews,
		Count:            len(pooled),
		AvgSentiment:     mean(sentiments),
		BullishItems:     bullish,
		BearishItems:     bearish,
		SentimentBalance: bullish - bearish,
	}

	logger.Debug("generated sector context",
		zap.Int("tickers", len(tickers)),
		zap.Int("news_count", context.Count),
	)

	return context, nil
}

// rankByRecency computes a combined score per item and sorts by it
// descending. Items must arrive sorted or not, order is rebuilt here.
func rankByRecency(items []models.NewsItem, weight float64, now time.Time) []models.NewsItem {
	for i := range items {
		ageHours := now.Sub(items[i].PublishedAt).Hours()
		recency := 1 - ageHours/maxAgeHours
		if recency < 0 {
			recency = 0
		}

		items[i].CombinedScore = (1-weight)*items[i].Similarity + weight*recency
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CombinedScore > items[j].CombinedScore
	})

	return items
}

// sentimentTrend compares the newer half of scores against the older
// half. Scores arrive newest first. Fewer than two points cannot show
// a direction.
func sentimentTrend(sentiments []float64) string {
	if len(sentiments) < 2 {
		return models.TrendNeutral
	}

	half := len(sentiments) / 2
	newer := mean(sentiments[:half])
	older := mean(sentiments[half:])

	if newer > older {
		return models.TrendImproving
	}
	return models.TrendDeteriorating
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
