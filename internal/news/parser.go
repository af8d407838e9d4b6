package news

import (
	"context"

	"go.uber.org/zap"

	"github.com/MegaGuyRy/market-prediction/pkg/logger"
	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

// SentimentSource scores text in [-1, 1]
type SentimentSource interface {
	Extract(ctx context.Context, text string) float64
}

// TickerSource extracts ticker symbols from text
type TickerSource interface {
	Extract(ctx context.Context, text string) []string
}

// Parser enriches collected news items with tickers, sentiment and
// novelty. Enrichment never fails an item: defaults are 0.0 sentiment
// and neutral novelty.
type Parser struct {
	tickers   TickerSource
	sentiment SentimentSource
}

// NewParser creates a parser over the given extractors
func NewParser(tickers TickerSource, sentiment SentimentSource) *Parser {
	return &Parser{
		tickers:   tickers,
		sentiment: sentiment,
	}
}

// Parse enriches a single item in place. The existing embeddings are
// the prior corpus used for novelty comparison.
func (p *Parser) Parse(ctx context.Context, item *models.NewsItem, existing [][]float32) {
	text := item.Text()

	item.Tickers = p.tickers.Extract(ctx, text)
	item.Sentiment = p.sentiment.Extract(ctx, text)
	item.Novelty = ScoreNovelty(item.Embedding, existing)

	logger.Debug("parsed news item",
		zap.String("headline", truncatePreview(item.Headline)),
		zap.Strings("tickers", item.Tickers),
		zap.Float64("sentiment", item.Sentiment),
		zap.Float64("novelty", item.Novelty),
	)
}

// ParseBatch enriches all items against the shared prior corpus
func (p *Parser) ParseBatch(ctx context.Context, items []models.NewsItem, existing [][]float32) {
	for i := range items {
		p.Parse(ctx, &items[i], existing)
	}

	logger.Info("batch parsed news items", zap.Int("count", len(items)))
}

func truncatePreview(s string) string {
	if len(s) > 50 {
		return s[:50]
	}
	return s
}
