package candidates

import (
	"context"
	"fmt"
	"time"

	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

// NewsSource provides recently ingested items for signal scanning
type NewsSource interface {
	RecentItems(ctx context.Context, lookback time.Duration, limit int) ([]models.NewsItem, error)
}

// NewsStrategy nominates tickers from emphatic or novel news. An item
// qualifies when its absolute sentiment clears the sentiment threshold
// or its novelty clears the novelty threshold.
type NewsStrategy struct {
	source             NewsSource
	lookback           time.Duration
	sentimentThreshold float64
	noveltyThreshold   float64
}

// NewNewsStrategy creates the news-driven strategy
func NewNewsStrategy(source NewsSource, lookback time.Duration, sentimentThreshold, noveltyThreshold float64) *NewsStrategy {
	return &NewsStrategy{
		source:             source,
		lookback:           lookback,
		sentimentThreshold: sentimentThreshold,
		noveltyThreshold:   noveltyThreshold,
	}
}

// Name returns the strategy identifier
func (s *NewsStrategy) Name() string { return "news" }

// Select scans recent items and keeps the strongest signal per ticker
func (s *NewsStrategy) Select(ctx context.Context) (map[string]models.Candidate, error) {
	items, err := s.source.RecentItems(ctx, s.lookback, 500)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent news: %w", err)
	}

	out := make(map[string]models.Candidate)
	strengths := make(map[string]float64)

	for _, item := range items {
		sentimentHit := abs(item.Sentiment) >= s.sentimentThreshold
		noveltyHit := item.Novelty >= s.noveltyThreshold
		if !sentimentHit && !noveltyHit {
			continue
		}

		var reason string
		switch {
		case sentimentHit && noveltyHit:
			reason = fmt.Sprintf("novel news with sentiment %+.2f", item.Sentiment)
		case sentimentHit:
			reason = fmt.Sprintf("news sentiment %+.2f", item.Sentiment)
		default:
			reason = fmt.Sprintf("novel news (novelty %.2f)", item.Novelty)
		}

		strength := abs(item.Sentiment)
		if item.Novelty > strength {
			strength = item.Novelty
		}

		for _, ticker := range item.Tickers {
			if prev, ok := strengths[ticker]; ok && prev >= strength {
				continue
			}
			strengths[ticker] = strength
			out[ticker] = models.Candidate{
				Ticker:   ticker,
				Reason:   reason,
				Source:   s.Name(),
				Priority: PriorityNews,
			}
		}
	}

	return out, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
