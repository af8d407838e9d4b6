package candidates

import (
	"context"
	"testing"
	"time"

	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

type stubNewsSource struct {
	items []models.NewsItem
}

func (s *stubNewsSource) RecentItems(ctx context.Context, lookback time.Duration, limit int) ([]models.NewsItem, error) {
	return s.items, nil
}

func TestNewsStrategySelect(t *testing.T) {
	source := &stubNewsSource{items: []models.NewsItem{
		{Headline: "strong sentiment", Tickers: []string{"AAPL"}, Sentiment: 0.7, Novelty: 0.2},
		{Headline: "strong negative", Tickers: []string{"TSLA"}, Sentiment: -0.5, Novelty: 0.1},
		{Headline: "novel but flat", Tickers: []string{"XOM"}, Sentiment: 0.0, Novelty: 0.8},
		{Headline: "neither", Tickers: []string{"KO"}, Sentiment: 0.1, Novelty: 0.3},
		{Headline: "multi ticker", Tickers: []string{"JPM", "GS"}, Sentiment: 0.4, Novelty: 0.5},
	}}

	strategy := NewNewsStrategy(source, 24*time.Hour, 0.3, 0.6)

	got, err := strategy.Select(context.Background())
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	for _, want := range []string{"AAPL", "TSLA", "XOM", "JPM", "GS"} {
		c, ok := got[want]
		if !ok {
			t.Errorf("missing candidate %s", want)
			continue
		}
		if c.Priority != PriorityNews {
			t.Errorf("%s priority = %v, want %v", want, c.Priority, PriorityNews)
		}
		if c.Source != "news" {
			t.Errorf("%s source = %q, want news", want, c.Source)
		}
	}

	if _, ok := got["KO"]; ok {
		t.Error("KO must not qualify: below both thresholds")
	}
}

func TestNewsStrategyEmpty(t *testing.T) {
	strategy := NewNewsStrategy(&stubNewsSource{}, 24*time.Hour, 0.3, 0.6)

	got, err := strategy.Select(context.Background())
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d candidates from empty window, want 0", len(got))
	}
}
