package news

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

type fakeStorage struct {
	similar    []models.NewsItem
	perTicker  map[string][]models.NewsItem
	failTicker string
}

func (f *fakeStorage) SearchSimilar(ctx context.Context, embedding []float32, ticker string, limit int, minSimilarity float64) ([]models.NewsItem, error) {
	out := make([]models.NewsItem, len(f.similar))
	copy(out, f.similar)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStorage) ItemsForTicker(ctx context.Context, ticker string, lookback time.Duration, limit int) ([]models.NewsItem, error) {
	if ticker == f.failTicker {
		return nil, errors.New("query timeout")
	}
	items := f.perTicker[ticker]
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func TestRankByRecency(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("fresh item beats equally similar stale one", func(t *testing.T) {
		items := []models.NewsItem{
			{ID: "stale", Similarity: 0.9, PublishedAt: now.Add(-100 * time.Hour)},
			{ID: "fresh", Similarity: 0.9, PublishedAt: now.Add(-1 * time.Hour)},
		}

		ranked := rankByRecency(items, 0.3, now)
		if ranked[0].ID != "fresh" {
			t.Errorf("first = %s, want fresh", ranked[0].ID)
		}
	})

	t.Run("zero weight preserves similarity order", func(t *testing.T) {
		items := []models.NewsItem{
			{ID: "a", Similarity: 0.7, PublishedAt: now.Add(-200 * time.Hour)},
			{ID: "b", Similarity: 0.9, PublishedAt: now.Add(-1 * time.Hour)},
		}

		ranked := rankByRecency(items, 0, now)
		if ranked[0].ID != "b" || ranked[0].CombinedScore != 0.9 {
			t.Errorf("got %s (%v), want b (0.9)", ranked[0].ID, ranked[0].CombinedScore)
		}
	})

	t.Run("age beyond a week contributes zero recency", func(t *testing.T) {
		items := []models.NewsItem{
			{ID: "old", Similarity: 0.8, PublishedAt: now.Add(-400 * time.Hour)},
		}

		ranked := rankByRecency(items, 0.5, now)
		want := 0.5 * 0.8
		if math.Abs(ranked[0].CombinedScore-want) > 1e-9 {
			t.Errorf("score = %v, want %v", ranked[0].CombinedScore, want)
		}
	})

	t.Run("combined score formula", func(t *testing.T) {
		items := []models.NewsItem{
			{ID: "x", Similarity: 0.6, PublishedAt: now.Add(-84 * time.Hour)}, // half the horizon
		}

		ranked := rankByRecency(items, 0.3, now)
		want := 0.7*0.6 + 0.3*0.5
		if math.Abs(ranked[0].CombinedScore-want) > 1e-9 {
			t.Errorf("score = %v, want %v", ranked[0].CombinedScore, want)
		}
	})
}

func TestSentimentTrend(t *testing.T) {
	tests := []struct {
		name       string
		sentiments []float64 // newest first
		want       string
	}{
		{
			name:       "single item is neutral",
			sentiments: []float64{0.9},
			want:       models.TrendNeutral,
		},
		{
			name:       "empty is neutral",
			sentiments: nil,
			want:       models.TrendNeutral,
		},
		{
			name:       "newer positive older negative improves",
			sentiments: []float64{0.8, -0.8},
			want:       models.TrendImproving,
		},
		{
			name:       "newer negative older positive deteriorates",
			sentiments: []float64{-0.8, 0.8},
			want:       models.TrendDeteriorating,
		},
		{
			name:       "flat reads as deteriorating",
			sentiments: []float64{0.5, 0.5},
			want:       models.TrendDeteriorating,
		},
		{
			name:       "odd count splits newer short",
			sentiments: []float64{0.9, 0.8, -0.5, -0.6, -0.7},
			want:       models.TrendImproving,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sentimentTrend(tt.sentiments)
			if got != tt.want {
				t.Errorf("sentimentTrend(%v) = %q, want %q", tt.sentiments, got, tt.want)
			}
		})
	}
}

func TestRetrieveSimilar(t *testing.T) {
	now := time.Now().UTC()
	storage := &fakeStorage{
		similar: []models.NewsItem{
			{ID: "1", Similarity: 0.95, PublishedAt: now.Add(-150 * time.Hour)},
			{ID: "2", Similarity: 0.90, PublishedAt: now.Add(-1 * time.Hour)},
			{ID: "3", Similarity: 0.85, PublishedAt: now.Add(-2 * time.Hour)},
		},
	}

	rag := NewRAG(storage, fakeEmbedder{}, 0.5, 0.5)

	items, err := rag.RetrieveSimilar(context.Background(), "apple earnings", "AAPL", 2)
	if err != nil {
		t.Fatalf("RetrieveSimilar() error = %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	// With heavy recency weight the stale high-similarity item loses
	if items[0].ID != "2" {
		t.Errorf("first = %s, want 2", items[0].ID)
	}
}

func TestTickerContext(t *testing.T) {
	now := time.Now().UTC()
	storage := &fakeStorage{
		perTicker: map[string][]models.NewsItem{
			"AAPL": {
				{ID: "1", Sentiment: 0.6, PublishedAt: now.Add(-1 * time.Hour)},
				{ID: "2", Sentiment: -0.2, PublishedAt: now.Add(-5 * time.Hour)},
			},
		},
	}

	rag := NewRAG(storage, fakeEmbedder{}, 0.3, 0.5)

	tc, err := rag.TickerContext(context.Background(), "AAPL", 24*time.Hour, 10)
	if err != nil {
		t.Fatalf("TickerContext() error = %v", err)
	}

	if tc.Count != 2 {
		t.Errorf("Count = %d, want 2", tc.Count)
	}
	if math.Abs(tc.AvgSentiment-0.2) > 1e-9 {
		t.Errorf("AvgSentiment = %v, want 0.2", tc.AvgSentiment)
	}
	if tc.Trend != models.TrendImproving {
		t.Errorf("Trend = %q, want improving", tc.Trend)
	}
}

func TestTickerContextEmpty(t *testing.T) {
	storage := &fakeStorage{perTicker: map[string][]models.NewsItem{}}
	rag := NewRAG(storage, fakeEmbedder{}, 0.3, 0.5)

	tc, err := rag.TickerContext(context.Background(), "XYZ", 24*time.Hour, 10)
	if err != nil {
		t.Fatalf("TickerContext() error = %v", err)
	}

	if tc.Count != 0 || tc.AvgSentiment != 0.0 || tc.Trend != models.TrendNeutral {
		t.Errorf("empty context = %+v, want zeroed neutral", tc)
	}
}

func TestSectorContext(t *testing.T) {
	now := time.Now().UTC()
	storage := &fakeStorage{
		perTicker: map[string][]models.NewsItem{
			"AAPL": {
				{ID: "1", Sentiment: 0.9, PublishedAt: now},
				{ID: "2", Sentiment: 0.3, PublishedAt: now},
			},
			"TSLA": {
				{ID: "3", Sentiment: -0.5, PublishedAt: now},
				{ID: "4", Sentiment: 0.1, PublishedAt: now}, // neutral band
			},
		},
	}

	rag := NewRAG(storage, fakeEmbedder{}, 0.3, 0.5)

	sc, err := rag.SectorContext(context.Background(), []string{"AAPL", "TSLA"}, 24*time.Hour, 5)
	if err != nil {
		t.Fatalf("SectorContext() error = %v", err)
	}

	if sc.Count != 4 {
		t.Errorf("Count = %d, want 4", sc.Count)
	}
	if sc.BullishItems != 2 {
		t.Errorf("BullishItems = %d, want 2", sc.BullishItems)
	}
	if sc.BearishItems != 1 {
		t.Errorf("BearishItems = %d, want 1", sc.BearishItems)
	}
	if sc.SentimentBalance != 1 {
		t.Errorf("SentimentBalance = %d, want 1", sc.SentimentBalance)
	}

	// Top news ordered by magnitude, not recency
	if sc.TopNews[0].ID != "1" {
		t.Errorf("top item = %s, want 1", sc.TopNews[0].ID)
	}
	if sc.TopNews[1].ID != "3" {
		t.Errorf("second item = %s, want 3", sc.TopNews[1].ID)
	}
}

func TestSectorContextSkipsFailingTicker(t *testing.T) {
	now := time.Now().UTC()
	storage := &fakeStorage{
		failTicker: "TSLA",
		perTicker: map[string][]models.NewsItem{
			"AAPL": {
				{ID: "1", Sentiment: 0.9, PublishedAt: now},
				{ID: "2", Sentiment: -0.4, PublishedAt: now},
			},
		},
	}

	rag := NewRAG(storage, fakeEmbedder{}, 0.3, 0.5)

	sc, err := rag.SectorContext(context.Background(), []string{"AAPL", "TSLA"}, 24*time.Hour, 5)
	if err != nil {
		t.Fatalf("SectorContext() error = %v, a failing ticker must degrade, not abort", err)
	}

	if sc.Count != 2 {
		t.Errorf("Count = %d, want 2 from the healthy ticker", sc.Count)
	}
	if sc.BullishItems != 1 || sc.BearishItems != 1 {
		t.Errorf("bullish/bearish = %d/%d, want 1/1", sc.BullishItems, sc.BearishItems)
	}
}
