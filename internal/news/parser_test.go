package news

import (
	"context"
	"os"
	"testing"

	"github.com/MegaGuyRy/market-prediction/internal/extract"
	"github.com/MegaGuyRy/market-prediction/pkg/logger"
	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

func TestMain(m *testing.M) {
	if logger.Log == nil {
		if err := logger.Init("error", ""); err != nil {
			panic(err)
		}
	}
	os.Exit(m.Run())
}

func TestParserDefaults(t *testing.T) {
	// With no services configured the parser must still produce
	// defined scores and a non-empty ticker set.
	parser := NewParser(
		extract.NewTickerExtractor(nil, nil),
		extract.NewSentimentExtractor(nil, nil, nil),
	)

	item := models.NewsItem{
		Headline:  "Quarterly update published",
		Body:      "Routine filing with no notable content.",
		Embedding: []float32{1, 0, 0},
	}

	parser.Parse(context.Background(), &item, nil)

	if len(item.Tickers) == 0 {
		t.Error("tickers must never be empty after parsing")
	}
	if item.Tickers[0] != models.DefaultTicker {
		t.Errorf("Tickers = %v, want default %s", item.Tickers, models.DefaultTicker)
	}
	if item.Sentiment != 0.0 {
		t.Errorf("Sentiment = %v, want 0.0", item.Sentiment)
	}
	if item.Novelty != 1.0 {
		t.Errorf("Novelty = %v, want 1.0 against empty corpus", item.Novelty)
	}
}

func TestParserBatchScenario(t *testing.T) {
	parser := NewParser(
		extract.NewTickerExtractor(nil, nil),
		extract.NewSentimentExtractor(nil, nil, nil),
	)

	// Orthogonal unit vectors except the duplicate, which matches the
	// existing embedding exactly.
	existing := [][]float32{{0, 0, 0, 0, 1}}

	items := []models.NewsItem{
		{Headline: "Apple shares surge on record profit", Embedding: []float32{1, 0, 0, 0, 0}},
		{Headline: "Analyst upgrade lifts Microsoft, strong rally follows", Embedding: []float32{0, 1, 0, 0, 0}},
		{Headline: "Merger deal signals breakthrough for chipmakers", Embedding: []float32{0, 0, 1, 0, 0}},
		{Headline: "Tesla faces lawsuit and regulatory investigation", Embedding: []float32{0, 0, 0, 1, 0}},
		{Headline: "Weak outlook triggers downgrade and decline", Embedding: []float32{0, 0, 0, 0, 1}},
	}

	parser.ParseBatch(context.Background(), items, existing)

	for i, item := range items[:3] {
		if item.Sentiment <= models.SentimentThreshold {
			t.Errorf("item %d sentiment = %v, want > %v", i, item.Sentiment, models.SentimentThreshold)
		}
	}
	for i, item := range items[3:] {
		if item.Sentiment >= -models.SentimentThreshold {
			t.Errorf("item %d sentiment = %v, want < %v", i+3, item.Sentiment, -models.SentimentThreshold)
		}
	}

	// The duplicate scores near zero novelty, the rest near one
	for i, item := range items[:4] {
		if item.Novelty <= 0.9 {
			t.Errorf("item %d novelty = %v, want > 0.9", i, item.Novelty)
		}
	}
	if items[4].Novelty >= 0.1 {
		t.Errorf("duplicate novelty = %v, want < 0.1", items[4].Novelty)
	}
}
