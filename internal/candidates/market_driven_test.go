package candidates

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

type stubBarSource struct {
	bars map[string][]models.PriceBar
}

func (s *stubBarSource) ActiveTickers(ctx context.Context) ([]string, error) {
	var out []string
	for t := range s.bars {
		out = append(out, t)
	}
	return out, nil
}

func (s *stubBarSource) RecentBars(ctx context.Context, ticker string, limit int) ([]models.PriceBar, error) {
	return s.bars[ticker], nil
}

// flatBars builds n identical daily bars, newest first
func flatBars(ticker string, n int, close, volume float64) []models.PriceBar {
	bars := make([]models.PriceBar, n)
	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = models.PriceBar{
			Ticker: ticker,
			Date:   day.AddDate(0, 0, -i),
			Open:   decimal.NewFromFloat(close),
			High:   decimal.NewFromFloat(close),
			Low:    decimal.NewFromFloat(close),
			Close:  decimal.NewFromFloat(close),
			Volume: decimal.NewFromFloat(volume),
		}
	}
	return bars
}

func TestDetectAnomalyGap(t *testing.T) {
	bars := flatBars("X", 5, 100, 1000)
	bars[0].Open = decimal.NewFromFloat(102) // +2% gap vs prior close

	reason, ok := detectAnomaly(bars)
	if !ok {
		t.Fatal("expected gap anomaly")
	}
	if !strings.Contains(reason, "gap") {
		t.Errorf("reason = %q, want gap", reason)
	}
}

func TestDetectAnomalyGapDown(t *testing.T) {
	bars := flatBars("X", 5, 100, 1000)
	bars[0].Open = decimal.NewFromFloat(97)

	reason, ok := detectAnomaly(bars)
	if !ok || !strings.Contains(reason, "gap") {
		t.Errorf("reason = %q ok = %v, want downward gap anomaly", reason, ok)
	}
}

func TestDetectAnomalyVolume(t *testing.T) {
	bars := flatBars("X", 5, 100, 1000)
	bars[0].Volume = decimal.NewFromFloat(3000)

	reason, ok := detectAnomaly(bars)
	if !ok {
		t.Fatal("expected volume anomaly")
	}
	if !strings.Contains(reason, "volume") {
		t.Errorf("reason = %q, want volume", reason)
	}
}

func TestDetectAnomalyQuietMarket(t *testing.T) {
	bars := flatBars("X", 5, 100, 1000)

	if reason, ok := detectAnomaly(bars); ok {
		t.Errorf("flat bars flagged: %q", reason)
	}
}

func TestDetectAnomalyTooFewBars(t *testing.T) {
	bars := flatBars("X", 2, 100, 1000)

	if _, ok := detectAnomaly(bars); ok {
		t.Error("two bars must not be enough for anomaly detection")
	}
}

func TestMarketStrategySelect(t *testing.T) {
	gapped := flatBars("NVDA", 5, 500, 1000)
	gapped[0].Open = decimal.NewFromFloat(515)

	source := &stubBarSource{bars: map[string][]models.PriceBar{
		"NVDA": gapped,
		"KO":   flatBars("KO", 5, 60, 1000),
	}}

	strategy := NewMarketStrategy(source)
	got, err := strategy.Select(context.Background())
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	if _, ok := got["NVDA"]; !ok {
		t.Error("gapped ticker missing from candidates")
	}
	if _, ok := got["KO"]; ok {
		t.Error("quiet ticker must not be selected")
	}
	if got["NVDA"].Priority != PriorityMarket {
		t.Errorf("priority = %v, want %v", got["NVDA"].Priority, PriorityMarket)
	}
}
