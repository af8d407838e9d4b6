package candidates

import (
	"context"
	"fmt"

	"github.com/cinar/indicator"
	"go.uber.org/zap"

	"github.com/MegaGuyRy/market-prediction/internal/market"
	"github.com/MegaGuyRy/market-prediction/pkg/logger"
	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

// Technical anomaly thresholds
const (
	gapThreshold     = 0.01 // 1% overnight gap
	volumeMultiplier = 2.0  // volume vs 20-day average
	rsiOverbought    = 70.0
	rsiOversold      = 30.0
	barLookback      = 21 // 20 days of history plus the latest bar
)

// BarSource provides daily price bars per ticker
type BarSource interface {
	ActiveTickers(ctx context.Context) ([]string, error)
	RecentBars(ctx context.Context, ticker string, limit int) ([]models.PriceBar, error)
}

// MarketStrategy nominates tickers showing technical anomalies:
// overnight gaps, abnormal volume or RSI extremes
type MarketStrategy struct {
	bars BarSource
}

// NewMarketStrategy creates the market-driven strategy
func NewMarketStrategy(bars BarSource) *MarketStrategy {
	return &MarketStrategy{bars: bars}
}

// Name returns the strategy identifier
func (s *MarketStrategy) Name() string { return "market" }

// Select scans every ticker with stored bars. A ticker with too little
// history is skipped silently, anomaly detection needs the full window.
func (s *MarketStrategy) Select(ctx context.Context) (map[string]models.Candidate, error) {
	tickers, err := s.bars.ActiveTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickers: %w", err)
	}

	out := make(map[string]models.Candidate)

	for _, ticker := range tickers {
		bars, err := s.bars.RecentBars(ctx, ticker, barLookback)
		if err != nil {
			logger.Warn("failed to load bars, skipping ticker",
				zap.String("ticker", ticker),
				zap.Error(err),
			)
			continue
		}

		if reason, ok := detectAnomaly(bars); ok {
			out[ticker] = models.Candidate{
				Ticker:   ticker,
				Reason:   reason,
				Source:   s.Name(),
				Priority: PriorityMarket,
			}
		}
	}

	return out, nil
}

// detectAnomaly checks one ticker's bars, newest first.
// Signals are checked in severity order: gap, volume, RSI.
func detectAnomaly(bars []models.PriceBar) (string, bool) {
	if len(bars) < 3 {
		return "", false
	}

	latest := bars[0]
	previous := bars[1]

	// Overnight gap vs previous close
	gap := latest.GapPercent(previous.Close)
	if gap > gapThreshold || gap < -gapThreshold {
		return fmt.Sprintf("overnight gap %+.1f%%", gap*100), true
	}

	// Abnormal volume vs trailing average (latest bar excluded)
	avgVolume := market.AverageVolume(bars[1:])
	if !avgVolume.IsZero() {
		ratio, _ := latest.Volume.Div(avgVolume).Float64()
		if ratio > volumeMultiplier {
			return fmt.Sprintf("volume %.1fx above average", ratio), true
		}
	}

	// RSI extremes need the full lookback window
	if len(bars) >= barLookback {
		closes := market.Closes(bars)
		_, rsi := indicator.Rsi(closes)
		latestRsi := rsi[len(rsi)-1]

		if latestRsi >= rsiOverbought {
			return fmt.Sprintf("RSI overbought (%.0f)", latestRsi), true
		}
		if latestRsi <= rsiOversold && latestRsi > 0 {
			return fmt.Sprintf("RSI oversold (%.0f)", latestRsi), true
		}
	}

	return "", false
}
