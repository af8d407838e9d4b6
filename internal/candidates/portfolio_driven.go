package candidates

import (
	"context"

	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

// PositionSource reports tickers with open positions
type PositionSource interface {
	OpenPositions(ctx context.Context) ([]string, error)
}

// StaticPositions is a fixed position list, used when no brokerage
// integration is configured
type StaticPositions []string

// OpenPositions returns the configured tickers
func (s StaticPositions) OpenPositions(ctx context.Context) ([]string, error) {
	return s, nil
}

// PortfolioStrategy marks every open position as a mandatory analysis
// target. Open trades must be re-evaluated every cycle no matter how
// quiet the news flow is.
type PortfolioStrategy struct {
	positions PositionSource
}

// NewPortfolioStrategy creates the portfolio-driven strategy
func NewPortfolioStrategy(positions PositionSource) *PortfolioStrategy {
	return &PortfolioStrategy{positions: positions}
}

// Name returns the strategy identifier
func (s *PortfolioStrategy) Name() string { return "portfolio" }

// Select returns one candidate per open position
func (s *PortfolioStrategy) Select(ctx context.Context) (map[string]models.Candidate, error) {
	tickers, err := s.positions.OpenPositions(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]models.Candidate, len(tickers))
	for _, ticker := range tickers {
		out[ticker] = models.Candidate{
			Ticker:   ticker,
			Reason:   "open position",
			Source:   s.Name(),
			Priority: PriorityPortfolio,
		}
	}

	return out, nil
}
