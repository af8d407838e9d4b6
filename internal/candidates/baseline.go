package candidates

import (
	"context"
	"time"

	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

// baselineUniverse is the blue-chip coverage set. Daily rotation over
// this list guarantees every name is re-examined on a fixed cycle even
// when no news or anomaly mentions it.
var baselineUniverse = []string{
	// Tech giants
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA",
	"META", "TSLA", "NFLX", "CRM", "ADBE",

	// Finance
	"JPM", "BAC", "WFC", "GS", "MS",
	"BLK", "SCHW", "AXP",

	// Healthcare
	"PFE", "JNJ", "UNH", "MRK", "ABBV",
	"LLY", "BMY",

	// Industrials
	"BA", "CAT", "GE", "LMT", "RTX", "HON",

	// Energy
	"XOM", "CVX", "COP", "SLB",

	// Consumer
	"WMT", "KO", "MCD", "NKE", "COST", "TJX", "HD",

	// Communications
	"VZ", "T", "CMCSA",

	// Utilities
	"NEE", "D", "SO",

	// Diversified
	"BRK.B", "PM", "MO", "MMM",

	// Real estate
	"PLD", "SPG", "O",

	// Transportation
	"FDX", "UPS",
}

// BaselineStrategy rotates through the blue-chip universe by day of
// year, selecting a contiguous window that advances one position per
// day and wraps around.
type BaselineStrategy struct {
	universe []string
	size     int
	now      func() time.Time
}

// NewBaselineStrategy creates the rotating baseline strategy
func NewBaselineStrategy(size int) *BaselineStrategy {
	return &BaselineStrategy{
		universe: baselineUniverse,
		size:     size,
		now:      time.Now,
	}
}

// Name returns the strategy identifier
func (s *BaselineStrategy) Name() string { return "baseline" }

// Select returns today's rotation window. Deterministic for a given
// date, so repeated runs within a day select the same names.
func (s *BaselineStrategy) Select(ctx context.Context) (map[string]models.Candidate, error) {
	return s.selectForDate(s.now().UTC()), nil
}

func (s *BaselineStrategy) selectForDate(date time.Time) map[string]models.Candidate {
	offset := date.YearDay() % len(s.universe)

	out := make(map[string]models.Candidate, s.size)
	for i := 0; i < s.size; i++ {
		ticker := s.universe[(offset+i)%len(s.universe)]
		out[ticker] = models.Candidate{
			Ticker:   ticker,
			Reason:   "baseline_rotation",
			Source:   s.Name(),
			Priority: PriorityBaseline,
		}
	}

	return out
}
