package candidates

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/MegaGuyRy/market-prediction/pkg/logger"
	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

// Selector merges the outputs of independent strategies into one
// ranked candidate list
type Selector struct {
	strategies []Strategy
}

// NewSelector creates a selector. Strategy order is precedence order:
// earlier strategies establish entries, later ones corroborate or add.
func NewSelector(strategies ...Strategy) *Selector {
	return &Selector{strategies: strategies}
}

// Select runs every strategy and merges the results. A strategy
// failure is logged and contributes an empty set, the merge never
// aborts. On corroboration a ticker's priority rises to the max of
// the contributions and its source tag is broadened ("news_market").
func (s *Selector) Select(ctx context.Context) []models.Candidate {
	merged := make(map[string]models.Candidate)

	for _, strategy := range s.strategies {
		selected, err := strategy.Select(ctx)
		if err != nil {
			logger.Warn("candidate strategy failed, skipping",
				zap.String("strategy", strategy.Name()),
				zap.Error(err),
			)
			continue
		}

		for ticker, candidate := range selected {
			existing, ok := merged[ticker]
			if !ok {
				merged[ticker] = candidate
				continue
			}

			if candidate.Priority > existing.Priority {
				existing.Priority = candidate.Priority
				existing.Reason = candidate.Reason
			}
			existing.Source = existing.Source + "_" + candidate.Source
			merged[ticker] = existing
		}

		logger.Debug("strategy contributed candidates",
			zap.String("strategy", strategy.Name()),
			zap.Int("count", len(selected)),
		)
	}

	out := make([]models.Candidate, 0, len(merged))
	for _, c := range merged {
		out = append(out, c)
	}

	// Priority descending, ties broken by ticker for stable output
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Ticker < out[j].Ticker
	})

	logger.Info("candidate selection complete",
		zap.Int("total", len(out)),
	)

	return out
}
