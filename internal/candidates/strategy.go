package candidates

import (
	"context"

	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

// Strategy base priorities. Corroboration across strategies raises a
// ticker to the max of the contributing priorities, never lowers it.
const (
	PriorityNews      = 0.9
	PriorityPortfolio = 0.85
	PriorityMarket    = 0.8
	PriorityBaseline  = 0.5
)

// Strategy produces candidate tickers with reasons and priorities.
// A strategy that fails returns an error and contributes nothing, the
// merge continues with the remaining strategies.
type Strategy interface {
	Name() string
	Select(ctx context.Context) (map[string]models.Candidate, error)
}
