package feeds

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MegaGuyRy/market-prediction/pkg/logger"
	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

// Collector fans fetches out across all configured providers.
// A failing provider is logged and skipped, never fatal for the run.
type Collector struct {
	providers []Provider
}

// NewCollector creates a collector over the given providers
func NewCollector(providers []Provider) *Collector {
	return &Collector{providers: providers}
}

// Collect fetches from every provider concurrently and merges the results.
// Duplicate URLs across providers are dropped, first fetch wins.
func (c *Collector) Collect(ctx context.Context, since time.Time) []models.NewsItem {
	var (
		mu  sync.Mutex
		all []models.NewsItem
	)

	g, ctx := errgroup.WithContext(ctx)

	for _, p := range c.providers {
		p := p
		g.Go(func() error {
			items, err := p.Fetch(ctx, since)
			if err != nil {
				logger.Warn("feed fetch failed, skipping source",
					zap.String("provider", p.Name()),
					zap.Error(err),
				)
				return nil
			}

			logger.Debug("feed fetched",
				zap.String("provider", p.Name()),
				zap.Int("items", len(items)),
			)

			mu.Lock()
			all = append(all, items...)
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors, Wait only observes ctx cancellation.
	_ = g.Wait()

	return dedupeByURL(all)
}

func dedupeByURL(items []models.NewsItem) []models.NewsItem {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		if item.URL != "" {
			if seen[item.URL] {
				continue
			}
			seen[item.URL] = true
		}
		out = append(out, item)
	}
	return out
}
