package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/MegaGuyRy/market-prediction/pkg/logger"
)

// StoreCleaner removes stored items older than the retention window
type StoreCleaner interface {
	CleanupOlderThan(ctx context.Context, retention time.Duration) (int64, error)
}

// CleanupWorker enforces the retention policy on stored news
type CleanupWorker struct {
	store     StoreCleaner
	retention time.Duration
}

// NewCleanupWorker creates new cleanup worker
func NewCleanupWorker(store StoreCleaner, retention time.Duration) *CleanupWorker {
	return &CleanupWorker{
		store:     store,
		retention: retention,
	}
}

// Name returns worker name for logging
func (w *CleanupWorker) Name() string {
	return "news_cleanup"
}

// Run deletes items older than the retention window
func (w *CleanupWorker) Run(ctx context.Context) error {
	deleted, err := w.store.CleanupOlderThan(ctx, w.retention)
	if err != nil {
		return err
	}

	if deleted > 0 {
		logger.Info("retention cleanup complete",
			zap.Int64("deleted", deleted),
			zap.Duration("retention", w.retention),
		)
	}

	return nil
}
