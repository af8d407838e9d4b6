package feeds

import (
	"context"
	"time"

	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

// Provider fetches raw news items from one source
type Provider interface {
	// Name returns the provider's identifier for logging and item tagging
	Name() string

	// Fetch returns items published after the since timestamp
	Fetch(ctx context.Context, since time.Time) ([]models.NewsItem, error)
}
