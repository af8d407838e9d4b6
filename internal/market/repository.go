package market

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MegaGuyRy/market-prediction/pkg/logger"
	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

// Repository reads and writes daily price bars in Postgres
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new market data repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// SaveBars upserts daily bars keyed by ticker and date
func (r *Repository) SaveBars(ctx context.Context, bars []models.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	query := `
		INSERT INTO price_bars (ticker, bar_date, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ticker, bar_date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	stmt, err := tx.Preparex(query)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, bar := range bars {
		_, err := stmt.ExecContext(ctx,
			bar.Ticker, bar.Date,
			bar.Open, bar.High, bar.Low, bar.Close, bar.Volume,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert bar: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.Debug("saved price bars", zap.Int("count", len(bars)))

	return nil
}

// RecentBars returns up to limit daily bars for a ticker, newest first
func (r *Repository) RecentBars(ctx context.Context, ticker string, limit int) ([]models.PriceBar, error) {
	query := `
		SELECT ticker, bar_date, open, high, low, close, volume
		FROM price_bars
		WHERE ticker = $1
		ORDER BY bar_date DESC
		LIMIT $2
	`

	var bars []models.PriceBar
	if err := r.db.SelectContext(ctx, &bars, query, ticker, limit); err != nil {
		return nil, fmt.Errorf("failed to get bars for %s: %w", ticker, err)
	}

	return bars, nil
}

// ActiveTickers lists tickers that have at least one stored bar
func (r *Repository) ActiveTickers(ctx context.Context) ([]string, error) {
	var tickers []string
	if err := r.db.SelectContext(ctx, &tickers, `SELECT DISTINCT ticker FROM price_bars ORDER BY ticker`); err != nil {
		return nil, fmt.Errorf("failed to list tickers: %w", err)
	}
	return tickers, nil
}

// Closes extracts close prices oldest first, the order indicator
// functions expect
func Closes(bars []models.PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, bar := range bars {
		out[len(bars)-1-i], _ = bar.Close.Float64()
	}
	return out
}

// AverageVolume computes the mean volume across bars
func AverageVolume(bars []models.PriceBar) decimal.Decimal {
	if len(bars) == 0 {
		return decimal.Zero
	}

	sum := decimal.Zero
	for _, bar := range bars {
		sum = sum.Add(bar.Volume)
	}
	return sum.Div(decimal.NewFromInt(int64(len(bars))))
}
