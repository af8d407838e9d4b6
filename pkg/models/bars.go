package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar represents one daily OHLCV bar for a ticker
type PriceBar struct {
	Ticker string          `json:"ticker" db:"ticker"`
	Date   time.Time       `json:"date" db:"bar_date"`
	Open   decimal.Decimal `json:"open" db:"open"`
	High   decimal.Decimal `json:"high" db:"high"`
	Low    decimal.Decimal `json:"low" db:"low"`
	Close  decimal.Decimal `json:"close" db:"close"`
	Volume decimal.Decimal `json:"volume" db:"volume"`
}

// GapPercent returns the overnight gap from the previous close, as a fraction
func (b *PriceBar) GapPercent(prevClose decimal.Decimal) float64 {
	if prevClose.IsZero() {
		return 0
	}
	gap, _ := b.Open.Sub(prevClose).Div(prevClose).Float64()
	return gap
}
