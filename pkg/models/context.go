package models

import "time"

// Sentiment trend labels for a ticker's recent coverage
const (
	TrendImproving     = "improving"
	TrendDeteriorating = "deteriorating"
	TrendNeutral       = "neutral"
)

// TickerContext aggregates recent news for one ticker.
// Computed on demand, never persisted.
type TickerContext struct {
	GeneratedAt  time.Time  `json:"generated_at"`
	Ticker       string     `json:"ticker"`
	Trend        string     `json:"sentiment_trend"`
	Items        []NewsItem `json:"news_items"`
	Count        int        `json:"count"`
	AvgSentiment float64    `json:"avg_sentiment"`
}

// SectorContext aggregates ticker contexts across a set of symbols
type SectorContext struct {
	GeneratedAt      time.Time  `json:"generated_at"`
	Tickers          []string   `json:"tickers"`
	TopNews          []NewsItem `json:"top_news"`
	Count            int        `json:"count"`
	AvgSentiment     float64    `json:"avg_sentiment"`
	BullishItems     int        `json:"bullish_items"`
	BearishItems     int        `json:"bearish_items"`
	SentimentBalance int        `json:"sentiment_balance"`
}
