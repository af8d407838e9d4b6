package models

import "time"

// SentimentThreshold is the canonical cutoff separating bullish/bearish
// items from neutral ones. All aggregation call sites use this constant.
const SentimentThreshold = 0.2

// DefaultTicker is assigned when no ticker can be extracted from an item.
// Downstream aggregation assumes every item carries at least one symbol.
const DefaultTicker = "SPY"

// NewsItem represents a single ingested article with derived signals
type NewsItem struct {
	PublishedAt    time.Time `json:"published_at" db:"published_at"`
	IngestedAt     time.Time `json:"ingested_at" db:"ingested_at"`
	ID             string    `json:"id" db:"id"`
	Headline       string    `json:"headline" db:"headline"`
	Body           string    `json:"body" db:"body"`
	Source         string    `json:"source" db:"source"`
	URL            string    `json:"url" db:"url"`
	Tickers        []string  `json:"tickers" db:"tickers"`
	Embedding      []float32 `json:"-" db:"embedding"`
	Sentiment      float64   `json:"sentiment_score" db:"sentiment_score"`
	Novelty        float64   `json:"novelty_score" db:"novelty_score"`
	Similarity     float64   `json:"similarity,omitempty" db:"-"`
	CombinedScore  float64   `json:"score,omitempty" db:"-"`
	EmbeddingModel string    `json:"-" db:"embedding_model"`
}

// Text returns the headline and body joined for extraction and embedding
func (n *NewsItem) Text() string {
	if n.Body == "" {
		return n.Headline
	}
	return n.Headline + " " + n.Body
}

// IsBullish reports whether the item clears the canonical bullish threshold
func (n *NewsItem) IsBullish() bool {
	return n.Sentiment > SentimentThreshold
}

// IsBearish reports whether the item clears the canonical bearish threshold
func (n *NewsItem) IsBearish() bool {
	return n.Sentiment < -SentimentThreshold
}
