package news

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/MegaGuyRy/market-prediction/pkg/logger"
	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

// Field caps keep oversized articles from bloating rows
const (
	maxHeadlineLen = 500
	maxBodyLen     = 2000
)

// Repository stores news items with embeddings in Postgres (pgvector)
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new news repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores a single item. Headline and body are capped before
// storage.
func (r *Repository) Insert(ctx context.Context, item *models.NewsItem) error {
	query := `
		INSERT INTO news (id, headline, body, source, url, published_at, ingested_at,
		                  sentiment_score, novelty_score, embedding, embedding_model, tickers)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`

	tickers := item.Tickers
	if tickers == nil {
		tickers = []string{}
	}

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		capString(item.Headline, maxHeadlineLen),
		capString(item.Body, maxBodyLen),
		item.Source,
		item.URL,
		item.PublishedAt,
		item.IngestedAt,
		item.Sentiment,
		item.Novelty,
		Vector(item.Embedding),
		item.EmbeddingModel,
		pq.Array(tickers),
	)
	if err != nil {
		return fmt.Errorf("failed to insert news item: %w", err)
	}

	return nil
}

// InsertBatch stores items one by one and returns the number stored.
// A failing item is logged and skipped so one bad row never sinks the
// whole batch.
func (r *Repository) InsertBatch(ctx context.Context, items []models.NewsItem) int {
	count := 0
	for i := range items {
		if err := r.Insert(ctx, &items[i]); err != nil {
			logger.Warn("failed to store news item",
				zap.String("headline", truncatePreview(items[i].Headline)),
				zap.Error(err),
			)
			continue
		}
		count++
	}

	logger.Info("batch stored news items",
		zap.Int("stored", count),
		zap.Int("total", len(items)),
	)

	return count
}

// SearchSimilar returns items ordered by cosine similarity to the
// query embedding, optionally filtered to a ticker, excluding anything
// below minSimilarity.
func (r *Repository) SearchSimilar(ctx context.Context, embedding []float32, ticker string, limit int, minSimilarity float64) ([]models.NewsItem, error) {
	query := `
		SELECT id, headline, body, source, url, published_at, ingested_at,
		       sentiment_score, novelty_score, tickers,
		       1 - (embedding <=> $1::vector) AS similarity
		FROM news
		WHERE ($2 = '' OR $2 = ANY(tickers))
		  AND (1 - (embedding <=> $1::vector)) >= $3
		ORDER BY similarity DESC
		LIMIT $4
	`

	rows, err := r.db.QueryContext(ctx, query, Vector(embedding), ticker, minSimilarity, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search similar news: %w", err)
	}
	defer rows.Close()

	var items []models.NewsItem
	for rows.Next() {
		var item models.NewsItem
		var tickers pq.StringArray

		err := rows.Scan(
			&item.ID, &item.Headline, &item.Body, &item.Source, &item.URL,
			&item.PublishedAt, &item.IngestedAt,
			&item.Sentiment, &item.Novelty, &tickers, &item.Similarity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan news row: %w", err)
		}

		item.Tickers = tickers
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate news rows: %w", err)
	}

	return items, nil
}

// ItemsForTicker returns recent items carrying the ticker, newest first
func (r *Repository) ItemsForTicker(ctx context.Context, ticker string, lookback time.Duration, limit int) ([]models.NewsItem, error) {
	query := `
		SELECT id, headline, body, source, url, published_at, ingested_at,
		       sentiment_score, novelty_score, tickers
		FROM news
		WHERE $1 = ANY(tickers)
		  AND published_at >= $2
		ORDER BY published_at DESC
		LIMIT $3
	`

	cutoff := time.Now().UTC().Add(-lookback)

	rows, err := r.db.QueryContext(ctx, query, ticker, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get news for ticker %s: %w", ticker, err)
	}
	defer rows.Close()

	var items []models.NewsItem
	for rows.Next() {
		var item models.NewsItem
		var tickers pq.StringArray

		err := rows.Scan(
			&item.ID, &item.Headline, &item.Body, &item.Source, &item.URL,
			&item.PublishedAt, &item.IngestedAt,
			&item.Sentiment, &item.Novelty, &tickers,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan news row: %w", err)
		}

		item.Tickers = tickers
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate news rows: %w", err)
	}

	return items, nil
}

// RecentItems returns items ingested within the lookback window,
// newest first, regardless of ticker
func (r *Repository) RecentItems(ctx context.Context, lookback time.Duration, limit int) ([]models.NewsItem, error) {
	query := `
		SELECT id, headline, body, source, url, published_at, ingested_at,
		       sentiment_score, novelty_score, tickers
		FROM news
		WHERE ingested_at >= $1
		ORDER BY ingested_at DESC
		LIMIT $2
	`

	cutoff := time.Now().UTC().Add(-lookback)

	rows, err := r.db.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent news: %w", err)
	}
	defer rows.Close()

	var items []models.NewsItem
	for rows.Next() {
		var item models.NewsItem
		var tickers pq.StringArray

		err := rows.Scan(
			&item.ID, &item.Headline, &item.Body, &item.Source, &item.URL,
			&item.PublishedAt, &item.IngestedAt,
			&item.Sentiment, &item.Novelty, &tickers,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan news row: %w", err)
		}

		item.Tickers = tickers
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate news rows: %w", err)
	}

	return items, nil
}

// RecentEmbeddings returns embeddings of recently ingested items, used
// as the prior corpus for novelty scoring
func (r *Repository) RecentEmbeddings(ctx context.Context, lookback time.Duration, limit int) ([][]float32, error) {
	query := `
		SELECT embedding
		FROM news
		WHERE ingested_at >= $1
		  AND embedding IS NOT NULL
		ORDER BY ingested_at DESC
		LIMIT $2
	`

	cutoff := time.Now().UTC().Add(-lookback)

	rows, err := r.db.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent embeddings: %w", err)
	}
	defer rows.Close()

	var embeddings [][]float32
	for rows.Next() {
		var v Vector
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		embeddings = append(embeddings, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate embeddings: %w", err)
	}

	return embeddings, nil
}

// Count returns the total number of stored items
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM news`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count news: %w", err)
	}
	return count, nil
}

// CleanupOlderThan removes items past the retention window and returns
// the number deleted
func (r *Repository) CleanupOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)

	result, err := r.db.ExecContext(ctx, `DELETE FROM news WHERE published_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old news: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	if deleted > 0 {
		logger.Info("cleaned up old news items", zap.Int64("deleted", deleted))
	}

	return deleted, nil
}

// capString truncates s to at most max bytes without splitting a
// multi-byte rune, which would produce invalid UTF-8 that Postgres
// text columns reject.
func capString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
