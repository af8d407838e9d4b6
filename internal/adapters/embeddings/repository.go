package embeddings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/MegaGuyRy/market-prediction/pkg/logger"
)

// Querier is the subset of sqlx.DB the repository needs
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Repository handles persistent embedding storage in Postgres.
// Embeddings are expensive to generate and deterministic, so they are
// stored permanently keyed by text hash to avoid redundant API calls.
type Repository struct {
	db Querier
}

// NewRepository creates new Postgres embedding repository
func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

// Get retrieves an embedding by text hash
func (r *Repository) Get(ctx context.Context, textHash string) ([]float32, bool) {
	query := `
		UPDATE embedding_cache
		SET last_used_at = NOW(), use_count = use_count + 1
		WHERE text_hash = $1
		RETURNING embedding
	`

	var embeddingBytes []byte
	err := r.db.QueryRowContext(ctx, query, textHash).Scan(&embeddingBytes)
	if err != nil {
		return nil, false // miss
	}

	var embedding []float32
	if err := json.Unmarshal(embeddingBytes, &embedding); err != nil {
		logger.Warn("failed to deserialize stored embedding", zap.Error(err))
		return nil, false
	}

	return embedding, true
}

// Set stores an embedding keyed by text hash
func (r *Repository) Set(ctx context.Context, textHash string, embedding []float32, model string, textLength int) error {
	embeddingBytes, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("failed to serialize embedding: %w", err)
	}

	query := `
		INSERT INTO embedding_cache (text_hash, embedding, model, text_length, created_at, last_used_at, use_count)
		VALUES ($1, $2, $3, $4, NOW(), NOW(), 1)
		ON CONFLICT (text_hash) DO UPDATE SET
			last_used_at = NOW(),
			use_count = embedding_cache.use_count + 1
	`

	_, err = r.db.ExecContext(ctx, query, textHash, embeddingBytes, model, textLength)
	if err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}

	return nil
}

// GetStats returns the number of stored embeddings
func (r *Repository) GetStats(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM embedding_cache`
	var count int
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get embedding stats: %w", err)
	}
	return count, nil
}
