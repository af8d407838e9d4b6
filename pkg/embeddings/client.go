package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/MegaGuyRy/market-prediction/pkg/logger"
	"github.com/MegaGuyRy/market-prediction/pkg/metrics"
)

// Repository interface for persistent embedding storage.
// Embeddings are deterministic and expensive, so they are stored permanently
// to avoid redundant API calls rather than cached with eviction.
type Repository interface {
	Get(ctx context.Context, textHash string) ([]float32, bool)
	Set(ctx context.Context, textHash string, embedding []float32, model string, textLength int) error
}

// Client generates L2-normalized text embeddings with deduplication via repository
type Client struct {
	repository          Repository
	metricsBuffer       metrics.Buffer
	openaiClient        *openai.Client
	model               openai.EmbeddingModel
	deduplicationHits   int64
	deduplicationMisses int64
}

// Config for embedding client
type Config struct {
	OpenAIClient  *openai.Client
	Repository    Repository            // Optional repository for deduplication
	MetricsBuffer metrics.Buffer        // Optional metrics buffer for ClickHouse
	Model         openai.EmbeddingModel // Default: openai.SmallEmbedding3
}

// NewClient creates new embedding client with optional deduplication
func NewClient(cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = openai.SmallEmbedding3
	}

	if cfg.Repository != nil {
		logger.Info("embedding deduplication enabled (Postgres repository)")
	}

	return &Client{
		openaiClient:  cfg.OpenAIClient,
		repository:    cfg.Repository,
		metricsBuffer: cfg.MetricsBuffer,
		model:         model,
	}
}

// Embed creates a normalized embedding for a single text
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	// Try repository first (deduplication)
	if c.repository != nil {
		textHash := c.hashText(text)
		existing, found := c.repository.Get(ctx, textHash)
		if found {
			atomic.AddInt64(&c.deduplicationHits, 1)
			c.recordDeduplication(textHash, len(text), true)
			return existing, nil
		}
		atomic.AddInt64(&c.deduplicationMisses, 1)
	}

	if c.openaiClient == nil {
		return nil, fmt.Errorf("embedding client not configured - please set OPENAI_API_KEY")
	}

	vectors, err := c.generateWithRetry(ctx, []string{text}, 3)
	if err != nil {
		return nil, fmt.Errorf("embedding API failed after retries: %w", err)
	}

	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding API returned no data")
	}

	result := vectors[0]

	if c.repository != nil {
		textHash := c.hashText(text)
		if err := c.repository.Set(ctx, textHash, result, string(c.model), len(text)); err != nil {
			logger.Warn("failed to store embedding in repository", zap.Error(err))
		}
		c.recordDeduplication(textHash, len(text), false)
	}

	return result, nil
}

// EmbedBatch creates normalized embeddings for multiple texts.
// The underlying API supports up to 2048 inputs per call, so batches are
// chunked and deduplicated against the repository before each call.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	if c.openaiClient == nil {
		return nil, fmt.Errorf("embedding client not configured - please set OPENAI_API_KEY")
	}

	const maxBatchSize = 2048

	allEmbeddings := make([][]float32, len(texts))

	for i := 0; i < len(texts); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[i:end]

		var uncachedIndices []int
		var uncachedTexts []string

		for j, text := range batch {
			if c.repository != nil {
				textHash := c.hashText(text)
				existing, found := c.repository.Get(ctx, textHash)
				if found {
					atomic.AddInt64(&c.deduplicationHits, 1)
					allEmbeddings[i+j] = existing
					continue
				}
				atomic.AddInt64(&c.deduplicationMisses, 1)
			}
			uncachedIndices = append(uncachedIndices, i+j)
			uncachedTexts = append(uncachedTexts, text)
		}

		if len(uncachedTexts) == 0 {
			continue
		}

		vectors, err := c.generateWithRetry(ctx, uncachedTexts, 3)
		if err != nil {
			return nil, fmt.Errorf("batch embedding API failed after retries: %w", err)
		}

		if len(vectors) != len(uncachedTexts) {
			return nil, fmt.Errorf("batch response size mismatch: expected %d, got %d", len(uncachedTexts), len(vectors))
		}

		for j, vector := range vectors {
			idx := uncachedIndices[j]
			allEmbeddings[idx] = vector

			if c.repository != nil {
				textHash := c.hashText(uncachedTexts[j])
				if err := c.repository.Set(ctx, textHash, vector, string(c.model), len(uncachedTexts[j])); err != nil {
					logger.Warn("failed to store embedding in repository", zap.Error(err))
				}
			}
		}

		logger.Debug("batch embedding generation successful",
			zap.Int("batch_size", len(batch)),
			zap.Int("deduplicated", len(batch)-len(uncachedTexts)),
			zap.Int("generated", len(uncachedTexts)),
		)
	}

	return allEmbeddings, nil
}

// generateWithRetry calls the embedding API with exponential backoff retry
// and normalizes every returned vector to unit length.
func (c *Client) generateWithRetry(ctx context.Context, texts []string, maxRetries int) ([][]float32, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoffDuration := time.Duration(math.Pow(2, float64(attempt))) * time.Second

			select {
			case <-time.After(backoffDuration):
			case <-ctx.Done():
				return nil, fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
			}
		}

		resp, err := c.openaiClient.CreateEmbeddings(
			ctx,
			openai.EmbeddingRequest{
				Model: c.model,
				Input: texts,
			},
		)

		if err == nil {
			vectors := make([][]float32, len(resp.Data))
			for i, data := range resp.Data {
				vectors[i] = Normalize(data.Embedding)
			}
			return vectors, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			logger.Warn("non-retryable embedding API error, aborting", zap.Error(err))
			return nil, err
		}

		logger.Warn("retryable embedding API error encountered",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
		)
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, lastErr)
}

// Normalize scales a vector to unit L2 length. Zero vectors are returned as-is.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// isRetryableError checks if error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()

	if strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit") {
		return true
	}

	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		return true
	}

	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "connection reset") {
		return true
	}

	if strings.Contains(errStr, "500") || strings.Contains(errStr, "502") || strings.Contains(errStr, "503") {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
			apiErr.HTTPStatusCode >= 500
	}

	return false
}

// recordDeduplication logs a dedup hit or miss to the metrics buffer
func (c *Client) recordDeduplication(textHash string, textLength int, hit bool) {
	if c.metricsBuffer == nil {
		return
	}

	saved := 0.0
	if hit {
		saved = 0.0001
	}

	if err := c.metricsBuffer.Add(&metrics.EmbeddingDeduplicationMetric{
		Timestamp:    time.Now(),
		TextHash:     textHash[:16],
		TextLength:   textLength,
		Model:        string(c.model),
		CacheHit:     hit,
		CostSavedUSD: saved,
	}); err != nil {
		logger.Error("failed to add deduplication metric", zap.Error(err))
	}
}

// Model returns the embedding model identifier
func (c *Client) Model() string {
	return string(c.model)
}

// hashText creates SHA256 hash of text for the dedup key
func (c *Client) hashText(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

// DeduplicationStats returns dedup hit/miss counters
func (c *Client) DeduplicationStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.deduplicationHits), atomic.LoadInt64(&c.deduplicationMisses)
}
