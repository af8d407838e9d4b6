package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/MegaGuyRy/market-prediction/internal/adapters/config"
)

// Scores holds class probabilities returned by the financial sentiment classifier
type Scores struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// Polarity collapses the distribution into a single score in [-1, 1]
func (s Scores) Polarity() float64 {
	return s.Positive - s.Negative
}

// Client talks to an HTTP sentiment classification service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type classifyRequest struct {
	Text string `json:"text"`
}

// NewClient creates a new classifier client
func NewClient(cfg *config.ClassifierConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Classify returns class probabilities for the given text
func (c *Client) Classify(ctx context.Context, text string) (Scores, error) {
	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return Scores{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewReader(body))
	if err != nil {
		return Scores{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Scores{}, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Scores{}, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, string(data))
	}

	var scores Scores
	if err := json.NewDecoder(resp.Body).Decode(&scores); err != nil {
		return Scores{}, fmt.Errorf("failed to decode classifier response: %w", err)
	}

	return scores, nil
}
