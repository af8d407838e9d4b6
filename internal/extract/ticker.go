package extract

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MegaGuyRy/market-prediction/internal/adapters/llm"
	"github.com/MegaGuyRy/market-prediction/pkg/logger"
	"github.com/MegaGuyRy/market-prediction/pkg/metrics"
	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

// LLMService is the subset of the LLM client the stages need
type LLMService interface {
	Available(ctx context.Context) bool
	Generate(ctx context.Context, prompt string) (string, error)
}

// TickerExtractor runs ticker stages in priority order and returns the
// first non-empty result. The final stage always produces something, so
// extraction never fails outright.
type TickerExtractor struct {
	stages        []TickerStage
	metricsBuffer metrics.Buffer
}

// NewTickerExtractor builds the standard cascade: LLM first when
// available, then keyword mapping, then the index default.
func NewTickerExtractor(llmService LLMService, metricsBuffer metrics.Buffer) *TickerExtractor {
	stages := []TickerStage{}
	if llmService != nil {
		stages = append(stages, &LLMTickerStage{llm: llmService})
	}
	stages = append(stages, &KeywordTickerStage{}, &DefaultTickerStage{})

	return &TickerExtractor{
		stages:        stages,
		metricsBuffer: metricsBuffer,
	}
}

// Extract returns ticker symbols for the given text
func (e *TickerExtractor) Extract(ctx context.Context, text string) []string {
	for _, stage := range e.stages {
		start := time.Now()
		tickers := stage.Attempt(ctx, text)
		e.recordStage(stage.Name(), len(tickers) > 0, time.Since(start))

		if len(tickers) > 0 {
			logger.Debug("tickers extracted",
				zap.String("stage", stage.Name()),
				zap.Strings("tickers", tickers),
			)
			return tickers
		}
	}

	// Unreachable while DefaultTickerStage is last
	return []string{models.DefaultTicker}
}

func (e *TickerExtractor) recordStage(stage string, hit bool, elapsed time.Duration) {
	if e.metricsBuffer == nil {
		return
	}
	e.metricsBuffer.Add(&metrics.CascadeStageMetric{
		Timestamp: time.Now(),
		Extractor: "ticker",
		Stage:     stage,
		Hit:       hit,
		LatencyMs: int(elapsed.Milliseconds()),
	})
}

// LLMTickerStage asks the LLM for tickers mentioned or implied in text.
// Service availability is probed once on first use; an unreachable
// service disables the stage for the extractor's lifetime.
type LLMTickerStage struct {
	llm       LLMService
	probeOnce sync.Once
	available bool
}

// Name returns the stage identifier
func (s *LLMTickerStage) Name() string { return StageLLM }

// Attempt extracts tickers via the LLM. Any failure along the way,
// from an unavailable service to malformed JSON, yields nil so the
// cascade falls through.
func (s *LLMTickerStage) Attempt(ctx context.Context, text string) []string {
	s.probeOnce.Do(func() {
		s.available = s.llm.Available(ctx)
	})
	if !s.available {
		return nil
	}

	prompt := buildTickerPrompt(truncateForPrompt(text))

	response, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		logger.Debug("llm ticker extraction failed", zap.Error(err))
		return nil
	}

	jsonStr, ok := llm.ExtractJSON(response)
	if !ok {
		return nil
	}

	var parsed struct {
		Tickers []string `json:"tickers"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return nil
	}

	return validateTickers(parsed.Tickers)
}

func buildTickerPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Extract all stock ticker symbols mentioned or implied in this financial news.\n")
	b.WriteString("Include companies mentioned directly (Apple, Tesla) and indirectly (CEO names, product names that imply companies).\n\n")
	b.WriteString("Return ONLY a JSON object with a list of ticker symbols. Use standard US stock tickers.\n\n")
	b.WriteString("Examples:\n")
	b.WriteString(`- "Apple announces new iPhone" -> {"tickers": ["AAPL"]}` + "\n")
	b.WriteString(`- "Tesla vs GM in EV race" -> {"tickers": ["TSLA", "GM"]}` + "\n")
	b.WriteString(`- "Tim Cook speech" -> {"tickers": ["AAPL"]}` + "\n")
	b.WriteString(`- "AWS reports growth" -> {"tickers": ["AMZN"]}` + "\n\n")
	b.WriteString("News: " + text + "\n\n")
	b.WriteString(`Response format: {"tickers": ["TICKER1", "TICKER2"]}` + "\n")
	b.WriteString("Return ONLY valid JSON, no other text.")
	return b.String()
}

// validateTickers keeps only plausible US ticker symbols:
// 1 to 5 alphabetic characters, uppercased
func validateTickers(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	valid := make([]string, 0, len(raw))

	for _, t := range raw {
		if len(t) < 1 || len(t) > 5 || !isAlpha(t) {
			continue
		}
		upper := strings.ToUpper(t)
		if seen[upper] {
			continue
		}
		seen[upper] = true
		valid = append(valid, upper)
	}

	return valid
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return len(s) > 0
}

// KeywordTickerStage matches known company names against the text
type KeywordTickerStage struct{}

// Name returns the stage identifier
func (s *KeywordTickerStage) Name() string { return StageKeyword }

// Attempt maps company name mentions to tickers. Returns nil when no
// known company appears, letting the default stage take over.
func (s *KeywordTickerStage) Attempt(ctx context.Context, text string) []string {
	textLower := strings.ToLower(text)

	found := make(map[string]bool)
	for name, ticker := range companyTickerMap {
		if strings.Contains(textLower, name) {
			found[ticker] = true
		}
	}

	if len(found) == 0 {
		return nil
	}

	tickers := make([]string, 0, len(found))
	for t := range found {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	return tickers
}

// DefaultTickerStage attributes unattributable news to the broad index
type DefaultTickerStage struct{}

// Name returns the stage identifier
func (s *DefaultTickerStage) Name() string { return StageDefault }

// Attempt always succeeds with the index ETF
func (s *DefaultTickerStage) Attempt(ctx context.Context, text string) []string {
	return []string{models.DefaultTicker}
}
