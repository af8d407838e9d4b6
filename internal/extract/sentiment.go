package extract

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MegaGuyRy/market-prediction/internal/adapters/classifier"
	"github.com/MegaGuyRy/market-prediction/internal/adapters/llm"
	"github.com/MegaGuyRy/market-prediction/pkg/logger"
	"github.com/MegaGuyRy/market-prediction/pkg/metrics"
)

// ClassifierService is the subset of the classifier client the stage needs
type ClassifierService interface {
	Classify(ctx context.Context, text string) (classifier.Scores, error)
}

// SentimentExtractor runs sentiment stages in priority order: the
// financial classifier is most accurate, the LLM understands context,
// and the keyword heuristic always produces a score.
type SentimentExtractor struct {
	stages        []SentimentStage
	metricsBuffer metrics.Buffer
}

// NewSentimentExtractor builds the standard cascade. Either service
// may be nil, the corresponding stage is then skipped.
func NewSentimentExtractor(classifierService ClassifierService, llmService LLMService, metricsBuffer metrics.Buffer) *SentimentExtractor {
	stages := []SentimentStage{}
	if classifierService != nil {
		stages = append(stages, &ClassifierSentimentStage{classifier: classifierService})
	}
	if llmService != nil {
		stages = append(stages, &LLMSentimentStage{llm: llmService})
	}
	stages = append(stages, &HeuristicSentimentStage{})

	return &SentimentExtractor{
		stages:        stages,
		metricsBuffer: metricsBuffer,
	}
}

// Extract returns a sentiment score in [-1, 1] for the given text
func (e *SentimentExtractor) Extract(ctx context.Context, text string) float64 {
	for _, stage := range e.stages {
		start := time.Now()
		score, ok := stage.Attempt(ctx, text)
		e.recordStage(stage.Name(), ok, time.Since(start))

		if ok {
			logger.Debug("sentiment extracted",
				zap.String("stage", stage.Name()),
				zap.Float64("score", score),
			)
			return score
		}
	}

	// Unreachable while HeuristicSentimentStage is last
	return 0.0
}

func (e *SentimentExtractor) recordStage(stage string, hit bool, elapsed time.Duration) {
	if e.metricsBuffer == nil {
		return
	}
	e.metricsBuffer.Add(&metrics.CascadeStageMetric{
		Timestamp: time.Now(),
		Extractor: "sentiment",
		Stage:     stage,
		Hit:       hit,
		LatencyMs: int(elapsed.Milliseconds()),
	})
}

// ClassifierSentimentStage scores sentiment with the financial
// classifier service. Polarity is P(positive) minus P(negative).
type ClassifierSentimentStage struct {
	classifier ClassifierService
}

// Name returns the stage identifier
func (s *ClassifierSentimentStage) Name() string { return StageClassifier }

// Attempt queries the classifier. Any error is a miss.
func (s *ClassifierSentimentStage) Attempt(ctx context.Context, text string) (float64, bool) {
	scores, err := s.classifier.Classify(ctx, truncateForPrompt(text))
	if err != nil {
		logger.Debug("classifier sentiment failed", zap.Error(err))
		return 0, false
	}

	return clamp(scores.Polarity(), -1, 1), true
}

// LLMSentimentStage asks the LLM for a bearish-to-bullish score.
// Like the ticker stage, availability is probed once on first use.
type LLMSentimentStage struct {
	llm       LLMService
	probeOnce sync.Once
	available bool
}

// Name returns the stage identifier
func (s *LLMSentimentStage) Name() string { return StageLLM }

// Attempt extracts a sentiment score via the LLM
func (s *LLMSentimentStage) Attempt(ctx context.Context, text string) (float64, bool) {
	s.probeOnce.Do(func() {
		s.available = s.llm.Available(ctx)
	})
	if !s.available {
		return 0, false
	}

	prompt := "Analyze the sentiment of this financial news.\n" +
		`Return ONLY a JSON object with "sentiment" score from -1 (very bearish) to +1 (very bullish).` + "\n\n" +
		"News: " + truncateForPrompt(text) + "\n\n" +
		`Response format: {"sentiment": <float>}`

	response, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		logger.Debug("llm sentiment extraction failed", zap.Error(err))
		return 0, false
	}

	jsonStr, ok := llm.ExtractJSON(response)
	if !ok {
		return 0, false
	}

	var parsed struct {
		Sentiment float64 `json:"sentiment"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return 0, false
	}

	return clamp(parsed.Sentiment, -1, 1), true
}

// HeuristicSentimentStage counts bullish and bearish keyword hits.
// Always produces a score, 0.0 when no keyword matches.
type HeuristicSentimentStage struct{}

// Name returns the stage identifier
func (s *HeuristicSentimentStage) Name() string { return StageKeyword }

// Attempt scores sentiment as the normalized difference of bullish and
// bearish keyword counts, clamped to [-1, 1]
func (s *HeuristicSentimentStage) Attempt(ctx context.Context, text string) (float64, bool) {
	textLower := strings.ToLower(text)

	bullish := 0
	for _, kw := range bullishKeywords {
		if strings.Contains(textLower, kw) {
			bullish++
		}
	}

	bearish := 0
	for _, kw := range bearishKeywords {
		if strings.Contains(textLower, kw) {
			bearish++
		}
	}

	total := bullish + bearish
	if total == 0 {
		return 0.0, true
	}

	score := float64(bullish-bearish) / (float64(total) * 0.5)
	return clamp(score, -1, 1), true
}
