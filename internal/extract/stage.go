package extract

import (
	"context"
	"unicode/utf8"
)

// Stage names reported in cascade metrics
const (
	StageClassifier = "classifier"
	StageLLM        = "llm"
	StageKeyword    = "keyword"
	StageDefault    = "default"
)

// TickerStage attempts to extract ticker symbols from text.
// A nil or empty result means the stage produced nothing and the
// cascade moves to the next stage. Stages never return errors, a
// failure is just a miss.
type TickerStage interface {
	Name() string
	Attempt(ctx context.Context, text string) []string
}

// SentimentStage attempts to score sentiment in [-1, 1].
// The bool reports whether the stage produced a usable score.
type SentimentStage interface {
	Name() string
	Attempt(ctx context.Context, text string) (float64, bool)
}

// maxPromptText bounds text sent to the LLM to stay within token limits
const maxPromptText = 1000

// truncateForPrompt cuts at a rune boundary so prompts never carry a
// split multi-byte character.
func truncateForPrompt(text string) string {
	if len(text) <= maxPromptText {
		return text
	}
	cut := maxPromptText
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
