package extract

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/MegaGuyRy/market-prediction/internal/adapters/classifier"
)

type fakeClassifier struct {
	scores classifier.Scores
	err    error
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (classifier.Scores, error) {
	return f.scores, f.err
}

func TestHeuristicSentimentStage(t *testing.T) {
	stage := &HeuristicSentimentStage{}
	ctx := context.Background()

	tests := []struct {
		name string
		text string
		want float64
	}{
		{
			name: "strongly bullish",
			text: "Shares surge after record profit and analyst upgrade",
			want: 1.0,
		},
		{
			name: "strongly bearish",
			text: "Stock crash follows lawsuit and regulatory investigation",
			want: -1.0,
		},
		{
			name: "no keywords",
			text: "Company holds annual shareholder meeting",
			want: 0.0,
		},
		{
			name: "balanced keywords",
			text: "Rally fades into decline",
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := stage.Attempt(ctx, tt.text)
			if !ok {
				t.Fatal("heuristic stage must always produce a score")
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Attempt(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestHeuristicSentimentBounds(t *testing.T) {
	stage := &HeuristicSentimentStage{}
	ctx := context.Background()

	// Many one-sided keywords must still clamp to 1
	text := "surge rally gain strong upgrade jump soar breakthrough record profit"
	got, _ := stage.Attempt(ctx, text)
	if got < -1 || got > 1 {
		t.Errorf("score %v outside [-1, 1]", got)
	}
	if got != 1.0 {
		t.Errorf("one-sided bullish text = %v, want 1.0", got)
	}
}

func TestClassifierSentimentStage(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cls     *fakeClassifier
		want    float64
		wantHit bool
	}{
		{
			name:    "positive dominates",
			cls:     &fakeClassifier{scores: classifier.Scores{Positive: 0.8, Negative: 0.1, Neutral: 0.1}},
			want:    0.7,
			wantHit: true,
		},
		{
			name:    "negative dominates",
			cls:     &fakeClassifier{scores: classifier.Scores{Positive: 0.05, Negative: 0.9, Neutral: 0.05}},
			want:    -0.85,
			wantHit: true,
		},
		{
			name:    "service error is a miss",
			cls:     &fakeClassifier{err: errors.New("connection refused")},
			wantHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage := &ClassifierSentimentStage{classifier: tt.cls}
			got, ok := stage.Attempt(ctx, "some text")
			if ok != tt.wantHit {
				t.Fatalf("hit = %v, want %v", ok, tt.wantHit)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Attempt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLLMSentimentStage(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		llm     *fakeLLM
		want    float64
		wantHit bool
	}{
		{
			name:    "valid score",
			llm:     &fakeLLM{available: true, response: `{"sentiment": 0.6}`},
			want:    0.6,
			wantHit: true,
		},
		{
			name:    "out of range clamped high",
			llm:     &fakeLLM{available: true, response: `{"sentiment": 3.5}`},
			want:    1.0,
			wantHit: true,
		},
		{
			name:    "out of range clamped low",
			llm:     &fakeLLM{available: true, response: `{"sentiment": -2}`},
			want:    -1.0,
			wantHit: true,
		},
		{
			name:    "unavailable",
			llm:     &fakeLLM{available: false},
			wantHit: false,
		},
		{
			name:    "malformed response",
			llm:     &fakeLLM{available: true, response: "the sentiment is positive"},
			wantHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage := &LLMSentimentStage{llm: tt.llm}
			got, ok := stage.Attempt(ctx, "some text")
			if ok != tt.wantHit {
				t.Fatalf("hit = %v, want %v", ok, tt.wantHit)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Attempt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSentimentExtractorCascade(t *testing.T) {
	ctx := context.Background()

	t.Run("classifier wins", func(t *testing.T) {
		e := NewSentimentExtractor(
			&fakeClassifier{scores: classifier.Scores{Positive: 0.9, Negative: 0.1}},
			&fakeLLM{available: true, response: `{"sentiment": -1}`},
			nil,
		)
		got := e.Extract(ctx, "surge rally")
		if math.Abs(got-0.8) > 1e-9 {
			t.Errorf("Extract() = %v, want 0.8", got)
		}
	})

	t.Run("classifier error falls to llm", func(t *testing.T) {
		e := NewSentimentExtractor(
			&fakeClassifier{err: errors.New("down")},
			&fakeLLM{available: true, response: `{"sentiment": -0.4}`},
			nil,
		)
		got := e.Extract(ctx, "some text")
		if math.Abs(got-(-0.4)) > 1e-9 {
			t.Errorf("Extract() = %v, want -0.4", got)
		}
	})

	t.Run("all services down falls to heuristic", func(t *testing.T) {
		e := NewSentimentExtractor(
			&fakeClassifier{err: errors.New("down")},
			&fakeLLM{available: false},
			nil,
		)
		got := e.Extract(ctx, "shares surge on record profit")
		if got <= 0 {
			t.Errorf("Extract() = %v, want positive", got)
		}
	})

	t.Run("nothing configured still scores", func(t *testing.T) {
		e := NewSentimentExtractor(nil, nil, nil)
		got := e.Extract(ctx, "no financial keywords here at all")
		if got != 0.0 {
			t.Errorf("Extract() = %v, want 0.0", got)
		}
	})
}
