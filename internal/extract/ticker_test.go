package extract

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"

	"github.com/MegaGuyRy/market-prediction/pkg/logger"
	"github.com/MegaGuyRy/market-prediction/pkg/metrics"
)

func TestMain(m *testing.M) {
	if logger.Log == nil {
		if err := logger.Init("error", ""); err != nil {
			panic(err)
		}
	}
	os.Exit(m.Run())
}

type fakeLLM struct {
	available bool
	response  string
	err       error
}

func (f *fakeLLM) Available(ctx context.Context) bool { return f.available }

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return f.response, f.err
}

func TestKeywordTickerStage(t *testing.T) {
	stage := &KeywordTickerStage{}
	ctx := context.Background()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "direct company mention",
			text: "Apple announces record quarterly earnings",
			want: []string{"AAPL"},
		},
		{
			name: "indirect reference via product",
			text: "AWS reports record cloud growth",
			want: []string{"AMZN"},
		},
		{
			name: "multiple companies",
			text: "Tesla and Ford compete in the EV market",
			want: []string{"F", "TSLA"},
		},
		{
			name: "case insensitive",
			text: "MICROSOFT beats expectations",
			want: []string{"MSFT"},
		},
		{
			name: "no known company",
			text: "Markets closed mixed on Friday",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stage.Attempt(ctx, tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Attempt(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestValidateTickers(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{
			name: "valid tickers uppercased",
			raw:  []string{"aapl", "MSFT"},
			want: []string{"AAPL", "MSFT"},
		},
		{
			name: "too long rejected",
			raw:  []string{"TOOLONG", "GM"},
			want: []string{"GM"},
		},
		{
			name: "non alphabetic rejected",
			raw:  []string{"BRK.B", "A1", "TSLA"},
			want: []string{"TSLA"},
		},
		{
			name: "empty string rejected",
			raw:  []string{"", "F"},
			want: []string{"F"},
		},
		{
			name: "duplicates collapsed",
			raw:  []string{"AAPL", "aapl"},
			want: []string{"AAPL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validateTickers(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("validateTickers(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestLLMTickerStage(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		llm  *fakeLLM
		want []string
	}{
		{
			name: "service unavailable",
			llm:  &fakeLLM{available: false},
			want: nil,
		},
		{
			name: "generation error",
			llm:  &fakeLLM{available: true, err: errors.New("timeout")},
			want: nil,
		},
		{
			name: "clean json response",
			llm:  &fakeLLM{available: true, response: `{"tickers": ["AAPL", "MSFT"]}`},
			want: []string{"AAPL", "MSFT"},
		},
		{
			name: "json wrapped in prose",
			llm:  &fakeLLM{available: true, response: "Here are the tickers:\n```json\n{\"tickers\": [\"TSLA\"]}\n```"},
			want: []string{"TSLA"},
		},
		{
			name: "malformed json",
			llm:  &fakeLLM{available: true, response: `{"tickers": [`},
			want: nil,
		},
		{
			name: "empty ticker list",
			llm:  &fakeLLM{available: true, response: `{"tickers": []}`},
			want: nil,
		},
		{
			name: "all tickers invalid",
			llm:  &fakeLLM{available: true, response: `{"tickers": ["TOOLONG1", "123"]}`},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage := &LLMTickerStage{llm: tt.llm}
			got := stage.Attempt(ctx, "some financial news")
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Attempt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTickerExtractorCascade(t *testing.T) {
	ctx := context.Background()

	t.Run("llm result wins", func(t *testing.T) {
		e := NewTickerExtractor(&fakeLLM{available: true, response: `{"tickers": ["NVDA"]}`}, nil)
		got := e.Extract(ctx, "Apple news that should be shadowed")
		if !reflect.DeepEqual(got, []string{"NVDA"}) {
			t.Errorf("Extract() = %v, want [NVDA]", got)
		}
	})

	t.Run("falls through to keywords", func(t *testing.T) {
		e := NewTickerExtractor(&fakeLLM{available: false}, nil)
		got := e.Extract(ctx, "Tesla production update")
		if !reflect.DeepEqual(got, []string{"TSLA"}) {
			t.Errorf("Extract() = %v, want [TSLA]", got)
		}
	})

	t.Run("falls through to default", func(t *testing.T) {
		e := NewTickerExtractor(&fakeLLM{available: false}, nil)
		got := e.Extract(ctx, "General market commentary")
		if !reflect.DeepEqual(got, []string{"SPY"}) {
			t.Errorf("Extract() = %v, want [SPY]", got)
		}
	})

	t.Run("no llm configured", func(t *testing.T) {
		e := NewTickerExtractor(nil, nil)
		got := e.Extract(ctx, "Nothing recognizable here")
		if !reflect.DeepEqual(got, []string{"SPY"}) {
			t.Errorf("Extract() = %v, want [SPY]", got)
		}
	})
}

type captureBuffer struct {
	added []metrics.Metric
}

func (b *captureBuffer) Add(metric metrics.Metric) error {
	b.added = append(b.added, metric)
	return nil
}

func (b *captureBuffer) Flush(ctx context.Context) error { return nil }
func (b *captureBuffer) Size() int                       { return len(b.added) }
func (b *captureBuffer) Close(ctx context.Context) error { return nil }

func TestTickerExtractorRecordsStageMetrics(t *testing.T) {
	buf := &captureBuffer{}
	e := NewTickerExtractor(&fakeLLM{available: false}, buf)

	e.Extract(context.Background(), "Tesla production update")

	// llm miss, then keyword hit
	if len(buf.added) != 2 {
		t.Fatalf("recorded %d stage metrics, want 2", len(buf.added))
	}

	first, ok := buf.added[0].(*metrics.CascadeStageMetric)
	if !ok {
		t.Fatalf("metric type = %T, want *metrics.CascadeStageMetric", buf.added[0])
	}
	if first.Extractor != "ticker" || first.Stage != StageLLM || first.Hit {
		t.Errorf("first metric = %+v, want ticker/llm miss", first)
	}
	if first.LatencyMs < 0 {
		t.Errorf("LatencyMs = %d, want non-negative", first.LatencyMs)
	}

	second := buf.added[1].(*metrics.CascadeStageMetric)
	if second.Stage != StageKeyword || !second.Hit {
		t.Errorf("second metric = %+v, want keyword hit", second)
	}
}
