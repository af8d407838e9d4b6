package metrics

import "time"

// PipelineRunMetric records one batch run of the news pipeline
type PipelineRunMetric struct {
	Timestamp    time.Time
	ItemsFetched int
	ItemsParsed  int
	ItemsStored  int
	Candidates   int
	DurationMs   int
}

func (m *PipelineRunMetric) TableName() string {
	return "pipeline_run_metrics"
}

func (m *PipelineRunMetric) Values() []interface{} {
	return []interface{}{
		m.Timestamp,
		m.ItemsFetched,
		m.ItemsParsed,
		m.ItemsStored,
		m.Candidates,
		m.DurationMs,
	}
}

// CascadeStageMetric records which stage of an extraction cascade produced
// the result for one item. Used to watch fallback rates per extractor.
type CascadeStageMetric struct {
	Timestamp time.Time
	Extractor string // "ticker" or "sentiment"
	Stage     string // "llm", "classifier", "keyword", "default"
	Hit       bool
	LatencyMs int
}

func (m *CascadeStageMetric) TableName() string {
	return "cascade_stage_metrics"
}

func (m *CascadeStageMetric) Values() []interface{} {
	return []interface{}{
		m.Timestamp,
		m.Extractor,
		m.Stage,
		m.Hit,
		m.LatencyMs,
	}
}

// EmbeddingDeduplicationMetric tracks embedding store hits/misses
type EmbeddingDeduplicationMetric struct {
	Timestamp    time.Time
	TextHash     string
	Model        string
	TextLength   int
	CostSavedUSD float64
	CacheHit     bool
}

func (m *EmbeddingDeduplicationMetric) TableName() string {
	return "embedding_deduplication_metrics"
}

func (m *EmbeddingDeduplicationMetric) Values() []interface{} {
	return []interface{}{
		m.Timestamp,
		m.TextHash,
		m.TextLength,
		m.Model,
		m.CacheHit,
		m.CostSavedUSD,
	}
}
