package models

// Candidate is a ticker proposed for downstream analysis, tagged with the
// strategy that proposed it and a priority in [0,1]. Recomputed each cycle,
// never persisted.
type Candidate struct {
	Ticker   string  `json:"ticker"`
	Reason   string  `json:"reason"`
	Source   string  `json:"source"`
	Priority float64 `json:"priority"`
}
