// Package store persists completed simulation runs: a summary row per run
// and the full trade ledger, for later win/loss analysis across runs.
package store

import (
	"github.com/oturner/hindsight/internal/portfolio"
)

// RunRecord is one completed simulation run.
type RunRecord struct {
	ID           string
	Strategy     string
	StartDate    string
	EndDate      string
	FinalBalance float64
	TotalReturn  float64
	AnnualReturn float64
	WinRate      float64
	Trades       []portfolio.Trade
}

// Recorder persists run records for analysis.
type Recorder interface {
	RecordRun(run *RunRecord) error
	Close() error
}

// NoopRecorder discards everything. Used when no database is configured.
type NoopRecorder struct{}

func (NoopRecorder) RecordRun(*RunRecord) error { return nil }
func (NoopRecorder) Close() error               { return nil }
