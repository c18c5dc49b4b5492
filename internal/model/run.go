package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RunStatus is the recorded outcome of one pipeline invocation.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusFailure RunStatus = "failure"
)

// RunState tracks a pipeline invocation through its lifecycle. A run moves
// strictly forward through these states; Failed is terminal and reachable
// from any step.
type RunState string

const (
	StateReceived   RunState = "received"
	StateParsed     RunState = "parsed"
	StateAggregated RunState = "aggregated"
	StateRendered   RunState = "rendered"
	StateLogged     RunState = "logged"
	StateCompleted  RunState = "completed"
	StateFailed     RunState = "failed"
)

// StageStatus is the outcome of a single pipeline stage.
type StageStatus string

const (
	StageStatusComplete StageStatus = "complete"
	StageStatusFailed   StageStatus = "failed"
	StageStatusSkipped  StageStatus = "skipped"
)

// StageResult records the outcome of one pipeline stage.
type StageResult struct {
	Name     string      `json:"name"`
	Status   StageStatus `json:"status"`
	Duration int64       `json:"duration_ms"`
	Error    string      `json:"error,omitempty"`
}

// RunMetadata is supplied by the caller for one invocation. ReportID is
// optional; the pipeline generates one when absent.
type RunMetadata struct {
	Project  string `json:"project"`
	Engineer string `json:"engineer"`
	ReportID string `json:"report_id,omitempty"`
}

// NewReportID builds a report identifier from the given time plus a short
// random suffix, e.g. "RPT-20250614-093012-a41f2c". The suffix keeps ids
// unique when two runs share a wall-clock second.
func NewReportID(now time.Time) string {
	u := uuid.New()
	return fmt.Sprintf("RPT-%s-%x", now.UTC().Format("20060102-150405"), u[:3])
}

// Aggregate is the derived summary over one run's parsed rows. It is never
// persisted on its own; the renderer embeds it and the log entry keeps only
// the component count.
type Aggregate struct {
	ComponentCount    int                     `json:"component_count"`
	TotalCost         decimal.Decimal         `json:"total_cost"`
	StatusBreakdown   map[ComponentStatus]int `json:"status_breakdown"`
	CategoryBreakdown map[string]int          `json:"category_breakdown,omitempty"`
}

// LogEntry is one immutable run-log record. Entries are appended exactly
// once per pipeline invocation and never mutated or deleted.
type LogEntry struct {
	ReportID       string    `json:"report_id"`
	Project        string    `json:"project"`
	Engineer       string    `json:"engineer"`
	ComponentCount int       `json:"component_count"`
	Status         RunStatus `json:"status"`
	GeneratedAt    time.Time `json:"generated_at"`
	OutputPath     string    `json:"output_path"`
}
