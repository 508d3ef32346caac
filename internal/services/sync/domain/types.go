package domain

import (
	"time"

	"leadsync/internal/core/paginate"
	perr "leadsync/internal/platform/errors"
)

// Metric is one named lead count bound to one spreadsheet cell
type Metric struct {
	Name  string
	Cell  string
	Query paginate.Query
}

// Outcome is what happened to a single metric in a run
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeQueryFailed Outcome = "query_failed"
	OutcomeWriteFailed Outcome = "write_failed"
	// OutcomeSkipped is a dry run; the count was computed but not written
	OutcomeSkipped Outcome = "skipped"
)

// Succeeded reports whether the count was obtained (and written unless dry run)
func (o Outcome) Succeeded() bool { return o == OutcomeOK || o == OutcomeSkipped }

// Status is the overall verdict of a run
type Status string

const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// MetricResult records one metric's outcome. Count is only meaningful when the outcome succeeded
type MetricResult struct {
	Name      string        `json:"name"`
	Cell      string        `json:"cell"`
	Outcome   Outcome       `json:"outcome"`
	Count     int           `json:"count"`
	Pages     int           `json:"pages"`
	ElapsedMS int64         `json:"elapsed_ms"`
	Error     *perr.Wire    `json:"error,omitempty"`
	// Op names the layer that failed, e.g. paginate.count or sheets.update
	Op        string        `json:"op,omitempty"`
	Elapsed   time.Duration `json:"-"`
}

// Report is the result of one sync run
type Report struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Status     Status         `json:"status"`
	DryRun     bool           `json:"dry_run"`
	Metrics    []MetricResult `json:"metrics"`
	// History is set when the run-history row could not be appended
	History *perr.Wire `json:"history_error,omitempty"`
}

// Summarize derives the overall status from the per-metric outcomes and the history append
func (r Report) Summarize() Status {
	ok := 0
	for _, m := range r.Metrics {
		if m.Outcome.Succeeded() {
			ok++
		}
	}
	switch {
	case len(r.Metrics) > 0 && ok == 0:
		return StatusFailed
	case ok < len(r.Metrics) || r.History != nil:
		return StatusPartial
	default:
		return StatusOK
	}
}

// Counts returns metric name to count for every metric that succeeded
func (r Report) Counts() map[string]int {
	out := make(map[string]int, len(r.Metrics))
	for _, m := range r.Metrics {
		if m.Outcome.Succeeded() {
			out[m.Name] = m.Count
		}
	}
	return out
}
