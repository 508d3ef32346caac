// Package domain defines the public ports for the sync service
package domain

import "context"

// CellWriter overwrites a single cell on the metrics tab
type CellWriter interface {
	WriteCell(ctx context.Context, cell string, value any) error
}

// RowAppender appends one row to the named tab
type RowAppender interface {
	AppendRow(ctx context.Context, tab string, values []any) error
}

// RunnerPort performs one complete sync run
type RunnerPort interface {
	RunOnce(ctx context.Context) (Report, error)
}

// ReporterPort exposes the most recent completed run
type ReporterPort interface {
	LastReport() (Report, bool)
}

// SchedulerPort runs sync on a schedule until ctx is done
type SchedulerPort interface {
	Run(ctx context.Context) error
}

// CatalogPort lists the metrics a run will process
type CatalogPort interface {
	Metrics() []Metric
}
