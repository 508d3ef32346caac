// Package service contains the sync workflows
package service

import (
	"sync"
	"time"

	"leadsync/internal/core/paginate"
	"leadsync/internal/modkit"
	"leadsync/internal/platform/logger"
	"leadsync/internal/services/sync/domain"

	"github.com/google/uuid"
)

// Service defines the sync service contract
type Service interface {
	domain.RunnerPort
	domain.ReporterPort
	domain.SchedulerPort
}

// Config carries runtime knobs for a run
type Config struct {
	// Concurrency is how many metrics are aggregated at once; pages are always sequential
	Concurrency int
	DryRun      bool
	// HistoryTab receives one row per run when set
	HistoryTab string
	// Schedule is a 5-field cron spec or descriptor for Run
	Schedule string
	Limits   paginate.Limits
}

// Svc implements the sync service
type Svc struct {
	config  Config
	catalog domain.CatalogPort
	agg     *paginate.Aggregator
	cells   domain.CellWriter
	history domain.RowAppender
	log     logger.Logger
	now     func() time.Time
	newID   func() string

	mu   sync.RWMutex
	last *domain.Report
}

// New constructs a sync service. cells and history may be nil for a dry run
func New(deps modkit.Deps, cfg Config, catalog domain.CatalogPort, src paginate.Searcher, cells domain.CellWriter, history domain.RowAppender) *Svc {
	if catalog == nil || src == nil {
		panic("sync.Service requires a catalog and a searcher")
	}
	if cells == nil && !cfg.DryRun {
		panic("sync.Service requires a cell writer unless dry run")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Svc{
		config:  cfg,
		catalog: catalog,
		agg:     paginate.New(src, cfg.Limits),
		cells:   cells,
		history: history,
		log:     deps.Component("sync"),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Config returns the effective configuration
func (s *Svc) Config() Config { return s.config }

// LastReport returns the most recent completed run
func (s *Svc) LastReport() (domain.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return domain.Report{}, false
	}
	return *s.last, true
}

func (s *Svc) remember(r domain.Report) {
	s.mu.Lock()
	s.last = &r
	s.mu.Unlock()
}

var _ Service = (*Svc)(nil)
