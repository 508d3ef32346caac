// Package module wires the sync service and exposes its ports
package module

import (
	"context"

	"leadsync/internal/adapters/crm/closecrm"
	"leadsync/internal/adapters/sheets"
	"leadsync/internal/core/paginate"
	"leadsync/internal/modkit"
	perr "leadsync/internal/platform/errors"
	phttp "leadsync/internal/platform/net/http"
	"leadsync/internal/services/sync/catalog"
	"leadsync/internal/services/sync/domain"
	"leadsync/internal/services/sync/service"
)

// Module defines the sync module
type Module struct {
	deps    modkit.Deps
	opts    Options
	catalog catalog.Catalog
	svc     *service.Svc
	ports   Ports
}

// Load resolves options from config and overrides, validates them and loads the catalog.
// It makes no remote calls
func Load(deps modkit.Deps, overrides Options) (Options, catalog.Catalog, error) {
	opts := FromConfig(deps.Cfg).Merge(overrides)
	if err := opts.Validate(); err != nil {
		return opts, catalog.Catalog{}, perr.WithOp(err, "sync.options")
	}
	if _, err := service.ParseSchedule(opts.Schedule); err != nil {
		return opts, catalog.Catalog{}, perr.WithField(err, "LEADSYNC_SCHEDULE")
	}
	cat, err := catalog.Load(opts.MetricsFile)
	if err != nil {
		return opts, catalog.Catalog{}, err
	}
	return opts, cat, nil
}

// New constructs the sync module with its Close searcher and sheet writer
func New(ctx context.Context, deps modkit.Deps, overrides Options) (*Module, error) {
	opts, cat, err := Load(deps, overrides)
	if err != nil {
		return nil, err
	}

	client := closecrm.NewClient(closecrm.Options{
		BaseURL: opts.CloseURL,
		APIKey:  opts.CloseAPIKey,
		Timeout: opts.CloseTimeout,
		RPS:     opts.CloseRPS,
		Burst:   opts.CloseBurst,
	})
	src := closecrm.NewSearcher(client)

	var (
		cells   domain.CellWriter
		history domain.RowAppender
	)
	if !opts.DryRun {
		w, err := sheets.New(ctx, sheets.Options{
			SpreadsheetID: opts.SheetID,
			Tab:           opts.SheetTab,
			Credentials:   opts.Credentials,
			Endpoint:      opts.SheetEndpoint,
		})
		if err != nil {
			return nil, err
		}
		cells, history = w, w
	}

	limits := src.Limits()
	limits.MaxPages = opts.MaxPages
	limits.MaxRecords = opts.MaxRecords

	return NewWith(deps, opts, cat, src, limits, cells, history), nil
}

// NewWith builds the module over caller supplied adapters
func NewWith(deps modkit.Deps, opts Options, cat catalog.Catalog, src paginate.Searcher, limits paginate.Limits, cells domain.CellWriter, history domain.RowAppender) *Module {
	svc := service.New(deps, service.Config{
		Concurrency: opts.Concurrency,
		DryRun:      opts.DryRun,
		HistoryTab:  opts.HistoryTab,
		Schedule:    opts.Schedule,
		Limits:      limits,
	}, cat, src, cells, history)

	m := &Module{deps: deps, opts: opts, catalog: cat, svc: svc}
	m.ports = Ports{
		Runner:    svc,
		Reporter:  svc,
		Scheduler: svc,
		Catalog:   cat,
	}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "sync" }

// Ports returns the module ports (Runner, Reporter, Scheduler, Catalog)
func (m *Module) Ports() any { return m.ports }

// Options returns the resolved options
func (m *Module) Options() Options { return m.opts }

// MountRoutes mounts nothing; run state is served by the status module
func (m *Module) MountRoutes(_ phttp.Router) {}
