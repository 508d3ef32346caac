// Package module wires the status endpoints into a small http server
package module

import (
	"context"
	"net"
	"net/http"
	"time"

	"leadsync/internal/modkit"
	phttp "leadsync/internal/platform/net/http"
	"leadsync/internal/platform/net/middleware"
	str "leadsync/internal/platform/strings"
	statushttp "leadsync/internal/services/status/http"
	"leadsync/internal/services/sync/domain"

	"github.com/go-chi/chi/v5"
)

// Prefix is where the status routes are mounted
const Prefix = "/status"

// Ports defines status module ports exposed via the registry
type Ports struct {
	Server *phttp.Server
}

// Module implements the modkit module contract for the status endpoints
type Module struct {
	deps      modkit.Deps
	opts      Options
	reporter  domain.ReporterPort
	mws       []func(http.Handler) http.Handler
	startedAt time.Time
	server    *phttp.Server
}

// New constructs the status module over the sync reporter.
// Non-empty override fields replace the env values
func New(deps modkit.Deps, reporter domain.ReporterPort, overrides Options) *Module {
	opts := FromConfig(deps.Cfg)
	if overrides.Addr != "" {
		opts.Addr = overrides.Addr
	}
	if len(overrides.CORSOrigins) > 0 {
		opts.CORSOrigins = overrides.CORSOrigins
	}

	m := &Module{
		deps:      deps,
		opts:      opts,
		reporter:  reporter,
		startedAt: time.Now(),
	}
	if len(opts.CORSOrigins) > 0 {
		m.mws = append(m.mws, middleware.CORS(middleware.CORSOptions{AllowedOrigins: opts.CORSOrigins}))
	}

	m.server = phttp.NewServer(opts.Addr, func(mux *chi.Mux) {
		mux.Use(middleware.Defaults()...)
	})
	m.MountRoutes(m.server.Router())
	return m
}

// MountRoutes mounts the status routes under Prefix
func (m *Module) MountRoutes(r phttp.Router) {
	r.Route(str.MustPrefix(Prefix), func(rr phttp.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		statushttp.Register(rr, statushttp.Deps{
			ServiceName: "leadsync",
			StartedAt:   m.startedAt,
			Reporter:    m.reporter,
		})
	})
}

// Name implements the modkit module contract
func (m *Module) Name() string { return "status" }

// Ports implements the modkit module contract
func (m *Module) Ports() any { return Ports{Server: m.server} }

// Options returns the resolved options
func (m *Module) Options() Options { return m.opts }

// Handler returns the root handler, for tests
func (m *Module) Handler() http.Handler { return m.server.Handler() }

// Run serves until ctx is done. A disabled module blocks on ctx and returns nil
func (m *Module) Run(ctx context.Context) error {
	if !m.opts.Enabled() {
		<-ctx.Done()
		return nil
	}
	log := m.deps.Component("status")
	log.Info().Str("addr", m.opts.Addr).Msg("status server starting")
	return m.server.Run(ctx)
}

// Serve serves on ln until ctx is done
func (m *Module) Serve(ctx context.Context, ln net.Listener) error {
	return m.server.Serve(ctx, ln)
}
