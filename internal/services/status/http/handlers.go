// Package http provides the status endpoints
package http

import (
	"net/http"
	"time"

	"leadsync/internal/core/version"
	perr "leadsync/internal/platform/errors"
	phttp "leadsync/internal/platform/net/http"
	"leadsync/internal/services/sync/domain"
)

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Reporter    domain.ReporterPort

	// Now defaults to time.Now
	Now func() time.Time
}

type handlers struct {
	deps Deps
}

// Register mounts the status routes
func Register(r phttp.Router, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}
	h := &handlers{deps: d}

	phttp.GetJSON(r, "/health", h.health)
	phttp.GetJSON(r, "/version", h.version)
	phttp.GetJSON(r, "/last-run", h.lastRun)
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool              `json:"ok"`
	Service string            `json:"service"`
	Started string            `json:"started"`
	Now     string            `json:"now"`
	Uptime  int64             `json:"uptime"`
	Build   version.BuildInfo `json:"build"`
	LastRun string            `json:"last_run_status,omitempty"`
}

func (h *handlers) health(_ *http.Request) (any, error) {
	now := h.deps.Now()
	out := HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     now.UTC().Format(time.RFC3339),
		Uptime:  int64(now.Sub(h.deps.StartedAt) / time.Second),
		Build:   version.Info(),
	}
	if h.deps.Reporter != nil {
		if rep, ok := h.deps.Reporter.LastReport(); ok {
			out.LastRun = string(rep.Status)
		}
	}
	return out, nil
}

func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

func (h *handlers) lastRun(_ *http.Request) (any, error) {
	if h.deps.Reporter == nil {
		return nil, perr.NotFoundf("no completed run yet")
	}
	rep, ok := h.deps.Reporter.LastReport()
	if !ok {
		return nil, perr.NotFoundf("no completed run yet")
	}
	return rep, nil
}
