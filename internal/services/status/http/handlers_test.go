package http

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	perr "leadsync/internal/platform/errors"
	phttp "leadsync/internal/platform/net/http"
	"leadsync/internal/services/sync/domain"

	"github.com/go-chi/chi/v5"
)

type fakeReporter struct {
	rep domain.Report
	ok  bool
}

func (f fakeReporter) LastReport() (domain.Report, bool) { return f.rep, f.ok }

type envelope struct {
	StatusCode int             `json:"status_code"`
	ErrorCode  string          `json:"error_code"`
	Data       json.RawMessage `json:"data"`
}

func serve(t *testing.T, d Deps, path string) (int, envelope) {
	t.Helper()
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), d)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, path, nil))

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return rec.Code, env
}

func TestHealth(t *testing.T) {
	started := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	d := Deps{
		ServiceName: "leadsync",
		StartedAt:   started,
		Now:         func() time.Time { return started.Add(90 * time.Second) },
		Reporter:    fakeReporter{rep: domain.Report{Status: domain.StatusPartial}, ok: true},
	}
	code, env := serve(t, d, "/health")
	if code != stdhttp.StatusOK {
		t.Fatalf("status = %d", code)
	}
	var h HealthResponse
	if err := json.Unmarshal(env.Data, &h); err != nil {
		t.Fatal(err)
	}
	if !h.OK || h.Service != "leadsync" || h.Uptime != 90 || h.LastRun != "partial" {
		t.Fatalf("health = %+v", h)
	}
	if h.Started != "2026-10-01T12:00:00Z" || h.Build.Service != "leadsync" {
		t.Fatalf("health = %+v", h)
	}
}

func TestLastRun_NotFoundBeforeFirstRun(t *testing.T) {
	for name, d := range map[string]Deps{
		"no reporter": {},
		"no run yet":  {Reporter: fakeReporter{}},
	} {
		t.Run(name, func(t *testing.T) {
			code, env := serve(t, d, "/last-run")
			if code != stdhttp.StatusNotFound {
				t.Fatalf("status = %d", code)
			}
			if env.ErrorCode != perr.ErrorCodeNotFound.String() {
				t.Fatalf("error_code = %q", env.ErrorCode)
			}
		})
	}
}

func TestLastRun_ReturnsReport(t *testing.T) {
	rep := domain.Report{
		RunID:  "run-1",
		Status: domain.StatusOK,
		Metrics: []domain.MetricResult{
			{Name: "new_leads", Cell: "B2", Outcome: domain.OutcomeOK, Count: 250, Pages: 2},
		},
	}
	code, env := serve(t, Deps{Reporter: fakeReporter{rep: rep, ok: true}}, "/last-run")
	if code != stdhttp.StatusOK {
		t.Fatalf("status = %d", code)
	}
	var got domain.Report
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatal(err)
	}
	if got.RunID != "run-1" || len(got.Metrics) != 1 || got.Metrics[0].Count != 250 {
		t.Fatalf("report = %+v", got)
	}
}

func TestVersion(t *testing.T) {
	code, env := serve(t, Deps{}, "/version")
	if code != stdhttp.StatusOK {
		t.Fatalf("status = %d", code)
	}
	var bi struct {
		Service string `json:"service"`
	}
	if err := json.Unmarshal(env.Data, &bi); err != nil || bi.Service != "leadsync" {
		t.Fatalf("version = %s (%v)", env.Data, err)
	}
}
