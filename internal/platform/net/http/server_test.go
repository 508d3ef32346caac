package http_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	perr "leadsync/internal/platform/errors"
	phttp "leadsync/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func TestServer_RoutesGroupsAndFallbacks(t *testing.T) {
	optCalled := false
	srv := phttp.NewServer("127.0.0.1:0", func(*chi.Mux) { optCalled = true })
	if !optCalled {
		t.Fatal("expected option hook to run")
	}

	r := srv.Router()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-MW", "yes")
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/status", func(sr phttp.Router) {
		phttp.GetJSON(sr, "/health", func(*http.Request) (any, error) { return "ok", nil })
		sr.Group(func(g phttp.Router) {
			g.Post("/poke", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) })
		})
	})
	r.Handle("/raw", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "raw") }))

	cases := []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/status/health", http.StatusOK},
		{http.MethodPost, "/status/poke", http.StatusAccepted},
		{http.MethodGet, "/raw", http.StatusOK},
		{http.MethodGet, "/missing", http.StatusNotFound},
		{http.MethodPost, "/status/health", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.status {
			t.Fatalf("%s %s = %d, want %d", tc.method, tc.path, rec.Code, tc.status)
		}
		if rec.Header().Get("X-MW") != "yes" && tc.status != http.StatusNotFound && tc.status != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: middleware not applied", tc.method, tc.path)
		}
	}
	if srv.Addr() != "127.0.0.1:0" || r.Mux() == nil {
		t.Fatal("accessors")
	}
}

func TestServer_ServeAndShutdown(t *testing.T) {
	srv := phttp.NewServer("127.0.0.1:0")
	phttp.GetJSON(srv.Router(), "/ping", func(*http.Request) (any, error) { return "pong", nil })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_RunBadAddr(t *testing.T) {
	err := phttp.NewServer("not-an-addr").Run(context.Background())
	if !perr.IsCode(err, perr.ErrorCodeConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}
