package middleware_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"leadsync/internal/platform/logger"
	"leadsync/internal/platform/net/middleware"
	phttp "leadsync/internal/platform/net/http"
	"leadsync/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func TestAccessLog_PassThroughStatusAndBody(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hi"))
		_, _ = io.WriteString(w, "there")
	})
	rr := httptest.NewRecorder()
	middleware.AccessLogZerolog(middleware.AccessLogOptions{})(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rr.Code != http.StatusCreated || rr.Body.String() != "hithere" {
		t.Fatalf("code=%d body=%q", rr.Code, rr.Body.String())
	}
}

func TestAccessLog_CarriesRequestIDIntoLogger(t *testing.T) {
	var buf bytes.Buffer
	testkit.Serial(t)
	testkit.Swap(t, logger.Get(), zerolog.New(&buf))

	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		logger.C(r.Context()).Info().Msg("inside handler")
	})
	req := httptest.NewRequest(http.MethodGet, "/status/health", nil)
	req.Header.Set("X-Request-ID", "rid-42")
	chain(next, middleware.RequestID(), middleware.AccessLogZerolog(middleware.AccessLogOptions{})).ServeHTTP(httptest.NewRecorder(), req)

	testkit.MustContain(t, buf.String(), `"request_id":"rid-42"`)
	testkit.MustContain(t, buf.String(), "inside handler")
}

func TestRecoverJSON_EnvelopedPanic(t *testing.T) {
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "rid-7")
	rr := httptest.NewRecorder()
	chain(boom, middleware.RequestID(), middleware.RecoverJSON).ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d", rr.Code)
	}
	var env phttp.Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("body: %v", err)
	}
	if env.ErrorCode != "panic" || env.RequestID != "rid-7" || rr.Header().Get("X-Request-ID") != "rid-7" {
		t.Fatalf("env = %+v", env)
	}
}

func TestRecoverJSON_RepanicsAbort(t *testing.T) {
	abort := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic(http.ErrAbortHandler) })
	testkit.MustPanic(t, func() {
		middleware.RecoverJSON(abort).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	h := middleware.CORS(middleware.CORSOptions{AllowedOrigins: []string{"https://dash.example.com"}})(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	req := httptest.NewRequest(http.MethodGet, "/status/last-run", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.example.com" {
		t.Fatalf("allow-origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/status/last-run", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}

func TestDefaults_StackServes(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "ok") })
	rr := httptest.NewRecorder()
	chain(ok, middleware.Defaults()...).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK || rr.Header().Get("Cache-Control") == "" {
		t.Fatalf("code=%d headers=%v", rr.Code, rr.Header())
	}
}
