package closecrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"leadsync/internal/core/paginate"
	perr "leadsync/internal/platform/errors"
	"leadsync/internal/platform/testkit"
)

const filter = `{"query":{"type":"and","queries":[{"type":"object_type","object_type":"lead"}]}}`

func TestSearchBody_Cursor(t *testing.T) {
	q := paginate.Query{Filter: json.RawMessage(filter), Strategy: paginate.StrategyCursor}

	first, err := SearchBody(q.Request(100, paginate.PageState{}))
	if err != nil {
		t.Fatal(err)
	}
	testkit.MustJSONEq(t, first, []byte(`{"query":{"type":"and","queries":[{"type":"object_type","object_type":"lead"}]},"_limit":100,"_fields":{"lead":["id"]}}`))

	next, err := SearchBody(q.Request(100, paginate.PageState{Cursor: "abc"}))
	if err != nil {
		t.Fatal(err)
	}
	testkit.MustJSONEq(t, next, []byte(`{"query":{"type":"and","queries":[{"type":"object_type","object_type":"lead"}]},"_limit":100,"_fields":{"lead":["id"]},"cursor":"abc"}`))
}

func TestSearchBody_Offset(t *testing.T) {
	q := paginate.Query{Filter: json.RawMessage(`{"query":{},"_skip":999,"cursor":"stale"}`), Strategy: paginate.StrategyOffset}
	b, err := SearchBody(q.Request(50, paginate.PageState{Offset: 150}))
	if err != nil {
		t.Fatal(err)
	}
	testkit.MustJSONEq(t, b, []byte(`{"query":{},"_limit":50,"_skip":150,"_fields":{"lead":["id"]}}`))
}

func TestSearchBody_RejectsNonObjectFilter(t *testing.T) {
	_, err := SearchBody(paginate.PageRequest{Filter: json.RawMessage(`[1,2]`), Limit: 10})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if _, err := SearchBody(paginate.PageRequest{Limit: 10}); err != nil {
		t.Fatalf("empty filter should be allowed: %v", err)
	}
}

// leadServer serves n leads with cursor or offset paging and counts requests
func leadServer(t *testing.T, n int, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != searchPath {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if user, pass, ok := r.BasicAuth(); !ok || user != "api_test" || pass != "" {
			t.Errorf("bad basic auth %q %q %v", user, pass, ok)
		}
		if ua := r.Header.Get("User-Agent"); ua != "leadsync" {
			t.Errorf("user agent = %q", ua)
		}
		var body map[string]any
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("bad body: %v", err)
		}
		limit := int(body["_limit"].(float64))
		start := 0
		if s, ok := body["_skip"].(float64); ok {
			start = int(s)
		}
		if c, ok := body["cursor"].(string); ok {
			start, _ = strconv.Atoi(c)
		}
		end := min(start+limit, n)
		data := make([]map[string]string, 0, limit)
		for i := start; i < end; i++ {
			data = append(data, map[string]string{"id": fmt.Sprintf("lead_%d", i)})
		}
		resp := map[string]any{"data": data, "cursor": nil}
		if _, skip := body["_skip"]; !skip && end < n {
			resp["cursor"] = strconv.Itoa(end)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestSearcher_AggregatesBothStrategies(t *testing.T) {
	for _, s := range []paginate.Strategy{paginate.StrategyCursor, paginate.StrategyOffset} {
		var calls atomic.Int32
		srv := leadServer(t, 250, &calls)

		src := NewSearcher(NewClient(Options{BaseURL: srv.URL, APIKey: "api_test", RPS: 1000, Burst: 10}))
		res, err := paginate.New(src, src.Limits()).Count(context.Background(), paginate.Query{
			Filter: json.RawMessage(filter), PageSize: 100, Strategy: s,
		})
		srv.Close()
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if res.Total != 250 || calls.Load() != 3 {
			t.Fatalf("%s: total=%d calls=%d", s, res.Total, calls.Load())
		}
	}
}

func TestSearcher_CapsPageSizeAtRemoteMax(t *testing.T) {
	var calls atomic.Int32
	srv := leadServer(t, 450, &calls)
	defer srv.Close()

	src := NewSearcher(NewClient(Options{BaseURL: srv.URL + "/", APIKey: "api_test", RPS: 1000, Burst: 10}))
	res, err := paginate.New(src, src.Limits()).Count(context.Background(), paginate.Query{Filter: json.RawMessage(filter)})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 450 || res.Pages != 3 {
		t.Fatalf("got %+v", res)
	}
}

func TestSearcher_StatusMappingNoRetry(t *testing.T) {
	cases := []struct {
		status int
		code   perr.ErrorCode
	}{
		{http.StatusUnauthorized, perr.ErrorCodeUnauthorized},
		{http.StatusForbidden, perr.ErrorCodeUnauthorized},
		{http.StatusTooManyRequests, perr.ErrorCodeTooManyRequests},
		{http.StatusInternalServerError, perr.ErrorCodeUnavailable},
		{http.StatusBadGateway, perr.ErrorCodeUnavailable},
		{http.StatusBadRequest, perr.ErrorCodeQuery},
	}
	for _, tc := range cases {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"error":"nope"}`))
		}))

		src := NewSearcher(NewClient(Options{BaseURL: srv.URL, APIKey: "api_test", RPS: 1000, Burst: 10}))
		_, err := src.Search(context.Background(), paginate.PageRequest{Filter: json.RawMessage(filter), Limit: 10})
		srv.Close()

		if !perr.IsCode(err, tc.code) {
			t.Fatalf("status %d: code = %v (%v)", tc.status, perr.CodeOf(err), err)
		}
		if StatusOf(err) != tc.status {
			t.Fatalf("status %d: StatusOf = %d", tc.status, StatusOf(err))
		}
		if calls.Load() != 1 {
			t.Fatalf("status %d: %d calls, want exactly 1", tc.status, calls.Load())
		}
		testkit.MustContain(t, err.Error(), "nope")
	}
}

func TestSearcher_FailureOnSecondPageGivesNoCount(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"a"},{"id":"b"}],"cursor":"next"}`))
	}))
	defer srv.Close()

	src := NewSearcher(NewClient(Options{BaseURL: srv.URL, APIKey: "api_test", RPS: 1000, Burst: 10}))
	res, err := paginate.New(src, src.Limits()).Count(context.Background(), paginate.Query{Filter: json.RawMessage(filter), PageSize: 2})
	if err == nil || res.Total != 0 {
		t.Fatalf("expected failure without partial count, got %+v %v", res, err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d", calls.Load())
	}
}

func TestSearcher_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	src := NewSearcher(NewClient(Options{BaseURL: srv.URL, APIKey: "api_test"}))
	_, err := src.Search(context.Background(), paginate.PageRequest{Limit: 10})
	if !perr.IsCode(err, perr.ErrorCodeQuery) {
		t.Fatalf("expected query error, got %v", err)
	}
}

func TestClient_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[],"cursor":null,"padding":"xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"}`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, APIKey: "k", MaxBody: 16})
	_, err := c.Do(context.Background(), http.MethodGet, "/", nil)
	if !perr.IsCode(err, perr.ErrorCodeQuery) {
		t.Fatalf("expected query error for oversized body, got %v", err)
	}
}

func TestClient_EmptyKeyNeverCallsRemote(t *testing.T) {
	var calls atomic.Int32
	srv := leadServer(t, 3, &calls)
	defer srv.Close()

	_, err := NewSearcher(NewClient(Options{BaseURL: srv.URL, APIKey: "  "})).Search(context.Background(), paginate.PageRequest{Limit: 10})
	if !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if n := calls.Load(); n != 0 {
		t.Fatalf("remote called %d times", n)
	}
}

func TestClient_CanceledWhilePacing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClient(Options{BaseURL: "http://127.0.0.1:0", APIKey: "k"})
	_, err := c.Do(ctx, http.MethodGet, "/", nil)
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	o := NewClient(Options{BaseURL: "  https://api.close.com/  "}).Options()
	if o.BaseURL != "https://api.close.com" || o.UserAgent != "leadsync" || o.Timeout != defaultTimeout || o.MaxBody != defaultMaxBody {
		t.Fatalf("defaults not applied: %+v", o)
	}
	if NewClient(Options{}).Options().BaseURL != baseURLDefault {
		t.Fatal("empty base url should default")
	}
}
