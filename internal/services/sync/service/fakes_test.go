package service

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"leadsync/internal/core/paginate"
	perr "leadsync/internal/platform/errors"
	"leadsync/internal/services/sync/domain"
)

// remote serves a record count per filter and can fail a given page of a filter
type remote struct {
	mu     sync.Mutex
	counts map[string]int
	failAt map[string]int // filter -> 1-based page that fails
	calls  map[string]int
}

func newRemote() *remote {
	return &remote{counts: map[string]int{}, failAt: map[string]int{}, calls: map[string]int{}}
}

func (r *remote) Search(_ context.Context, req paginate.PageRequest) (paginate.Page, error) {
	key := string(req.Filter)
	r.mu.Lock()
	r.calls[key]++
	page := r.calls[key]
	n := r.counts[key]
	fail := r.failAt[key]
	r.mu.Unlock()

	if fail == page {
		return paginate.Page{}, perr.Newf(perr.ErrorCodeUnavailable, "close returned 503")
	}
	start := 0
	if req.Cursor != "" {
		start, _ = strconv.Atoi(req.Cursor)
	}
	end := min(start+req.Limit, n)
	recs := make([]json.RawMessage, max(end-start, 0))
	p := paginate.Page{Records: recs}
	if end < n {
		p.Cursor = strconv.Itoa(end)
	}
	return p, nil
}

// sheet records cell writes and appended rows
type sheet struct {
	mu      sync.Mutex
	cells   map[string]any
	rows    [][]any
	failOn  map[string]bool
	failRow bool
}

func newSheet() *sheet { return &sheet{cells: map[string]any{}, failOn: map[string]bool{}} }

func (s *sheet) WriteCell(_ context.Context, cell string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn[cell] {
		return perr.Writef("sheets update %s returned 403", cell)
	}
	s.cells[cell] = v
	return nil
}

func (s *sheet) AppendRow(_ context.Context, _ string, values []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRow {
		return perr.Writef("sheets append returned 500")
	}
	s.rows = append(s.rows, values)
	return nil
}

type staticCatalog []domain.Metric

func (c staticCatalog) Metrics() []domain.Metric { return c }

func metric(name, cell string, size int) domain.Metric {
	f, _ := json.Marshal(map[string]string{"metric": name})
	return domain.Metric{Name: name, Cell: cell, Query: paginate.Query{Filter: f, PageSize: size}}
}

func filterOf(m domain.Metric) string { return string(m.Query.Filter) }
