package paginate

import (
	"context"
	"encoding/json"
	"strings"

	perr "leadsync/internal/platform/errors"
)

// Strategy selects the termination signal a walk consumes
type Strategy uint8

const (
	// StrategyCursor follows continuation tokens until one comes back empty
	StrategyCursor Strategy = iota
	// StrategyOffset advances by the page size until a page comes back short
	StrategyOffset
)

// String returns the config spelling of the strategy
func (s Strategy) String() string {
	if s == StrategyOffset {
		return "offset"
	}
	return "cursor"
}

// ParseStrategy maps a config value to a Strategy; empty means cursor
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cursor":
		return StrategyCursor, nil
	case "offset":
		return StrategyOffset, nil
	default:
		return StrategyCursor, perr.InvalidArgf("unknown pagination strategy %q (expected cursor or offset)", s)
	}
}

// Query is the immutable description of one aggregation
type Query struct {
	// Filter is passed through to the searcher untouched
	Filter json.RawMessage
	// PageSize is the requested page size; 0 means the remote maximum
	PageSize int
	Strategy Strategy
}

// PageState is the pagination position for the next request
type PageState struct {
	Cursor string
	Offset int
}

// PageRequest is what a Searcher receives for one page
type PageRequest struct {
	Filter   json.RawMessage
	Limit    int
	Strategy Strategy
	Cursor   string
	Offset   int
}

// Request derives the page request for state; q is never modified
func (q Query) Request(limit int, state PageState) PageRequest {
	req := PageRequest{
		Filter:   q.Filter,
		Limit:    limit,
		Strategy: q.Strategy,
	}
	switch q.Strategy {
	case StrategyOffset:
		req.Offset = state.Offset
	default:
		req.Cursor = state.Cursor
	}
	return req
}

// Page is one response from the remote
type Page struct {
	Records []json.RawMessage
	// Cursor is the continuation token; empty means no further pages (cursor strategy)
	Cursor string
}

// Len returns the number of records on the page
func (p Page) Len() int { return len(p.Records) }

// Searcher executes a single page request against the remote
type Searcher interface {
	Search(ctx context.Context, req PageRequest) (Page, error)
}

// SearcherFunc adapts a function to Searcher
type SearcherFunc func(ctx context.Context, req PageRequest) (Page, error)

// Search implements Searcher
func (f SearcherFunc) Search(ctx context.Context, req PageRequest) (Page, error) { return f(ctx, req) }

// Result is a completed aggregation
type Result struct {
	Total int
	Pages int
}
