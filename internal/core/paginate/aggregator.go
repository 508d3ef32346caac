package paginate

import (
	"context"
	"time"

	perr "leadsync/internal/platform/errors"
	"leadsync/internal/platform/logger"
)

const (
	// DefaultMaxPages bounds a single walk when Limits.MaxPages is zero
	DefaultMaxPages = 10_000
	// DefaultMaxRecords bounds a single walk when Limits.MaxRecords is zero
	DefaultMaxRecords = 1_000_000
)

// Limits bounds every walk. Zero values pick the defaults; MaxPageSize zero means uncapped
type Limits struct {
	// MaxPageSize is the remote-imposed page size ceiling
	MaxPageSize int
	MaxPages    int
	MaxRecords  int
}

func (l Limits) withDefaults() Limits {
	if l.MaxPages <= 0 {
		l.MaxPages = DefaultMaxPages
	}
	if l.MaxRecords <= 0 {
		l.MaxRecords = DefaultMaxRecords
	}
	return l
}

// Aggregator counts records across every page of a query
type Aggregator struct {
	src    Searcher
	limits Limits
	now    func() time.Time
}

// New builds an Aggregator over src
func New(src Searcher, limits Limits) *Aggregator {
	return &Aggregator{
		src:    src,
		limits: limits.withDefaults(),
		now:    time.Now,
	}
}

// Limits returns the effective limits
func (a *Aggregator) Limits() Limits { return a.limits }

// PageSize resolves the page size a walk will request for q
func (a *Aggregator) PageSize(q Query) (int, error) {
	size := q.PageSize
	if size < 0 {
		return 0, perr.InvalidArgf("page size must be positive, got %d", size)
	}
	maxSize := a.limits.MaxPageSize
	if size == 0 {
		if maxSize <= 0 {
			return 0, perr.InvalidArgf("page size is required when the remote has no maximum")
		}
		return maxSize, nil
	}
	if maxSize > 0 && size > maxSize {
		return maxSize, nil
	}
	return size, nil
}

// Count walks every page of q and returns the number of records seen.
// Any page failure returns the error and a zero Result
func (a *Aggregator) Count(ctx context.Context, q Query) (Result, error) {
	size, err := a.PageSize(q)
	if err != nil {
		return Result{}, err
	}

	log := logger.C(ctx).With().Str("component", "paginate").Str("strategy", q.Strategy.String()).Int("page_size", size).Logger()
	start := a.now()

	var (
		total int
		pages int
		state PageState
	)
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "aggregation canceled")
		}
		if pages >= a.limits.MaxPages {
			return Result{}, perr.LimitExceededf("remote did not signal exhaustion within %d pages", a.limits.MaxPages)
		}

		req := q.Request(size, state)
		page, err := a.src.Search(ctx, req)
		pages++
		if err != nil {
			log.Debug().Err(err).Int("page", pages).Msg("page request failed")
			if _, ours := perr.As(err); !ours {
				err = perr.Wrapf(err, perr.ErrorCodeQuery, "page %d failed", pages)
			}
			return Result{}, perr.WithOp(err, "paginate.count")
		}

		n := page.Len()
		if n > size {
			return Result{}, perr.Queryf("page %d returned %d records for a page size of %d", pages, n, size)
		}
		total += n
		if total > a.limits.MaxRecords {
			return Result{}, perr.LimitExceededf("more than %d records matched", a.limits.MaxRecords)
		}

		log.Trace().Int("page", pages).Int("records", n).Int("total", total).Str("cursor", page.Cursor).Msg("page done")

		next, done, err := advance(q.Strategy, state, page, size)
		if err != nil {
			return Result{}, err
		}
		if done {
			break
		}
		state = next
	}

	log.Debug().Int("total", total).Int("pages", pages).Dur("elapsed", a.now().Sub(start)).Msg("aggregation complete")
	return Result{Total: total, Pages: pages}, nil
}

// advance computes the next state and whether the walk is finished
func advance(s Strategy, cur PageState, page Page, size int) (PageState, bool, error) {
	switch s {
	case StrategyOffset:
		if page.Len() < size {
			return cur, true, nil
		}
		return PageState{Offset: cur.Offset + size}, false, nil
	default:
		if page.Cursor == "" {
			return cur, true, nil
		}
		if page.Cursor == cur.Cursor {
			return cur, false, perr.LimitExceededf("remote repeated cursor %q", page.Cursor)
		}
		return PageState{Cursor: page.Cursor}, false, nil
	}
}
