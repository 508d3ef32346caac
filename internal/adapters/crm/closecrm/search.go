package closecrm

import (
	"context"
	"encoding/json"
	"net/http"

	"leadsync/internal/core/paginate"
	perr "leadsync/internal/platform/errors"
	str "leadsync/internal/platform/strings"
)

const searchPath = "/api/v1/data/search/"

// Searcher runs paginated lead searches against the Close data search endpoint
type Searcher struct{ c *Client }

// NewSearcher constructs a Searcher over c
func NewSearcher(c *Client) *Searcher { return &Searcher{c: c} }

// Limits reports the remote page ceiling for the aggregator
func (s *Searcher) Limits() paginate.Limits { return paginate.Limits{MaxPageSize: MaxPageSize} }

// Search implements paginate.Searcher
func (s *Searcher) Search(ctx context.Context, req paginate.PageRequest) (paginate.Page, error) {
	body, err := SearchBody(req)
	if err != nil {
		return paginate.Page{}, err
	}
	b, err := s.c.Do(ctx, http.MethodPost, searchPath, body)
	if err != nil {
		return paginate.Page{}, perr.WithOp(err, "close.search")
	}
	var out searchResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return paginate.Page{}, perr.Wrap(err, perr.ErrorCodeQuery, "close search response is not valid json")
	}
	return paginate.Page{Records: out.Data, Cursor: str.Deref(out.Cursor)}, nil
}

// SearchBody merges the pagination keys into the request filter.
// The filter must be a JSON object; keys it already carries for pagination are overwritten
func SearchBody(req paginate.PageRequest) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if len(req.Filter) > 0 && string(req.Filter) != "null" {
		if err := json.Unmarshal(req.Filter, &fields); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "search filter must be a json object")
		}
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	delete(fields, "cursor")
	delete(fields, "_skip")

	set := func(k string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeJSON, "encode %s", k)
		}
		fields[k] = raw
		return nil
	}
	if err := set("_limit", req.Limit); err != nil {
		return nil, err
	}
	if err := set("_fields", leadIDFields); err != nil {
		return nil, err
	}
	switch req.Strategy {
	case paginate.StrategyOffset:
		if err := set("_skip", req.Offset); err != nil {
			return nil, err
		}
	default:
		if req.Cursor != "" {
			if err := set("cursor", req.Cursor); err != nil {
				return nil, err
			}
		}
	}

	out, err := json.Marshal(fields)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "encode search body")
	}
	return out, nil
}
