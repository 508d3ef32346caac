// Package catalog loads and validates the metric catalog
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	"leadsync/internal/core/paginate"
	perr "leadsync/internal/platform/errors"
	"leadsync/internal/platform/validate"
	"leadsync/internal/services/sync/domain"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Entry is one metric as written in the catalog file
type Entry struct {
	Name       string         `yaml:"name" validate:"required,max=128"`
	Cell       string         `yaml:"cell" validate:"required,a1cell"`
	Filter     map[string]any `yaml:"filter" validate:"required,min=1"`
	PageSize   int            `yaml:"page_size" validate:"min=0,max=200"`
	Pagination string         `yaml:"pagination" validate:"omitempty,oneof=cursor offset"`
	Disabled   bool           `yaml:"disabled"`
}

// File is the catalog document
type File struct {
	Metrics []Entry `yaml:"metrics" validate:"required,min=1,unique=Name,dive"`
}

// Catalog is a validated, ordered set of metrics
type Catalog struct {
	metrics []domain.Metric
	// Source is the file the catalog came from, or "embedded"
	Source string
}

// Metrics returns the enabled metrics in file order
func (c Catalog) Metrics() []domain.Metric {
	return append([]domain.Metric(nil), c.metrics...)
}

// Default returns the embedded catalog
func Default() (Catalog, error) {
	c, err := Parse(defaultsYAML)
	if err != nil {
		return Catalog{}, err
	}
	c.Source = "embedded"
	return c, nil
}

// Load reads path, or the embedded catalog when path is empty
func Load(path string) (Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, perr.Wrapf(err, perr.ErrorCodeConfig, "read metrics file %s", path)
	}
	c, err := Parse(b)
	if err != nil {
		return Catalog{}, perr.WithOp(err, "catalog.load")
	}
	c.Source = path
	return c, nil
}

// Parse decodes and validates a catalog document
func Parse(b []byte) (Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Catalog{}, perr.Configf("metrics catalog is empty")
		}
		return Catalog{}, perr.Wrap(err, perr.ErrorCodeConfig, "metrics catalog is not valid yaml")
	}
	for i := range f.Metrics {
		f.Metrics[i].Name = strings.TrimSpace(f.Metrics[i].Name)
		f.Metrics[i].Cell = strings.ToUpper(strings.TrimSpace(f.Metrics[i].Cell))
	}
	if err := validate.Struct(f); err != nil {
		return Catalog{}, err
	}
	return build(f)
}

func build(f File) (Catalog, error) {
	cells := map[string]string{}
	var out []domain.Metric
	for _, e := range f.Metrics {
		if e.Disabled {
			continue
		}
		// $B$2 and B2 address the same cell
		e.Cell = strings.ReplaceAll(e.Cell, "$", "")
		if other, dup := cells[e.Cell]; dup {
			return Catalog{}, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "metrics %q and %q both write %s", other, e.Name, e.Cell), "cell")
		}
		cells[e.Cell] = e.Name

		strategy, err := paginate.ParseStrategy(e.Pagination)
		if err != nil {
			return Catalog{}, perr.WithField(err, "pagination")
		}
		filter, err := json.Marshal(e.Filter)
		if err != nil {
			return Catalog{}, perr.WithField(perr.Wrapf(err, perr.ErrorCodeValidation, "metric %q filter cannot be encoded as json", e.Name), "filter")
		}
		out = append(out, domain.Metric{
			Name: e.Name,
			Cell: e.Cell,
			Query: paginate.Query{
				Filter:   filter,
				PageSize: e.PageSize,
				Strategy: strategy,
			},
		})
	}
	if len(out) == 0 {
		return Catalog{}, perr.Newf(perr.ErrorCodeValidation, "metrics catalog has no enabled metrics")
	}
	return Catalog{metrics: out}, nil
}
