// Package sheets writes metric counts and run history rows to a Google spreadsheet
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	perr "leadsync/internal/platform/errors"
	"leadsync/internal/platform/logger"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const (
	defaultTab       = "Sheet11"
	valueInputOption = "USER_ENTERED"
)

// Options configures the Writer
type Options struct {
	SpreadsheetID string
	// Tab is the sheet metric cells live on
	Tab string
	// Credentials is a service account file path, inline JSON, or "none" for an unauthenticated endpoint
	Credentials string
	// Endpoint overrides the API root; with no Credentials it also disables auth
	Endpoint string
}

// Writer performs blind overwrites of single cells and appends of whole rows
type Writer struct {
	svc  *gsheets.Service
	opts Options
}

// ClientOptions turns Options into google api client options
func ClientOptions(o Options) []option.ClientOption {
	opts := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}
	creds := strings.TrimSpace(o.Credentials)
	switch {
	case strings.EqualFold(creds, "none"):
		opts = append(opts, option.WithoutAuthentication())
	case strings.HasPrefix(creds, "{"):
		opts = append(opts, option.WithAuthCredentialsJSON(option.ServiceAccount, []byte(creds)))
	case creds != "":
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, creds))
	case o.Endpoint != "":
		opts = append(opts, option.WithoutAuthentication())
	}
	if o.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(o.Endpoint, "/")+"/"))
	}
	return opts
}

// New builds a Writer; extra options are applied after the derived ones
func New(ctx context.Context, o Options, extra ...option.ClientOption) (*Writer, error) {
	if strings.TrimSpace(o.SpreadsheetID) == "" {
		return nil, perr.Configf("spreadsheet id is required")
	}
	if strings.TrimSpace(o.Tab) == "" {
		o.Tab = defaultTab
	}
	svc, err := gsheets.NewService(ctx, append(ClientOptions(o), extra...)...)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeConfig, "sheets client init failed")
	}
	return &Writer{svc: svc, opts: o}, nil
}

// Tab returns the sheet metric cells are written to
func (w *Writer) Tab() string { return w.opts.Tab }

// WriteCell overwrites cell on the configured tab with value
func (w *Writer) WriteCell(ctx context.Context, cell string, value any) error {
	if strings.TrimSpace(cell) == "" {
		return perr.Writef("sheets update: cell is empty")
	}
	rng := A1(w.opts.Tab, cell)
	vr := &gsheets.ValueRange{Range: rng, Values: [][]any{{value}}}
	_, err := w.svc.Spreadsheets.Values.Update(w.opts.SpreadsheetID, rng, vr).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return writeErr(err, "update", rng)
	}
	logger.C(ctx).Debug().Str("component", "sheets").Str("range", rng).Interface("value", value).Msg("cell written")
	return nil
}

// AppendRow appends values as a new row after the last populated row of tab
func (w *Writer) AppendRow(ctx context.Context, tab string, values []any) error {
	if strings.TrimSpace(tab) == "" {
		return perr.Writef("sheets append: tab is empty")
	}
	rng := A1(tab, "A1")
	vr := &gsheets.ValueRange{Values: [][]any{values}}
	_, err := w.svc.Spreadsheets.Values.Append(w.opts.SpreadsheetID, rng, vr).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return writeErr(err, "append", rng)
	}
	logger.C(ctx).Debug().Str("component", "sheets").Str("range", rng).Int("cols", len(values)).Msg("row appended")
	return nil
}

// A1 renders a tab-qualified range; single quotes in the tab name are doubled
func A1(tab, cell string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(tab, "'", "''"), strings.ToUpper(strings.TrimSpace(cell)))
}

func writeErr(err error, op, rng string) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return perr.WithOp(perr.Wrapf(err, perr.ErrorCodeWrite, "sheets %s %s returned %d", op, rng, gerr.Code), "sheets."+op)
	}
	return perr.WithOp(perr.Wrapf(err, perr.ErrorCodeWrite, "sheets %s %s failed", op, rng), "sheets."+op)
}
