package module

import (
	"time"

	"leadsync/internal/platform/config"
	"leadsync/internal/platform/validate"
)

// Options controls a sync run. Values come from env and may be overridden by CLI flags
type Options struct {
	// Close search
	CloseURL     string        `json:"CLOSE_API_URL" validate:"required,url"`
	CloseAPIKey  string        `json:"CLOSE_API_KEY" validate:"required"`
	CloseTimeout time.Duration `json:"CLOSE_TIMEOUT" validate:"gt=0"`
	CloseRPS     float64       `json:"CLOSE_RPS" validate:"gt=0"`
	CloseBurst   int           `json:"CLOSE_BURST" validate:"min=1"`

	// Spreadsheet; not needed for a dry run
	SheetID       string `json:"SHEET_ID" validate:"required_unless=DryRun true"`
	SheetTab      string `json:"SHEET_TAB" validate:"required"`
	Credentials   string `json:"GOOGLE_APPLICATION_CREDENTIALS"`
	SheetEndpoint string `json:"SHEET_ENDPOINT" validate:"omitempty,url"`

	// Run behaviour
	MetricsFile string `json:"LEADSYNC_METRICS_FILE"`
	Concurrency int    `json:"LEADSYNC_CONCURRENCY" validate:"min=1,max=16"`
	DryRun      bool   `json:"LEADSYNC_DRYRUN"`
	HistoryTab  string `json:"LEADSYNC_HISTORY_TAB"`
	MaxPages    int    `json:"LEADSYNC_MAX_PAGES" validate:"min=0"`
	MaxRecords  int    `json:"LEADSYNC_MAX_RECORDS" validate:"min=0"`
	Schedule    string `json:"LEADSYNC_SCHEDULE"`
}

// FromConfig reads options using the CLOSE_, SHEET_ and LEADSYNC_ prefixes.
// Secrets may also be supplied through a companion _FILE variable
func FromConfig(cfg config.Conf) Options {
	cl := cfg.Prefix("CLOSE_")
	sh := cfg.Prefix("SHEET_")
	ls := cfg.Prefix("LEADSYNC_")
	return Options{
		CloseURL:     cl.MayString("API_URL", "https://api.close.com"),
		CloseAPIKey:  cl.MaySecret("API_KEY", ""),
		CloseTimeout: cl.MayDuration("TIMEOUT", 30*time.Second),
		CloseRPS:     cl.MayFloat64("RPS", 3),
		CloseBurst:   cl.MayInt("BURST", 3),

		SheetID:       sh.MayString("ID", ""),
		SheetTab:      sh.MayString("TAB", "Sheet11"),
		Credentials:   cfg.MaySecret("GOOGLE_APPLICATION_CREDENTIALS", "service-account.json"),
		SheetEndpoint: sh.MayString("ENDPOINT", ""),

		MetricsFile: ls.MayString("METRICS_FILE", ""),
		Concurrency: ls.MayInt("CONCURRENCY", 1),
		DryRun:      ls.MayBool("DRYRUN", false),
		HistoryTab:  ls.MayString("HISTORY_TAB", ""),
		MaxPages:    ls.MayInt("MAX_PAGES", 10_000),
		MaxRecords:  ls.MayInt("MAX_RECORDS", 1_000_000),
		Schedule:    ls.MayString("SCHEDULE", "*/15 * * * *"),
	}
}

// Merge applies explicit overrides (non-zero values) on top of o
func (o Options) Merge(overrides Options) Options {
	if overrides.MetricsFile != "" {
		o.MetricsFile = overrides.MetricsFile
	}
	if overrides.Concurrency != 0 {
		o.Concurrency = overrides.Concurrency
	}
	if overrides.DryRun {
		o.DryRun = true
	}
	if overrides.Schedule != "" {
		o.Schedule = overrides.Schedule
	}
	if overrides.HistoryTab != "" {
		o.HistoryTab = overrides.HistoryTab
	}
	return o
}

// Validate reports the first invalid option as a validation error naming its env key
func (o Options) Validate() error { return validate.Struct(o) }

// Redacted returns a copy safe to print
func (o Options) Redacted() Options {
	if o.CloseAPIKey != "" {
		o.CloseAPIKey = "***"
	}
	if len(o.Credentials) > 0 && o.Credentials[0] == '{' {
		o.Credentials = "<inline json>"
	}
	return o
}
