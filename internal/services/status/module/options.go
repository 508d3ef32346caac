package module

import "leadsync/internal/platform/config"

// Options controls the status server
type Options struct {
	// Addr is the listen address; empty disables the server
	Addr        string   `json:"STATUS_ADDR"`
	CORSOrigins []string `json:"STATUS_CORS_ORIGINS"`
}

// FromConfig reads options using the STATUS_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("STATUS_")
	return Options{
		Addr:        c.MayAddr("ADDR", ""),
		CORSOrigins: c.MayCSV("CORS_ORIGINS", nil),
	}
}

// Enabled reports whether a listen address is configured
func (o Options) Enabled() bool { return o.Addr != "" }
