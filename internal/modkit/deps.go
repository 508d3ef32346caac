// Package modkit provides module wiring and core deps
package modkit

import (
	"leadsync/internal/platform/config"
	"leadsync/internal/platform/logger"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
}

// Component returns the deps logger tagged with a component name
func (d Deps) Component(name string) logger.Logger {
	return d.Log.With().Str("component", name).Logger()
}
