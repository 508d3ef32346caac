// Package module defines the minimal contract for a leadsync module
package module

import (
	phttp "leadsync/internal/platform/net/http"
)

// Module is what main composes: a named port bundle that may also serve routes
// worker style modules mount nothing
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
