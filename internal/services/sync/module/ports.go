package module

import "leadsync/internal/services/sync/domain"

// Ports defines sync module ports exposed via the registry
type Ports struct {
	Runner    domain.RunnerPort
	Reporter  domain.ReporterPort
	Scheduler domain.SchedulerPort
	Catalog   domain.CatalogPort
}
