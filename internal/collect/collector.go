package collect

import (
	"context"
	"time"

	"cloudtrim/internal/optimize"
)

// Options contains configuration for a single collection run.
type Options struct {
	// Location is the provider location to collect from (AWS region).
	// Collectors for providers without per-task locations ignore it.
	Location string

	// Window is the observation window over which usage metrics are
	// averaged.
	Window time.Duration
}

// WindowHours returns the observation window in whole hours, never
// below one.
func (o Options) WindowHours() int {
	hours := int(o.Window.Hours())
	if hours < 1 {
		return 1
	}
	return hours
}

// Collector produces normalized resource usage samples for one
// provider resource kind. Collectors own all SDK interaction; the
// classification engine never sees credentials or pagination.
type Collector interface {
	// Name returns the human-readable name of the collector
	Name() string

	// ArgumentName returns the command-line argument name for the collector
	ArgumentName() string

	// Label returns a unique label identifying the collector
	Label() string

	// Provider returns the cloud this collector belongs to
	Provider() optimize.Provider

	// Collect gathers samples. A metric that cannot be retrieved within
	// the context deadline is reported as absent on the sample rather
	// than failing the run.
	Collect(ctx context.Context, opts Options) ([]optimize.ResourceSample, error)
}
