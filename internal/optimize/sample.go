package optimize

import "fmt"

// Provider identifies the cloud a resource lives in.
type Provider string

const (
	AWS   Provider = "AWS"
	Azure Provider = "AZURE"
	GCP   Provider = "GCP"
)

// Providers lists all known providers in the fixed order used for
// deterministic aggregation.
var Providers = []Provider{AWS, Azure, GCP}

// Kind identifies the broad resource category a sample describes.
type Kind string

const (
	Compute      Kind = "COMPUTE"
	BlockStorage Kind = "BLOCK_STORAGE"
	Database     Kind = "DATABASE"
	ObjectStore  Kind = "OBJECT_STORE"
)

// ResourceSample is one normalized usage observation produced by a
// provider collector. Samples are immutable once produced; a nil
// metric pointer means the metric was unavailable for the observation
// window.
type ResourceSample struct {
	ResourceID             string   `json:"resource_id"`
	Provider               Provider `json:"provider"`
	Kind                   Kind     `json:"kind"`
	AvgCPUPercent          *float64 `json:"avg_cpu_percent,omitempty"`
	AvgMemoryPercent       *float64 `json:"avg_memory_percent,omitempty"`
	HourlyCost             float64  `json:"hourly_cost"`
	IsAttachedOrRunning    bool     `json:"is_attached_or_running"`
	ObservationWindowHours int      `json:"observation_window_hours"`

	// Location is a provider quirk field (AWS region, GCP zone, Azure
	// resource ID path). It is carried for optimization actions and
	// never consulted by the classifier.
	Location string `json:"location,omitempty"`

	// Name is the display name of the resource, when one exists.
	Name string `json:"name,omitempty"`
}

// ValidationError describes a sample that failed structural
// validation. Classification of other samples in the same cycle is
// unaffected.
type ValidationError struct {
	ResourceID string
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid sample %q: %s", e.ResourceID, e.Message)
}

func validationErrorf(resourceID, format string, args ...interface{}) error {
	return &ValidationError{
		ResourceID: resourceID,
		Message:    fmt.Sprintf(format, args...),
	}
}

// Validate checks the structural invariants of a sample.
func (s ResourceSample) Validate() error {
	if s.ResourceID == "" {
		return validationErrorf(s.ResourceID, "resource_id must not be empty")
	}

	switch s.Provider {
	case AWS, Azure, GCP:
	default:
		return validationErrorf(s.ResourceID, "unknown provider %q", string(s.Provider))
	}

	switch s.Kind {
	case Compute, BlockStorage, Database, ObjectStore:
	default:
		return validationErrorf(s.ResourceID, "unknown kind %q", string(s.Kind))
	}

	if s.HourlyCost < 0 {
		return validationErrorf(s.ResourceID, "hourly_cost must not be negative, got %v", s.HourlyCost)
	}

	if s.ObservationWindowHours <= 0 {
		return validationErrorf(s.ResourceID, "observation_window_hours must be positive, got %d", s.ObservationWindowHours)
	}

	if s.AvgCPUPercent != nil && (*s.AvgCPUPercent < 0 || *s.AvgCPUPercent > 100) {
		return validationErrorf(s.ResourceID, "avg_cpu_percent must be within [0,100], got %v", *s.AvgCPUPercent)
	}

	if s.AvgMemoryPercent != nil && (*s.AvgMemoryPercent < 0 || *s.AvgMemoryPercent > 100) {
		return validationErrorf(s.ResourceID, "avg_memory_percent must be within [0,100], got %v", *s.AvgMemoryPercent)
	}

	return nil
}

// Float returns a pointer to v. Collectors use it when building
// samples with present metrics.
func Float(v float64) *float64 {
	return &v
}
