package optimize

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// hoursPerMonth is the average number of hours in a month, used to
// project an hourly cost to a monthly saving. Fixed so that estimates
// are reproducible across runs.
const hoursPerMonth = 730

// Reason explains why a resource was (or was not) flagged.
type Reason string

const (
	ReasonLowCPU          Reason = "LOW_CPU"
	ReasonLowMemory       Reason = "LOW_MEMORY"
	ReasonLowCPUAndMemory Reason = "LOW_CPU_AND_MEMORY"
	ReasonUnusedStorage   Reason = "UNUSED_STORAGE"
	ReasonNone            Reason = "NONE"
)

// Thresholds holds the utilization cutoffs below which a running
// resource is considered underutilized. Read-only after startup.
type Thresholds struct {
	CPUPercent    float64 `json:"cpu_threshold_percent"`
	MemoryPercent float64 `json:"memory_threshold_percent"`
}

// DefaultThresholds returns the stock thresholds (10% CPU, 15% memory).
func DefaultThresholds() Thresholds {
	return Thresholds{CPUPercent: 10, MemoryPercent: 15}
}

// Validate checks that both thresholds are within (0,100].
func (t Thresholds) Validate() error {
	if t.CPUPercent <= 0 || t.CPUPercent > 100 {
		return fmt.Errorf("cpu_threshold_percent must be in (0,100], got %v", t.CPUPercent)
	}
	if t.MemoryPercent <= 0 || t.MemoryPercent > 100 {
		return fmt.Errorf("memory_threshold_percent must be in (0,100], got %v", t.MemoryPercent)
	}
	return nil
}

// ClassificationResult is the outcome of evaluating one sample. It is
// never mutated after creation.
type ClassificationResult struct {
	ResourceID             string   `json:"resource_id"`
	Provider               Provider `json:"provider"`
	Kind                   Kind     `json:"kind"`
	Underutilized          bool     `json:"underutilized"`
	Reason                 Reason   `json:"reason"`
	EstimatedMonthlySaving float64  `json:"estimated_monthly_saving"`
}

// monthlySaving projects an hourly cost to a monthly figure. Decimal
// arithmetic keeps the multiply exact for costs like 0.2/hour.
func monthlySaving(hourlyCost float64) float64 {
	saving := decimal.NewFromFloat(hourlyCost).Mul(decimal.NewFromInt(hoursPerMonth))
	v, _ := saving.Float64()
	return v
}

// Classify evaluates a single sample against the thresholds. It is a
// pure function: identical inputs always produce identical results,
// and it performs no I/O. A malformed sample yields a *ValidationError
// rather than a classification.
//
// Compute and database resources are flagged only while running; an
// absent metric never confirms underutilization on its own. Storage
// resources are flagged when unattached (block storage) or empty
// (object stores), regardless of metrics.
func Classify(sample ResourceSample, thresholds Thresholds) (ClassificationResult, error) {
	if err := sample.Validate(); err != nil {
		return ClassificationResult{}, err
	}
	if err := thresholds.Validate(); err != nil {
		return ClassificationResult{}, err
	}

	result := ClassificationResult{
		ResourceID: sample.ResourceID,
		Provider:   sample.Provider,
		Kind:       sample.Kind,
		Reason:     ReasonNone,
	}

	switch sample.Kind {
	case Compute, Database:
		if !sample.IsAttachedOrRunning {
			return result, nil
		}

		lowCPU := sample.AvgCPUPercent != nil && *sample.AvgCPUPercent < thresholds.CPUPercent
		lowMemory := sample.AvgMemoryPercent != nil && *sample.AvgMemoryPercent < thresholds.MemoryPercent

		switch {
		case lowCPU && lowMemory:
			result.Underutilized = true
			result.Reason = ReasonLowCPUAndMemory
		case lowCPU:
			result.Underutilized = true
			result.Reason = ReasonLowCPU
		case lowMemory:
			result.Underutilized = true
			result.Reason = ReasonLowMemory
		}

	case BlockStorage, ObjectStore:
		if !sample.IsAttachedOrRunning {
			result.Underutilized = true
			result.Reason = ReasonUnusedStorage
		}
	}

	if result.Underutilized {
		result.EstimatedMonthlySaving = monthlySaving(sample.HourlyCost)
	}

	return result, nil
}

// SkippedSample records a sample that failed validation during a
// cycle. Skipped samples are surfaced alongside the report, never
// silently dropped.
type SkippedSample struct {
	ResourceID string `json:"resource_id"`
	Error      string `json:"error"`
}

// ClassifyAll classifies every sample, isolating validation failures
// at sample granularity: invalid samples are collected as skipped
// entries and the remainder is classified normally. Thresholds are
// validated once up front; a threshold error is a configuration
// problem and is returned as such, never recorded against samples.
func ClassifyAll(samples []ResourceSample, thresholds Thresholds) ([]ClassificationResult, []SkippedSample, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid thresholds: %w", err)
	}

	var (
		results []ClassificationResult
		skipped []SkippedSample
	)

	for _, sample := range samples {
		result, err := Classify(sample, thresholds)
		if err != nil {
			skipped = append(skipped, SkippedSample{
				ResourceID: sample.ResourceID,
				Error:      err.Error(),
			})
			continue
		}
		results = append(results, result)
	}

	return results, skipped, nil
}
