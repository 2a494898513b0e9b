package config

import "time"

// GlobalConfig holds the process-wide configuration for the application
type GlobalConfig struct {
	// Profile is the AWS profile to use
	Profile string

	// AWSRegions is the comma-separated list of AWS regions to collect from
	AWSRegions string

	// AzureSubscriptionID enables the Azure collectors when set
	AzureSubscriptionID string

	// GCPProject enables the GCP collectors when set
	GCPProject string

	// CPUThresholdPercent flags running resources averaging below this CPU%
	CPUThresholdPercent float64

	// MemoryThresholdPercent flags running resources averaging below this memory%
	MemoryThresholdPercent float64

	// WindowHours is the observation window for usage metrics
	WindowHours int

	// Interval between analysis cycles in run mode
	Interval time.Duration

	// AutoOptimize enables stopping underutilized compute after each cycle
	AutoOptimize bool

	// MaxWorkers defines the maximum number of concurrent workers
	MaxWorkers int

	// LogFormat is the format for logging
	LogFormat string
}

// Config is the global configuration instance
var Config = &GlobalConfig{
	Profile:                "default",
	CPUThresholdPercent:    10,
	MemoryThresholdPercent: 15,
	WindowHours:            24,
	Interval:               time.Hour,
	MaxWorkers:             8,
}
