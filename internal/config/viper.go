package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"cloudtrim/internal/optimize"
)

// InitConfig initializes the Viper configuration
func InitConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search the working directory first, then the user config dir
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".cloudtrim"))
	}

	viper.SetEnvPrefix("CLOUDTRIM")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Defaults for all configuration values
	viper.SetDefault("aws.profile", "default")
	viper.SetDefault("aws.regions", "")
	viper.SetDefault("azure.subscription_id", "")
	viper.SetDefault("gcp.project", "")
	viper.SetDefault("thresholds.cpu_threshold_percent", 10)
	viper.SetDefault("thresholds.memory_threshold_percent", 15)
	viper.SetDefault("analyze.window_hours", 24)
	viper.SetDefault("analyze.output", "filesystem")
	viper.SetDefault("analyze.bucket", "")
	viper.SetDefault("analyze.bucket_region", "")
	viper.SetDefault("run.interval", "1h")
	viper.SetDefault("run.auto_optimize", false)
	viper.SetDefault("app.max_workers", 8)
	viper.SetDefault("app.log_format", "text")
	viper.SetDefault("app.log_level", "INFO")

	// A missing config file is fine, defaults and env vars apply
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// SetConfigFile sets a custom config file path and reloads the configuration
func SetConfigFile(configFile string) error {
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Load copies the resolved viper values into the global config and
// validates them. Called once after flag parsing.
func Load() error {
	Config.Profile = viper.GetString("aws.profile")
	Config.AWSRegions = viper.GetString("aws.regions")
	Config.AzureSubscriptionID = viper.GetString("azure.subscription_id")
	Config.GCPProject = viper.GetString("gcp.project")
	Config.CPUThresholdPercent = viper.GetFloat64("thresholds.cpu_threshold_percent")
	Config.MemoryThresholdPercent = viper.GetFloat64("thresholds.memory_threshold_percent")
	Config.WindowHours = viper.GetInt("analyze.window_hours")
	Config.AutoOptimize = viper.GetBool("run.auto_optimize")
	Config.MaxWorkers = viper.GetInt("app.max_workers")
	Config.LogFormat = viper.GetString("app.log_format")

	interval, err := time.ParseDuration(viper.GetString("run.interval"))
	if err != nil {
		return fmt.Errorf("invalid run.interval: %w", err)
	}
	Config.Interval = interval

	return Validate()
}

// Validate checks the loaded configuration for values the engine
// cannot work with.
func Validate() error {
	if err := Thresholds().Validate(); err != nil {
		return err
	}
	if Config.WindowHours <= 0 {
		return fmt.Errorf("analyze.window_hours must be positive, got %d", Config.WindowHours)
	}
	if Config.MaxWorkers <= 0 {
		return fmt.Errorf("app.max_workers must be positive, got %d", Config.MaxWorkers)
	}
	if Config.Interval <= 0 {
		return fmt.Errorf("run.interval must be positive, got %s", Config.Interval)
	}
	return nil
}

// Thresholds returns the configured classification thresholds.
func Thresholds() optimize.Thresholds {
	return optimize.Thresholds{
		CPUPercent:    Config.CPUThresholdPercent,
		MemoryPercent: Config.MemoryThresholdPercent,
	}
}

// AWSRegionList splits the configured comma-separated region list,
// falling back to us-east-1 when none are configured.
func AWSRegionList() []string {
	var regions []string
	for _, region := range strings.Split(Config.AWSRegions, ",") {
		region = strings.TrimSpace(region)
		if region != "" {
			regions = append(regions, region)
		}
	}
	if len(regions) == 0 {
		return []string{"us-east-1"}
	}
	return regions
}

// CreateDefaultConfig creates a default config file if it doesn't exist
func CreateDefaultConfig() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("error getting home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".cloudtrim")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.WriteFile(configPath, []byte(DefaultConfigYAML), 0644); err != nil {
			return fmt.Errorf("error writing default config file: %w", err)
		}
	}

	return nil
}

// DefaultConfigYAML is the commented config file written by `cloudtrim init`.
const DefaultConfigYAML = `# CloudTrim Configuration File

# AWS Configuration
aws:
  profile: default  # AWS profile to use (supports SSO profiles)
  regions: ""  # Comma-separated regions to collect from (default: us-east-1)

# Azure Configuration
azure:
  subscription_id: ""  # Azure subscription to collect from (empty disables Azure)

# GCP Configuration
gcp:
  project: ""  # GCP project to collect from (empty disables GCP)

# Classification Thresholds
thresholds:
  cpu_threshold_percent: 10  # Flag running resources averaging below this CPU%
  memory_threshold_percent: 15  # Flag running resources averaging below this memory%

# Analyze Command Configuration
analyze:
  window_hours: 24  # Observation window for usage metrics
  output: filesystem  # Output type (filesystem or s3)
  bucket: ""  # S3 bucket name (required when output=s3)
  bucket_region: ""  # S3 bucket region (required when output=s3)

# Run Command Configuration
run:
  interval: 1h  # Time between analysis cycles
  auto_optimize: false  # Stop underutilized compute after each cycle

# Application Configuration
app:
  max_workers: 8  # Maximum number of concurrent workers
  log_format: text  # Log output format (text or json)
  log_level: INFO  # Set logging level (DEBUG, INFO, WARN, ERROR)
`
