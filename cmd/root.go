package cmd

import (
	"cloudtrim/cmd/analyze"
	initCmd "cloudtrim/cmd/init"
	"cloudtrim/cmd/list"
	"cloudtrim/cmd/run"
	"cloudtrim/cmd/version"
	"cloudtrim/internal/config"
	"cloudtrim/internal/logging"

	"github.com/spf13/cobra"
)

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	var (
		logLevel   string
		configFile string
	)

	// Initialize config
	if err := config.InitConfig(); err != nil {
		return err
	}

	rootCmd := &cobra.Command{
		Use:   "cloudtrim",
		Short: "CloudTrim - multi-cloud underutilization analyzer",
		Long: `CloudTrim inspects compute, database, and storage resources across
AWS, Azure, and GCP, flags the underutilized ones, and estimates the
monthly savings from trimming them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				if err := config.SetConfigFile(configFile); err != nil {
					return err
				}
			}

			if err := config.Load(); err != nil {
				return err
			}

			// Flags set explicitly win over config file and env values
			if cmd.Flags().Changed("profile") {
				profile, _ := cmd.Flags().GetString("profile")
				config.Config.Profile = profile
			}
			if cmd.Flags().Changed("max-workers") {
				workers, _ := cmd.Flags().GetInt("max-workers")
				config.Config.MaxWorkers = workers
			}
			if cmd.Flags().Changed("log-format") {
				format, _ := cmd.Flags().GetString("log-format")
				config.Config.LogFormat = format
			}

			logFormat := logging.Text
			if config.Config.LogFormat == "json" {
				logFormat = logging.JSON
			}

			logging.Configure(logging.LogConfig{
				Level:  logging.ParseLevel(logLevel),
				Format: logFormat,
			})
			return nil
		},
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringP("profile", "p", "default", "AWS profile to use (supports SSO profiles)")
	rootCmd.PersistentFlags().Int("max-workers", 8, "Maximum number of concurrent workers")
	rootCmd.PersistentFlags().String("log-format", "text", "Log output format (text or json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO",
		"Set logging level (DEBUG, INFO, WARN, ERROR)")

	// Add commands
	rootCmd.AddCommand(analyze.NewAnalyzeCmd())
	rootCmd.AddCommand(run.NewRunCmd())
	rootCmd.AddCommand(list.NewListCmd())
	rootCmd.AddCommand(initCmd.NewInitCmd())
	rootCmd.AddCommand(version.NewVersionCmd())

	return rootCmd.Execute()
}
