package init

import (
	"github.com/spf13/cobra"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize CloudTrim configuration files",
		Long: `Initialize CloudTrim configuration files.

This command creates a default config.yaml with recommended settings.`,
	}

	cmd.AddCommand(NewConfigCmd())

	return cmd
}
