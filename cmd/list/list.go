package list

import (
	"github.com/spf13/cobra"

	// Import for side effects (collector registration)
	_ "cloudtrim/internal/collect/aws"
	_ "cloudtrim/internal/collect/azure"
	_ "cloudtrim/internal/collect/gcp"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List collectors and credential profiles",
		Long: `List available configuration options.
Currently supports listing:
  - Available resource collectors
  - Available AWS credential profiles`,
	}

	// Add subcommands
	cmd.AddCommand(NewCollectorsCmd())
	cmd.AddCommand(NewProfilesCmd())

	return cmd
}
