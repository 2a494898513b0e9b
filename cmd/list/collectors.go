package list

import (
	"fmt"

	"github.com/spf13/cobra"

	"cloudtrim/internal/collect"
)

// NewCollectorsCmd creates and returns the collectors command
func NewCollectorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collectors",
		Short: "List available resource collectors",
		Long: `List all available resource collectors that can be used to sample
cloud resources. Each collector is specialized for one resource type
of one provider.`,
		Example: `  # List all available resource collectors
  cloudtrim list collectors`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := collect.DefaultRegistry.List()
			if len(names) == 0 {
				fmt.Println("No collectors registered")
				return nil
			}

			fmt.Println("Available collectors:")
			for _, name := range names {
				collector, err := collect.DefaultRegistry.Get(name)
				if err != nil {
					continue
				}
				fmt.Printf("  - %s (%s, %s)\n", collector.ArgumentName(), collector.Provider(), collector.Label())
			}
			return nil
		},
	}

	return cmd
}
