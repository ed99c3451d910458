// Package cli wires configuration, stores and services into cobra commands.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for the wellness binary.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wellness",
		Short: "Wellness challenge progress service",
		Long: `Records daily steps, sleep and cardio points, and keeps every
challenge enrollment's progress in step with the activity a user reports.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewMigrateCommand())
	cmd.AddCommand(NewSeedCommand())
	return cmd
}
