package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"wellness/internal/config"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store, err := OpenStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			m, ok := store.(migrator)
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "store %q has no schema\n", cfg.Store)
				return nil
			}
			if err := m.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "store %q migrated\n", cfg.Store)
			return nil
		},
	}
}
