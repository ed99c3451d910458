package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"wellness/internal/config"
	"wellness/internal/domain"
	"wellness/internal/logger"
	"wellness/internal/seed"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users and challenges from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.SeedFile
			}
			if file == "" {
				return errors.New("--file or SEED_FILE is required")
			}
			f, err := seed.LoadFile(file)
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.LogMode)
			if err != nil {
				return err
			}
			defer log.Sync()

			store, err := OpenStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			svc := NewServices(store, cfg, domain.SystemClock{}, log)
			res, err := seed.Apply(cmd.Context(), f, svc.Users, svc.Challenges, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "users: %d created, %d skipped; challenges: %d created, %d skipped\n",
				res.UsersCreated, res.UsersSkipped, res.ChallengesCreated, res.ChallengesSkipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file (defaults to SEED_FILE)")
	return cmd
}
