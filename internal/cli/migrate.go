package cli

import (
	"context"
	"fmt"
	"log"

	"epitrello-backend/internal/config"
	"epitrello-backend/internal/repo"

	"github.com/spf13/cobra"
)

func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the schema and repair sibling positions",
		Long: `Create or update every table, then rewrite column and card positions
so that each board and column holds a dense 0..N-1 sequence.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runMigrate(ctx)
		},
	}
}

func runMigrate(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := config.ConnectDB(cfg); err != nil {
		return err
	}
	defer func() {
		if err := config.CloseDB(); err != nil {
			log.Println(err, "Error closing database")
		}
	}()

	if err := config.MigrateAllModels(true); err != nil {
		return err
	}
	if err := repo.NewColumnRepository(config.DB).RepairPositions(ctx); err != nil {
		return fmt.Errorf("failed to repair positions: %w", err)
	}
	log.Println("Positions repaired")
	return nil
}
