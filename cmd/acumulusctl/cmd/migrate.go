package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/acumulus-sync/internal/infrastructure/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Crea o actualiza las tablas acumulus_tokens y sync_events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pool, err := postgres.NewPool(cmd.Context(), cfg.DB)
		if err != nil {
			return fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		defer pool.Close()

		applied, err := postgres.Migrate(cmd.Context(), pool)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "esquema al día")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migraciones aplicadas: %v\n", applied)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
