package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ministry-admin-backend/internal/app"
	"ministry-admin-backend/internal/clock"
	"ministry-admin-backend/internal/repository/postgres"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if err := requirePostgres(cfg); err != nil {
				return err
			}
			_, db, closeStore, err := app.OpenStore(cmd.Context(), cfg, clock.System(), true)
			if err != nil {
				return err
			}
			defer closeStore()

			version, err := postgres.MigrationVersion(cmd.Context(), db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if err := requirePostgres(cfg); err != nil {
				return err
			}
			_, db, closeStore, err := app.OpenStore(cmd.Context(), cfg, clock.System(), false)
			if err != nil {
				return err
			}
			defer closeStore()
			return postgres.MigrationStatus(cmd.Context(), db)
		},
	})
	return cmd
}
