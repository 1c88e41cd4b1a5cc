package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ministry-admin-backend/internal/app"
	"ministry-admin-backend/internal/clock"
	"ministry-admin-backend/internal/config"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "adminctl",
		Short:         "Operational tooling for the ministry admin backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config/config.dev.yaml", "Path to configuration file")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newBootstrapCmd(opts),
		newRequestsCmd(opts),
		newJobsCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	app.InitLogger(&cfg.Log)
	return cfg, nil
}

func (o *rootOptions) openStore(ctx context.Context, migrate bool) (*config.Config, app.Store, func(), error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, nil, err
	}
	store, _, closeStore, err := app.OpenStore(ctx, cfg, clock.System(), migrate)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, store, closeStore, nil
}

func requirePostgres(cfg *config.Config) error {
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("command requires the postgres driver, configured driver is %q", cfg.Database.Driver)
	}
	return nil
}
