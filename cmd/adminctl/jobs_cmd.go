package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ministry-admin-backend/internal/app"
	"ministry-admin-backend/internal/jobs"
)

var jobNames = []string{"purge-rejected", "send-pending-digest", "probe-health", "all"}

func newJobsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Run scheduled housekeeping jobs by hand",
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "run <job>",
		Short:     "Run a single job once and exit",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: jobNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, closeStore, err := opts.openStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer closeStore()

			runner := jobs.NewJobRunner(jobs.Deps{
				Requests: store.Requests(),
				Pinger:   store,
				Notifier: app.NewDispatcher(&cfg.Email),
			}, cfg)

			switch args[0] {
			case "purge-rejected":
				runner.PurgeRejectedRequests()
			case "send-pending-digest":
				runner.SendPendingDigest()
			case "probe-health":
				runner.ProbeHealth()
			case "all":
				runner.RunAll()
			default:
				return fmt.Errorf("unknown job %q", args[0])
			}
			return nil
		},
	})
	return cmd
}
