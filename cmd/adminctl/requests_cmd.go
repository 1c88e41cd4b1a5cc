package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ministry-admin-backend/internal/domain"
)

func newRequestsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Inspect registration requests",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List registration requests, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := domain.RequestStatus(status)
			if st != "" && !st.Valid() {
				return fmt.Errorf("unknown status %q", status)
			}
			_, store, closeStore, err := opts.openStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer closeStore()

			reqs, err := store.Requests().ListByStatus(cmd.Context(), st)
			if err != nil {
				return err
			}
			return printRequests(cmd.OutOrStdout(), reqs)
		},
	}
	list.Flags().StringVar(&status, "status", "", "Filter by status (pending, approved, rejected)")
	cmd.AddCommand(list)
	return cmd
}

func printRequests(out io.Writer, reqs []domain.RegistrationRequest) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTATUS\tCOMPLETED\tCREATED")
	for _, r := range reqs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n",
			r.ID, r.Name, r.Email, r.Status, r.Completed(), r.CreatedAt.UTC().Format(time.RFC3339))
	}
	return w.Flush()
}
