package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ministry-admin-backend/internal/security"
	"ministry-admin-backend/internal/service"
)

func newBootstrapCmd(opts *rootOptions) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the first owner account",
		Long:  "Create the initial owner account. Refuses to run once any administrator account exists.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, closeStore, err := opts.openStore(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer closeStore()

			tokens := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTTL(), nil)
			auth := service.NewAuthService(store.Accounts(), security.NewBcryptHasher(0), tokens)

			account, err := auth.Bootstrap(cmd.Context(), name, email, password)
			if errors.Is(err, service.ErrBootstrapDone) {
				return fmt.Errorf("bootstrap refused: %w", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created owner %s <%s> (id %s)\n", account.Name, account.Email, account.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Owner display name")
	cmd.Flags().StringVar(&email, "email", "", "Owner email address")
	cmd.Flags().StringVar(&password, "password", "", "Owner password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
