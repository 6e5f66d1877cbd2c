package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/nfrund/goonies/internal/database"
	"github.com/nfrund/goonies/internal/domain"
	"github.com/nfrund/goonies/internal/handlers"
	"github.com/spf13/cobra"
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the default admin account unless an admin exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStores(cmd.Context(), func(ctx context.Context, stores *database.Stores) error {
			return seedAdmin(ctx, cmd, stores.Users)
		})
	},
}

func seedAdmin(ctx context.Context, cmd *cobra.Command, users domain.UserRepository) error {
	if admin, err := users.FindAnyAdmin(ctx); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "admin already exists: %s\n", admin.Username)
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	admin, err := handlers.CreateSeedAdmin(ctx, users)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", admin.Username, admin.IDString())
	return nil
}

func init() {
	rootCmd.AddCommand(seedAdminCmd)
}
