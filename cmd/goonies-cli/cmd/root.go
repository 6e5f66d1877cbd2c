package cmd

import (
	"context"
	"os"

	"github.com/nfrund/goonies/internal/config"
	"github.com/nfrund/goonies/internal/database"
	"github.com/nfrund/goonies/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "goonies-cli",
	Short: "Goonies admin CLI",
	Long: `goonies-cli administers a Goonies deployment.

Available commands:
  allow        Manage the registration allow-list
  seed-admin   Create the first admin account
  card         Build card render URLs
  sweep        Delete ended events and expired reset tokens once
  version      Print the CLI version

Commands that touch the database read the same environment as the server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.NewWithWriter(cmd.ErrOrStderr(), os.Getenv("LOG_FORMAT"), valueOr(os.Getenv("LOG_LEVEL"), "warn"))
	},
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// withStores opens the database for the length of fn.
func withStores(ctx context.Context, fn func(ctx context.Context, stores *database.Stores) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	conn, stores, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close(context.WithoutCancel(ctx))
	return fn(ctx, stores)
}
