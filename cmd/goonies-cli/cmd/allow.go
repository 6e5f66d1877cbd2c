package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/nfrund/goonies/internal/database"
	"github.com/spf13/cobra"
)

var allowCmd = &cobra.Command{
	Use:   "allow",
	Short: "Manage the registration allow-list",
}

var allowAddCmd = &cobra.Command{
	Use:   "add <username>...",
	Short: "Allow usernames to register",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStores(cmd.Context(), func(ctx context.Context, stores *database.Stores) error {
			for _, name := range args {
				name = strings.TrimSpace(name)
				if name == "" {
					continue
				}
				if _, err := stores.Allow.Upsert(ctx, name); err != nil {
					return fmt.Errorf("allow %s: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "allowed %s\n", name)
			}
			return nil
		})
	},
}

var allowRmCmd = &cobra.Command{
	Use:     "rm <username>...",
	Aliases: []string{"remove"},
	Short:   "Remove usernames from the allow-list",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStores(cmd.Context(), func(ctx context.Context, stores *database.Stores) error {
			for _, name := range args {
				if err := stores.Allow.Delete(ctx, name); err != nil {
					return fmt.Errorf("remove %s: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", name)
			}
			return nil
		})
	},
}

var allowLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List allowed usernames",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStores(cmd.Context(), func(ctx context.Context, stores *database.Stores) error {
			entries, err := stores.Allow.List(ctx)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), e.Username)
			}
			return nil
		})
	},
}

func init() {
	allowCmd.AddCommand(allowAddCmd, allowRmCmd, allowLsCmd)
	rootCmd.AddCommand(allowCmd)
}
