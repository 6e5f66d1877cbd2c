package cmd

import (
	"context"
	"fmt"

	"github.com/nfrund/goonies/internal/database"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete ended events and expired password resets once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStores(cmd.Context(), func(ctx context.Context, stores *database.Stores) error {
			res, err := database.NewSweeper(stores.Events, stores.Resets).Sweep(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d events, %d password resets\n", res.Events, res.Resets)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
