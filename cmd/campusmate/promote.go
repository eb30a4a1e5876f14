package main

import (
	"fmt"

	"github.com/aretw0/campusmate/internal/cli"
	"github.com/spf13/cobra"
)

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Share knowledge taught by enough distinct users",
	Long: `Copies personal facts that at least knowledge.promotion_threshold distinct users
taught into the shared categories. Only useful with a durable facts backend (sqlite).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		app, err := newApp(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if n, _ := cmd.Flags().GetInt("min-users"); n > 0 {
			app.Config.Knowledge.PromotionThreshold = n
		}
		report, err := app.Promote(sigCtx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "candidates: %d, promoted: %d\n", report.Candidates, report.Promoted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promoteCmd)
	promoteCmd.Flags().Int("min-users", 0, "Distinct users required (overrides knowledge.promotion_threshold)")
}
