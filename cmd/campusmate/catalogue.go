package main

import (
	"fmt"

	"github.com/aretw0/campusmate/internal/cli"
	"github.com/spf13/cobra"
)

var catalogueCmd = &cobra.Command{
	Use:     "catalogue",
	Aliases: []string{"catalog"},
	Short:   "Print the workers and operations the planner may use",
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		app, err := newApp(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			fmt.Fprintln(out, app.Catalogue.Describe())
			return nil
		}
		for _, e := range app.Catalogue.Entries() {
			fmt.Fprintf(out, "%s: %s\n", e.Worker, e.Description)
			for _, c := range e.Capabilities {
				fmt.Fprintf(out, "  - %s: %s\n", c.Name, c.Description)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogueCmd)
	catalogueCmd.Flags().Bool("json", false, "Print the catalogue as JSON")
}
