package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/campusmate/internal/cli"
	"github.com/aretw0/campusmate/pkg/frontdoor"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		app, err := newApp(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		user, _ := cmd.Flags().GetString("user")
		jsonMode, _ := cmd.Flags().GetBool("json")

		reply, err := app.Ask(sigCtx, frontdoor.Request{
			UserID:  user,
			Text:    strings.Join(args, " "),
			Channel: frontdoor.ChannelCLI,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonMode {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(reply)
		}
		fmt.Fprintln(out, reply.Text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringP("user", "u", "cli_user", "User id the question is asked as")
	askCmd.Flags().Bool("json", false, "Print the full reply as JSON")
}
