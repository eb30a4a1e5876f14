package main

import (
	"os"

	"github.com/aretw0/campusmate"
	"github.com/aretw0/campusmate/internal/cli"
	"github.com/aretw0/campusmate/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with 旦旦学姐 in the terminal",
	Long:  `Starts an interactive chat. Type "exit" or press Ctrl+D to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		app, err := newApp(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		user, _ := cmd.Flags().GetString("user")
		plain, _ := cmd.Flags().GetBool("plain")

		render := tui.Plain
		interactive := term.IsTerminal(int(os.Stdout.Fd()))
		if interactive && !plain {
			render = tui.NewRenderer(os.Stdout)
			tui.PrintBanner(os.Stdout, campusmate.Version)
		}

		return cli.Chat(sigCtx, app, cli.ChatOptions{
			UserID: user,
			In:     os.Stdin,
			Out:    os.Stdout,
			Render: render,
			Greet:  interactive,
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("user", "u", "cli_user", "User id the conversation history is kept under")
	chatCmd.Flags().Bool("plain", false, "Disable markdown rendering and the banner")
}
