package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/campusmate"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of campusmate",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "campusmate version %s\n", strings.TrimSpace(campusmate.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
