package main

import (
	"strings"

	"github.com/aretw0/cback"
	"github.com/aretw0/cback/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cback",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		tui.PrintBanner(cmd.OutOrStdout(), strings.TrimSpace(cback.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
