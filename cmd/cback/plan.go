package main

import (
	"github.com/aretw0/cback/internal/cli"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan [flags] action...",
	Short: "Show the execution plan without running it",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Plan(cmd.Context(), runOptions(cmd, args), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}
