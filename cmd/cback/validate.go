package main

import (
	"github.com/aretw0/cback/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "Check the configuration file for consistency",
	Long:  `Loads the configuration, checks hooks, extensions and peers, and makes sure the action order can be resolved.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cli.ValidateConfig(cmd.Context(), globalOptions(cmd), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
