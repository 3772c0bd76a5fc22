package main

import (
	"github.com/aretw0/cback/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [flags] [action...]",
	Short: "Export the action order graph",
	Long:  `Outputs a Mermaid diagram (graph TD) of the action order. Actions given as arguments are highlighted as they would run.`,
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Graph(cmd.Context(), runOptions(cmd, args), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
