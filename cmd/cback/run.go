package main

import (
	"github.com/aretw0/cback/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [flags] action...",
	Short: "Run the given actions",
	Long: `Validates the requested actions, orders them and runs them. Use 'all' for
collect, stage, store and purge. rebuild, validate, initialize and all must
be given alone.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Execute(cmd.Context(), runOptions(cmd, args), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	// 'cback collect stage' is the same as 'cback run collect stage'.
	rootCmd.Args = cobra.ArbitraryArgs
	rootCmd.RunE = runCmd.RunE
}
