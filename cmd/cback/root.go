package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/cback/internal/cli"
	"github.com/aretw0/cback/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cback [flags] action...",
	Short: "cback runs backup actions in order across a pool of machines",
	Long: `cback plans and runs backup actions (collect, stage, store, purge and any
configured extensions) in a deterministic order, with pre/post hooks, and can
ask managed peers to run their side of each action.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	sc := cli.NewSignalContext(context.Background())
	defer sc.Cancel()

	if err := rootCmd.ExecuteContext(sc); err != nil {
		if sig := sc.Signal(); sig != nil {
			fmt.Fprintf(os.Stderr, "Interrupted by %s.\n", sig)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		sc.Cancel()
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", config.DefaultPath, "Path to the configuration file")
	pf.BoolP("verbose", "b", false, "Log debug output")
	pf.BoolP("quiet", "q", false, "Only log errors")
	pf.StringP("logfile", "l", "", "Also append log output to this file")
	pf.String("log-format", "text", "Log output format: text or json")
	pf.BoolP("full", "f", false, "Ask managed peers for a full backup")
	pf.BoolP("managed", "M", false, "Also run managed actions on remote peers")
	pf.BoolP("managed-only", "N", false, "Only run managed actions on remote peers")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &cli.ExitError{Code: cli.ExitUsage, Err: err}
	})
}

func globalOptions(cmd *cobra.Command) cli.GlobalOptions {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	logfile, _ := cmd.Flags().GetString("logfile")
	logFormat, _ := cmd.Flags().GetString("log-format")
	return cli.GlobalOptions{
		ConfigPath: configPath,
		Verbose:    verbose,
		Quiet:      quiet,
		Logfile:    logfile,
		LogFormat:  logFormat,
	}
}

func runOptions(cmd *cobra.Command, args []string) cli.RunOptions {
	full, _ := cmd.Flags().GetBool("full")
	managed, _ := cmd.Flags().GetBool("managed")
	managedOnly, _ := cmd.Flags().GetBool("managed-only")
	return cli.RunOptions{
		GlobalOptions: globalOptions(cmd),
		Actions:       args,
		Full:          full,
		Managed:       managed,
		ManagedOnly:   managedOnly,
	}
}
