package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/cback/internal/presentation/tui"
	"github.com/aretw0/cback/pkg/domain"
	"github.com/aretw0/cback/pkg/observability"
)

// GlobalOptions are the flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
	Logfile    string
	LogFormat  string
}

// RunOptions contains all the configuration for the run, plan and graph commands.
type RunOptions struct {
	GlobalOptions
	Actions     []string
	Full        bool
	Managed     bool
	ManagedOnly bool
}

func (o RunOptions) domainOptions() domain.Options {
	return domain.Options{
		Actions:     o.Actions,
		Full:        o.Full,
		Managed:     o.Managed,
		ManagedOnly: o.ManagedOnly,
	}
}

// Execute handles the 'run' command: load the configuration, then plan and
// execute the requested actions. The error, if any, is an *ExitError.
func Execute(ctx context.Context, opts RunOptions, stderr io.Writer) error {
	logger, closeLog, err := createLogger(opts.GlobalOptions, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		logger.Error("Unable to load configuration.", "err", err)
		return err
	}

	metrics := observability.NewMetrics()
	hooks := observability.Chain(observability.LogHooks(logger), metrics.Hooks())
	eng, closeEngine, err := createEngine(cfg, logger, hooks)
	if err != nil {
		logger.Error("Unable to configure engine.", "err", err)
		return err
	}
	defer closeEngine()

	if addr := cfg.Metrics.Listen; addr != "" {
		serveCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := observability.Serve(serveCtx, addr, metrics, logger); err != nil {
				logger.Warn("Metrics server stopped.", "addr", addr, "err", err)
			}
		}()
	}

	report, runErr := eng.Run(ctx, cfg.Path(), opts.domainOptions(), cfg)
	metrics.ObserveRun(report)
	if path := cfg.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			logger.Warn("Unable to write metrics textfile.", "path", path, "err", err)
		}
	}
	return exitError(runErr)
}

// Plan prints the execution plan without running anything.
// Terminals get rendered markdown, anything else one binding per line.
func Plan(ctx context.Context, opts RunOptions, stdout, stderr io.Writer) error {
	logger, closeLog, err := createLogger(opts.GlobalOptions, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	eng, closeEngine, err := createEngine(cfg, logger, domain.LifecycleHooks{})
	if err != nil {
		return err
	}
	defer closeEngine()

	plan, err := eng.Plan(ctx, opts.domainOptions(), cfg)
	if err != nil {
		return exitError(err)
	}

	if isTerminal(stdout) {
		out, err := tui.NewRenderer()(tui.PlanMarkdown(plan))
		if err == nil {
			_, err = fmt.Fprint(stdout, out)
			return err
		}
		logger.Debug("Falling back to plain plan output.", "err", err)
	}
	_, err = fmt.Fprint(stdout, tui.PlanText(plan))
	return err
}

// Graph prints the Mermaid diagram of the action order. When actions are
// given, the bindings they would run are highlighted.
func Graph(ctx context.Context, opts RunOptions, stdout, stderr io.Writer) error {
	logger, closeLog, err := createLogger(opts.GlobalOptions, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	eng, closeEngine, err := createEngine(cfg, logger, domain.LifecycleHooks{})
	if err != nil {
		return err
	}
	defer closeEngine()

	out, err := eng.Mermaid(ctx, opts.domainOptions(), cfg)
	if err != nil {
		return exitError(err)
	}
	_, err = fmt.Fprint(stdout, out)
	return err
}

// ValidateConfig loads the configuration and checks that the action order resolves.
func ValidateConfig(ctx context.Context, opts GlobalOptions, stdout, stderr io.Writer) error {
	logger, closeLog, err := createLogger(opts, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	eng, closeEngine, err := createEngine(cfg, logger, domain.LifecycleHooks{})
	if err != nil {
		return err
	}
	defer closeEngine()

	if _, err := eng.Mermaid(ctx, domain.Options{}, cfg); err != nil {
		return exitError(err)
	}
	_, err = fmt.Fprintf(stdout, "Configuration %s is valid.\n", cfg.Path())
	return err
}
