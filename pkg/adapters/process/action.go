package process

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aretw0/cback/pkg/domain"
	"github.com/aretw0/cback/pkg/ports"
)

// ExecModule is the reserved extension module whose function names a command line.
const ExecModule = "exec"

// Environment passed to command-backed actions.
const (
	EnvAction     = "CBACK_ACTION"
	EnvConfigPath = "CBACK_CONFIG_PATH"
	EnvFull       = "CBACK_FULL"
)

// ActionError reports a command-backed action that exited non-zero.
type ActionError struct {
	Command  []string
	ExitCode int
	Output   []string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("command %v exited with status %d", e.Command, e.ExitCode)
}

// CommandAction returns an action that runs argv. The invocation is passed
// through the environment, never as arguments.
func (r *Runner) CommandAction(argv []string, env map[string]string) domain.ActionFunc {
	return func(ctx context.Context, inv domain.Invocation) error {
		vars := map[string]string{
			EnvAction:     inv.Action,
			EnvConfigPath: inv.ConfigPath,
			EnvFull:       strconv.FormatBool(inv.Options.Full),
		}
		for k, v := range env {
			vars[k] = v
		}
		code, output, err := r.run(ctx, argv, vars)
		if err != nil {
			return err
		}
		if code != 0 {
			return &ActionError{Command: argv, ExitCode: code, Output: output}
		}
		return nil
	}
}

// Resolver resolves extensions of the exec module: the function is the command line to run.
type Resolver struct {
	runner *Runner
}

var _ ports.ImplementationResolver = (*Resolver)(nil)

// NewResolver creates an exec-module resolver backed by runner.
func NewResolver(runner *Runner) *Resolver {
	return &Resolver{runner: runner}
}

func (r *Resolver) Resolve(module, function string) (domain.ActionFunc, error) {
	if module != ExecModule {
		return nil, fmt.Errorf("module %q is not handled by the exec resolver", module)
	}
	argv, err := SplitCommand(function)
	if err != nil {
		return nil, err
	}
	return r.runner.CommandAction(argv, nil), nil
}
