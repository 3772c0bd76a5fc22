package cli

import (
	"errors"

	"github.com/aretw0/cback/internal/config"
	"github.com/aretw0/cback/pkg/domain"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitLogging     = 3
	ExitConfig      = 4
	ExitInterrupted = 5
	ExitExecution   = 6
)

// ExitError is an error that carries the process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return classify(err)
}

// classify maps an engine error to its exit code.
// Anything that is not a configuration or planning problem happened while executing.
func classify(err error) int {
	switch {
	case errors.Is(err, domain.ErrInterrupted):
		return ExitInterrupted
	case errors.Is(err, domain.ErrNoActionsSpecified),
		errors.Is(err, domain.ErrUnknownAction),
		errors.Is(err, domain.ErrNonCombinableAction),
		errors.Is(err, domain.ErrOrderResolution),
		errors.Is(err, domain.ErrImplementationResolution),
		errors.Is(err, config.ErrInvalid):
		return ExitConfig
	default:
		return ExitExecution
	}
}

func exitError(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return &ExitError{Code: classify(err), Err: err}
}
