package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Configuration-shape errors. Detected before any action runs.
var (
	// ErrNoActionsSpecified is returned when the requested action list is empty.
	ErrNoActionsSpecified = errors.New("no actions specified")
	// ErrUnknownAction is returned for names that are neither built-in nor configured extensions.
	ErrUnknownAction = errors.New("unknown action")
	// ErrNonCombinableAction is returned when a standalone action is combined with others.
	ErrNonCombinableAction = errors.New("action may not be combined with other actions")
	// ErrOrderResolution is returned when no execution order satisfies the configuration.
	ErrOrderResolution = errors.New("unable to determine proper action order")
)

// Resolution and execution errors.
var (
	ErrImplementationResolution = errors.New("unable to resolve action implementation")
	ErrHookExecution            = errors.New("hook execution failed")
	ErrActionExecution          = errors.New("action execution failed")
	ErrPeerExecution            = errors.New("managed action failed on peer")
	ErrActionUnavailable        = errors.New("action implementation not available")
	ErrInterrupted              = errors.New("run interrupted")
	ErrRunLocked                = errors.New("another run holds the lock")
)

// UnknownActionError names the offending action.
type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("action [%s] is not a valid action or extended action", e.Action)
}

func (e *UnknownActionError) Is(target error) bool { return target == ErrUnknownAction }

// NonCombinableActionError names the standalone action that was combined.
type NonCombinableActionError struct {
	Action string
}

func (e *NonCombinableActionError) Error() string {
	return fmt.Sprintf("action [%s] may not be combined with other actions", e.Action)
}

func (e *NonCombinableActionError) Is(target error) bool { return target == ErrNonCombinableAction }

// OrderResolutionError wraps a cycle or an unknown dependency reference.
type OrderResolutionError struct {
	Extension string
	Err       error
}

func (e *OrderResolutionError) Error() string {
	if e.Extension != "" {
		return fmt.Sprintf("%s: extension [%s]: %v", ErrOrderResolution, e.Extension, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrOrderResolution, e.Err)
}

func (e *OrderResolutionError) Unwrap() error        { return e.Err }
func (e *OrderResolutionError) Is(target error) bool { return target == ErrOrderResolution }

// ImplementationResolutionError is returned when an extension reference cannot be resolved.
type ImplementationResolutionError struct {
	Action   string
	Module   string
	Function string
	Err      error
}

func (e *ImplementationResolutionError) Error() string {
	return fmt.Sprintf("unable to resolve implementation [%s.%s] for action [%s]: %v", e.Module, e.Function, e.Action, e.Err)
}

func (e *ImplementationResolutionError) Unwrap() error { return e.Err }
func (e *ImplementationResolutionError) Is(target error) bool {
	return target == ErrImplementationResolution
}

// HookExecutionError reports a hook that could not run or exited non-zero.
type HookExecutionError struct {
	Action   string
	Timing   Timing
	Command  []string
	ExitCode int
	Err      error
}

func (e *HookExecutionError) Error() string {
	cmd := strings.Join(e.Command, " ")
	if e.Err != nil {
		return fmt.Sprintf("error executing %s hook for action [%s]: %s: %v", e.Timing, e.Action, cmd, e.Err)
	}
	return fmt.Sprintf("error (%d) executing %s hook for action [%s]: %s", e.ExitCode, e.Timing, e.Action, cmd)
}

func (e *HookExecutionError) Unwrap() error        { return e.Err }
func (e *HookExecutionError) Is(target error) bool { return target == ErrHookExecution }

// ActionExecutionError wraps the failure of a local action body.
type ActionExecutionError struct {
	Action string
	Err    error
}

func (e *ActionExecutionError) Error() string {
	return fmt.Sprintf("action [%s] failed: %v", e.Action, e.Err)
}

func (e *ActionExecutionError) Unwrap() error        { return e.Err }
func (e *ActionExecutionError) Is(target error) bool { return target == ErrActionExecution }

// PeerError records a managed action failure on one peer. It is reported, never raised.
type PeerError struct {
	Action string
	Peer   string
	Err    error
}

func (e *PeerError) Error() string {
	return fmt.Sprintf("failed to execute action [%s] on managed client [%s]: %v", e.Action, e.Peer, e.Err)
}

func (e *PeerError) Unwrap() error        { return e.Err }
func (e *PeerError) Is(target error) bool { return target == ErrPeerExecution }

// InterruptedError is returned when the run is stopped from outside.
type InterruptedError struct {
	Action string
	Err    error
}

func (e *InterruptedError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("run interrupted during action [%s]", e.Action)
	}
	return ErrInterrupted.Error()
}

func (e *InterruptedError) Unwrap() error        { return e.Err }
func (e *InterruptedError) Is(target error) bool { return target == ErrInterrupted }
