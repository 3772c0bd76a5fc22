package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventActionStart  EventType = "action_start"
	EventActionFinish EventType = "action_finish"
	EventHook         EventType = "hook"
	EventPeerFailure  EventType = "peer_failure"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// ActionEvent describes a binding entering or leaving execution, or a peer failing.
type ActionEvent struct {
	EventBase
	Action   string        `json:"action"`
	Kind     Kind          `json:"kind"`
	Rank     int           `json:"rank"`
	Peer     string        `json:"peer,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// HookEvent describes one finished hook command.
type HookEvent struct {
	EventBase
	Action   string        `json:"action"`
	Timing   Timing        `json:"timing"`
	Command  []string      `json:"command"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
}

// LifecycleHooks are observability callbacks. They are unrelated to the
// configured pre/post-action hook commands and must not block.
type LifecycleHooks struct {
	OnActionStart  func(context.Context, *ActionEvent)
	OnActionFinish func(context.Context, *ActionEvent)
	OnHook         func(context.Context, *HookEvent)
	OnPeerFailure  func(context.Context, *ActionEvent)
}
