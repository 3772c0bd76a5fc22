package domain

import (
	"context"
	"fmt"
	"strings"
)

// Kind tells whether a binding runs in-process or on remote peers.
type Kind int

const (
	// KindLocal executes the action body in-process.
	KindLocal Kind = iota
	// KindManaged delegates the action to one or more managed peers.
	KindManaged
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindManaged:
		return "managed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Timing places a hook before or after the action body.
type Timing int

const (
	TimingBefore Timing = iota
	TimingAfter
)

func (t Timing) String() string {
	if t == TimingAfter {
		return "post-action"
	}
	return "pre-action"
}

// Hook is an external command attached to an action.
// Hooks of the same timing run in declaration order.
type Hook struct {
	Action  string   `json:"action" yaml:"action"`
	Command []string `json:"command" yaml:"command"`
	Timing  Timing   `json:"timing" yaml:"timing"`
}

func (h Hook) String() string {
	return strings.Join(h.Command, " ")
}

// Invocation is what an action implementation receives.
// Config is the embedding program's parsed configuration and is opaque to the scheduler.
type Invocation struct {
	Action     string
	ConfigPath string
	Options    Options
	Config     any
}

// ActionFunc is the body of a local action.
type ActionFunc func(ctx context.Context, inv Invocation) error

// PeerTarget identifies a managed peer and how to reach it.
// Fallbacks from global options are already applied.
type PeerTarget struct {
	Name         string   `json:"name"`
	RemoteUser   string   `json:"remote_user,omitempty"`
	RshCommand   []string `json:"rsh_command,omitempty"`
	CbackCommand []string `json:"cback_command,omitempty"`
}

// Binding is a schedulable instance of an action, either local or for a set of managed peers.
// Bindings are built fresh for every run and never mutated afterwards.
type Binding struct {
	Name      string
	Rank      int
	Kind      Kind
	PreHooks  []Hook
	PostHooks []Hook

	// Implementation is set for KindLocal only.
	Implementation ActionFunc
	// Targets is set for KindManaged only.
	Targets []PeerTarget
}

// NewLocalBinding creates a binding that runs impl in-process.
func NewLocalBinding(name string, rank int, impl ActionFunc, pre, post []Hook) Binding {
	return Binding{
		Name:           name,
		Rank:           rank,
		Kind:           KindLocal,
		PreHooks:       pre,
		PostHooks:      post,
		Implementation: impl,
	}
}

// NewManagedBinding creates a binding that runs the named action on each target in order.
func NewManagedBinding(name string, rank int, targets []PeerTarget) Binding {
	return Binding{
		Name:    name,
		Rank:    rank,
		Kind:    KindManaged,
		Targets: targets,
	}
}

func (b Binding) String() string {
	if b.Kind == KindManaged {
		names := make([]string, len(b.Targets))
		for i, t := range b.Targets {
			names[i] = t.Name
		}
		return fmt.Sprintf("%s@[%s]", b.Name, strings.Join(names, ","))
	}
	return b.Name
}

// CompareBindings orders by rank, then local before managed at equal rank.
// It returns a negative number, zero or a positive number like cmp.Compare.
func CompareBindings(a, b Binding) int {
	if a.Rank != b.Rank {
		if a.Rank < b.Rank {
			return -1
		}
		return 1
	}
	return int(a.Kind) - int(b.Kind)
}

// Plan is the ordered sequence of bindings for one run.
type Plan []Binding

// Names returns the binding descriptions in plan order.
func (p Plan) Names() []string {
	out := make([]string, len(p))
	for i, b := range p {
		out[i] = b.String()
	}
	return out
}
