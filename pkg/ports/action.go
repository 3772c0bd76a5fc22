package ports

import (
	"context"

	"github.com/aretw0/cback/pkg/domain"
)

// ActionLookup finds statically bound action implementations by name.
type ActionLookup interface {
	Lookup(name string) (domain.ActionFunc, bool)
}

// ImplementationResolver turns an extension's module/function reference into a callable.
type ImplementationResolver interface {
	Resolve(module, function string) (domain.ActionFunc, error)
}

// CommandRunner runs an external process to completion.
// A non-zero exit is reported through exitCode, not err; err means the process could not run.
type CommandRunner interface {
	Run(ctx context.Context, argv []string) (exitCode int, output []string, err error)
}

// Peer is a managed remote peer.
type Peer interface {
	Name() string
	ExecuteManagedAction(ctx context.Context, action string, full bool) error
}

// PeerFactory builds the peer capability for a configured target.
type PeerFactory func(target domain.PeerTarget) Peer
