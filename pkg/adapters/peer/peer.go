package peer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/cback/internal/logging"
	"github.com/aretw0/cback/pkg/domain"
	"github.com/aretw0/cback/pkg/ports"
)

// Defaults used when neither the peer nor the global options set a command.
var (
	DefaultRshCommand   = []string{"/usr/bin/ssh", "-B", "-q", "-C"}
	DefaultCbackCommand = []string{"/usr/bin/cback"}
)

// ErrRemoteCommand is returned when the remote cback exits non-zero.
var ErrRemoteCommand = errors.New("remote command failed")

// RemotePeer runs managed actions on a peer by invoking cback through an rsh-style command.
type RemotePeer struct {
	target domain.PeerTarget
	runner ports.CommandRunner
	logger *slog.Logger
}

var _ ports.Peer = (*RemotePeer)(nil)

// Option configures remote peers built by NewFactory.
type Option func(*RemotePeer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *RemotePeer) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a remote peer for target.
func New(target domain.PeerTarget, runner ports.CommandRunner, opts ...Option) *RemotePeer {
	p := &RemotePeer{
		target: target,
		runner: runner,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewFactory returns a ports.PeerFactory building RemotePeers over runner.
func NewFactory(runner ports.CommandRunner, opts ...Option) ports.PeerFactory {
	return func(target domain.PeerTarget) ports.Peer {
		return New(target, runner, opts...)
	}
}

func (p *RemotePeer) Name() string {
	return p.target.Name
}

// Command returns the argv that runs action on the peer:
// rsh [user@]host "cback [--full] action".
func (p *RemotePeer) Command(action string, full bool) []string {
	rsh := p.target.RshCommand
	if len(rsh) == 0 {
		rsh = DefaultRshCommand
	}
	cback := p.target.CbackCommand
	if len(cback) == 0 {
		cback = DefaultCbackCommand
	}

	remote := strings.Join(cback, " ")
	if full {
		remote += " --full"
	}
	remote += " " + action

	dest := p.target.Name
	if p.target.RemoteUser != "" {
		dest = p.target.RemoteUser + "@" + dest
	}

	argv := make([]string, 0, len(rsh)+2)
	argv = append(argv, rsh...)
	return append(argv, dest, remote)
}

// ExecuteManagedAction runs action on the peer and waits for it.
func (p *RemotePeer) ExecuteManagedAction(ctx context.Context, action string, full bool) error {
	argv := p.Command(action, full)
	p.logger.Debug("Executing remote command.", "peer", p.target.Name, "command", strings.Join(argv, " "))

	code, output, err := p.runner.Run(ctx, argv)
	for _, line := range output {
		p.logger.Debug("Remote output.", "peer", p.target.Name, "line", line)
	}
	if err != nil {
		return fmt.Errorf("running %s: %w", argv[0], err)
	}
	if code != 0 {
		return fmt.Errorf("%w: exit status %d: %s", ErrRemoteCommand, code, argv[len(argv)-1])
	}
	return nil
}
