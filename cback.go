package cback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/cback/internal/logging"
	"github.com/aretw0/cback/internal/presentation/graph"
	"github.com/aretw0/cback/internal/runtime"
	"github.com/aretw0/cback/pkg/actions"
	"github.com/aretw0/cback/pkg/adapters/peer"
	"github.com/aretw0/cback/pkg/adapters/process"
	"github.com/aretw0/cback/pkg/domain"
	"github.com/aretw0/cback/pkg/ports"
	"github.com/aretw0/cback/pkg/registry"
	"github.com/google/uuid"
)

// Version is set at build time.
var Version = "dev"

// Configuration is what a run needs from the parsed configuration file.
// It is also passed unchanged to every action as Invocation.Config.
type Configuration interface {
	Snapshot() (domain.Snapshot, error)
}

// Engine is the high-level entry point for the cback library.
// It wraps the internal runtime and wires the default adapters.
type Engine struct {
	registry *registry.Registry
	runner   ports.CommandRunner
	peers    ports.PeerFactory
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	newID    func() string

	locker  ports.Locker
	lockKey string
	lockTTL time.Duration
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRegistry replaces the default registry of built-in and extension implementations.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithCommandRunner sets the runner for hooks and, unless WithPeerFactory is
// given, for remote peer commands.
func WithCommandRunner(r ports.CommandRunner) Option {
	return func(e *Engine) {
		e.runner = r
	}
}

// WithPeerFactory sets the managed peer transport.
func WithPeerFactory(f ports.PeerFactory) Option {
	return func(e *Engine) {
		e.peers = f
	}
}

// WithLocker serializes runs: key is held for at most ttl while a plan executes.
func WithLocker(l ports.Locker, key string, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = l
		e.lockKey = key
		e.lockTTL = ttl
	}
}

// WithRunIDGenerator overrides how run IDs are made.
func WithRunIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// New initializes a new cback Engine.
// By default, hooks and peers run through local processes, and only the
// validate built-in and the exec extension module are registered.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.runner == nil {
		eng.runner = process.NewRunner()
	}
	if eng.peers == nil {
		eng.peers = peer.NewFactory(eng.runner, peer.WithLogger(eng.logger))
	}
	if eng.registry == nil {
		eng.registry = DefaultRegistry(process.NewRunner())
	}
	if eng.newID == nil {
		eng.newID = newRunID
	}
	return eng
}

// DefaultRegistry returns a registry with the built-ins cback implements and
// the exec extension module backed by runner.
func DefaultRegistry(runner *process.Runner) *registry.Registry {
	r := registry.NewRegistry()
	actions.Register(r)
	r.RegisterModule(process.ExecModule, process.NewResolver(runner))
	return r
}

// Registry returns the registry actions are resolved from.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

func (e *Engine) newRuntime(logger *slog.Logger) *runtime.Engine {
	return runtime.NewEngine(
		runtime.WithBuiltins(e.registry),
		runtime.WithResolver(e.registry),
		runtime.WithCommandRunner(e.runner),
		runtime.WithPeerFactory(e.peers),
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithLogger(logger),
	)
}

// Plan validates options against cfg and returns the execution plan without running it.
func (e *Engine) Plan(ctx context.Context, options domain.Options, cfg Configuration) (domain.Plan, error) {
	snap, err := cfg.Snapshot()
	if err != nil {
		return nil, err
	}
	return e.newRuntime(e.logger).Plan(ctx, options, snap)
}

// Mermaid renders the action order graph for cfg, marking what options would run.
func (e *Engine) Mermaid(ctx context.Context, options domain.Options, cfg Configuration) (string, error) {
	snap, err := cfg.Snapshot()
	if err != nil {
		return "", err
	}
	g, err := runtime.OrderGraph(snap)
	if err != nil {
		return "", err
	}

	var overlay *graph.GraphOverlay
	if len(options.Actions) > 0 {
		plan, err := e.newRuntime(e.logger).Plan(ctx, options, snap)
		if err != nil {
			return "", err
		}
		overlay = &graph.GraphOverlay{}
		for _, b := range plan {
			if b.Kind == domain.KindManaged {
				overlay.Managed = append(overlay.Managed, b.Name)
			} else {
				overlay.Planned = append(overlay.Planned, b.Name)
			}
		}
	}
	return graph.GenerateMermaid(g, overlay), nil
}

// Run validates, plans and executes the requested actions.
// The returned report is never nil.
func (e *Engine) Run(ctx context.Context, configPath string, options domain.Options, cfg Configuration) (*domain.RunReport, error) {
	runID := e.newID()
	logger := e.logger.With("run_id", runID)
	started := time.Now()
	aborted := func(err error) (*domain.RunReport, error) {
		return &domain.RunReport{RunID: runID, Status: domain.StatusAborted, Started: started, Finished: time.Now()}, err
	}

	snap, err := cfg.Snapshot()
	if err != nil {
		return aborted(err)
	}
	rt := e.newRuntime(logger)
	plan, err := rt.Plan(ctx, options, snap)
	if err != nil {
		logger.Error("Unable to build execution plan.", "err", err)
		return aborted(err)
	}

	if e.locker != nil {
		unlock, err := e.locker.Lock(ctx, e.lockKey, e.lockTTL)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("Interrupted while waiting for run lock.", "key", e.lockKey)
				report, _ := aborted(nil)
				report.Status = domain.StatusInterrupted
				return report, &domain.InterruptedError{Err: ctx.Err()}
			}
			logger.Error("Unable to acquire run lock.", "key", e.lockKey, "err", err)
			return aborted(fmt.Errorf("run lock: %w", err))
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("Unable to release run lock.", "key", e.lockKey, "err", err)
			}
		}()
	}

	logger.Info("cback run started.", "actions", options.Actions, "version", Version)
	inv := domain.Invocation{ConfigPath: configPath, Options: options, Config: cfg}
	report, err := rt.Execute(ctx, runID, plan, inv)
	if err != nil {
		logger.Error("cback run failed.", "status", report.Status, "err", err)
		return report, err
	}
	logger.Info("cback run completed.", "status", report.Status, "peer_failures", len(report.PeerFailures))
	return report, nil
}

// RunActions runs the requested actions and reports only the outcome.
func (e *Engine) RunActions(ctx context.Context, configPath string, options domain.Options, cfg Configuration) error {
	_, err := e.Run(ctx, configPath, options, cfg)
	return err
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
