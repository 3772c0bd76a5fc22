package runtime

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/cback/internal/logging"
	"github.com/aretw0/cback/pkg/domain"
	"github.com/aretw0/cback/pkg/ports"
)

var (
	errNoRunner      = errors.New("no command runner configured")
	errNoPeerFactory = errors.New("no peer transport configured")
	errEmptyCommand  = errors.New("empty hook command")
)

// Engine validates, plans and executes runs. A run is strictly sequential:
// one binding at a time, one peer at a time.
type Engine struct {
	builtins ports.ActionLookup
	resolver ports.ImplementationResolver
	runner   ports.CommandRunner
	peers    ports.PeerFactory
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	now      func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithBuiltins sets where built-in action implementations are looked up.
func WithBuiltins(l ports.ActionLookup) EngineOption {
	return func(e *Engine) {
		e.builtins = l
	}
}

// WithResolver sets the resolver for extension implementations.
func WithResolver(r ports.ImplementationResolver) EngineOption {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithCommandRunner sets the runner used for hook commands.
func WithCommandRunner(r ports.CommandRunner) EngineOption {
	return func(e *Engine) {
		e.runner = r
	}
}

// WithPeerFactory sets the transport used for managed bindings.
func WithPeerFactory(f ports.PeerFactory) EngineOption {
	return func(e *Engine) {
		e.peers = f
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine. Unset collaborators fail only when first needed.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Plan validates the requested actions and resolves them into an ordered plan.
// Nothing is executed.
func (e *Engine) Plan(ctx context.Context, opts domain.Options, snap domain.Snapshot) (domain.Plan, error) {
	e.logger.Debug("Run state changed.", "state", domain.StatusValidating)
	if err := Validate(opts.Actions, snap.ExtensionNames()); err != nil {
		return nil, err
	}

	e.logger.Debug("Run state changed.", "state", domain.StatusPlanning)
	ranks, err := ResolveOrder(snap, e.logger)
	if err != nil {
		return nil, err
	}
	pre, post := BuildHookMaps(snap.Hooks)
	catalog, err := BuildCatalog(CatalogInput{
		Local:      opts.IncludeLocal(),
		Managed:    opts.IncludeManaged(),
		Extensions: snap.Extensions,
		Builtins:   e.builtins,
		Resolver:   e.resolver,
		Ranks:      ranks,
		PreHooks:   pre,
		PostHooks:  post,
		Targets:    snap.ManagedTargets,
	})
	if err != nil {
		return nil, err
	}
	plan, err := BuildPlan(opts.Actions, catalog)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Execution plan built.", "bindings", plan.Names())
	return plan, nil
}

// Run plans and executes in one step.
func (e *Engine) Run(ctx context.Context, runID string, inv domain.Invocation, snap domain.Snapshot) (*domain.RunReport, error) {
	plan, err := e.Plan(ctx, inv.Options, snap)
	if err != nil {
		return &domain.RunReport{RunID: runID, Status: domain.StatusAborted, Started: e.now(), Finished: e.now()}, err
	}
	return e.Execute(ctx, runID, plan, inv)
}

// Execute walks the plan in order. Local and hook failures abort the run;
// managed peer failures are logged, recorded in the report and skipped.
func (e *Engine) Execute(ctx context.Context, runID string, plan domain.Plan, inv domain.Invocation) (*domain.RunReport, error) {
	report := &domain.RunReport{
		RunID:   runID,
		Status:  domain.StatusExecuting,
		Plan:    plan,
		Started: e.now(),
	}
	e.logger.Debug("Run state changed.", "state", domain.StatusExecuting, "bindings", len(plan))

	for _, b := range plan {
		if err := ctx.Err(); err != nil {
			return e.finish(report, domain.StatusInterrupted), &domain.InterruptedError{Err: err}
		}
		inv.Action = b.Name
		if err := e.executeBinding(ctx, report, b, inv); err != nil {
			status := domain.StatusAborted
			if errors.Is(err, domain.ErrInterrupted) {
				status = domain.StatusInterrupted
			}
			return e.finish(report, status), err
		}
		report.Executed = append(report.Executed, b.String())
	}

	e.finish(report, domain.StatusCompleted)
	if n := len(report.PeerFailures); n > 0 {
		e.logger.Warn("Run completed with managed peer failures.", "failures", n)
	}
	return report, nil
}

func (e *Engine) finish(report *domain.RunReport, status domain.RunStatus) *domain.RunReport {
	report.Status = status
	report.Finished = e.now()
	e.logger.Debug("Run state changed.", "state", status, "duration", report.Finished.Sub(report.Started))
	return report
}

func (e *Engine) executeBinding(ctx context.Context, report *domain.RunReport, b domain.Binding, inv domain.Invocation) error {
	start := e.now()
	e.emitAction(ctx, e.hooks.OnActionStart, domain.EventActionStart, report.RunID, b, "", 0, nil)
	e.logger.Debug("Executing action.", "action", b.Name, "kind", b.Kind, "rank", b.Rank)

	err := e.runHooks(ctx, report.RunID, b.PreHooks)
	if err == nil {
		switch b.Kind {
		case domain.KindLocal:
			err = e.runLocal(ctx, b, inv)
		case domain.KindManaged:
			err = e.runManaged(ctx, report, b, inv)
		}
	}
	if err == nil {
		err = e.runHooks(ctx, report.RunID, b.PostHooks)
	}

	e.emitAction(ctx, e.hooks.OnActionFinish, domain.EventActionFinish, report.RunID, b, "", e.now().Sub(start), err)
	return err
}

func (e *Engine) runLocal(ctx context.Context, b domain.Binding, inv domain.Invocation) error {
	if b.Implementation == nil {
		return &domain.ActionExecutionError{Action: b.Name, Err: domain.ErrActionUnavailable}
	}
	e.logger.Debug("Calling action function.", "action", b.Name, "rank", b.Rank)
	if err := b.Implementation(ctx, inv); err != nil {
		if ctx.Err() != nil {
			return &domain.InterruptedError{Action: b.Name, Err: err}
		}
		return &domain.ActionExecutionError{Action: b.Name, Err: err}
	}
	return nil
}

func (e *Engine) runManaged(ctx context.Context, report *domain.RunReport, b domain.Binding, inv domain.Invocation) error {
	for _, target := range b.Targets {
		if err := ctx.Err(); err != nil {
			return &domain.InterruptedError{Action: b.Name, Err: err}
		}
		e.logger.Debug("Executing managed action on peer.", "action", b.Name, "peer", target.Name)

		err := errNoPeerFactory
		if e.peers != nil {
			err = e.peers(target).ExecuteManagedAction(ctx, b.Name, inv.Options.Full)
		}
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return &domain.InterruptedError{Action: b.Name, Err: err}
		}

		perr := &domain.PeerError{Action: b.Name, Peer: target.Name, Err: err}
		e.logger.Error("Managed action failed on peer; continuing.", "action", b.Name, "peer", target.Name, "err", err)
		report.PeerFailures = append(report.PeerFailures, perr)
		e.emitAction(ctx, e.hooks.OnPeerFailure, domain.EventPeerFailure, report.RunID, b, target.Name, 0, perr)
	}
	return nil
}

func (e *Engine) runHooks(ctx context.Context, runID string, hooks []domain.Hook) error {
	for _, h := range hooks {
		if err := e.runHook(ctx, runID, h); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) runHook(ctx context.Context, runID string, h domain.Hook) error {
	if len(h.Command) == 0 {
		return &domain.HookExecutionError{Action: h.Action, Timing: h.Timing, Err: errEmptyCommand}
	}
	if e.runner == nil {
		return &domain.HookExecutionError{Action: h.Action, Timing: h.Timing, Command: h.Command, Err: errNoRunner}
	}

	e.logger.Debug("Executing hook.", "timing", h.Timing, "action", h.Action, "command", h.Command[0])
	start := e.now()
	code, output, err := e.runner.Run(ctx, h.Command)
	for _, line := range output {
		e.logger.Debug("Hook output.", "action", h.Action, "line", line)
	}
	if e.hooks.OnHook != nil {
		e.hooks.OnHook(ctx, &domain.HookEvent{
			EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventHook, RunID: runID},
			Action:    h.Action,
			Timing:    h.Timing,
			Command:   h.Command,
			ExitCode:  code,
			Duration:  e.now().Sub(start),
		})
	}

	if err == nil && code == 0 {
		return nil
	}
	if ctx.Err() != nil {
		return &domain.InterruptedError{Action: h.Action, Err: ctx.Err()}
	}
	return &domain.HookExecutionError{Action: h.Action, Timing: h.Timing, Command: h.Command, ExitCode: code, Err: err}
}

func (e *Engine) emitAction(ctx context.Context, fn func(context.Context, *domain.ActionEvent), typ domain.EventType, runID string, b domain.Binding, peer string, d time.Duration, err error) {
	if fn == nil {
		return
	}
	fn(ctx, &domain.ActionEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), Type: typ, RunID: runID},
		Action:    b.Name,
		Kind:      b.Kind,
		Rank:      b.Rank,
		Peer:      peer,
		Duration:  d,
		Err:       err,
	})
}
