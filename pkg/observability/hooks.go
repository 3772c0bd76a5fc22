package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/cback/pkg/domain"
)

// Chain merges several sets of lifecycle hooks. Callbacks run in argument order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, set := range sets {
		out.OnActionStart = chainAction(out.OnActionStart, set.OnActionStart)
		out.OnActionFinish = chainAction(out.OnActionFinish, set.OnActionFinish)
		out.OnPeerFailure = chainAction(out.OnPeerFailure, set.OnPeerFailure)
		out.OnHook = chainHook(out.OnHook, set.OnHook)
	}
	return out
}

func chainAction(a, b func(context.Context, *domain.ActionEvent)) func(context.Context, *domain.ActionEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.ActionEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainHook(a, b func(context.Context, *domain.HookEvent)) func(context.Context, *domain.HookEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.HookEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

// LogHooks returns lifecycle callbacks that log each event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnActionStart: func(ctx context.Context, e *domain.ActionEvent) {
			logger.InfoContext(ctx, "Executing action.", "action", e.Action, "kind", e.Kind, "rank", e.Rank)
		},
		OnActionFinish: func(ctx context.Context, e *domain.ActionEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "Action failed.", "action", e.Action, "kind", e.Kind, "duration", e.Duration, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "Action finished.", "action", e.Action, "kind", e.Kind, "duration", e.Duration)
		},
		OnHook: func(ctx context.Context, e *domain.HookEvent) {
			logger.DebugContext(ctx, "Hook finished.", "action", e.Action, "timing", e.Timing, "exit_code", e.ExitCode, "duration", e.Duration)
		},
	}
}
