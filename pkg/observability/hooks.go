package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/campusmate/pkg/domain"
)

// LogHooks writes one structured line per step and per finished session.
// Messages and transitions are logged at debug level by the coordinator itself.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepResult: func(ctx context.Context, e *domain.StepEvent) {
			logger.Info("step_result",
				"session_id", e.SessionID,
				"worker", e.Worker,
				"operation", e.Operation,
				"status", e.Result.Status,
				"reason", e.Result.Reason,
				"duration", e.Duration,
			)
		},
		OnTerminal: func(ctx context.Context, e *domain.TerminalEvent) {
			logger.Info("session_terminal",
				"session_id", e.SessionID,
				"status", e.Status,
				"outcome", e.Outcome,
				"duration", e.Duration,
			)
		},
	}
}

// Combine fans every event out to all hook sets, in order. Nil callbacks are skipped.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks

	var onMessage []func(context.Context, *domain.MessageEvent)
	var onTransition []func(context.Context, *domain.TransitionEvent)
	var onStep []func(context.Context, *domain.StepEvent)
	var onTerminal []func(context.Context, *domain.TerminalEvent)
	for _, h := range sets {
		if h.OnMessage != nil {
			onMessage = append(onMessage, h.OnMessage)
		}
		if h.OnTransition != nil {
			onTransition = append(onTransition, h.OnTransition)
		}
		if h.OnStepResult != nil {
			onStep = append(onStep, h.OnStepResult)
		}
		if h.OnTerminal != nil {
			onTerminal = append(onTerminal, h.OnTerminal)
		}
	}

	if len(onMessage) > 0 {
		out.OnMessage = func(ctx context.Context, e *domain.MessageEvent) {
			for _, fn := range onMessage {
				fn(ctx, e)
			}
		}
	}
	if len(onTransition) > 0 {
		out.OnTransition = func(ctx context.Context, e *domain.TransitionEvent) {
			for _, fn := range onTransition {
				fn(ctx, e)
			}
		}
	}
	if len(onStep) > 0 {
		out.OnStepResult = func(ctx context.Context, e *domain.StepEvent) {
			for _, fn := range onStep {
				fn(ctx, e)
			}
		}
	}
	if len(onTerminal) > 0 {
		out.OnTerminal = func(ctx context.Context, e *domain.TerminalEvent) {
			for _, fn := range onTerminal {
				fn(ctx, e)
			}
		}
	}
	return out
}
