package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/campusmate/internal/logging"
	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/ports"
)

// Actor adapts a Worker to the coordinator queue.
type Actor struct {
	worker ports.Worker
	logger *slog.Logger
}

// ActorOption configures an Actor.
type ActorOption func(*Actor)

// WithActorLogger configures a logger for the Actor.
func WithActorLogger(logger *slog.Logger) ActorOption {
	return func(a *Actor) {
		a.logger = logger
	}
}

// NewActor wraps w so the coordinator can route task requests to it.
func NewActor(w ports.Worker, opts ...ActorOption) *Actor {
	a := &Actor{worker: w, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Actor) ID() string { return a.worker.ID() }

// Handle runs a task_request and replies with a step_result.
func (a *Actor) Handle(ctx context.Context, msg domain.Message) ([]domain.Message, error) {
	if msg.Type != domain.MessageTaskRequest {
		a.logger.Warn("worker ignoring message", "worker", a.ID(), "type", msg.Type, "session_id", msg.SessionID)
		return nil, nil
	}
	req, ok := msg.Payload.(domain.TaskRequestPayload)
	if !ok {
		return nil, fmt.Errorf("worker %s: unexpected payload %T", a.ID(), msg.Payload)
	}

	result := Run(ctx, a.worker, req.UserID, req.Task)
	a.logger.Debug("step executed",
		"worker", a.ID(),
		"operation", req.Task.Operation,
		"status", result.Status,
		"session_id", msg.SessionID,
	)
	return []domain.Message{msg.Reply(domain.MessageStepResult, domain.StepResultPayload{
		StepIndex: req.StepIndex,
		Task:      req.Task,
		Result:    result,
	})}, nil
}

// Run executes a task, converting a panic into an error result.
func Run(ctx context.Context, w ports.Worker, userID string, task domain.TaskPayload) (result domain.ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			result = domain.Errored(domain.ReasonPanic, fmt.Sprintf("执行“%s”时出了点意外：%v", task.Operation, r))
		}
	}()
	return w.Execute(ctx, userID, task)
}

// NewCatalogue builds the static capability catalogue from a fixed worker list.
func NewCatalogue(workers ...ports.Worker) (*domain.Catalogue, error) {
	entries := make([]domain.CatalogueEntry, 0, len(workers))
	for _, w := range workers {
		entries = append(entries, domain.CatalogueEntry{
			Worker:       w.ID(),
			Description:  w.Description(),
			Capabilities: w.Capabilities(),
		})
	}
	return domain.NewCatalogue(entries...)
}
