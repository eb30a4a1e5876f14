package ports

import (
	"context"

	"github.com/aretw0/campusmate/pkg/domain"
)

// Actor is a routable participant of the coordinator queue.
// Handle may only compute and return follow-up messages; it never calls another actor directly.
// The returned messages are enqueued after Handle returns.
type Actor interface {
	ID() string
	Handle(ctx context.Context, msg domain.Message) ([]domain.Message, error)
}

// Worker executes a single plan step.
// Execute must not panic or return errors across its boundary: every problem is a ToolResult.
type Worker interface {
	ID() string
	Description() string
	Capabilities() []domain.Capability
	Execute(ctx context.Context, userID string, task domain.TaskPayload) domain.ToolResult
}
