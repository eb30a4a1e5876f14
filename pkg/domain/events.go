package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventMessage    EventType = "message"
	EventTransition EventType = "transition"
	EventStepResult EventType = "step_result"
	EventTerminal   EventType = "terminal"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// MessageEvent is emitted when the coordinator dequeues a message.
type MessageEvent struct {
	EventBase
	Message Message `json:"message"`
}

// TransitionEvent is emitted on every session status change.
type TransitionEvent struct {
	EventBase
	From SessionStatus `json:"from"`
	To   SessionStatus `json:"to"`
}

// StepEvent is emitted when a step result is recorded.
type StepEvent struct {
	EventBase
	Worker    string        `json:"worker"`
	Operation string        `json:"operation"`
	Result    ToolResult    `json:"result"`
	Duration  time.Duration `json:"duration"`
}

// TerminalEvent is emitted once per session when it reaches a terminal status.
type TerminalEvent struct {
	EventBase
	Status   SessionStatus `json:"status"`
	Outcome  Outcome       `json:"outcome"`
	Duration time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for coordinator observability.
// Any hook may be nil.
type LifecycleHooks struct {
	OnMessage    func(context.Context, *MessageEvent)
	OnTransition func(context.Context, *TransitionEvent)
	OnStepResult func(context.Context, *StepEvent)
	OnTerminal   func(context.Context, *TerminalEvent)
}
