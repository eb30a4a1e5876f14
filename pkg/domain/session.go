package domain

import (
	"fmt"
	"time"
)

// SessionStatus is the state of one conversation turn.
type SessionStatus string

const (
	StatusPendingReview    SessionStatus = "pending_review"
	StatusPendingPlan      SessionStatus = "pending_plan"
	StatusProcessingPlan   SessionStatus = "processing_plan"
	StatusPendingSynthesis SessionStatus = "pending_synthesis"
	StatusCompleted        SessionStatus = "completed"
	StatusFailed           SessionStatus = "failed"
	StatusPendingUserInput SessionStatus = "pending_user_input" // Terminal for the current turn
)

// Terminal reports whether no further transition is allowed.
func (s SessionStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusPendingUserInput:
		return true
	}
	return false
}

var transitions = map[SessionStatus][]SessionStatus{
	StatusPendingReview:    {StatusPendingPlan},
	StatusPendingPlan:      {StatusProcessingPlan, StatusPendingSynthesis, StatusCompleted, StatusPendingUserInput},
	StatusProcessingPlan:   {StatusPendingSynthesis},
	StatusPendingSynthesis: {StatusCompleted},
}

// FailureModerationRejected is the FailureReason of sessions the gatekeeper rejected.
const FailureModerationRejected = "moderation_rejected"

// Statuses lists every session status in lifecycle order.
var Statuses = []SessionStatus{
	StatusPendingReview, StatusPendingPlan, StatusProcessingPlan, StatusPendingSynthesis,
	StatusCompleted, StatusPendingUserInput, StatusFailed,
}

// NextStatuses returns the non-failure successors of from.
func NextStatuses(from SessionStatus) []SessionStatus {
	return append([]SessionStatus(nil), transitions[from]...)
}

// CanTransition reports whether from -> to is an edge of the session state machine.
// Failing is allowed from every non-terminal state.
func CanTransition(from, to SessionStatus) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusFailed {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Session is the mutable record of one user turn.
// It is mutated only by the coordinator.
type Session struct {
	ID                    string         `json:"session_id"`
	UserID                string         `json:"user_id"`
	Query                 string         `json:"query"`
	Status                SessionStatus  `json:"status"`
	Plan                  *Plan          `json:"plan,omitempty"`
	CurrentStep           int            `json:"current_step_index"`
	StepResults           []StepRecord   `json:"step_results"`
	FinalAnswer           string         `json:"final_answer,omitempty"`
	ClarificationQuestion string         `json:"clarification_question,omitempty"`
	FailureReason         string         `json:"failure_reason,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	Metadata              map[string]any `json:"metadata,omitempty"`
}

// NewSession creates a session in pending_review.
func NewSession(id, userID, query string) *Session {
	now := time.Now()
	return &Session{
		ID:          id,
		UserID:      userID,
		Query:       query,
		Status:      StatusPendingReview,
		StepResults: []StepRecord{},
		CreatedAt:   now,
		UpdatedAt:   now,
		Metadata:    make(map[string]any),
	}
}

// Transition moves the session to a new status, enforcing the state machine.
func (s *Session) Transition(to SessionStatus) error {
	if !CanTransition(s.Status, to) {
		return fmt.Errorf("illegal transition %s -> %s", s.Status, to)
	}
	s.Status = to
	s.UpdatedAt = time.Now()
	return nil
}

// Results returns the ToolResults of executed steps in order.
func (s *Session) Results() []ToolResult {
	out := make([]ToolResult, len(s.StepResults))
	for i, r := range s.StepResults {
		out[i] = r.Result
	}
	return out
}

// Text returns the user-facing text of a terminal session.
func (s *Session) Text() string {
	if s.Status == StatusPendingUserInput && s.ClarificationQuestion != "" {
		return s.ClarificationQuestion
	}
	return s.FinalAnswer
}

// Clone returns a deep copy safe to hand out as a read-only snapshot.
func (s *Session) Clone() *Session {
	c := *s
	if s.Plan != nil {
		p := s.Plan.Clone()
		c.Plan = &p
	}
	c.StepResults = make([]StepRecord, len(s.StepResults))
	for i, r := range s.StepResults {
		c.StepResults[i] = StepRecord{Worker: r.Worker, Task: r.Task.Clone(), Result: r.Result}
	}
	c.Metadata = make(map[string]any, len(s.Metadata))
	for k, v := range s.Metadata {
		c.Metadata[k] = v
	}
	return &c
}

// FinalOutcome is what a caller receives once a session reaches a terminal status.
type FinalOutcome struct {
	SessionID string        `json:"session_id"`
	Status    SessionStatus `json:"status"`
	Text      string        `json:"text"`
	Outcome   Outcome       `json:"outcome"`
}

// OutcomeOf summarises a terminal session.
func OutcomeOf(s *Session) FinalOutcome {
	return FinalOutcome{
		SessionID: s.ID,
		Status:    s.Status,
		Text:      s.Text(),
		Outcome:   Aggregate(s.Results()),
	}
}
