package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageType is the closed set of envelope kinds routed by the coordinator.
type MessageType string

const (
	MessageNewQuery             MessageType = "new_query"
	MessageRejected             MessageType = "rejected"
	MessagePassed               MessageType = "passed"
	MessagePlanSubmitted        MessageType = "plan_submitted"
	MessageTaskRequest          MessageType = "task_request"
	MessageStepResult           MessageType = "step_result"
	MessageSynthesisRequest     MessageType = "synthesis_request"
	MessageFinalAnswer          MessageType = "final_answer"
	MessageClarificationRequest MessageType = "clarification_request"
	MessageErrorNotification    MessageType = "error_notification"
)

// Well-known actor identifiers.
const (
	CoordinatorID     = "coordinator"
	FrontDoorID       = "front_door"
	GatekeeperID      = "gatekeeper"
	PlannerID         = "planner"
	KnowledgeWorkerID = "knowledge_worker"
	UtilityWorkerID   = "utility_worker"
)

// Message is an immutable envelope. It is owned by the queue between enqueue and
// dequeue, and by the receiving actor while it is being handled.
type Message struct {
	ID        string      `json:"message_id"`
	SessionID string      `json:"session_id"`
	Sender    string      `json:"sender_id"`
	Recipient string      `json:"recipient_id"`
	Type      MessageType `json:"message_type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload,omitempty"`
}

// NewMessage stamps a fresh envelope with a unique ID and the current time.
func NewMessage(sessionID, sender, recipient string, typ MessageType, payload any) Message {
	return Message{
		ID:        NewMessageID(),
		SessionID: sessionID,
		Sender:    sender,
		Recipient: recipient,
		Type:      typ,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// Reply builds a message from the recipient of m back to the coordinator for the same session.
func (m Message) Reply(typ MessageType, payload any) Message {
	return NewMessage(m.SessionID, m.Recipient, CoordinatorID, typ, payload)
}

// NewMessageID returns an identifier of the form msg_<8 hex>.
func NewMessageID() string {
	return "msg_" + shortHex(8)
}

// NewSessionID returns an identifier of the form session_<user>_<6 hex>.
func NewSessionID(userID string) string {
	if userID == "" {
		userID = "anonymous"
	}
	return "session_" + userID + "_" + shortHex(6)
}

func shortHex(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

// QueryPayload carries the user utterance for new_query and passed messages.
type QueryPayload struct {
	UserID  string `json:"user_id"`
	Query   string `json:"query"`
	History string `json:"history,omitempty"`
}

// TextPayload carries user-facing text (answers, warnings, questions) or an internal reason.
type TextPayload struct {
	Text string `json:"text"`
}

// PlanPayload carries a submitted plan. An empty plan is allowed on the wire.
type PlanPayload struct {
	Plan Plan `json:"plan"`
}

// TaskRequestPayload asks a worker to run one plan step.
type TaskRequestPayload struct {
	UserID    string      `json:"user_id"`
	StepIndex int         `json:"step_index"`
	Task      TaskPayload `json:"task"`
}

// StepResultPayload is the worker's answer to a TaskRequestPayload.
type StepResultPayload struct {
	StepIndex int         `json:"step_index"`
	Task      TaskPayload `json:"task"`
	Result    ToolResult  `json:"result"`
}

// SynthesisPayload asks the planner to turn step results into one answer.
type SynthesisPayload struct {
	UserID  string       `json:"user_id"`
	Query   string       `json:"query"`
	Steps   []StepRecord `json:"steps"`
	Outcome Outcome      `json:"outcome"`
}
