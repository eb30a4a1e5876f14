package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/ports"
)

// effects collects what a control transition produced while c.mu was held.
// Hooks and archiving run after the lock is released.
type effects struct {
	transitions []domain.TransitionEvent
	steps       []domain.StepEvent
	terminal    *domain.Session
}

func (c *Coordinator) route(ctx context.Context, msg domain.Message) {
	if c.hooks.OnMessage != nil {
		c.hooks.OnMessage(ctx, &domain.MessageEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventMessage, SessionID: msg.SessionID},
			Message:   msg,
		})
	}

	if msg.Recipient == domain.CoordinatorID {
		c.control(ctx, msg)
		return
	}

	c.mu.Lock()
	actor, known := c.actors[msg.Recipient]
	_, live := c.sessions[msg.SessionID]
	c.mu.Unlock()

	log := c.logger.With("session_id", msg.SessionID, "msg_id", msg.ID, "type", msg.Type, "recipient", msg.Recipient)
	if !known {
		log.Error("dropping message for unknown recipient", "err", domain.ErrUnknownRecipient)
		return
	}
	if !live {
		log.Warn("dropping message for unknown or finished session")
		return
	}

	out, err := c.invoke(ctx, actor, msg)
	if err != nil {
		log.Error("actor failed", "err", err)
		c.fail(ctx, msg.SessionID, fmt.Sprintf("actor_error: %s", actor.ID()), GenericApology)
		return
	}

	c.mu.Lock()
	for _, m := range out {
		c.enqueueLocked(m)
	}
	c.mu.Unlock()
}

// invoke runs an actor with a bounded, non-cancelable context and converts panics into errors.
func (c *Coordinator) invoke(ctx context.Context, a ports.Actor, msg domain.Message) (out []domain.Message, err error) {
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.handleTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("actor %s panicked: %v", a.ID(), r)
		}
	}()
	return a.Handle(hctx, msg)
}

func (c *Coordinator) control(ctx context.Context, msg domain.Message) {
	log := c.logger.With("session_id", msg.SessionID, "msg_id", msg.ID, "type", msg.Type, "sender", msg.Sender)

	c.mu.Lock()
	e, ok := c.sessions[msg.SessionID]
	if !ok {
		finished := c.retained.Contains(msg.SessionID)
		c.mu.Unlock()
		if finished {
			log.Debug("ignoring message for terminal session")
		} else {
			log.Warn("dropping message for unknown session", "err", domain.ErrSessionNotFound)
		}
		return
	}

	fx := &effects{}
	c.apply(e, msg, fx)
	c.mu.Unlock()

	c.flush(ctx, fx)
}

// apply performs one state machine step. Caller holds c.mu.
func (c *Coordinator) apply(e *entry, msg domain.Message, fx *effects) {
	s := e.session
	log := c.logger.With("session_id", s.ID, "msg_id", msg.ID, "type", msg.Type, "status", s.Status)

	unexpected := func() {
		log.Warn("message not valid in current status, dropped")
	}

	switch msg.Type {
	case domain.MessageNewQuery:
		if s.Status != domain.StatusPendingReview {
			unexpected()
			return
		}
		q, ok := msg.Payload.(domain.QueryPayload)
		if !ok {
			c.failLocked(e, "bad_payload", GenericApology, fx)
			return
		}
		c.enqueueLocked(domain.NewMessage(s.ID, domain.CoordinatorID, domain.GatekeeperID, domain.MessageNewQuery, q))

	case domain.MessageRejected:
		if s.Status != domain.StatusPendingReview {
			unexpected()
			return
		}
		warning := textOf(msg.Payload)
		if warning == "" {
			warning = GenericApology
		}
		c.failLocked(e, domain.FailureModerationRejected, warning, fx)

	case domain.MessagePassed:
		if s.Status != domain.StatusPendingReview {
			unexpected()
			return
		}
		q, ok := msg.Payload.(domain.QueryPayload)
		if !ok {
			c.failLocked(e, "bad_payload", GenericApology, fx)
			return
		}
		if !c.transitionLocked(e, domain.StatusPendingPlan, fx) {
			return
		}
		c.enqueueLocked(domain.NewMessage(s.ID, domain.CoordinatorID, domain.PlannerID, domain.MessagePassed, q))

	case domain.MessagePlanSubmitted:
		if s.Status != domain.StatusPendingPlan {
			unexpected()
			return
		}
		p, ok := msg.Payload.(domain.PlanPayload)
		if !ok {
			c.failLocked(e, "bad_payload", GenericApology, fx)
			return
		}
		plan := p.Plan.Clone()
		s.Plan = &plan
		s.CurrentStep = 0
		if plan.Len() == 0 {
			// Nothing to run: go straight to synthesis so the turn still ends.
			if c.transitionLocked(e, domain.StatusPendingSynthesis, fx) {
				c.requestSynthesisLocked(e)
			}
			return
		}
		if c.transitionLocked(e, domain.StatusProcessingPlan, fx) {
			c.dispatchLocked(e)
		}

	case domain.MessageStepResult:
		if s.Status != domain.StatusProcessingPlan {
			unexpected()
			return
		}
		r, ok := msg.Payload.(domain.StepResultPayload)
		if !ok {
			c.failLocked(e, "bad_payload", GenericApology, fx)
			return
		}
		if r.StepIndex != s.CurrentStep {
			log.Warn("dropping stale step result", "step", r.StepIndex, "current_step", s.CurrentStep)
			return
		}
		step := s.Plan.Steps[s.CurrentStep]
		s.StepResults = append(s.StepResults, domain.StepRecord{
			Worker: step.Worker,
			Task:   step.Task.Clone(),
			Result: r.Result,
		})
		s.CurrentStep++
		s.UpdatedAt = time.Now()
		fx.steps = append(fx.steps, domain.StepEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepResult, SessionID: s.ID},
			Worker:    step.Worker,
			Operation: step.Task.Operation,
			Result:    r.Result,
			Duration:  time.Since(e.dispatched),
		})

		if r.Result.Failed() {
			c.failLocked(e, fmt.Sprintf("step_%s: %s", r.Result.Status, r.Result.Reason), GenericApology, fx)
			return
		}
		if s.CurrentStep < s.Plan.Len() {
			c.dispatchLocked(e)
			return
		}
		if c.transitionLocked(e, domain.StatusPendingSynthesis, fx) {
			c.requestSynthesisLocked(e)
		}

	case domain.MessageFinalAnswer:
		if s.Status != domain.StatusPendingPlan && s.Status != domain.StatusPendingSynthesis {
			unexpected()
			return
		}
		s.FinalAnswer = textOf(msg.Payload)
		if s.FinalAnswer == "" {
			s.FinalAnswer = GenericApology
		}
		if c.transitionLocked(e, domain.StatusCompleted, fx) {
			c.finishLocked(e, fx)
		}

	case domain.MessageClarificationRequest:
		if s.Status != domain.StatusPendingPlan {
			unexpected()
			return
		}
		q := textOf(msg.Payload)
		s.ClarificationQuestion = q
		s.FinalAnswer = q
		if c.transitionLocked(e, domain.StatusPendingUserInput, fx) {
			c.finishLocked(e, fx)
		}

	case domain.MessageErrorNotification:
		c.failLocked(e, "error_notification: "+textOf(msg.Payload), GenericApology, fx)

	default:
		unexpected()
	}
}

func (c *Coordinator) transitionLocked(e *entry, to domain.SessionStatus, fx *effects) bool {
	from := e.session.Status
	if err := e.session.Transition(to); err != nil {
		c.logger.Error("rejected transition", "session_id", e.session.ID, "err", err)
		return false
	}
	fx.transitions = append(fx.transitions, domain.TransitionEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventTransition, SessionID: e.session.ID},
		From:      from,
		To:        to,
	})
	return true
}

func (c *Coordinator) dispatchLocked(e *entry) {
	s := e.session
	step := s.Plan.Steps[s.CurrentStep]
	e.dispatched = time.Now()
	c.enqueueLocked(domain.NewMessage(s.ID, domain.CoordinatorID, step.Worker, domain.MessageTaskRequest, domain.TaskRequestPayload{
		UserID:    s.UserID,
		StepIndex: s.CurrentStep,
		Task:      step.Task.Clone(),
	}))
}

func (c *Coordinator) requestSynthesisLocked(e *entry) {
	s := e.session
	steps := make([]domain.StepRecord, len(s.StepResults))
	copy(steps, s.StepResults)
	c.enqueueLocked(domain.NewMessage(s.ID, domain.CoordinatorID, domain.PlannerID, domain.MessageSynthesisRequest, domain.SynthesisPayload{
		UserID:  s.UserID,
		Query:   s.Query,
		Steps:   steps,
		Outcome: domain.Aggregate(s.Results()),
	}))
}

// failLocked moves a non-terminal session to failed. Caller holds c.mu.
func (c *Coordinator) failLocked(e *entry, reason, userText string, fx *effects) {
	if e.session.Status.Terminal() {
		return
	}
	e.session.FailureReason = reason
	e.session.FinalAnswer = userText
	if c.transitionLocked(e, domain.StatusFailed, fx) {
		c.finishLocked(e, fx)
	}
}

// finishLocked retires a terminal session from the live table.
func (c *Coordinator) finishLocked(e *entry, fx *effects) {
	s := e.session
	delete(c.sessions, s.ID)
	if e.waiters > 0 {
		c.pinned[s.ID] = e
	} else {
		c.retained.Add(s.ID, s)
	}
	close(e.done)
	c.broadcastLocked()
	fx.terminal = s.Clone()
}

// fail is the out-of-band path used for actor errors, timeouts and cancellation.
func (c *Coordinator) fail(ctx context.Context, sessionID, reason, userText string) {
	c.mu.Lock()
	e, ok := c.sessions[sessionID]
	if !ok {
		c.mu.Unlock()
		return
	}
	fx := &effects{}
	c.failLocked(e, reason, userText, fx)
	c.mu.Unlock()

	c.flush(ctx, fx)
}

func (c *Coordinator) flush(ctx context.Context, fx *effects) {
	for i := range fx.transitions {
		ev := fx.transitions[i]
		c.logger.Debug("session transition", "session_id", ev.SessionID, "from", ev.From, "to", ev.To)
		if c.hooks.OnTransition != nil {
			c.hooks.OnTransition(ctx, &ev)
		}
	}
	for i := range fx.steps {
		ev := fx.steps[i]
		if c.hooks.OnStepResult != nil {
			c.hooks.OnStepResult(ctx, &ev)
		}
	}

	s := fx.terminal
	if s == nil {
		return
	}
	outcome := domain.Aggregate(s.Results())
	c.logger.Info("session finished",
		"session_id", s.ID,
		"user_id", s.UserID,
		"status", s.Status,
		"outcome", outcome,
		"steps", len(s.StepResults),
		"reason", s.FailureReason,
	)
	if c.hooks.OnTerminal != nil {
		c.hooks.OnTerminal(ctx, &domain.TerminalEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventTerminal, SessionID: s.ID},
			Status:    s.Status,
			Outcome:   outcome,
			Duration:  s.UpdatedAt.Sub(s.CreatedAt),
		})
	}
	if c.archive != nil {
		if err := c.archive.Save(context.WithoutCancel(ctx), s); err != nil {
			c.logger.Error("failed to archive session", "session_id", s.ID, "err", err)
		}
	}
}

func textOf(payload any) string {
	switch p := payload.(type) {
	case domain.TextPayload:
		return p.Text
	case string:
		return p
	}
	return ""
}
