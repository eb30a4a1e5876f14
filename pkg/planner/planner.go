package planner

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aretw0/campusmate/internal/logging"
	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/ports"
)

// FallbackAnswer replaces any decision that cannot be used.
const FallbackAnswer = "抱歉，学姐暂时没能理解你的问题，可以换个说法再问一次吗？"

// SummaryLimit caps the data of each step shown in synthesis fallbacks.
const SummaryLimit = 250

// Planner is the decide/synthesize actor.
type Planner struct {
	advisor   ports.Advisor
	catalogue *domain.Catalogue
	logger    *slog.Logger
}

// Option configures the Planner.
type Option func(*Planner)

// WithLogger configures a logger for the Planner.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

// New creates a Planner that constrains plans to catalogue.
func New(advisor ports.Advisor, catalogue *domain.Catalogue, opts ...Option) *Planner {
	p := &Planner{advisor: advisor, catalogue: catalogue, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Planner) ID() string { return domain.PlannerID }

// Decide always returns a valid decision.
func (p *Planner) Decide(ctx context.Context, q domain.QueryPayload) domain.Decision {
	decision, err := p.advisor.Decide(ctx, ports.DecideRequest{
		UserID:    q.UserID,
		Query:     q.Query,
		History:   q.History,
		Catalogue: p.catalogue,
	})
	if err != nil {
		p.logger.Warn("advisor could not decide, using fallback", "user_id", q.UserID, "err", err)
		return domain.RespondDirectly(FallbackAnswer)
	}
	if err := decision.Validate(p.catalogue); err != nil {
		p.logger.Warn("advisor returned unusable decision, using fallback", "user_id", q.UserID, "err", err)
		return domain.RespondDirectly(FallbackAnswer)
	}
	return decision
}

// Synthesize turns executed steps into one answer. It never fails.
func (p *Planner) Synthesize(ctx context.Context, req domain.SynthesisPayload) string {
	text, err := p.advisor.Synthesize(ctx, ports.SynthesisRequest{
		UserID:  req.UserID,
		Query:   req.Query,
		Steps:   req.Steps,
		Outcome: req.Outcome,
	})
	if err == nil && strings.TrimSpace(text) != "" {
		return strings.TrimSpace(text)
	}
	p.logger.Warn("advisor could not synthesize, composing from step data", "user_id", req.UserID, "outcome", req.Outcome, "err", err)
	return ComposeFallback(req.Steps, req.Outcome)
}

// ComposeFallback builds an answer from step data alone, toned by outcome.
func ComposeFallback(steps []domain.StepRecord, outcome domain.Outcome) string {
	switch outcome {
	case domain.OutcomeNoStepsExecuted:
		return FallbackAnswer
	case domain.OutcomePartialFailure:
		return "抱歉，学姐在查资料的时候遇到了一些问题，暂时没法给你完整的答案。"
	}

	var b strings.Builder
	if outcome == domain.OutcomeNotFound {
		b.WriteString("抱歉，学姐没有找到全部相关信息。")
	} else {
		b.WriteString("学姐帮你查到了这些：")
	}
	for _, s := range steps {
		if s.Result.Status != domain.ResultSuccess {
			continue
		}
		b.WriteString("\n- ")
		b.WriteString(s.Summary(SummaryLimit))
	}
	return b.String()
}

// Handle reacts to passed and synthesis_request messages.
func (p *Planner) Handle(ctx context.Context, msg domain.Message) ([]domain.Message, error) {
	switch msg.Type {
	case domain.MessagePassed:
		q, _ := msg.Payload.(domain.QueryPayload)
		d := p.Decide(ctx, q)
		p.logger.Debug("planner decision", "session_id", msg.SessionID, "action", d.Kind, "steps", len(d.Steps))
		switch d.Kind {
		case domain.DecisionClarify:
			return []domain.Message{msg.Reply(domain.MessageClarificationRequest, domain.TextPayload{Text: d.Question})}, nil
		case domain.DecisionExecutePlan:
			return []domain.Message{msg.Reply(domain.MessagePlanSubmitted, domain.PlanPayload{Plan: d.Plan()})}, nil
		default:
			return []domain.Message{msg.Reply(domain.MessageFinalAnswer, domain.TextPayload{Text: d.Text})}, nil
		}

	case domain.MessageSynthesisRequest:
		req, _ := msg.Payload.(domain.SynthesisPayload)
		text := p.Synthesize(ctx, req)
		return []domain.Message{msg.Reply(domain.MessageFinalAnswer, domain.TextPayload{Text: text})}, nil
	}

	p.logger.Warn("planner ignoring message", "type", msg.Type, "session_id", msg.SessionID)
	return nil, nil
}
