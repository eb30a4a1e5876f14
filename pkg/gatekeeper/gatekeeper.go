// Package gatekeeper screens inbound utterances before any planning happens.
package gatekeeper

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aretw0/campusmate/internal/logging"
	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/ports"
)

// DefaultWarning is used when the advisor flags input without explaining why.
const DefaultWarning = "抱歉，这个问题学姐不太方便回答哦，我们聊点校园里的事情吧～"

// Gatekeeper is the moderation actor.
type Gatekeeper struct {
	advisor ports.Advisor
	logger  *slog.Logger
}

// Option configures the Gatekeeper.
type Option func(*Gatekeeper)

// WithLogger configures a logger for the Gatekeeper.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gatekeeper) {
		g.logger = logger
	}
}

// New creates a Gatekeeper backed by advisor.
func New(advisor ports.Advisor, opts ...Option) *Gatekeeper {
	g := &Gatekeeper{advisor: advisor, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gatekeeper) ID() string { return domain.GatekeeperID }

// Handle answers new_query with passed or rejected.
// Empty utterances (e.g. a subscribe event) pass without consulting the advisor.
// If the advisor cannot decide, the utterance passes as well.
func (g *Gatekeeper) Handle(ctx context.Context, msg domain.Message) ([]domain.Message, error) {
	if msg.Type != domain.MessageNewQuery {
		g.logger.Warn("gatekeeper ignoring message", "type", msg.Type, "session_id", msg.SessionID)
		return nil, nil
	}
	q, _ := msg.Payload.(domain.QueryPayload)

	if strings.TrimSpace(q.Query) == "" {
		return []domain.Message{msg.Reply(domain.MessagePassed, q)}, nil
	}

	verdict, err := g.advisor.Moderate(ctx, q.Query)
	if err != nil {
		g.logger.Warn("moderation unavailable, letting input through", "session_id", msg.SessionID, "err", err)
		return []domain.Message{msg.Reply(domain.MessagePassed, q)}, nil
	}
	if verdict.Inappropriate {
		warning := strings.TrimSpace(verdict.Message)
		if warning == "" {
			warning = DefaultWarning
		}
		g.logger.Info("input rejected by moderation", "session_id", msg.SessionID, "user_id", q.UserID)
		return []domain.Message{msg.Reply(domain.MessageRejected, domain.TextPayload{Text: warning})}, nil
	}
	return []domain.Message{msg.Reply(domain.MessagePassed, q)}, nil
}
