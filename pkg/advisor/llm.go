package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/campusmate/internal/logging"
	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/ports"
)

// DefaultSummaryLimit caps each step's data in synthesis prompts.
const DefaultSummaryLimit = 250

// Completer sends one prompt to a model and returns its text reply.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// LLM implements ports.Advisor on top of a Completer.
type LLM struct {
	completer    Completer
	logger       *slog.Logger
	summaryLimit int
}

// Option configures an LLM advisor.
type Option func(*LLM)

// WithLogger configures a logger for the advisor.
func WithLogger(logger *slog.Logger) Option {
	return func(l *LLM) {
		l.logger = logger
	}
}

// WithSummaryLimit caps the step data shown to the model during synthesis.
func WithSummaryLimit(n int) Option {
	return func(l *LLM) {
		if n > 0 {
			l.summaryLimit = n
		}
	}
}

// NewLLM creates an advisor backed by c.
func NewLLM(c Completer, opts ...Option) *LLM {
	l := &LLM{completer: c, logger: logging.NewNop(), summaryLimit: DefaultSummaryLimit}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *LLM) Decide(ctx context.Context, req ports.DecideRequest) (domain.Decision, error) {
	text, err := l.completer.Complete(ctx, DecidePrompt(req))
	if err != nil {
		return domain.Decision{}, fmt.Errorf("decide: %w", err)
	}
	d, err := ParseDecision(text)
	if err != nil {
		l.logger.Debug("unparseable decision", "user_id", req.UserID, "raw", text)
		return domain.Decision{}, fmt.Errorf("decide: %w", err)
	}
	return d, nil
}

func (l *LLM) Synthesize(ctx context.Context, req ports.SynthesisRequest) (string, error) {
	text, err := l.completer.Complete(ctx, SynthesisPrompt(req, l.summaryLimit))
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (l *LLM) Moderate(ctx context.Context, utterance string) (ports.Moderation, error) {
	text, err := l.completer.Complete(ctx, ModerationPrompt(utterance))
	if err != nil {
		return ports.Moderation{}, fmt.Errorf("moderate: %w", err)
	}
	m, err := ParseModeration(text)
	if err != nil {
		return ports.Moderation{}, fmt.Errorf("moderate: %w", err)
	}
	return m, nil
}
