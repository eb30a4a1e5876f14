package ports

import (
	"context"

	"github.com/aretw0/campusmate/pkg/domain"
)

// DecideRequest is the input of Advisor.Decide.
type DecideRequest struct {
	UserID    string
	Query     string
	History   string
	Catalogue *domain.Catalogue
}

// SynthesisRequest is the input of Advisor.Synthesize.
type SynthesisRequest struct {
	UserID  string
	Query   string
	Steps   []domain.StepRecord
	Outcome domain.Outcome // Tone hint only
}

// Moderation is the verdict of Advisor.Moderate.
type Moderation struct {
	Inappropriate bool   `json:"is_inappropriate"`
	Message       string `json:"warning_message,omitempty"`
}

// Advisor is the external language-model service.
// Any method may fail; callers treat failures as "could not decide".
type Advisor interface {
	Decide(ctx context.Context, req DecideRequest) (domain.Decision, error)
	Synthesize(ctx context.Context, req SynthesisRequest) (string, error)
	Moderate(ctx context.Context, utterance string) (Moderation, error)
}
