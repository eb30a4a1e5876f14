package advisor

import (
	"context"
	"errors"

	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/ports"
)

// ErrNotImplemented is returned by Funcs methods without a function.
var ErrNotImplemented = errors.New("advisor: not implemented")

// Funcs adapts plain functions to ports.Advisor. A nil Moderate passes every utterance;
// other nil functions fail with ErrNotImplemented.
type Funcs struct {
	DecideFunc     func(ctx context.Context, req ports.DecideRequest) (domain.Decision, error)
	SynthesizeFunc func(ctx context.Context, req ports.SynthesisRequest) (string, error)
	ModerateFunc   func(ctx context.Context, utterance string) (ports.Moderation, error)
}

func (f Funcs) Decide(ctx context.Context, req ports.DecideRequest) (domain.Decision, error) {
	if f.DecideFunc == nil {
		return domain.Decision{}, ErrNotImplemented
	}
	return f.DecideFunc(ctx, req)
}

func (f Funcs) Synthesize(ctx context.Context, req ports.SynthesisRequest) (string, error) {
	if f.SynthesizeFunc == nil {
		return "", ErrNotImplemented
	}
	return f.SynthesizeFunc(ctx, req)
}

func (f Funcs) Moderate(ctx context.Context, utterance string) (ports.Moderation, error) {
	if f.ModerateFunc == nil {
		return ports.Moderation{}, nil
	}
	return f.ModerateFunc(ctx, utterance)
}
