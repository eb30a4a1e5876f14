package domain

import (
	"fmt"
	"strings"
)

// DecisionKind tags the branch of a Decision.
type DecisionKind string

const (
	DecisionRespondDirectly DecisionKind = "respond_directly"
	DecisionClarify         DecisionKind = "clarify"
	DecisionExecutePlan     DecisionKind = "execute_plan"
)

// Decision is the planner's verdict for one utterance. Exactly one branch is populated,
// selected by Kind.
type Decision struct {
	Kind     DecisionKind `json:"action" mapstructure:"action"`
	Text     string       `json:"text,omitempty" mapstructure:"text"`
	Question string       `json:"question,omitempty" mapstructure:"question"`
	Steps    []PlanStep   `json:"steps,omitempty" mapstructure:"steps"`
}

func RespondDirectly(text string) Decision {
	return Decision{Kind: DecisionRespondDirectly, Text: text}
}

func Clarify(question string) Decision {
	return Decision{Kind: DecisionClarify, Question: question}
}

func ExecutePlan(steps ...PlanStep) Decision {
	return Decision{Kind: DecisionExecutePlan, Steps: steps}
}

// Validate checks the decision shape and, for plans, every step against the catalogue.
func (d Decision) Validate(c *Catalogue) error {
	switch d.Kind {
	case DecisionRespondDirectly:
		if strings.TrimSpace(d.Text) == "" {
			return fmt.Errorf("%w: empty answer", ErrInvalidDecision)
		}
	case DecisionClarify:
		if strings.TrimSpace(d.Question) == "" {
			return fmt.Errorf("%w: empty clarification question", ErrInvalidDecision)
		}
	case DecisionExecutePlan:
		if len(d.Steps) == 0 {
			return fmt.Errorf("%w: empty plan", ErrInvalidDecision)
		}
		for i, step := range d.Steps {
			if err := c.ValidateStep(step); err != nil {
				return fmt.Errorf("%w: step %d: %v", ErrInvalidDecision, i, err)
			}
		}
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidDecision, d.Kind)
	}
	return nil
}

// Plan returns the plan of an ExecutePlan decision.
func (d Decision) Plan() Plan {
	return Plan{Steps: d.Steps}.Clone()
}
