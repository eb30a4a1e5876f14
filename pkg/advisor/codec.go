package advisor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/ports"
)

// ErrNoJSON is returned when a model reply carries no JSON object.
var ErrNoJSON = errors.New("no JSON object in model output")

type wireStep struct {
	Worker    string         `json:"worker"`
	AgentID   string         `json:"agent_id"`
	Operation string         `json:"operation"`
	Tool      string         `json:"tool_to_execute"`
	Args      map[string]any `json:"args"`
	ToolArgs  map[string]any `json:"tool_args"`
}

type wireDecision struct {
	Action   string     `json:"action_type"`
	Response string     `json:"response_content"`
	Question string     `json:"clarification_question"`
	Plan     []wireStep `json:"plan"`
}

// ParseDecision decodes a planning reply. Code fences and text around the
// JSON object are tolerated. The result is not validated against a catalogue.
func ParseDecision(text string) (domain.Decision, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return domain.Decision{}, err
	}
	var w wireDecision
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return domain.Decision{}, fmt.Errorf("invalid decision JSON: %w", err)
	}

	switch strings.ToUpper(strings.TrimSpace(w.Action)) {
	case "RESPOND_DIRECTLY":
		return domain.RespondDirectly(w.Response), nil
	case "CLARIFY":
		return domain.Clarify(w.Question), nil
	case "EXECUTE_PLAN":
		steps := make([]domain.PlanStep, 0, len(w.Plan))
		for _, s := range w.Plan {
			steps = append(steps, domain.PlanStep{
				Worker: firstNonEmpty(s.Worker, s.AgentID),
				Task: domain.TaskPayload{
					Operation: firstNonEmpty(s.Operation, s.Tool),
					Args:      firstNonNil(s.Args, s.ToolArgs),
				},
			})
		}
		return domain.ExecutePlan(steps...), nil
	}
	return domain.Decision{}, fmt.Errorf("%w: unknown action_type %q", domain.ErrInvalidDecision, w.Action)
}

// ParseModeration decodes a moderation reply.
func ParseModeration(text string) (ports.Moderation, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return ports.Moderation{}, err
	}
	var m ports.Moderation
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return ports.Moderation{}, fmt.Errorf("invalid moderation JSON: %w", err)
	}
	return m, nil
}

// extractJSON returns the outermost {...} span of text.
func extractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func firstNonNil(maps ...map[string]any) map[string]any {
	for _, m := range maps {
		if m != nil {
			return m
		}
	}
	return map[string]any{}
}
