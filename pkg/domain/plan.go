package domain

import (
	"encoding/json"
	"fmt"
)

// TaskPayload is the worker-specific argument bag of one step.
type TaskPayload struct {
	Operation string         `json:"operation" yaml:"operation" mapstructure:"operation"`
	Args      map[string]any `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args"`
}

// PlanStep names the worker that runs a task. It is inert until dispatched.
type PlanStep struct {
	Worker string      `json:"worker" yaml:"worker" mapstructure:"worker"`
	Task   TaskPayload `json:"task" yaml:"task" mapstructure:"task"`
}

// Plan is an ordered list of steps executed one at a time.
// Arguments are fixed at submission; a step cannot read an earlier step's output.
type Plan struct {
	Steps []PlanStep `json:"steps" yaml:"steps" mapstructure:"steps"`
}

// Len returns the number of steps.
func (p Plan) Len() int { return len(p.Steps) }

// Clone returns a deep copy so a submitted plan cannot be mutated through shared maps.
func (p Plan) Clone() Plan {
	steps := make([]PlanStep, len(p.Steps))
	for i, s := range p.Steps {
		steps[i] = PlanStep{Worker: s.Worker, Task: s.Task.Clone()}
	}
	return Plan{Steps: steps}
}

// Clone returns a copy of the payload with its own argument map.
func (t TaskPayload) Clone() TaskPayload {
	out := TaskPayload{Operation: t.Operation}
	if t.Args != nil {
		out.Args = make(map[string]any, len(t.Args))
		for k, v := range t.Args {
			out.Args[k] = v
		}
	}
	return out
}

// StepRecord is an executed step. It is appended once and never mutated.
type StepRecord struct {
	Worker string      `json:"worker"`
	Task   TaskPayload `json:"task"`
	Result ToolResult  `json:"result"`
}

// Summary renders a step for prompts and fallbacks, truncating data to max runes.
func (r StepRecord) Summary(max int) string {
	var data string
	switch v := r.Result.Data.(type) {
	case nil:
	case string:
		data = v
	default:
		if b, err := json.Marshal(v); err == nil {
			data = string(b)
		} else {
			data = fmt.Sprint(v)
		}
	}
	if runes := []rune(data); max > 0 && len(runes) > max {
		data = string(runes[:max]) + "..."
	}
	s := fmt.Sprintf("%s.%s -> %s", r.Worker, r.Task.Operation, r.Result.Status)
	if r.Result.Reason != "" {
		s += " (" + r.Result.Reason + ")"
	}
	if data != "" {
		s += ": " + data
	}
	return s
}
