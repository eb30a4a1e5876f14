package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/campusmate/pkg/domain"
)

// SessionMermaid renders the session state machine as a Mermaid flowchart.
// Shapes:
// - Terminal status: ((Circle))
// - Plan step: [[Subroutine]]
// - Other status: (["Stadium"])
// The states the session went through and its current status are highlighted,
// and executed plan steps hang off processing_plan in order.
func SessionMermaid(s *domain.Session) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, st := range domain.Statuses {
		opener, closer := "([", "])"
		if st.Terminal() {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(string(st)), opener, st, closer)
	}
	for _, from := range domain.Statuses {
		if from.Terminal() {
			continue
		}
		for _, to := range domain.NextStatuses(from) {
			fmt.Fprintf(&sb, "    %s --> %s\n", sanitizeMermaidID(string(from)), sanitizeMermaidID(string(to)))
		}
		fmt.Fprintf(&sb, "    %s -. fail .-> %s\n", sanitizeMermaidID(string(from)), sanitizeMermaidID(string(domain.StatusFailed)))
	}
	if s == nil {
		return sb.String()
	}

	prev := sanitizeMermaidID(string(domain.StatusProcessingPlan))
	var stepIDs []string
	if s.Plan != nil {
		for i, step := range s.Plan.Steps {
			id := fmt.Sprintf("step_%d", i+1)
			label := fmt.Sprintf("%d. %s.%s", i+1, step.Worker, step.Task.Operation)
			if i < len(s.StepResults) {
				label += "<br/>" + string(s.StepResults[i].Result.Status)
			}
			fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", id, strings.ReplaceAll(label, "\"", "'"))
			fmt.Fprintf(&sb, "    %s -.-> %s\n", prev, id)
			prev = id
			if i < len(s.StepResults) {
				stepIDs = append(stepIDs, id)
			}
		}
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
	for _, id := range append(visited(s), stepIDs...) {
		fmt.Fprintf(&sb, "    class %s visited;\n", id)
	}
	fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(string(s.Status)))
	return sb.String()
}

// visited infers the statuses a session passed through before its current one.
func visited(s *domain.Session) []string {
	var path []domain.SessionStatus
	add := func(st domain.SessionStatus) {
		if st != s.Status {
			path = append(path, st)
		}
	}

	add(domain.StatusPendingReview)
	if s.Status == domain.StatusPendingReview {
		return nil
	}
	if s.Status == domain.StatusFailed && s.FailureReason == domain.FailureModerationRejected {
		return ids(path)
	}
	add(domain.StatusPendingPlan)
	if len(s.StepResults) > 0 {
		add(domain.StatusProcessingPlan)
	}
	if s.Plan != nil && (s.Status == domain.StatusCompleted || s.Status == domain.StatusPendingSynthesis) {
		add(domain.StatusPendingSynthesis)
	}
	return ids(path)
}

func ids(statuses []domain.SessionStatus) []string {
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = sanitizeMermaidID(string(st))
	}
	return out
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
