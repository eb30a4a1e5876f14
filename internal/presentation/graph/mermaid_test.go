package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/campusmate/internal/presentation/graph"
	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestSessionMermaid(t *testing.T) {
	completed := domain.NewSession("s1", "u", "q")
	completed.Status = domain.StatusCompleted
	completed.Plan = &domain.Plan{Steps: []domain.PlanStep{
		{Worker: domain.UtilityWorkerID, Task: domain.TaskPayload{Operation: "get_current_time"}},
		{Worker: domain.KnowledgeWorkerID, Task: domain.TaskPayload{Operation: "query_static_knowledge"}},
	}}
	completed.StepResults = []domain.StepRecord{
		{Worker: domain.UtilityWorkerID, Task: domain.TaskPayload{Operation: "get_current_time"}, Result: domain.Success("noon")},
		{Worker: domain.KnowledgeWorkerID, Task: domain.TaskPayload{Operation: "query_static_knowledge"}, Result: domain.NotFound("nope")},
	}

	rejected := domain.NewSession("s2", "u", "q")
	rejected.Status = domain.StatusFailed
	rejected.FailureReason = domain.FailureModerationRejected

	tests := []struct {
		name        string
		session     *domain.Session
		contains    []string
		notContains []string
	}{
		{
			name:    "static machine",
			session: nil,
			contains: []string{
				"graph TD",
				`pending_review(["pending_review"])`,
				`completed(("completed"))`,
				"pending_review --> pending_plan",
				"pending_plan --> pending_user_input",
				"processing_plan -. fail .-> failed",
			},
			notContains: []string{"classDef", "completed -. fail"},
		},
		{
			name:    "completed plan",
			session: completed,
			contains: []string{
				`step_1[["1. utility_worker.get_current_time<br/>success"]]`,
				`step_2[["2. knowledge_worker.query_static_knowledge<br/>not_found"]]`,
				"processing_plan -.-> step_1",
				"step_1 -.-> step_2",
				"class processing_plan visited;",
				"class pending_synthesis visited;",
				"class step_2 visited;",
				"class completed current;",
			},
		},
		{
			name:        "moderation rejected",
			session:     rejected,
			contains:    []string{"class pending_review visited;", "class failed current;"},
			notContains: []string{"class pending_plan visited;", "step_1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := graph.SessionMermaid(tt.session)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.notContains {
				assert.False(t, strings.Contains(out, unwanted), "unexpected %q in\n%s", unwanted, out)
			}
		})
	}
}
