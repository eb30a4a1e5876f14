package planner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/campusmate/pkg/advisor"
	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/planner"
	"github.com/aretw0/campusmate/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogue(t *testing.T) *domain.Catalogue {
	t.Helper()
	c, err := domain.NewCatalogue(domain.CatalogueEntry{
		Worker:      domain.UtilityWorkerID,
		Description: "utility",
		Capabilities: []domain.Capability{
			{Name: "get_current_time", Parameters: map[string]any{"type": "object", "properties": map[string]any{}}},
			{Name: "calculator", Parameters: map[string]any{
				"type":     "object",
				"required": []string{"operation", "operand1", "operand2"},
			}},
		},
	})
	require.NoError(t, err)
	return c
}

func passed(query string) domain.Message {
	return domain.NewMessage("s1", domain.CoordinatorID, domain.PlannerID, domain.MessagePassed,
		domain.QueryPayload{UserID: "u1", Query: query, History: "用户：你好"})
}

func deciding(d domain.Decision, err error) advisor.Funcs {
	return advisor.Funcs{DecideFunc: func(ctx context.Context, req ports.DecideRequest) (domain.Decision, error) {
		return d, err
	}}
}

func TestPlanner_Decide(t *testing.T) {
	timeStep := domain.PlanStep{Worker: domain.UtilityWorkerID, Task: domain.TaskPayload{Operation: "get_current_time"}}

	tests := []struct {
		name     string
		adv      advisor.Funcs
		wantType domain.MessageType
		wantText string
		wantLen  int
	}{
		{"respond directly", deciding(domain.RespondDirectly("你好"), nil), domain.MessageFinalAnswer, "你好", 0},
		{"clarify", deciding(domain.Clarify("哪个校区？"), nil), domain.MessageClarificationRequest, "哪个校区？", 0},
		{"valid plan", deciding(domain.ExecutePlan(timeStep), nil), domain.MessagePlanSubmitted, "", 1},
		{"advisor error", deciding(domain.Decision{}, errors.New("offline")), domain.MessageFinalAnswer, planner.FallbackAnswer, 0},
		{"unknown operation", deciding(domain.ExecutePlan(domain.PlanStep{Worker: domain.UtilityWorkerID, Task: domain.TaskPayload{Operation: "fly"}}), nil), domain.MessageFinalAnswer, planner.FallbackAnswer, 0},
		{"unknown worker", deciding(domain.ExecutePlan(domain.PlanStep{Worker: "ghost", Task: domain.TaskPayload{Operation: "get_current_time"}}), nil), domain.MessageFinalAnswer, planner.FallbackAnswer, 0},
		{"missing required args", deciding(domain.ExecutePlan(domain.PlanStep{Worker: domain.UtilityWorkerID, Task: domain.TaskPayload{Operation: "calculator"}}), nil), domain.MessageFinalAnswer, planner.FallbackAnswer, 0},
		{"empty plan", deciding(domain.ExecutePlan(), nil), domain.MessageFinalAnswer, planner.FallbackAnswer, 0},
		{"empty answer", deciding(domain.RespondDirectly("  "), nil), domain.MessageFinalAnswer, planner.FallbackAnswer, 0},
		{"unknown kind", deciding(domain.Decision{Kind: "dance"}, nil), domain.MessageFinalAnswer, planner.FallbackAnswer, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := planner.New(tt.adv, catalogue(t))
			out, err := p.Handle(context.Background(), passed("现在几点"))
			require.NoError(t, err)
			require.Len(t, out, 1)

			reply := out[0]
			assert.Equal(t, tt.wantType, reply.Type)
			assert.Equal(t, domain.PlannerID, reply.Sender)
			assert.Equal(t, domain.CoordinatorID, reply.Recipient)
			assert.Equal(t, "s1", reply.SessionID)

			if tt.wantType == domain.MessagePlanSubmitted {
				assert.Len(t, reply.Payload.(domain.PlanPayload).Plan.Steps, tt.wantLen)
				return
			}
			assert.Equal(t, tt.wantText, reply.Payload.(domain.TextPayload).Text)
		})
	}
}

func TestPlanner_DecidePassesContext(t *testing.T) {
	var got ports.DecideRequest
	cat := catalogue(t)
	p := planner.New(advisor.Funcs{DecideFunc: func(ctx context.Context, req ports.DecideRequest) (domain.Decision, error) {
		got = req
		return domain.RespondDirectly("ok"), nil
	}}, cat)

	_, err := p.Handle(context.Background(), passed("图书馆几点关门"))
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "图书馆几点关门", got.Query)
	assert.Equal(t, "用户：你好", got.History)
	assert.Same(t, cat, got.Catalogue)
}

func synthesis(steps []domain.StepRecord) domain.Message {
	results := make([]domain.ToolResult, len(steps))
	for i, s := range steps {
		results[i] = s.Result
	}
	return domain.NewMessage("s1", domain.CoordinatorID, domain.PlannerID, domain.MessageSynthesisRequest,
		domain.SynthesisPayload{UserID: "u1", Query: "q", Steps: steps, Outcome: domain.Aggregate(results)})
}

func TestPlanner_Synthesize(t *testing.T) {
	steps := []domain.StepRecord{
		{Worker: domain.UtilityWorkerID, Task: domain.TaskPayload{Operation: "get_current_time"}, Result: domain.Success("现在是中午")},
	}

	tests := []struct {
		name string
		fn   func(ctx context.Context, req ports.SynthesisRequest) (string, error)
		want string
	}{
		{"advisor answer is trimmed", func(ctx context.Context, req ports.SynthesisRequest) (string, error) {
			return "  中午好！ \n", nil
		}, "中午好！"},
		{"advisor error composes from steps", func(ctx context.Context, req ports.SynthesisRequest) (string, error) {
			return "", errors.New("offline")
		}, "学姐帮你查到了这些：\n- utility_worker.get_current_time -> success: 现在是中午"},
		{"blank answer composes from steps", func(ctx context.Context, req ports.SynthesisRequest) (string, error) {
			return "   ", nil
		}, "学姐帮你查到了这些：\n- utility_worker.get_current_time -> success: 现在是中午"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := planner.New(advisor.Funcs{SynthesizeFunc: tt.fn}, catalogue(t))
			out, err := p.Handle(context.Background(), synthesis(steps))
			require.NoError(t, err)
			require.Len(t, out, 1)
			assert.Equal(t, domain.MessageFinalAnswer, out[0].Type)
			assert.Equal(t, tt.want, out[0].Payload.(domain.TextPayload).Text)
		})
	}
}

func TestComposeFallback(t *testing.T) {
	ok := domain.StepRecord{Worker: "w", Task: domain.TaskPayload{Operation: "op"}, Result: domain.Success("data")}
	missing := domain.StepRecord{Worker: "w", Task: domain.TaskPayload{Operation: "miss"}, Result: domain.NotFound("nope")}

	tests := []struct {
		name    string
		steps   []domain.StepRecord
		outcome domain.Outcome
		want    string
	}{
		{"no steps", nil, domain.OutcomeNoStepsExecuted, planner.FallbackAnswer},
		{"partial failure", []domain.StepRecord{ok}, domain.OutcomePartialFailure, "抱歉，学姐在查资料的时候遇到了一些问题，暂时没法给你完整的答案。"},
		{"success", []domain.StepRecord{ok}, domain.OutcomeSuccess, "学姐帮你查到了这些：\n- w.op -> success: data"},
		{"not found skips missing steps", []domain.StepRecord{ok, missing}, domain.OutcomeNotFound, "抱歉，学姐没有找到全部相关信息。\n- w.op -> success: data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, planner.ComposeFallback(tt.steps, tt.outcome))
		})
	}
}

func TestPlanner_IgnoresOtherMessages(t *testing.T) {
	p := planner.New(advisor.Funcs{}, catalogue(t))
	out, err := p.Handle(context.Background(), domain.NewMessage("s1", domain.CoordinatorID, domain.PlannerID, domain.MessageTaskRequest, nil))
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, domain.PlannerID, p.ID())
}
