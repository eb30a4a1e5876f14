package advisor_test

import (
	"context"
	"testing"

	"github.com/aretw0/campusmate/pkg/advisor"
	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/knowledge"
	"github.com/aretw0/campusmate/pkg/ports"
	"github.com/aretw0/campusmate/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogue(t *testing.T) *domain.Catalogue {
	t.Helper()
	store, err := knowledge.New(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	cat, err := worker.NewCatalogue(worker.NewUtility(), worker.NewKnowledge(store))
	require.NoError(t, err)
	return cat
}

func operations(d domain.Decision) []string {
	var ops []string
	for _, s := range d.Steps {
		ops = append(ops, s.Task.Operation)
	}
	return ops
}

func TestRules_Decide(t *testing.T) {
	cat := catalogue(t)
	r := advisor.NewRules(nil)

	tests := []struct {
		name  string
		query string
		kind  domain.DecisionKind
		ops   []string
	}{
		{"empty gets welcome", "", domain.DecisionRespondDirectly, nil},
		{"greeting", "你好", domain.DecisionRespondDirectly, nil},
		{"english greeting", "Hi there", domain.DecisionRespondDirectly, nil},
		{"hi inside a word", "which one is this", domain.DecisionClarify, nil},
		{"date is not subtraction", "2024-05-20几号", domain.DecisionExecutePlan, []string{"get_current_time"}},
		{"slash date is not division", "2024/05/20星期几", domain.DecisionExecutePlan, []string{"get_current_time"}},
		{"time and slang", "现在几点了？顺便帮我查查本北是啥意思", domain.DecisionExecutePlan, []string{"get_current_time", "query_static_knowledge"}},
		{"weather", "明天上海天气怎么样", domain.DecisionExecutePlan, []string{"get_weather_forecast"}},
		{"calculator", "帮我算一下 12 * 3", domain.DecisionExecutePlan, []string{"calculator"}},
		{"library", "图书馆开放时间是什么", domain.DecisionExecutePlan, []string{"query_static_knowledge"}},
		{"food", "江湾有什么好吃的", domain.DecisionExecutePlan, []string{"query_static_knowledge"}},
		{"teach", "记住南区食堂是六点半开门", domain.DecisionExecutePlan, []string{"learn_new_info"}},
		{"recall", "我之前教过你的南区食堂是什么", domain.DecisionExecutePlan, []string{"query_learned_knowledge"}},
		{"unknown", "嗯……", domain.DecisionClarify, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := r.Decide(context.Background(), ports.DecideRequest{UserID: "u1", Query: tt.query, Catalogue: cat})
			require.NoError(t, err)
			assert.Equal(t, tt.kind, d.Kind)
			assert.Equal(t, tt.ops, operations(d))
			assert.NoError(t, d.Validate(cat), "rules must only produce valid decisions")
		})
	}
}

func TestRules_DecideExtractsArguments(t *testing.T) {
	cat := catalogue(t)
	r := advisor.NewRules(nil)
	ctx := context.Background()

	d, err := r.Decide(ctx, ports.DecideRequest{Query: "现在几点了？顺便帮我查查本北是啥意思", Catalogue: cat})
	require.NoError(t, err)
	require.Len(t, d.Steps, 2)
	assert.Equal(t, map[string]any{"term": "本北"}, d.Steps[1].Task.Args["query_filters"])

	d, err = r.Decide(ctx, ports.DecideRequest{Query: "“水课”是什么意思", Catalogue: cat})
	require.NoError(t, err)
	require.Len(t, d.Steps, 1)
	assert.Equal(t, map[string]any{"term": "水课"}, d.Steps[0].Task.Args["query_filters"])

	d, err = r.Decide(ctx, ports.DecideRequest{Query: "3除4等于多少", Catalogue: cat})
	require.NoError(t, err)
	require.Len(t, d.Steps, 1)
	assert.Equal(t, "/", d.Steps[0].Task.Args["operation"])

	d, err = r.Decide(ctx, ports.DecideRequest{Query: "记住南区食堂是六点半开门", Catalogue: cat})
	require.NoError(t, err)
	assert.Equal(t, "南区食堂", d.Steps[0].Task.Args["topic"])
	assert.Equal(t, "六点半开门", d.Steps[0].Task.Args["information"])
}

func TestRules_OnlyPlansCataloguedOperations(t *testing.T) {
	cat, err := worker.NewCatalogue(worker.NewUtility())
	require.NoError(t, err)

	d, err := advisor.NewRules(nil).Decide(context.Background(), ports.DecideRequest{Query: "本北是啥意思", Catalogue: cat})
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionClarify, d.Kind)
}

func TestRules_Moderate(t *testing.T) {
	r := advisor.NewRules([]string{"badword"})
	m, err := r.Moderate(context.Background(), "this has a BadWord in it")
	require.NoError(t, err)
	assert.True(t, m.Inappropriate)
	assert.Equal(t, advisor.RulesWarning, m.Message)

	m, err = r.Moderate(context.Background(), "图书馆几点关门")
	require.NoError(t, err)
	assert.False(t, m.Inappropriate)
}

func TestRules_Synthesize(t *testing.T) {
	r := advisor.NewRules(nil)
	steps := []domain.StepRecord{
		{Worker: domain.UtilityWorkerID, Task: domain.TaskPayload{Operation: "get_current_time"}, Result: domain.Success("现在是中午")},
		{Worker: domain.KnowledgeWorkerID, Task: domain.TaskPayload{Operation: "query_static_knowledge"}, Result: domain.NotFound("没有记录")},
	}

	text, err := r.Synthesize(context.Background(), ports.SynthesisRequest{Steps: steps, Outcome: domain.OutcomeNotFound})
	require.NoError(t, err)
	assert.Contains(t, text, "现在是中午")
	assert.Contains(t, text, "教教我")

	text, err = r.Synthesize(context.Background(), ports.SynthesisRequest{Outcome: domain.OutcomeNoStepsExecuted})
	require.NoError(t, err)
	assert.Equal(t, advisor.ClarifyText, text)
}
