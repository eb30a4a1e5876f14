package advisor_test

import (
	"testing"

	"github.com/aretw0/campusmate/pkg/advisor"
	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecision(t *testing.T) {
	t.Run("respond directly", func(t *testing.T) {
		d, err := advisor.ParseDecision(`{"action_type": "RESPOND_DIRECTLY", "response_content": "你好呀"}`)
		require.NoError(t, err)
		assert.Equal(t, domain.RespondDirectly("你好呀"), d)
	})

	t.Run("clarify inside code fence", func(t *testing.T) {
		d, err := advisor.ParseDecision("```json\n{\"action_type\": \"clarify\", \"clarification_question\": \"哪个校区？\"}\n```")
		require.NoError(t, err)
		assert.Equal(t, domain.DecisionClarify, d.Kind)
		assert.Equal(t, "哪个校区？", d.Question)
	})

	t.Run("plan with both field spellings", func(t *testing.T) {
		d, err := advisor.ParseDecision(`决策如下：{"action_type": "EXECUTE_PLAN", "plan": [
			{"worker": "utility_worker", "operation": "get_current_time"},
			{"agent_id": "knowledge_worker", "tool_to_execute": "query_static_knowledge", "tool_args": {"knowledge_category": "slang"}}
		]}`)
		require.NoError(t, err)
		require.Equal(t, domain.DecisionExecutePlan, d.Kind)
		require.Len(t, d.Steps, 2)
		assert.Equal(t, domain.UtilityWorkerID, d.Steps[0].Worker)
		assert.NotNil(t, d.Steps[0].Task.Args)
		assert.Equal(t, "query_static_knowledge", d.Steps[1].Task.Operation)
		assert.Equal(t, "slang", d.Steps[1].Task.Args["knowledge_category"])
	})

	t.Run("errors", func(t *testing.T) {
		_, err := advisor.ParseDecision("I think you should ask the library.")
		assert.ErrorIs(t, err, advisor.ErrNoJSON)

		_, err = advisor.ParseDecision(`{"action_type": "DANCE"}`)
		assert.ErrorIs(t, err, domain.ErrInvalidDecision)

		_, err = advisor.ParseDecision(`{"action_type": `)
		assert.Error(t, err)
	})
}

func TestParseModeration(t *testing.T) {
	m, err := advisor.ParseModeration(`{"is_inappropriate": true, "warning_message": "请文明交流"}`)
	require.NoError(t, err)
	assert.True(t, m.Inappropriate)
	assert.Equal(t, "请文明交流", m.Message)

	m, err = advisor.ParseModeration(`{"is_inappropriate": false, "warning_message": null}`)
	require.NoError(t, err)
	assert.False(t, m.Inappropriate)

	_, err = advisor.ParseModeration("ok")
	assert.ErrorIs(t, err, advisor.ErrNoJSON)
}
