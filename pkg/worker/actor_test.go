package worker_test

import (
	"context"
	"testing"

	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panicky struct{}

func (panicky) ID() string                        { return "panicky" }
func (panicky) Description() string               { return "always panics" }
func (panicky) Capabilities() []domain.Capability { return []domain.Capability{{Name: "boom"}} }
func (panicky) Execute(ctx context.Context, userID string, task domain.TaskPayload) domain.ToolResult {
	panic("kaboom")
}

func taskRequest(recipient string, idx int, op string) domain.Message {
	return domain.NewMessage("s1", domain.CoordinatorID, recipient, domain.MessageTaskRequest, domain.TaskRequestPayload{
		UserID:    "u1",
		StepIndex: idx,
		Task:      domain.TaskPayload{Operation: op},
	})
}

func TestActor_RepliesWithStepResult(t *testing.T) {
	a := worker.NewActor(worker.NewUtility())
	assert.Equal(t, domain.UtilityWorkerID, a.ID())

	out, err := a.Handle(context.Background(), taskRequest(domain.UtilityWorkerID, 2, "get_current_time"))
	require.NoError(t, err)
	require.Len(t, out, 1)

	reply := out[0]
	assert.Equal(t, domain.MessageStepResult, reply.Type)
	assert.Equal(t, domain.CoordinatorID, reply.Recipient)
	payload := reply.Payload.(domain.StepResultPayload)
	assert.Equal(t, 2, payload.StepIndex)
	assert.Equal(t, domain.ResultSuccess, payload.Result.Status)
}

func TestActor_PanicBecomesErrorResult(t *testing.T) {
	a := worker.NewActor(panicky{})
	out, err := a.Handle(context.Background(), taskRequest("panicky", 0, "boom"))
	require.NoError(t, err)
	require.Len(t, out, 1)

	res := out[0].Payload.(domain.StepResultPayload).Result
	assert.Equal(t, domain.ResultError, res.Status)
	assert.Equal(t, domain.ReasonPanic, res.Reason)
}

func TestActor_IgnoresOtherMessages(t *testing.T) {
	a := worker.NewActor(worker.NewUtility())
	out, err := a.Handle(context.Background(), domain.NewMessage("s1", "x", domain.UtilityWorkerID, domain.MessageFinalAnswer, nil))
	assert.NoError(t, err)
	assert.Empty(t, out)
}

func TestNewCatalogue(t *testing.T) {
	cat, err := worker.NewCatalogue(worker.NewUtility(), worker.NewKnowledge(&recordingStore{}))
	require.NoError(t, err)

	assert.Equal(t, []string{domain.UtilityWorkerID, domain.KnowledgeWorkerID}, cat.Workers())
	assert.True(t, cat.Has(domain.UtilityWorkerID, "calculator"))
	assert.True(t, cat.Has(domain.KnowledgeWorkerID, "learn_new_info"))
	assert.False(t, cat.Has(domain.KnowledgeWorkerID, "calculator"))

	// Required arguments declared by the worker are enforced by plan validation.
	err = cat.ValidateStep(domain.PlanStep{Worker: domain.UtilityWorkerID, Task: domain.TaskPayload{Operation: "calculator", Args: map[string]any{"operation": "+"}}})
	assert.Error(t, err)

	_, err = worker.NewCatalogue(worker.NewUtility(), worker.NewUtility())
	assert.Error(t, err)
}
