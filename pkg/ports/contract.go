package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		s := domain.NewSession(sessionID, "alice", "what time is it")
		s.Status = domain.StatusCompleted
		s.FinalAnswer = "It is noon."
		s.Plan = &domain.Plan{Steps: []domain.PlanStep{{
			Worker: domain.UtilityWorkerID,
			Task:   domain.TaskPayload{Operation: "get_current_time"},
		}}}
		s.CurrentStep = 1
		s.StepResults = append(s.StepResults, domain.StepRecord{
			Worker: domain.UtilityWorkerID,
			Task:   domain.TaskPayload{Operation: "get_current_time"},
			Result: domain.Success("12:00"),
		})

		require.NoError(t, store.Save(ctx, s), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, s.Status, loaded.Status)
		assert.Equal(t, s.FinalAnswer, loaded.FinalAnswer)
		assert.Equal(t, "alice", loaded.UserID)
		require.NotNil(t, loaded.Plan)
		assert.Len(t, loaded.Plan.Steps, 1)
		require.Len(t, loaded.StepResults, 1)
		assert.Equal(t, domain.ResultSuccess, loaded.StepResults[0].Result.Status)
		assert.Equal(t, loaded.CurrentStep, len(loaded.StepResults))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewSession(sessionID, "alice", "q")))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, domain.NewSession(id1, "bob", "q1"))
		_ = store.Save(ctx, domain.NewSession(id2, "bob", "q2"))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunHistoryStoreContract verifies a HistoryStore configured to keep limit turns per user.
func RunHistoryStoreContract(t *testing.T, store HistoryStore, limit int) {
	ctx := context.Background()
	userID := "contract-user-" + time.Now().Format("20060102150405")

	t.Run("Empty", func(t *testing.T) {
		turns, err := store.Recent(ctx, userID+"-nobody")
		require.NoError(t, err)
		assert.Empty(t, turns)
	})

	t.Run("Append keeps order and limit", func(t *testing.T) {
		for i := 0; i < limit+2; i++ {
			err := store.Append(ctx, userID, domain.Turn{
				User:      fmt.Sprintf("q%d", i),
				Assistant: fmt.Sprintf("a%d", i),
				At:        time.Now(),
			})
			require.NoError(t, err)
		}

		turns, err := store.Recent(ctx, userID)
		require.NoError(t, err)
		require.Len(t, turns, limit)
		assert.Equal(t, fmt.Sprintf("q%d", 2), turns[0].User, "oldest surviving turn first")
		assert.Equal(t, fmt.Sprintf("a%d", limit+1), turns[limit-1].Assistant)
	})

	t.Run("Users are isolated", func(t *testing.T) {
		other := userID + "-other"
		require.NoError(t, store.Append(ctx, other, domain.Turn{User: "x", Assistant: "y"}))
		turns, err := store.Recent(ctx, other)
		require.NoError(t, err)
		assert.Len(t, turns, 1)
		_ = store.Clear(ctx, other)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx, userID))
		turns, err := store.Recent(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, turns)
	})
}

// RunFactStoreContract verifies a FactStore. The store must start empty.
func RunFactStoreContract(t *testing.T, store FactStore) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	notes := domain.PersonalScope("alice", "my_notes")

	t.Run("Put and List", func(t *testing.T) {
		rec := domain.NewFactRecord(notes, domain.Fact{Question: "南区食堂几点开门", Answer: "六点半"}, "alice", now)
		require.NoError(t, store.Put(ctx, rec))

		got, err := store.List(ctx, notes)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, rec.ID, got[0].ID)
		assert.Equal(t, "六点半", got[0].Fact.Answer)
		assert.Equal(t, "alice", got[0].TaughtBy)
		assert.True(t, now.Equal(got[0].CreatedAt))
	})

	t.Run("Same subject overwrites", func(t *testing.T) {
		rec := domain.NewFactRecord(notes, domain.Fact{Question: "南区食堂几点开门", Answer: "七点"}, "alice", now.Add(time.Minute))
		require.NoError(t, store.Put(ctx, rec))

		got, err := store.List(ctx, notes)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "七点", got[0].Fact.Answer)
	})

	t.Run("Scopes are isolated", func(t *testing.T) {
		shared := domain.SharedScope("food_tips")
		bob := domain.PersonalScope("bob", "my_notes")
		require.NoError(t, store.Put(ctx, domain.NewFactRecord(shared, domain.Fact{Topic: "本部食堂", Information: "二楼麻辣烫"}, "", now)))
		require.NoError(t, store.Put(ctx, domain.NewFactRecord(bob, domain.Fact{Topic: "体育馆", Information: "周一闭馆"}, "bob", now)))

		got, err := store.List(ctx, shared)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "本部食堂", got[0].Fact.Topic)
		assert.Empty(t, got[0].Scope.UserID)

		got, err = store.List(ctx, notes)
		require.NoError(t, err)
		assert.Len(t, got, 1, "bob's note must not leak into alice's scope")
	})

	t.Run("All", func(t *testing.T) {
		all, err := store.All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}
