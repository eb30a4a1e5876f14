package domain_test

import (
	"math/rand"
	"testing"

	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		results []domain.ToolResult
		want    domain.Outcome
	}{
		{"no steps", nil, domain.OutcomeNoStepsExecuted},
		{"all success", []domain.ToolResult{domain.Success("a"), domain.Success("b")}, domain.OutcomeSuccess},
		{"one not found", []domain.ToolResult{domain.Success("a"), domain.NotFound("b")}, domain.OutcomeNotFound},
		{"failure beats not found", []domain.ToolResult{domain.NotFound("a"), domain.Failure("x", nil)}, domain.OutcomePartialFailure},
		{"error counts as failure", []domain.ToolResult{domain.Success("a"), domain.Errored("boom", nil)}, domain.OutcomePartialFailure},
		{"unknown status", []domain.ToolResult{{Status: "weird"}}, domain.OutcomePartialFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Aggregate(tt.results))
		})
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	base := []domain.ToolResult{
		domain.Success(1), domain.NotFound(2), domain.Success(3), domain.Failure("x", 4), domain.NotFound(5),
	}
	withoutFailure := []domain.ToolResult{
		domain.Success(1), domain.NotFound(2), domain.Success(3), domain.NotFound(5),
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]domain.ToolResult(nil), base...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, domain.OutcomePartialFailure, domain.Aggregate(shuffled))

		shuffled = append([]domain.ToolResult(nil), withoutFailure...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, domain.OutcomeNotFound, domain.Aggregate(shuffled))
	}
}

func TestToolResult_Failed(t *testing.T) {
	assert.False(t, domain.Success(nil).Failed())
	assert.False(t, domain.NotFound(nil).Failed())
	assert.True(t, domain.Failure("r", nil).Failed())
	assert.True(t, domain.Errored("r", nil).Failed())
}
