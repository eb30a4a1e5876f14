package memory

import (
	"context"
	"sync"

	"github.com/aretw0/campusmate/pkg/domain"
)

// DefaultHistoryTurns is the number of turns kept per user.
const DefaultHistoryTurns = 3

// History implements ports.HistoryStore in memory.
type History struct {
	mu    sync.Mutex
	limit int
	turns map[string][]domain.Turn
}

// NewHistory creates a history keeping the last limit turns per user.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryTurns
	}
	return &History{
		limit: limit,
		turns: make(map[string][]domain.Turn),
	}
}

func (h *History) Append(ctx context.Context, userID string, turn domain.Turn) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	turns := append(h.turns[userID], turn)
	if len(turns) > h.limit {
		turns = append([]domain.Turn(nil), turns[len(turns)-h.limit:]...)
	}
	h.turns[userID] = turns
	return nil
}

func (h *History) Recent(ctx context.Context, userID string) ([]domain.Turn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.Turn(nil), h.turns[userID]...), nil
}

func (h *History) Clear(ctx context.Context, userID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.turns, userID)
	return nil
}
