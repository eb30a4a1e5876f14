package knowledge

import (
	"context"
	"sync"

	"github.com/aretw0/campusmate/pkg/domain"
)

// MemoryFacts is a process-local FactStore. Records keep insertion order.
type MemoryFacts struct {
	mu      sync.RWMutex
	order   []string
	records map[string]domain.FactRecord
}

// NewMemoryFacts creates an empty in-memory fact store.
func NewMemoryFacts() *MemoryFacts {
	return &MemoryFacts{records: make(map[string]domain.FactRecord)}
}

func (m *MemoryFacts) Put(ctx context.Context, rec domain.FactRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.ID]; !ok {
		m.order = append(m.order, rec.ID)
	}
	m.records[rec.ID] = rec
	return nil
}

func (m *MemoryFacts) List(ctx context.Context, scope domain.FactScope) ([]domain.FactRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.FactRecord
	for _, id := range m.order {
		if rec := m.records[id]; rec.Scope == scope {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *MemoryFacts) All(ctx context.Context) ([]domain.FactRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.FactRecord, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.records[id])
	}
	return out, nil
}
