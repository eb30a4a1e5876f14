package ports

import (
	"context"

	"github.com/aretw0/campusmate/pkg/domain"
)

// KnowledgeStore serves static facts and records facts taught by users.
// Results are always ToolResults; the store never returns raw errors to workers.
type KnowledgeStore interface {
	Lookup(ctx context.Context, category string, filters domain.Filters) domain.ToolResult
	Learn(ctx context.Context, userID, category string, fact domain.Fact) domain.ToolResult
	SearchLearned(ctx context.Context, userID, category, query string) domain.ToolResult
	Categories() domain.Categories
}

// FactStore persists learned facts. Implementations exist in memory and in SQLite.
type FactStore interface {
	Put(ctx context.Context, rec domain.FactRecord) error
	List(ctx context.Context, scope domain.FactScope) ([]domain.FactRecord, error)
	All(ctx context.Context) ([]domain.FactRecord, error)
}
