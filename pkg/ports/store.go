package ports

import (
	"context"

	"github.com/aretw0/campusmate/pkg/domain"
)

// SessionStore persists finished sessions for later retrieval and auditing.
type SessionStore interface {
	// Save persists the session snapshot under its ID.
	Save(ctx context.Context, session *domain.Session) error

	// Load retrieves a session.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of stored sessions.
	List(ctx context.Context) ([]string, error)
}

// HistoryStore keeps the last turns of each user's conversation.
type HistoryStore interface {
	// Append adds a turn and trims the history to the store's limit.
	Append(ctx context.Context, userID string, turn domain.Turn) error

	// Recent returns the stored turns, oldest first.
	Recent(ctx context.Context, userID string) ([]domain.Turn, error)

	// Clear drops a user's history.
	Clear(ctx context.Context, userID string) error
}
