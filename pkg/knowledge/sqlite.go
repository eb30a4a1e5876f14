package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aretw0/campusmate/pkg/domain"
	_ "modernc.org/sqlite"
)

const factsSchema = `
CREATE TABLE IF NOT EXISTS facts (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	user_id     TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL,
	question    TEXT NOT NULL DEFAULT '',
	answer      TEXT NOT NULL DEFAULT '',
	topic       TEXT NOT NULL DEFAULT '',
	information TEXT NOT NULL DEFAULT '',
	taught_by   TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL,
	seq         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_facts_scope ON facts(kind, user_id, category);
`

// SQLiteFacts is a durable FactStore backed by a single SQLite file.
type SQLiteFacts struct {
	db *sql.DB
}

// OpenSQLiteFacts opens (and migrates) the fact database at path.
// Use ":memory:" for a throwaway database.
func OpenSQLiteFacts(path string) (*SQLiteFacts, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fact database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec(factsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create fact schema: %w", err)
	}
	return &SQLiteFacts{db: db}, nil
}

// Close releases the database.
func (s *SQLiteFacts) Close() error {
	return s.db.Close()
}

func (s *SQLiteFacts) Put(ctx context.Context, rec domain.FactRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO facts (id, kind, user_id, category, question, answer, topic, information, taught_by, created_at, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM facts))
		ON CONFLICT(id) DO UPDATE SET
			question = excluded.question,
			answer = excluded.answer,
			topic = excluded.topic,
			information = excluded.information,
			taught_by = excluded.taught_by,
			created_at = excluded.created_at`,
		rec.ID, string(rec.Scope.Kind), rec.Scope.UserID, rec.Scope.Category,
		rec.Fact.Question, rec.Fact.Answer, rec.Fact.Topic, rec.Fact.Information,
		rec.TaughtBy, rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to store fact %s: %w", rec.ID, err)
	}
	return nil
}

func (s *SQLiteFacts) List(ctx context.Context, scope domain.FactScope) ([]domain.FactRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, user_id, category, question, answer, topic, information, taught_by, created_at
		FROM facts WHERE kind = ? AND user_id = ? AND category = ? ORDER BY seq`,
		string(scope.Kind), scope.UserID, scope.Category,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list facts for %s: %w", scope, err)
	}
	return scanFacts(rows)
}

func (s *SQLiteFacts) All(ctx context.Context) ([]domain.FactRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, user_id, category, question, answer, topic, information, taught_by, created_at
		FROM facts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list facts: %w", err)
	}
	return scanFacts(rows)
}

func scanFacts(rows *sql.Rows) ([]domain.FactRecord, error) {
	defer rows.Close()
	var out []domain.FactRecord
	for rows.Next() {
		var (
			rec  domain.FactRecord
			kind string
			at   int64
		)
		if err := rows.Scan(&rec.ID, &kind, &rec.Scope.UserID, &rec.Scope.Category,
			&rec.Fact.Question, &rec.Fact.Answer, &rec.Fact.Topic, &rec.Fact.Information,
			&rec.TaughtBy, &at); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		rec.Scope.Kind = domain.ScopeKind(kind)
		rec.CreatedAt = time.Unix(0, at).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}
