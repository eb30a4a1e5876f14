package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/campusmate/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// History implements ports.HistoryStore with one capped Redis list per user.
type History struct {
	client *backend.Client
	prefix string
	limit  int
	ttl    time.Duration
}

// NewHistory creates a history store keeping limit turns per user.
// A positive ttl expires idle conversations.
func NewHistory(client *backend.Client, prefix string, limit int, ttl time.Duration) *History {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if limit <= 0 {
		limit = 3
	}
	return &History{client: client, prefix: prefix, limit: limit, ttl: ttl}
}

func (h *History) key(userID string) string {
	return h.prefix + "history:" + userID
}

func (h *History) Append(ctx context.Context, userID string, turn domain.Turn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	key := h.key(userID)
	pipe := h.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, int64(-h.limit), -1)
	if h.ttl > 0 {
		pipe.Expire(ctx, key, h.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

func (h *History) Recent(ctx context.Context, userID string) ([]domain.Turn, error) {
	raw, err := h.client.LRange(ctx, h.key(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	turns := make([]domain.Turn, 0, len(raw))
	for _, item := range raw {
		var t domain.Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (h *History) Clear(ctx context.Context, userID string) error {
	return h.client.Del(ctx, h.key(userID)).Err()
}
