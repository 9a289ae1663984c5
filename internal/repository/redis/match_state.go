package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/freeeve/roshambo/internal/model"
)

func summaryKey(matchID string) string { return "match:" + matchID + ":summary" }

// SetSummary stores the live tallies of a match. A zero ttl keeps the key
// until it is deleted.
func (c *Client) SetSummary(ctx context.Context, m *model.Match, ttl time.Duration) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal match summary: %w", err)
	}
	return c.rdb.Set(ctx, summaryKey(m.ID), data, ttl).Err()
}

// GetSummary retrieves a live match summary, or nil if none is stored.
func (c *Client) GetSummary(ctx context.Context, matchID string) (*model.Match, error) {
	data, err := c.rdb.Get(ctx, summaryKey(matchID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get match summary: %w", err)
	}
	var m model.Match
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode match summary: %w", err)
	}
	return &m, nil
}

// DeleteSummary removes a match summary (on match end).
func (c *Client) DeleteSummary(ctx context.Context, matchID string) error {
	return c.rdb.Del(ctx, summaryKey(matchID)).Err()
}
