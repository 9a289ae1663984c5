package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/freeeve/roshambo/internal/model"
)

type mockMatchRepo struct {
	mu      sync.Mutex
	matches map[string]*model.Match
	order   []string
	failing bool
}

func newMockMatchRepo() *mockMatchRepo {
	return &mockMatchRepo{matches: make(map[string]*model.Match)}
}

func (r *mockMatchRepo) Create(_ context.Context, m *model.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errors.New("db down")
	}
	cp := *m
	r.matches[m.ID] = &cp
	r.order = append(r.order, m.ID)
	return nil
}

func (r *mockMatchRepo) FindByID(_ context.Context, id string) (*model.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *mockMatchRepo) ListByPlayer(_ context.Context, playerID string, limit int) ([]model.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Match
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		if m := r.matches[r.order[i]]; m.PlayerID == playerID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *mockMatchRepo) ListRecent(_ context.Context, limit int) ([]model.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Match
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *r.matches[r.order[i]])
	}
	return out, nil
}

type mockCache struct {
	mu        sync.Mutex
	summaries map[string]model.Match
	ttls      map[string]time.Duration
}

func newMockCache() *mockCache {
	return &mockCache{summaries: make(map[string]model.Match), ttls: make(map[string]time.Duration)}
}

func (c *mockCache) SetSummary(_ context.Context, m *model.Match, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summaries[m.ID] = *m
	c.ttls[m.ID] = ttl
	return nil
}

func (c *mockCache) GetSummary(_ context.Context, id string) (*model.Match, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.summaries[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (c *mockCache) DeleteSummary(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.summaries, id)
	return nil
}

type broadcastEvent struct {
	playerID  string // set for player events only
	matchID   string
	eventType string
	data      any
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

func (b *recordingBroadcaster) BroadcastMatchEvent(matchID, eventType string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastEvent{matchID: matchID, eventType: eventType, data: data})
}

func (b *recordingBroadcaster) BroadcastPlayerEvent(playerID, matchID, eventType string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastEvent{playerID: playerID, matchID: matchID, eventType: eventType, data: data})
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, e := range b.events {
		out = append(out, e.eventType)
	}
	return out
}
