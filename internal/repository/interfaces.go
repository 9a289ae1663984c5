package repository

import (
	"context"
	"time"

	"github.com/freeeve/roshambo/internal/model"
)

// MatchRepository stores finished match results. Engine internals are never
// stored; only the tallies in model.Match.
type MatchRepository interface {
	Create(ctx context.Context, m *model.Match) error
	FindByID(ctx context.Context, id string) (*model.Match, error)
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]model.Match, error)
	ListRecent(ctx context.Context, limit int) ([]model.Match, error)
}

// MatchCache holds the live summary of in-progress matches (Redis).
type MatchCache interface {
	SetSummary(ctx context.Context, m *model.Match, ttl time.Duration) error
	GetSummary(ctx context.Context, matchID string) (*model.Match, error)
	DeleteSummary(ctx context.Context, matchID string) error
}
