//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/freeeve/roshambo/internal/model"
	"github.com/freeeve/roshambo/internal/testutil"
	"github.com/freeeve/roshambo/pkg/rpsls"
)

var testDB *sql.DB

func setup(t *testing.T) *MatchRepo {
	t.Helper()
	if testDB == nil {
		testDB = testutil.SetupDB(t)
	}
	testutil.CleanupDB(t, testDB)
	return NewMatchRepo(testDB)
}

func newFinishedMatch(playerID string, created time.Time) *model.Match {
	finished := created.Add(time.Minute)
	return &model.Match{
		ID:               uuid.New().String(),
		PlayerID:         playerID,
		Opponent:         "human",
		Status:           model.MatchFinished,
		Rounds:           12,
		EngineWins:       7,
		OpponentWins:     3,
		Draws:            2,
		LastEngineMove:   rpsls.Spock,
		LastOpponentMove: rpsls.Rock,
		CreatedAt:        created,
		FinishedAt:       &finished,
	}
}

func TestMatchCreateAndFind(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()

	m := newFinishedMatch("player-1", time.Now().UTC().Truncate(time.Millisecond))
	if err := repo.Create(ctx, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.FindByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil {
		t.Fatal("expected match, got nil")
	}
	if got.EngineWins != 7 || got.OpponentWins != 3 || got.Draws != 2 || got.Rounds != 12 {
		t.Fatalf("tallies did not round-trip: %+v", got)
	}
	if got.LastEngineMove != rpsls.Spock || got.LastOpponentMove != rpsls.Rock {
		t.Fatalf("moves did not round-trip: %s / %s", got.LastEngineMove, got.LastOpponentMove)
	}
	if got.FinishedAt == nil {
		t.Fatal("expected finished_at to be set")
	}
}

func TestMatchFindMissing(t *testing.T) {
	repo := setup(t)
	got, err := repo.FindByID(context.Background(), uuid.New().String())
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestMatchListByPlayerOrdersNewestFirst(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	older := newFinishedMatch("player-2", base.Add(-time.Hour))
	newer := newFinishedMatch("player-2", base)
	other := newFinishedMatch("player-3", base)
	for _, m := range []*model.Match{older, newer, other} {
		if err := repo.Create(ctx, m); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := repo.ListByPlayer(ctx, "player-2", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].ID != newer.ID || got[1].ID != older.ID {
		t.Fatalf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}

	recent, err := repo.ListRecent(ctx, 1)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(recent))
	}
}
