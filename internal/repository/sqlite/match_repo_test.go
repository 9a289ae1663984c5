package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/freeeve/roshambo/internal/model"
	"github.com/freeeve/roshambo/pkg/rpsls"
)

func openTestRepo(t *testing.T) *MatchRepo {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "matches.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestMatchRepo_CreateAndFind(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	finished := created.Add(90 * time.Second)
	m := &model.Match{
		ID:               "m-1",
		PlayerID:         "arena",
		Opponent:         "cycle",
		Status:           model.MatchFinished,
		Rounds:           100,
		EngineWins:       61,
		OpponentWins:     20,
		Draws:            19,
		LastEngineMove:   rpsls.Spock,
		LastOpponentMove: rpsls.Rock,
		CreatedAt:        created,
		FinishedAt:       &finished,
	}
	if err := repo.Create(ctx, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.FindByID(ctx, "m-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil {
		t.Fatal("expected match, got nil")
	}
	if got.Opponent != "cycle" || got.Rounds != 100 || got.EngineWins != 61 || got.Draws != 19 {
		t.Errorf("unexpected tallies: %+v", got)
	}
	if got.LastEngineMove != rpsls.Spock || got.LastOpponentMove != rpsls.Rock {
		t.Errorf("last moves: got %s/%s", got.LastEngineMove, got.LastOpponentMove)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created_at: got %v, want %v", got.CreatedAt, created)
	}
	if got.FinishedAt == nil || !got.FinishedAt.Equal(finished) {
		t.Errorf("finished_at: got %v, want %v", got.FinishedAt, finished)
	}
}

func TestMatchRepo_FindMissing(t *testing.T) {
	repo := openTestRepo(t)
	got, err := repo.FindByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestMatchRepo_NoMovesRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	m := &model.Match{ID: "empty", PlayerID: "p", Opponent: "human", Status: model.MatchFinished, CreatedAt: time.Now()}
	if err := repo.Create(ctx, m); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := repo.FindByID(ctx, "empty")
	if err != nil || got == nil {
		t.Fatalf("find: %v %v", got, err)
	}
	if got.LastEngineMove != rpsls.None || got.FinishedAt != nil {
		t.Errorf("expected no moves and no finish time, got %+v", got)
	}
}

func TestMatchRepo_ListOrdering(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	// Whole-second and fractional timestamps must still sort by time.
	offsets := []time.Duration{0, 500 * time.Millisecond, time.Second, 1500 * time.Millisecond}
	for i, off := range offsets {
		player := "a"
		if i%2 == 1 {
			player = "b"
		}
		m := &model.Match{
			ID:        string(rune('w' + i)),
			PlayerID:  player,
			Opponent:  "random",
			Status:    model.MatchFinished,
			CreatedAt: base.Add(off),
		}
		if err := repo.Create(ctx, m); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	recent, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	var ids string
	for _, m := range recent {
		ids += m.ID
	}
	if ids != "zyxw" {
		t.Errorf("recent order: got %q, want %q", ids, "zyxw")
	}

	mine, err := repo.ListByPlayer(ctx, "b", 1)
	if err != nil {
		t.Fatalf("list by player: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != "z" {
		t.Errorf("player b latest: got %+v", mine)
	}
}
