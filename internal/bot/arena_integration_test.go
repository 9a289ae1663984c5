//go:build integration

package bot

import (
	"context"
	"testing"

	"github.com/freeeve/roshambo/internal/repository/postgres"
	"github.com/freeeve/roshambo/internal/testutil"
)

// TestArenaSavesToPostgres plays a short match per opponent and reads each
// result back.
// Run with: go test -tags integration -run TestArenaSavesToPostgres -v -count=1
func TestArenaSavesToPostgres(t *testing.T) {
	db := testutil.SetupDB(t)
	testutil.CleanupDB(t, db)
	repo := postgres.NewMatchRepo(db)
	ctx := context.Background()

	for i, name := range []string{"rock", "cycle", "counter"} {
		res, err := RunMatch(ctx, ArenaConfig{Opponent: name, Rounds: 150, Seed: int64(10 + 2*i)}, repo)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		saved, err := repo.FindByID(ctx, res.MatchID)
		if err != nil {
			t.Fatalf("%s: find: %v", name, err)
		}
		if saved == nil {
			t.Fatalf("%s: match %s not saved", name, res.MatchID)
		}
		if saved.Rounds != 150 || saved.EngineWins != res.EngineWins || saved.PlayerID != ArenaPlayerID {
			t.Fatalf("%s: saved %+v does not match result %+v", name, saved, res)
		}
	}

	recent, err := repo.ListByPlayer(ctx, ArenaPlayerID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 arena matches, got %d", len(recent))
	}
}
