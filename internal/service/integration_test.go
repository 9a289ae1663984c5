//go:build integration

package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/freeeve/roshambo/internal/model"
	"github.com/freeeve/roshambo/internal/repository/postgres"
	redisrepo "github.com/freeeve/roshambo/internal/repository/redis"
	"github.com/freeeve/roshambo/internal/testutil"
	"github.com/freeeve/roshambo/pkg/rpsls"
)

// testEnv holds shared test infrastructure.
type testEnv struct {
	db        *sql.DB
	rdb       *goredis.Client
	matchRepo *postgres.MatchRepo
	cache     *redisrepo.Client
}

var env *testEnv

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	if env == nil {
		db := testutil.SetupDB(t)
		rdb := testutil.SetupRedis(t)
		env = &testEnv{
			db:        db,
			rdb:       rdb,
			matchRepo: postgres.NewMatchRepo(db),
			cache:     redisrepo.NewClientFromPool(rdb),
		}
	}
	testutil.CleanupDB(t, env.db)
	testutil.CleanupRedis(t, env.rdb)
	return env
}

// TestFullMatchLifecycle tests: create -> play -> cached summary -> finish -> stored result.
func TestFullMatchLifecycle(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	svc := NewMatchService(e.matchRepo, e.cache, NoopBroadcaster{}, MatchConfig{Seed: 5, TTL: time.Minute})

	m, err := svc.CreateMatch(ctx, "player-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 20; i++ {
		if _, err := svc.Play(ctx, m.ID, "player-1", rpsls.Rock); err != nil {
			t.Fatalf("round %d: %v", i, err)
		}
	}

	cached, err := e.cache.GetSummary(ctx, m.ID)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if cached == nil || cached.Rounds != 20 {
		t.Fatalf("expected cached 20-round summary, got %+v", cached)
	}
	ttl, err := e.rdb.TTL(ctx, "match:"+m.ID+":summary").Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Errorf("unexpected summary TTL %v (%v)", ttl, err)
	}

	if _, err := svc.Finish(ctx, m.ID, "player-1"); err != nil {
		t.Fatalf("finish: %v", err)
	}

	stored, err := e.matchRepo.FindByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored == nil || stored.Status != model.MatchFinished || stored.Rounds != 20 {
		t.Fatalf("unexpected stored match: %+v", stored)
	}
	if stored.EngineWins <= stored.OpponentWins {
		t.Errorf("engine should beat constant rock over 20 rounds: %d-%d", stored.EngineWins, stored.OpponentWins)
	}

	if cached, _ := e.cache.GetSummary(ctx, m.ID); cached != nil {
		t.Error("summary should be dropped after finish")
	}

	list, err := svc.ListMatches(ctx, "player-1", 10)
	if err != nil || len(list) != 1 {
		t.Errorf("expected 1 listed match, got %d (%v)", len(list), err)
	}
}
