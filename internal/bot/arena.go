package bot

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/roshambo/internal/model"
	"github.com/freeeve/roshambo/internal/repository"
	"github.com/freeeve/roshambo/pkg/rpsls"
)

// ArenaPlayerID owns every match saved by the arena.
const ArenaPlayerID = "arena"

// ArenaConfig configures a single engine-vs-scripted-player match.
type ArenaConfig struct {
	Opponent string // name accepted by PlayerForName
	Rounds   int    // 0 = 1000
	Seed     int64  // 0 = random; the opponent gets opponentSeed(Seed)
	Warmup   int    // passed to EngineConfig
}

// ArenaResult describes the outcome of a completed arena match. Tallies are
// from the engine's point of view.
type ArenaResult struct {
	MatchID      string `json:"match_id,omitempty"`
	Opponent     string `json:"opponent"`
	Rounds       int    `json:"rounds"`
	EngineWins   int    `json:"engine_wins"`
	OpponentWins int    `json:"opponent_wins"`
	Draws        int    `json:"draws"`
	Leader       Pair   `json:"leader"`
	LeaderScore  int    `json:"leader_score"`
}

// Margin returns engine wins minus opponent wins.
func (r *ArenaResult) Margin() int { return r.EngineWins - r.OpponentWins }

// RunMatch plays the ensemble engine against a scripted opponent and saves
// the result. Pass a nil repo for dry-run mode.
func RunMatch(ctx context.Context, cfg ArenaConfig, repo repository.MatchRepository) (*ArenaResult, error) {
	if cfg.Rounds == 0 {
		cfg.Rounds = 1000
	}
	opp, err := PlayerForName(cfg.Opponent, opponentSeed(cfg.Seed))
	if err != nil {
		return nil, err
	}
	engine := NewEngine(EngineConfig{Seed: cfg.Seed, Warmup: cfg.Warmup})

	match := &model.Match{
		ID:        uuid.New().String(),
		PlayerID:  ArenaPlayerID,
		Opponent:  opp.Name(),
		Status:    model.MatchActive,
		CreatedAt: time.Now(),
	}
	if err := Play(ctx, engine, opp, cfg.Rounds, match); err != nil {
		return nil, err
	}

	now := time.Now()
	match.Status = model.MatchFinished
	match.FinishedAt = &now

	result := &ArenaResult{
		Opponent:     match.Opponent,
		Rounds:       match.Rounds,
		EngineWins:   match.EngineWins,
		OpponentWins: match.OpponentWins,
		Draws:        match.Draws,
	}
	if best := engine.scores.Best(); len(best) > 0 {
		result.Leader = best[0]
		result.LeaderScore = engine.scores.Get(best[0])
	}

	if repo != nil {
		if err := repo.Create(ctx, match); err != nil {
			return nil, fmt.Errorf("save arena match: %w", err)
		}
		result.MatchID = match.ID
	}
	log.Debug().
		Str("matchId", result.MatchID).
		Str("opponent", result.Opponent).
		Int("margin", result.Margin()).
		Str("leader", result.Leader.String()).
		Msg("Arena match finished")
	return result, nil
}

// Play runs rounds of a against b, feeding each side the other's previous
// move and folding every round into m from a's point of view.
func Play(ctx context.Context, a, b Player, rounds int, m *model.Match) error {
	lastA, lastB := rpsls.None, rpsls.None
	for r := 0; r < rounds; r++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		moveA, err := a.NextMove(lastB)
		if err != nil {
			return fmt.Errorf("round %d: %s: %w", r, a.Name(), err)
		}
		moveB, err := b.NextMove(lastA)
		if err != nil {
			return fmt.Errorf("round %d: %s: %w", r, b.Name(), err)
		}
		m.Record(moveA, moveB)
		lastA, lastB = moveA, moveB
	}
	return nil
}

// opponentSeed derives the scripted player's seed from the engine's. Zero
// stays zero (both random); any other seed maps to a nonzero one, so a
// seeded match is always reproducible.
func opponentSeed(seed int64) int64 {
	if seed == 0 {
		return 0
	}
	if opp := seed + 1; opp != 0 {
		return opp
	}
	return math.MaxInt64
}
