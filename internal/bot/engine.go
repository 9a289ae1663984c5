package bot

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/freeeve/roshambo/pkg/rpsls"
)

// DefaultWarmup is the number of opening rounds played at random before the
// score table is trusted.
const DefaultWarmup = 5

// ErrMissingMove is returned when the opponent's previous move is omitted
// after the first round.
var ErrMissingMove = errors.New("missing opponent move")

// EngineConfig configures an ensemble engine.
type EngineConfig struct {
	Warmup int             // rounds of random play; 0 = DefaultWarmup, negative = none
	Seed   int64           // 0 = random
	Logger *zerolog.Logger // nil disables round tracing
}

// PairScore is one row of a scoreboard snapshot.
type PairScore struct {
	Pair
	Score          int        `json:"score"`
	Recommendation rpsls.Move `json:"recommendation"`
}

// Engine picks moves for one match by scoring every (strategy, level) pair
// on what it would have played and following the current leader.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	warmup int
	rng    *rand.Rand
	log    zerolog.Logger

	history History
	scores  ScoreTable

	// caches is double-buffered: caches[cur] is the round just computed,
	// caches[cur^1] the round before it.
	caches [2]Recommendations
	cur    int

	selected    Pair
	hasSelected bool
}

// NewEngine creates an engine for a fresh match.
func NewEngine(cfg EngineConfig) *Engine {
	warmup := cfg.Warmup
	switch {
	case warmup == 0:
		warmup = DefaultWarmup
	case warmup < 0:
		warmup = 0
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "engine").Logger()
	}
	return &Engine{
		warmup: warmup,
		rng:    newRand(cfg.Seed),
		log:    logger,
	}
}

// Name implements Player.
func (e *Engine) Name() string { return "ensemble" }

// NextMove records the opponent's move from the previous round, credits the
// previous round's recommendations against it, and returns this round's move.
// last must be rpsls.None on the first call and a valid move afterwards; any
// other value is rejected and leaves the engine unchanged.
func (e *Engine) NextMove(last rpsls.Move) (rpsls.Move, error) {
	round := e.history.Rounds()

	if round == 0 {
		if last != rpsls.None {
			if err := rpsls.Validate(last); err != nil {
				return rpsls.None, fmt.Errorf("round %d: %w", round, err)
			}
			e.log.Debug().Str("move", last.String()).Msg("Ignoring opponent move before first round")
		}
	} else {
		if last == rpsls.None {
			return rpsls.None, fmt.Errorf("round %d: %w", round, ErrMissingMove)
		}
		if err := rpsls.Validate(last); err != nil {
			return rpsls.None, fmt.Errorf("round %d: %w", round, err)
		}
		e.history.appendOpponent(last)
		delta := e.scores.Apply(&e.caches[e.cur], last)
		e.cur ^= 1
		e.log.Debug().Int("round", round).Str("opponent", last.String()).Int("delta", delta).Msg("Scored previous recommendations")
	}

	recs := &e.caches[e.cur]
	e.refresh(recs)

	var move rpsls.Move
	if round < e.warmup {
		move = randomMove(e.rng)
		e.hasSelected = false
	} else {
		best := e.scores.Best()
		e.selected = best[e.rng.Intn(len(best))]
		e.hasSelected = true
		move = recs.Get(e.selected)
		e.log.Debug().
			Int("round", round).
			Str("pair", e.selected.String()).
			Int("score", e.scores.Get(e.selected)).
			Int("tied", len(best)).
			Str("move", move.String()).
			Msg("Selected pair")
	}

	e.history.appendOwn(move)
	return move, nil
}

// refresh recomputes every pair's recommendation from the current history.
// Each predictor runs once; its prediction feeds all ladder levels.
func (e *Engine) refresh(recs *Recommendations) {
	for _, id := range AllStrategies() {
		predicted := predictors[id].Predict(&e.history, e.rng)
		recs[id] = BuildLadder(predicted)
	}
}

// Rounds returns the number of moves the engine has made.
func (e *Engine) Rounds() int { return e.history.Rounds() }

// Warmup returns the number of random opening rounds.
func (e *Engine) Warmup() int { return e.warmup }

// OwnMoves returns a copy of the engine's move history.
func (e *Engine) OwnMoves() []rpsls.Move { return append([]rpsls.Move(nil), e.history.Own()...) }

// OpponentMoves returns a copy of the opponent's move history.
func (e *Engine) OpponentMoves() []rpsls.Move {
	return append([]rpsls.Move(nil), e.history.Opponent()...)
}

// Score returns the cumulative score of a pair.
func (e *Engine) Score(s StrategyID, l Level) int {
	return e.scores[s][l]
}

// Recommendation returns what a pair recommended for the most recent round.
func (e *Engine) Recommendation(s StrategyID, l Level) rpsls.Move {
	return e.caches[e.cur][s][l]
}

// Selected returns the pair whose recommendation was played last round.
// ok is false during warmup.
func (e *Engine) Selected() (Pair, bool) {
	return e.selected, e.hasSelected
}

// Snapshot returns the current score and recommendation of every pair in
// enumeration order.
func (e *Engine) Snapshot() []PairScore {
	pairs := AllPairs()
	out := make([]PairScore, len(pairs))
	for i, p := range pairs {
		out[i] = PairScore{
			Pair:           p,
			Score:          e.scores.Get(p),
			Recommendation: e.caches[e.cur].Get(p),
		}
	}
	return out
}
