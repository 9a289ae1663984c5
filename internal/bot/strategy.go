package bot

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/freeeve/roshambo/pkg/rpsls"
)

// StrategyID identifies a base strategy in the ensemble.
type StrategyID int

const (
	StrategyRandom StrategyID = iota
	StrategyMirror
	StrategyRotation
	StrategyPi
	StrategyE
	StrategyFrequency
	StrategyHistory
	StrategyPairHistory
	StrategyMarkov
	StrategyIocaine

	NumStrategies
)

var strategyNames = [NumStrategies]string{
	StrategyRandom:      "random",
	StrategyMirror:      "mirror",
	StrategyRotation:    "rotation",
	StrategyPi:          "pi",
	StrategyE:           "e",
	StrategyFrequency:   "frequency",
	StrategyHistory:     "history",
	StrategyPairHistory: "pair_history",
	StrategyMarkov:      "markov",
	StrategyIocaine:     "iocaine",
}

func (s StrategyID) String() string {
	if s >= 0 && s < NumStrategies {
		return strategyNames[s]
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// MarshalText encodes the strategy by name.
func (s StrategyID) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AllStrategies returns every base strategy in enumeration order.
func AllStrategies() []StrategyID {
	ids := make([]StrategyID, NumStrategies)
	for i := range ids {
		ids[i] = StrategyID(i)
	}
	return ids
}

// Predictor guesses the opponent's next move from the match history.
// Implementations must not modify h and must fall back to a uniform random
// move when the history cannot ground a prediction.
type Predictor interface {
	Name() string
	Predict(h *History, rng *rand.Rand) rpsls.Move
}

// predictors is indexed by StrategyID; every ID has exactly one entry.
var predictors = [NumStrategies]Predictor{
	StrategyRandom:      RandomPredictor{},
	StrategyMirror:      MirrorPredictor{},
	StrategyRotation:    RotationPredictor{},
	StrategyPi:          DigitPredictor{ID: StrategyPi, Digits: piDigits},
	StrategyE:           DigitPredictor{ID: StrategyE, Digits: eDigits},
	StrategyFrequency:   FrequencyPredictor{},
	StrategyHistory:     HistoryPredictor{MaxWindow: historyMaxWindow, MinWindow: historyMinWindow},
	StrategyPairHistory: PairHistoryPredictor{Window: pairHistoryWindow},
	StrategyMarkov:      ReservedPredictor{ID: StrategyMarkov},
	StrategyIocaine:     ReservedPredictor{ID: StrategyIocaine},
}

// PredictorFor returns the predictor registered for id.
func PredictorFor(id StrategyID) Predictor {
	return predictors[id]
}

const (
	historyMaxWindow  = 10
	historyMinWindow  = 3
	pairHistoryWindow = 3
)

// --- RandomPredictor ---

// RandomPredictor predicts a uniformly random move.
type RandomPredictor struct{}

func (RandomPredictor) Name() string { return StrategyRandom.String() }

func (RandomPredictor) Predict(_ *History, rng *rand.Rand) rpsls.Move {
	return randomMove(rng)
}

// --- MirrorPredictor ---

// MirrorPredictor expects the opponent to copy our previous move.
type MirrorPredictor struct{}

func (MirrorPredictor) Name() string { return StrategyMirror.String() }

func (MirrorPredictor) Predict(h *History, rng *rand.Rand) rpsls.Move {
	if m, ok := h.LastOwn(); ok {
		return m
	}
	return randomMove(rng)
}

// --- RotationPredictor ---

// RotationPredictor expects the opponent to step one place forward in the
// canonical move cycle.
type RotationPredictor struct{}

func (RotationPredictor) Name() string { return StrategyRotation.String() }

func (RotationPredictor) Predict(h *History, rng *rand.Rand) rpsls.Move {
	if m, ok := h.LastOpponent(); ok {
		return m.Next()
	}
	return randomMove(rng)
}

// --- DigitPredictor ---

// DigitPredictor reads a fixed digit sequence: before round t (zero-based)
// it predicts the move at index d mod 5, where d is the (t+1)th digit. The
// sequence wraps once exhausted. It ignores the opponent entirely, so it
// only scores against opponents that happen to follow the same digits.
type DigitPredictor struct {
	ID     StrategyID
	Digits string
}

func (p DigitPredictor) Name() string { return p.ID.String() }

func (p DigitPredictor) Predict(h *History, rng *rand.Rand) rpsls.Move {
	if len(p.Digits) == 0 {
		return randomMove(rng)
	}
	d := p.Digits[h.Rounds()%len(p.Digits)]
	if d < '0' || d > '9' {
		return randomMove(rng)
	}
	return rpsls.FromIndex(int(d - '0'))
}

// --- FrequencyPredictor ---

// FrequencyPredictor predicts the opponent's most played move so far.
type FrequencyPredictor struct{}

func (FrequencyPredictor) Name() string { return StrategyFrequency.String() }

func (FrequencyPredictor) Predict(h *History, rng *rand.Rand) rpsls.Move {
	var counts [rpsls.NumMoves]int
	for _, m := range h.Opponent() {
		counts[m.Index()]++
	}
	if m, ok := modeOf(counts, rng); ok {
		return m
	}
	return randomMove(rng)
}

// --- HistoryPredictor ---

// HistoryPredictor looks for earlier occurrences of the opponent's most
// recent moves and predicts what usually came next. Follow-up counts from
// every window length between MaxWindow and MinWindow are summed rather than
// stopping at the longest window that matches.
type HistoryPredictor struct {
	MaxWindow int
	MinWindow int
}

func (HistoryPredictor) Name() string { return StrategyHistory.String() }

func (p HistoryPredictor) Predict(h *History, rng *rand.Rand) rpsls.Move {
	opp := h.Opponent()
	n := len(opp)

	var counts [rpsls.NumMoves]int
	for l := p.MaxWindow; l >= p.MinWindow; l-- {
		if n <= l {
			continue
		}
		query := opp[n-l:]
		// i+l < n keeps a follow-up move in range and skips the query itself.
		for i := 0; i+l < n; i++ {
			if slices.Equal(opp[i:i+l], query) {
				counts[opp[i+l].Index()]++
			}
		}
	}
	if m, ok := modeOf(counts, rng); ok {
		return m
	}
	return randomMove(rng)
}

// --- PairHistoryPredictor ---

// PairHistoryPredictor is HistoryPredictor over a single window where both
// the opponent's and our own recent moves must match.
type PairHistoryPredictor struct {
	Window int
}

func (PairHistoryPredictor) Name() string { return StrategyPairHistory.String() }

func (p PairHistoryPredictor) Predict(h *History, rng *rand.Rand) rpsls.Move {
	opp, own := h.Opponent(), h.Own()
	n := min(len(opp), len(own))
	l := p.Window
	if l <= 0 || n <= l {
		return randomMove(rng)
	}
	opp, own = opp[:n], own[:n]
	oppQuery, ownQuery := opp[n-l:], own[n-l:]

	var counts [rpsls.NumMoves]int
	for i := 0; i+l < n; i++ {
		if slices.Equal(opp[i:i+l], oppQuery) && slices.Equal(own[i:i+l], ownQuery) {
			counts[opp[i+l].Index()]++
		}
	}
	if m, ok := modeOf(counts, rng); ok {
		return m
	}
	return randomMove(rng)
}

// --- ReservedPredictor ---

// ReservedPredictor holds an ensemble slot for a strategy that has no model
// yet (markov, iocaine). It predicts uniformly at random and is scored and
// selectable like every other strategy.
type ReservedPredictor struct {
	ID StrategyID
}

func (p ReservedPredictor) Name() string { return p.ID.String() }

func (ReservedPredictor) Predict(_ *History, rng *rand.Rand) rpsls.Move {
	return randomMove(rng)
}
