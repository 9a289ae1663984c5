package bot

import "github.com/freeeve/roshambo/pkg/rpsls"

// Score deltas applied to a pair once the opponent's move is revealed.
const (
	scoreWin  = 2
	scoreLoss = -2
	scoreDraw = -1
)

// Pair identifies one (base strategy, metastrategy) combination.
type Pair struct {
	Strategy StrategyID `json:"strategy"`
	Level    Level      `json:"level"`
}

func (p Pair) String() string {
	return p.Strategy.String() + "/" + p.Level.String()
}

// AllPairs returns every pair in enumeration order: strategies outer,
// levels inner.
func AllPairs() []Pair {
	pairs := make([]Pair, 0, int(NumStrategies)*int(NumLevels))
	for _, s := range AllStrategies() {
		for _, l := range AllLevels() {
			pairs = append(pairs, Pair{Strategy: s, Level: l})
		}
	}
	return pairs
}

// Recommendations is one round's snapshot of every pair's recommended move.
type Recommendations [NumStrategies]Ladder

// Get returns the recommendation for p.
func (r *Recommendations) Get(p Pair) rpsls.Move {
	return r[p.Strategy][p.Level]
}

// ScoreTable is the cumulative score of every pair over a match.
type ScoreTable [NumStrategies][NumLevels]int

// Get returns the score for p.
func (t *ScoreTable) Get(p Pair) int {
	return t[p.Strategy][p.Level]
}

// ScoreDelta is the credit a pair earns for recommending cached when the
// opponent went on to play revealed.
func ScoreDelta(cached, revealed rpsls.Move) int {
	switch rpsls.Play(cached, revealed) {
	case rpsls.Win:
		return scoreWin
	case rpsls.Loss:
		return scoreLoss
	default:
		return scoreDraw
	}
}

// Apply credits every pair for its cached recommendation against revealed
// and returns the summed delta.
func (t *ScoreTable) Apply(recs *Recommendations, revealed rpsls.Move) int {
	total := 0
	for s := range t {
		for l := range t[s] {
			d := ScoreDelta(recs[s][l], revealed)
			t[s][l] += d
			total += d
		}
	}
	return total
}

// Best returns every pair holding the maximum score, in enumeration order.
func (t *ScoreTable) Best() []Pair {
	var best []Pair
	top := 0
	for _, p := range AllPairs() {
		v := t.Get(p)
		switch {
		case len(best) == 0 || v > top:
			top = v
			best = append(best[:0], p)
		case v == top:
			best = append(best, p)
		}
	}
	return best
}
