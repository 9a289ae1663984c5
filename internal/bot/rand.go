package bot

import (
	"math/rand"

	"github.com/freeeve/roshambo/pkg/rpsls"
)

// newRand returns the random source owned by a single engine or scripted
// player. A zero seed draws one from the global source so that independent
// matches diverge.
func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = rand.Int63()
	}
	return rand.New(rand.NewSource(seed))
}

func randomMove(rng *rand.Rand) rpsls.Move {
	return rpsls.FromIndex(rng.Intn(rpsls.NumMoves))
}

// modeOf returns the most frequent move in counts, breaking ties uniformly at
// random. ok is false when every count is zero.
func modeOf(counts [rpsls.NumMoves]int, rng *rand.Rand) (rpsls.Move, bool) {
	best := 0
	var leaders []int
	for i, c := range counts {
		switch {
		case c > best:
			best = c
			leaders = append(leaders[:0], i)
		case c == best && c > 0:
			leaders = append(leaders, i)
		}
	}
	if len(leaders) == 0 {
		return rpsls.None, false
	}
	if len(leaders) == 1 {
		return rpsls.FromIndex(leaders[0]), true
	}
	return rpsls.FromIndex(leaders[rng.Intn(len(leaders))]), true
}
