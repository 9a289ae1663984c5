package bot

import (
	"fmt"

	"github.com/freeeve/roshambo/pkg/rpsls"
)

// Level is a metastrategy: how many rounds of counter-play to assume when
// turning a predicted opponent move into our own move.
type Level int

const (
	Level0 Level = iota
	Level1
	Level2
	Level3
	Level4

	NumLevels
)

func (l Level) String() string {
	return fmt.Sprintf("m%d", int(l))
}

// MarshalText encodes the level as m0..m4.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// AllLevels returns every metastrategy level in ladder order.
func AllLevels() []Level {
	return []Level{Level0, Level1, Level2, Level3, Level4}
}

// Ladder holds the recommendation of every level for one prediction.
type Ladder [NumLevels]rpsls.Move

// BuildLadder computes all levels for predicted, lowest first. Level 0 beats
// the prediction outright; each later level hedges against both of the
// opponent's direct counters to the level below it.
func BuildLadder(predicted rpsls.Move) Ladder {
	var l Ladder
	l[Level0] = rpsls.BeatenBy(predicted)[0]
	for k := Level1; k < NumLevels; k++ {
		l[k] = hedge(l[k-1])
	}
	return l
}

// Counter returns the recommendation of a single level.
func Counter(level Level, predicted rpsls.Move) rpsls.Move {
	return BuildLadder(predicted)[level]
}

// hedge returns the first move that beats both counters to prior, or prior
// itself when no such move exists.
func hedge(prior rpsls.Move) rpsls.Move {
	r := rpsls.BeatenBy(prior)
	second := rpsls.BeatenBy(r[1])
	for _, m := range rpsls.BeatenBy(r[0]) {
		if m == second[0] || m == second[1] {
			return m
		}
	}
	return prior
}
