package bot

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/freeeve/roshambo/pkg/rpsls"
)

// ErrUnknownPlayer is returned by PlayerForName for unrecognised names.
var ErrUnknownPlayer = errors.New("unknown player")

// Player is anything that can take part in a match. NextMove receives the
// other side's move from the previous round (rpsls.None on the first call)
// and returns this round's move.
type Player interface {
	Name() string
	NextMove(last rpsls.Move) (rpsls.Move, error)
}

// PlayerNames lists the names accepted by PlayerForName, besides the five
// move names which select a ConstantPlayer.
var PlayerNames = []string{"cycle", "rotate", "random", "counter", "beat-last", "ensemble"}

// PlayerForName builds a scripted player.
func PlayerForName(name string, seed int64) (Player, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "cycle":
		return NewCyclePlayer(rpsls.AllMoves()...), nil
	case "rotate":
		return &RotatePlayer{rng: newRand(seed)}, nil
	case "random":
		return &RandomPlayer{rng: newRand(seed)}, nil
	case "counter":
		return &CounterPlayer{rng: newRand(seed)}, nil
	case "beat-last":
		return &BeatLastPlayer{rng: newRand(seed)}, nil
	case "ensemble":
		return NewEngine(EngineConfig{Seed: seed}), nil
	}
	if m, err := rpsls.ParseMove(key); err == nil && m != rpsls.None {
		return ConstantPlayer{Move: m}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPlayer, name)
}

// ConstantPlayer always plays the same move.
type ConstantPlayer struct {
	Move rpsls.Move
}

func (p ConstantPlayer) Name() string { return p.Move.String() }

func (p ConstantPlayer) NextMove(rpsls.Move) (rpsls.Move, error) { return p.Move, nil }

// CyclePlayer repeats a fixed sequence.
type CyclePlayer struct {
	seq []rpsls.Move
	i   int
}

// NewCyclePlayer returns a player that plays seq in order, forever.
func NewCyclePlayer(seq ...rpsls.Move) *CyclePlayer {
	return &CyclePlayer{seq: append([]rpsls.Move(nil), seq...)}
}

func (p *CyclePlayer) Name() string { return "cycle" }

func (p *CyclePlayer) NextMove(rpsls.Move) (rpsls.Move, error) {
	m := p.seq[p.i%len(p.seq)]
	p.i++
	return m, nil
}

// RotatePlayer starts on a random move and then steps through the move order.
type RotatePlayer struct {
	rng  *rand.Rand
	prev rpsls.Move
}

func (p *RotatePlayer) Name() string { return "rotate" }

func (p *RotatePlayer) NextMove(rpsls.Move) (rpsls.Move, error) {
	if p.prev == rpsls.None {
		p.prev = randomMove(p.rng)
	} else {
		p.prev = p.prev.Next()
	}
	return p.prev, nil
}

// RandomPlayer plays uniformly at random.
type RandomPlayer struct {
	rng *rand.Rand
}

func (p *RandomPlayer) Name() string { return "random" }

func (p *RandomPlayer) NextMove(rpsls.Move) (rpsls.Move, error) { return randomMove(p.rng), nil }

// CounterPlayer plays against the other side's most frequent move.
type CounterPlayer struct {
	rng    *rand.Rand
	counts [rpsls.NumMoves]int
}

func (p *CounterPlayer) Name() string { return "counter" }

func (p *CounterPlayer) NextMove(last rpsls.Move) (rpsls.Move, error) {
	if last != rpsls.None {
		if err := rpsls.Validate(last); err != nil {
			return rpsls.None, err
		}
		p.counts[last.Index()]++
	}
	mode, ok := modeOf(p.counts, p.rng)
	if !ok {
		return randomMove(p.rng), nil
	}
	return Counter(Level0, mode), nil
}

// BeatLastPlayer plays against whatever the other side played last round.
type BeatLastPlayer struct {
	rng *rand.Rand
}

func (p *BeatLastPlayer) Name() string { return "beat-last" }

func (p *BeatLastPlayer) NextMove(last rpsls.Move) (rpsls.Move, error) {
	if last == rpsls.None {
		return randomMove(p.rng), nil
	}
	if err := rpsls.Validate(last); err != nil {
		return rpsls.None, err
	}
	return Counter(Level0, last), nil
}
