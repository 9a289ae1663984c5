// Package rpsls defines the rock-paper-scissors-lizard-spock move set and its
// win/lose relation.
package rpsls

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMove is returned when a value outside the five-move domain is
// supplied where a move is required.
var ErrInvalidMove = errors.New("invalid move")

// Move is one of the five game symbols. The zero value None means "no move".
type Move uint8

const (
	None Move = iota
	Rock
	Paper
	Scissors
	Lizard
	Spock
)

// NumMoves is the size of the move domain (None excluded).
const NumMoves = 5

// AllMoves returns the five moves in canonical cyclic order.
func AllMoves() []Move {
	return []Move{Rock, Paper, Scissors, Lizard, Spock}
}

var moveNames = [...]string{
	None:     "none",
	Rock:     "rock",
	Paper:    "paper",
	Scissors: "scissors",
	Lizard:   "lizard",
	Spock:    "spock",
}

// beats[m] lists the two moves m defeats. The order is fixed and defines the
// "first element" used by callers that need a deterministic pick.
var beats = [...][2]Move{
	Rock:     {Scissors, Lizard},
	Paper:    {Rock, Spock},
	Scissors: {Paper, Lizard},
	Lizard:   {Spock, Paper},
	Spock:    {Scissors, Rock},
}

// beatenBy[m] lists the two moves that defeat m.
var beatenBy = [...][2]Move{
	Rock:     {Paper, Spock},
	Paper:    {Scissors, Lizard},
	Scissors: {Rock, Spock},
	Lizard:   {Rock, Scissors},
	Spock:    {Paper, Lizard},
}

func (m Move) String() string {
	if int(m) < len(moveNames) {
		return moveNames[m]
	}
	return fmt.Sprintf("move(%d)", uint8(m))
}

// Valid reports whether m is one of the five playable moves.
func (m Move) Valid() bool {
	return m >= Rock && m <= Spock
}

// Index returns m's zero-based position in canonical order. Only meaningful
// for valid moves.
func (m Move) Index() int {
	return int(m) - 1
}

// FromIndex is the inverse of Index, wrapping i into the domain.
func FromIndex(i int) Move {
	i %= NumMoves
	if i < 0 {
		i += NumMoves
	}
	return Move(i + 1)
}

// Next returns the move following m in canonical cyclic order.
func (m Move) Next() Move {
	return FromIndex(m.Index() + 1)
}

// Beats returns the two moves m defeats. m must be valid.
func Beats(m Move) [2]Move {
	return beats[m]
}

// BeatenBy returns the two moves that defeat m. m must be valid.
func BeatenBy(m Move) [2]Move {
	return beatenBy[m]
}

// Defeats reports whether a beats b.
func Defeats(a, b Move) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	bs := beats[a]
	return bs[0] == b || bs[1] == b
}

// Outcome is the result of one move against another, from the first
// player's point of view.
type Outcome int

const (
	Draw Outcome = iota
	Win
	Loss
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	default:
		return "draw"
	}
}

// Play resolves a against b.
func Play(a, b Move) Outcome {
	switch {
	case Defeats(a, b):
		return Win
	case Defeats(b, a):
		return Loss
	default:
		return Draw
	}
}

// Validate returns a wrapped ErrInvalidMove unless m is playable.
func Validate(m Move) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidMove, m)
	}
	return nil
}

// ParseMove parses a move name (case-insensitive). Single letters r, p, s, l
// and k (for spock) are accepted as shorthand.
func ParseMove(s string) (Move, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rock", "r":
		return Rock, nil
	case "paper", "p":
		return Paper, nil
	case "scissors", "s":
		return Scissors, nil
	case "lizard", "l":
		return Lizard, nil
	case "spock", "k":
		return Spock, nil
	}
	return None, fmt.Errorf("%w: %q", ErrInvalidMove, s)
}

// MarshalText encodes a move as its lower-case name.
func (m Move) MarshalText() ([]byte, error) {
	if m != None && !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMove, uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a move name. An empty string or "none" yields None.
func (m *Move) UnmarshalText(b []byte) error {
	s := string(b)
	if s == "" || strings.EqualFold(s, "none") {
		*m = None
		return nil
	}
	mv, err := ParseMove(s)
	if err != nil {
		return err
	}
	*m = mv
	return nil
}
