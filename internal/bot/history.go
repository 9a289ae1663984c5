package bot

import "github.com/freeeve/roshambo/pkg/rpsls"

// History holds both players' moves for one match, indexed by round.
// It only ever grows.
type History struct {
	opponent []rpsls.Move
	own      []rpsls.Move
}

// Rounds returns the number of completed move decisions.
func (h *History) Rounds() int { return len(h.own) }

// Opponent returns the opponent's moves. Callers must not modify the slice.
func (h *History) Opponent() []rpsls.Move { return h.opponent }

// Own returns the engine's moves. Callers must not modify the slice.
func (h *History) Own() []rpsls.Move { return h.own }

// LastOpponent returns the opponent's most recent move, if any.
func (h *History) LastOpponent() (rpsls.Move, bool) {
	if len(h.opponent) == 0 {
		return rpsls.None, false
	}
	return h.opponent[len(h.opponent)-1], true
}

// LastOwn returns the engine's most recent move, if any.
func (h *History) LastOwn() (rpsls.Move, bool) {
	if len(h.own) == 0 {
		return rpsls.None, false
	}
	return h.own[len(h.own)-1], true
}

func (h *History) appendOpponent(m rpsls.Move) { h.opponent = append(h.opponent, m) }

func (h *History) appendOwn(m rpsls.Move) { h.own = append(h.own, m) }
