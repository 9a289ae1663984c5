package model

import (
	"time"

	"github.com/freeeve/roshambo/pkg/rpsls"
)

// Match status values.
const (
	MatchActive   = "active"
	MatchFinished = "finished"
)

// Match is one engine-vs-opponent series. Tallies are from the engine's
// point of view.
type Match struct {
	ID               string     `json:"id"`
	PlayerID         string     `json:"player_id"`
	Opponent         string     `json:"opponent"` // "human" or a scripted player name
	Status           string     `json:"status"`
	Rounds           int        `json:"rounds"`
	EngineWins       int        `json:"engine_wins"`
	OpponentWins     int        `json:"opponent_wins"`
	Draws            int        `json:"draws"`
	LastEngineMove   rpsls.Move `json:"last_engine_move,omitempty"`
	LastOpponentMove rpsls.Move `json:"last_opponent_move,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
}

// Record folds one round into the tallies.
func (m *Match) Record(engine, opponent rpsls.Move) rpsls.Outcome {
	outcome := rpsls.Play(engine, opponent)
	m.Rounds++
	switch outcome {
	case rpsls.Win:
		m.EngineWins++
	case rpsls.Loss:
		m.OpponentWins++
	default:
		m.Draws++
	}
	m.LastEngineMove = engine
	m.LastOpponentMove = opponent
	return outcome
}

// Round is the public record of a single played round.
type Round struct {
	MatchID      string     `json:"match_id"`
	Number       int        `json:"number"` // zero-based
	EngineMove   rpsls.Move `json:"engine_move"`
	OpponentMove rpsls.Move `json:"opponent_move"`
	Outcome      string     `json:"outcome"` // engine's result: win, loss, draw
	MatchOver    bool       `json:"match_over,omitempty"`
}
