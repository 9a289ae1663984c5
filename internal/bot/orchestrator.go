package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/roshambo/internal/model"
	"github.com/freeeve/roshambo/pkg/rpsls"
)

// Orchestrator plays a scripted player against a running server's engine
// through the public API.
type Orchestrator struct {
	baseURL string
	player  Player
	rounds  int
	delay   time.Duration
	watch   bool
}

// NewOrchestrator creates an Orchestrator. With watch set it also follows
// the match over the spectator socket and logs each event.
func NewOrchestrator(baseURL string, player Player, rounds int, delay time.Duration, watch bool) *Orchestrator {
	return &Orchestrator{
		baseURL: baseURL,
		player:  player,
		rounds:  rounds,
		delay:   delay,
		watch:   watch,
	}
}

// Run logs in, creates a match, plays until the round count is reached or
// the server ends the match, then returns the final tallies.
func (o *Orchestrator) Run(ctx context.Context) (*model.Match, error) {
	c := NewClient(o.baseURL)
	if err := c.Login(ctx); err != nil {
		return nil, err
	}
	match, err := c.CreateMatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	log.Info().Str("matchId", match.ID).Str("player", o.player.Name()).Int("rounds", o.rounds).Msg("Match created")

	if o.watch {
		if err := c.ConnectWS(ctx); err != nil {
			return nil, err
		}
		defer c.CloseWS()
		if err := c.Subscribe(match.ID); err != nil {
			return nil, fmt.Errorf("ws subscribe: %w", err)
		}
		go logEvents(c.Events())
	}

	over, err := o.playLoop(ctx, c, match.ID)
	if err != nil {
		return nil, err
	}
	if over {
		return c.GetMatch(ctx, match.ID)
	}
	return c.Finish(ctx, match.ID)
}

// playLoop reports whether the server ended the match on its own.
func (o *Orchestrator) playLoop(ctx context.Context, c *Client, matchID string) (bool, error) {
	last := rpsls.None
	for i := 0; i < o.rounds; i++ {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		move, err := o.player.NextMove(last)
		if err != nil {
			return false, fmt.Errorf("round %d: %w", i, err)
		}
		round, err := c.Play(ctx, matchID, move)
		if err != nil {
			return false, fmt.Errorf("round %d: %w", i, err)
		}
		log.Debug().
			Int("round", round.Number).
			Str("engine", round.EngineMove.String()).
			Str("player", round.OpponentMove.String()).
			Str("outcome", round.Outcome).
			Msg("Round played")
		if round.MatchOver {
			log.Info().Int("round", round.Number).Msg("Server ended the match")
			return true, nil
		}
		last = round.EngineMove

		if o.delay > 0 {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(o.delay):
			}
		}
	}
	return false, nil
}

func logEvents(events <-chan WSEvent) {
	for event := range events {
		ev := log.Debug().Str("type", event.Type).Str("matchId", event.MatchID)
		if len(event.Data) > 0 {
			ev = ev.RawJSON("data", event.Data)
		}
		ev.Msg("Match event")
	}
}
