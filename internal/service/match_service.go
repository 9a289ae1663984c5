package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/roshambo/internal/bot"
	"github.com/freeeve/roshambo/internal/logger"
	"github.com/freeeve/roshambo/internal/model"
	"github.com/freeeve/roshambo/internal/repository"
	"github.com/freeeve/roshambo/pkg/rpsls"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	ErrMatchFinished = errors.New("match is already finished")
	ErrNotOwner      = errors.New("match belongs to another player")
)

// MatchConfig tunes engines and match lifetime.
type MatchConfig struct {
	Warmup    int           // see bot.EngineConfig
	Seed      int64         // 0 = random per match
	TTL       time.Duration // lifetime of the cached summary
	MaxRounds int           // 0 = unlimited
}

// MatchService runs human-vs-engine matches. Each live match owns one
// engine that never leaves process memory; only tallies are cached and
// stored.
type MatchService struct {
	repo        repository.MatchRepository
	cache       repository.MatchCache
	broadcaster Broadcaster
	cfg         MatchConfig

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu         sync.Mutex
	match      model.Match
	engine     *bot.Engine
	pending    rpsls.Move // client's move from the previous round
	lastActive time.Time
	done       bool
}

// NewMatchService creates a MatchService. cache may be nil.
func NewMatchService(repo repository.MatchRepository, cache repository.MatchCache, broadcaster Broadcaster, cfg MatchConfig) *MatchService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &MatchService{
		repo:        repo,
		cache:       cache,
		broadcaster: broadcaster,
		cfg:         cfg,
		sessions:    make(map[string]*session),
	}
}

// CreateMatch starts a new match for playerID.
func (s *MatchService) CreateMatch(ctx context.Context, playerID string) (*model.Match, error) {
	sess := &session{
		match: model.Match{
			ID:        uuid.New().String(),
			PlayerID:  playerID,
			Opponent:  "human",
			Status:    model.MatchActive,
			CreatedAt: time.Now(),
		},
		lastActive: time.Now(),
	}
	engineLog := logger.ForMatch(ctx, sess.match.ID, playerID)
	sess.engine = bot.NewEngine(bot.EngineConfig{
		Warmup: s.cfg.Warmup,
		Seed:   s.cfg.Seed,
		Logger: &engineLog,
	})

	s.mu.Lock()
	s.sessions[sess.match.ID] = sess
	s.mu.Unlock()

	m := sess.match
	s.cacheSummary(ctx, &m)
	engineLog.Info().Msg("Match created")
	s.broadcaster.BroadcastMatchEvent(m.ID, EventMatchCreated, &m)
	return &m, nil
}

// Play plays one round: the engine commits to its move before looking at
// move, then both are revealed.
func (s *MatchService) Play(ctx context.Context, matchID, playerID string, move rpsls.Move) (*model.Round, error) {
	if err := rpsls.Validate(move); err != nil {
		return nil, err
	}
	sess, err := s.lookup(ctx, matchID, playerID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.done {
		return nil, ErrMatchFinished
	}

	engineMove, err := sess.engine.NextMove(sess.pending)
	if err != nil {
		return nil, fmt.Errorf("engine move: %w", err)
	}
	outcome := sess.match.Record(engineMove, move)
	sess.pending = move
	sess.lastActive = time.Now()

	round := &model.Round{
		MatchID:      matchID,
		Number:       sess.match.Rounds - 1,
		EngineMove:   engineMove,
		OpponentMove: move,
		Outcome:      outcome.String(),
	}
	m := sess.match
	s.cacheSummary(ctx, &m)
	s.broadcaster.BroadcastMatchEvent(matchID, EventRoundPlayed, round)

	if s.cfg.MaxRounds > 0 && sess.match.Rounds >= s.cfg.MaxRounds {
		// The round stands even if saving fails; the next move or the idle
		// reaper retries the finish.
		if _, err := s.finishLocked(ctx, sess); err != nil {
			log.Warn().Err(err).Str("matchId", matchID).Msg("Failed to finish match at round limit")
			return round, nil
		}
		round.MatchOver = true
	}
	return round, nil
}

// Finish ends a match and stores its result.
func (s *MatchService) Finish(ctx context.Context, matchID, playerID string) (*model.Match, error) {
	sess, err := s.lookup(ctx, matchID, playerID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.done {
		return nil, ErrMatchFinished
	}
	return s.finishLocked(ctx, sess)
}

// finishLocked stores the match and drops its engine. sess.mu must be held.
func (s *MatchService) finishLocked(ctx context.Context, sess *session) (*model.Match, error) {
	now := time.Now()
	sess.match.Status = model.MatchFinished
	sess.match.FinishedAt = &now
	m := sess.match

	if err := s.repo.Create(ctx, &m); err != nil {
		sess.match.Status = model.MatchActive
		sess.match.FinishedAt = nil
		return nil, fmt.Errorf("save match: %w", err)
	}
	sess.done = true
	sess.engine = nil

	s.mu.Lock()
	delete(s.sessions, m.ID)
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.DeleteSummary(ctx, m.ID); err != nil {
			log.Warn().Err(err).Str("matchId", m.ID).Msg("Failed to drop match summary")
		}
	}

	l := logger.ForMatch(ctx, m.ID, m.PlayerID)
	l.Info().
		Int("rounds", m.Rounds).
		Int("engineWins", m.EngineWins).
		Int("opponentWins", m.OpponentWins).
		Int("draws", m.Draws).
		Msg("Match finished")
	s.broadcaster.BroadcastMatchEvent(m.ID, EventMatchFinished, &m)
	return &m, nil
}

// GetMatch returns a live match from memory or the cache, or a finished one
// from the repository.
func (s *MatchService) GetMatch(ctx context.Context, matchID string) (*model.Match, error) {
	s.mu.Lock()
	sess, ok := s.sessions[matchID]
	s.mu.Unlock()
	if ok {
		sess.mu.Lock()
		m := sess.match
		sess.mu.Unlock()
		return &m, nil
	}

	if s.cache != nil {
		m, err := s.cache.GetSummary(ctx, matchID)
		if err != nil {
			log.Warn().Err(err).Str("matchId", matchID).Msg("Match summary lookup failed")
		} else if m != nil {
			return m, nil
		}
	}

	m, err := s.repo.FindByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	return m, nil
}

// ListMatches returns a player's finished matches, most recent first.
func (s *MatchService) ListMatches(ctx context.Context, playerID string, limit int) ([]model.Match, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByPlayer(ctx, playerID, limit)
}

// ListRecent returns the most recently finished matches of all players.
func (s *MatchService) ListRecent(ctx context.Context, limit int) ([]model.Match, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListRecent(ctx, limit)
}

// ActiveCount returns the number of live matches.
func (s *MatchService) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// lookup returns the live session for matchID. A match that is no longer
// live but has been stored reports ErrMatchFinished to its owner.
func (s *MatchService) lookup(ctx context.Context, matchID, playerID string) (*session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[matchID]
	s.mu.Unlock()
	if !ok {
		m, err := s.repo.FindByID(ctx, matchID)
		if err != nil {
			return nil, err
		}
		switch {
		case m == nil:
			return nil, ErrMatchNotFound
		case m.PlayerID != playerID:
			return nil, ErrNotOwner
		default:
			return nil, ErrMatchFinished
		}
	}
	if sess.match.PlayerID != playerID {
		return nil, ErrNotOwner
	}
	return sess, nil
}

func (s *MatchService) cacheSummary(ctx context.Context, m *model.Match) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetSummary(ctx, m, s.cfg.TTL); err != nil {
		log.Warn().Err(err).Str("matchId", m.ID).Msg("Failed to cache match summary")
	}
}
