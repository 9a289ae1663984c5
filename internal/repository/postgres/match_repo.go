package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freeeve/roshambo/internal/model"
	"github.com/freeeve/roshambo/pkg/rpsls"
)

// MatchRepo handles match result database operations.
type MatchRepo struct {
	db *sql.DB
}

// NewMatchRepo creates a MatchRepo.
func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

const matchColumns = `id, player_id, opponent, status, rounds, engine_wins, opponent_wins, draws,
	last_engine_move, last_opponent_move, created_at, finished_at`

// Create inserts a match result. The caller supplies the ID.
func (r *MatchRepo) Create(ctx context.Context, m *model.Match) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO matches (`+matchColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.ID, m.PlayerID, m.Opponent, m.Status, m.Rounds, m.EngineWins, m.OpponentWins, m.Draws,
		moveText(m.LastEngineMove), moveText(m.LastOpponentMove), m.CreatedAt, m.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

// FindByID returns a match by ID, or nil if it does not exist.
func (r *MatchRepo) FindByID(ctx context.Context, id string) (*model.Match, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find match: %w", err)
	}
	return m, nil
}

// ListByPlayer returns a player's matches, most recent first.
func (r *MatchRepo) ListByPlayer(ctx context.Context, playerID string, limit int) ([]model.Match, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE player_id = $1 ORDER BY created_at DESC LIMIT $2`,
		playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list player matches: %w", err)
	}
	return collectMatches(rows)
}

// ListRecent returns the most recent matches across all players.
func (r *MatchRepo) ListRecent(ctx context.Context, limit int) ([]model.Match, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+matchColumns+` FROM matches ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent matches: %w", err)
	}
	return collectMatches(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(s rowScanner) (*model.Match, error) {
	var m model.Match
	var engineMove, opponentMove string
	var finishedAt sql.NullTime
	if err := s.Scan(&m.ID, &m.PlayerID, &m.Opponent, &m.Status, &m.Rounds, &m.EngineWins, &m.OpponentWins, &m.Draws,
		&engineMove, &opponentMove, &m.CreatedAt, &finishedAt); err != nil {
		return nil, err
	}
	if err := m.LastEngineMove.UnmarshalText([]byte(engineMove)); err != nil {
		return nil, fmt.Errorf("decode engine move: %w", err)
	}
	if err := m.LastOpponentMove.UnmarshalText([]byte(opponentMove)); err != nil {
		return nil, fmt.Errorf("decode opponent move: %w", err)
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		m.FinishedAt = &t
	}
	return &m, nil
}

func collectMatches(rows *sql.Rows) ([]model.Match, error) {
	defer rows.Close()
	var matches []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func moveText(m rpsls.Move) string {
	if m == rpsls.None {
		return ""
	}
	return m.String()
}
