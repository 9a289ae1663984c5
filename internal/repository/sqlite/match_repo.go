// Package sqlite stores match results in a local SQLite file, for bot
// arena runs that should not need a Postgres server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/freeeve/roshambo/internal/model"
	"github.com/freeeve/roshambo/pkg/rpsls"
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id                 TEXT PRIMARY KEY,
	player_id          TEXT NOT NULL,
	opponent           TEXT NOT NULL,
	status             TEXT NOT NULL,
	rounds             INTEGER NOT NULL DEFAULT 0,
	engine_wins        INTEGER NOT NULL DEFAULT 0,
	opponent_wins      INTEGER NOT NULL DEFAULT 0,
	draws              INTEGER NOT NULL DEFAULT 0,
	last_engine_move   TEXT NOT NULL DEFAULT '',
	last_opponent_move TEXT NOT NULL DEFAULT '',
	created_at         TEXT NOT NULL,
	finished_at        TEXT
);

CREATE INDEX IF NOT EXISTS idx_matches_player ON matches (player_id, created_at);
`

const matchColumns = `id, player_id, opponent, status, rounds, engine_wins, opponent_wins, draws,
	last_engine_move, last_opponent_move, created_at, finished_at`

// timeLayout has fixed-width fractions so that text ordering matches time
// ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// MatchRepo stores match results in SQLite.
type MatchRepo struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs migrations.
func Open(path string) (*MatchRepo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Arena workers write concurrently; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &MatchRepo{db: db}, nil
}

// Close closes the underlying database connection.
func (r *MatchRepo) Close() error {
	return r.db.Close()
}

// Create inserts a match result.
func (r *MatchRepo) Create(ctx context.Context, m *model.Match) error {
	var finished any
	if m.FinishedAt != nil {
		finished = m.FinishedAt.UTC().Format(timeLayout)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO matches (`+matchColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.PlayerID, m.Opponent, m.Status, m.Rounds, m.EngineWins, m.OpponentWins, m.Draws,
		moveText(m.LastEngineMove), moveText(m.LastOpponentMove),
		m.CreatedAt.UTC().Format(timeLayout), finished,
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

// FindByID returns a match by ID, or nil if it does not exist.
func (r *MatchRepo) FindByID(ctx context.Context, id string) (*model.Match, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = ?`, id)
	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get match %s: %w", id, err)
	}
	return m, nil
}

// ListByPlayer returns a player's matches, most recent first.
func (r *MatchRepo) ListByPlayer(ctx context.Context, playerID string, limit int) ([]model.Match, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE player_id = ? ORDER BY created_at DESC LIMIT ?`,
		playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list player matches: %w", err)
	}
	return collectMatches(rows)
}

// ListRecent returns the most recent matches.
func (r *MatchRepo) ListRecent(ctx context.Context, limit int) ([]model.Match, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+matchColumns+` FROM matches ORDER BY created_at DESC LIMIT ?`, limit)
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
	var engineMove, opponentMove, createdStr string
	var finishedStr sql.NullString
	if err := s.Scan(&m.ID, &m.PlayerID, &m.Opponent, &m.Status, &m.Rounds, &m.EngineWins, &m.OpponentWins, &m.Draws,
		&engineMove, &opponentMove, &createdStr, &finishedStr); err != nil {
		return nil, err
	}
	if err := m.LastEngineMove.UnmarshalText([]byte(engineMove)); err != nil {
		return nil, fmt.Errorf("decode engine move: %w", err)
	}
	if err := m.LastOpponentMove.UnmarshalText([]byte(opponentMove)); err != nil {
		return nil, fmt.Errorf("decode opponent move: %w", err)
	}
	m.CreatedAt, _ = time.Parse(timeLayout, createdStr)
	if finishedStr.Valid {
		if t, err := time.Parse(timeLayout, finishedStr.String); err == nil {
			m.FinishedAt = &t
		}
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
