package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"impostor-server/enginerr"
	"impostor-server/game"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS sessions (
	id            UUID PRIMARY KEY,
	owner_user_id TEXT NOT NULL DEFAULT '',
	players       JSONB NOT NULL,
	history       JSONB NOT NULL,
	round_counter INT NOT NULL DEFAULT 0,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_sessions_owner ON sessions(owner_user_id, updated_at DESC);
CREATE TABLE IF NOT EXISTS match_logs (
	id         UUID PRIMARY KEY,
	session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	round      INT NOT NULL,
	played_at  TIMESTAMPTZ NOT NULL,
	category   TEXT NOT NULL,
	word       TEXT NOT NULL,
	is_troll   BOOLEAN NOT NULL DEFAULT false,
	outcome    TEXT NOT NULL DEFAULT '',
	payload    JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_match_logs_session_round ON match_logs(session_id, round DESC);
CREATE TABLE IF NOT EXISTS saved_players (
	owner_user_id TEXT NOT NULL,
	name_key      TEXT NOT NULL,
	name          TEXT NOT NULL,
	last_used_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (owner_user_id, name_key)
);
`

// Store persists sessions in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and ensures the tables exist.
// If databaseURL is empty, NewStore returns (nil, nil) and no persistence occurs.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("connected to Postgres", "tag", "storage")
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// SaveSession inserts or replaces a session's roster and history.
func (s *Store) SaveSession(ctx context.Context, sess Session) error {
	if s == nil || s.pool == nil {
		return nil
	}
	players, err := json.Marshal(sess.Players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}
	history, err := json.Marshal(sess.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO sessions (id, owner_user_id, players, history, round_counter, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (id) DO UPDATE SET
			owner_user_id = EXCLUDED.owner_user_id,
			players = EXCLUDED.players,
			history = EXCLUDED.history,
			round_counter = EXCLUDED.round_counter,
			updated_at = now()`,
		sess.ID, sess.OwnerID, players, history, sess.History.RoundCounter)
	return err
}

// LoadSession returns the stored session or enginerr.ErrSessionNotFound.
func (s *Store) LoadSession(ctx context.Context, sessionID string) (*Session, error) {
	if s == nil || s.pool == nil {
		return nil, enginerr.ErrSessionNotFound
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, enginerr.ErrSessionNotFound
	}
	var sess Session
	var players, history []byte
	err := s.pool.QueryRow(ctx, `
		SELECT id, owner_user_id, players, history, updated_at
		FROM sessions WHERE id = $1`, sessionID).
		Scan(&sess.ID, &sess.OwnerID, &players, &history, &sess.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, enginerr.ErrSessionNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(players, &sess.Players); err != nil {
		return nil, fmt.Errorf("unmarshal players: %w", err)
	}
	sess.History = game.NewHistory()
	if err := json.Unmarshal(history, &sess.History); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	return &sess, nil
}

// ListSessions returns the owner's sessions, most recently updated first.
func (s *Store) ListSessions(ctx context.Context, ownerID string, limit int) ([]SessionSummary, error) {
	if s == nil || s.pool == nil || ownerID == "" {
		return []SessionSummary{}, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, jsonb_array_length(players), round_counter, updated_at
		FROM sessions
		WHERE owner_user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2`,
		ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []SessionSummary{}
	for rows.Next() {
		var r SessionSummary
		if err := rows.Scan(&r.ID, &r.PlayerCount, &r.Rounds, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpsertMatchLog records a match log. A re-committed round (Architect,
// Oracle or Renuncia follow-up, recorded outcome) replaces its earlier row.
func (s *Store) UpsertMatchLog(ctx context.Context, sessionID string, l game.MatchLog) error {
	if s == nil || s.pool == nil {
		return nil
	}
	payload, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal match log: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO match_logs (id, session_id, round, played_at, category, word, is_troll, outcome, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			category = EXCLUDED.category,
			word = EXCLUDED.word,
			outcome = EXCLUDED.outcome,
			payload = EXCLUDED.payload`,
		l.ID, sessionID, l.Round, time.UnixMilli(l.Timestamp).UTC(), l.Category, l.Word, l.IsTrollEvent, string(l.Outcome), payload)
	return err
}

// ListMatchLogs returns a session's match logs, newest first.
func (s *Store) ListMatchLogs(ctx context.Context, sessionID string, limit, offset int) ([]game.MatchLog, error) {
	if s == nil || s.pool == nil {
		return []game.MatchLog{}, nil
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return []game.MatchLog{}, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT payload FROM match_logs
		WHERE session_id = $1
		ORDER BY round DESC
		LIMIT $2 OFFSET $3`,
		sessionID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []game.MatchLog{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var l game.MatchLog
		if err := json.Unmarshal(payload, &l); err != nil {
			return nil, fmt.Errorf("unmarshal match log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// SavePlayerNames remembers the names an owner played with.
func (s *Store) SavePlayerNames(ctx context.Context, ownerID string, names []string) error {
	if s == nil || s.pool == nil || ownerID == "" {
		return nil
	}
	batch := &pgx.Batch{}
	for _, n := range cleanNames(names) {
		batch.Queue(`
			INSERT INTO saved_players (owner_user_id, name_key, name, last_used_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (owner_user_id, name_key) DO UPDATE SET name = EXCLUDED.name, last_used_at = now()`,
			ownerID, game.VaultKey(n), n)
	}
	if batch.Len() == 0 {
		return nil
	}
	return s.pool.SendBatch(ctx, batch).Close()
}

// ListPlayerNames returns an owner's saved names, most recently used first.
func (s *Store) ListPlayerNames(ctx context.Context, ownerID string) ([]string, error) {
	if s == nil || s.pool == nil || ownerID == "" {
		return []string{}, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT name FROM saved_players
		WHERE owner_user_id = $1
		ORDER BY last_used_at DESC, name`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
