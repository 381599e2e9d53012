package storage

import (
	"context"

	"impostor-server/game"
)

// SessionStore abstracts persistence for session histories, match logs
// and saved player names. Implementations can be swapped for testing or
// different backends.
type SessionStore interface {
	// Read
	LoadSession(ctx context.Context, sessionID string) (*Session, error)
	ListSessions(ctx context.Context, ownerID string, limit int) ([]SessionSummary, error)
	ListMatchLogs(ctx context.Context, sessionID string, limit, offset int) ([]game.MatchLog, error)
	ListPlayerNames(ctx context.Context, ownerID string) ([]string, error)

	// Write
	SaveSession(ctx context.Context, s Session) error
	UpsertMatchLog(ctx context.Context, sessionID string, l game.MatchLog) error
	SavePlayerNames(ctx context.Context, ownerID string, names []string) error

	// Lifecycle
	Close()
}

// Ensure both stores implement SessionStore at compile time.
var (
	_ SessionStore = (*Store)(nil)
	_ SessionStore = (*MemoryStore)(nil)
)
