package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"impostor-server/enginerr"
	"impostor-server/game"
)

// MemoryStore keeps sessions in process memory. It is used when no
// database is configured and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	logs     map[string][]game.MatchLog
	names    map[string][]string
	now      func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		logs:     make(map[string][]game.MatchLog),
		names:    make(map[string][]string),
		now:      time.Now,
	}
}

// Close is a no-op.
func (m *MemoryStore) Close() {}

// SaveSession stores a deep copy of sess.
func (m *MemoryStore) SaveSession(_ context.Context, sess Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess.Players = append([]game.Player(nil), sess.Players...)
	sess.History = sess.History.Clone()
	sess.UpdatedAt = m.now()
	m.sessions[sess.ID] = sess
	return nil
}

// LoadSession returns a copy of the stored session or enginerr.ErrSessionNotFound.
func (m *MemoryStore) LoadSession(_ context.Context, sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, enginerr.ErrSessionNotFound
	}
	sess.Players = append([]game.Player(nil), sess.Players...)
	sess.History = sess.History.Clone()
	return &sess, nil
}

// ListSessions returns the owner's sessions, most recently updated first.
func (m *MemoryStore) ListSessions(_ context.Context, ownerID string, limit int) ([]SessionSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []SessionSummary{}
	if ownerID == "" {
		return out, nil
	}
	for _, s := range m.sessions {
		if s.OwnerID == ownerID {
			out = append(out, summarize(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpsertMatchLog stores l, replacing an entry with the same id.
func (m *MemoryStore) UpsertMatchLog(_ context.Context, sessionID string, l game.MatchLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	logs := m.logs[sessionID]
	for i := range logs {
		if logs[i].ID == l.ID {
			logs[i] = l.Clone()
			return nil
		}
	}
	m.logs[sessionID] = append(logs, l.Clone())
	return nil
}

// ListMatchLogs returns a session's match logs, newest first.
func (m *MemoryStore) ListMatchLogs(_ context.Context, sessionID string, limit, offset int) ([]game.MatchLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	logs := m.logs[sessionID]
	out := make([]game.MatchLog, 0, len(logs))
	for i := len(logs) - 1; i >= 0; i-- {
		out = append(out, logs[i].Clone())
	}
	if offset >= len(out) {
		return []game.MatchLog{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SavePlayerNames moves names to the front of the owner's saved list.
func (m *MemoryStore) SavePlayerNames(_ context.Context, ownerID string, names []string) error {
	if ownerID == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names[ownerID] = cleanNames(append(cleanNames(names), m.names[ownerID]...))
	return nil
}

// ListPlayerNames returns an owner's saved names, most recently used first.
func (m *MemoryStore) ListPlayerNames(_ context.Context, ownerID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string{}, m.names[ownerID]...), nil
}
