package storage

import (
	"strings"
	"time"

	"impostor-server/game"
)

// Session is a persisted game session: its roster and committed history.
type Session struct {
	ID        string           `json:"id"`
	OwnerID   string           `json:"ownerId,omitempty"`
	Players   []game.Player    `json:"players"`
	History   game.GameHistory `json:"history"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// SessionSummary is one row of a session listing.
type SessionSummary struct {
	ID          string    `json:"id"`
	PlayerCount int       `json:"playerCount"`
	Rounds      int       `json:"rounds"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func summarize(s Session) SessionSummary {
	return SessionSummary{
		ID:          s.ID,
		PlayerCount: len(s.Players),
		Rounds:      s.History.RoundCounter,
		UpdatedAt:   s.UpdatedAt,
	}
}

// cleanNames trims names and drops blanks and case-insensitive duplicates.
func cleanNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		key := game.VaultKey(n)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(n))
	}
	return out
}
