package ws

import (
	"encoding/json"

	"impostor-server/engine"
	"impostor-server/game"
	"impostor-server/infinitum"
	"impostor-server/lexicon"
	"impostor-server/protocol"
)

// InboundEnvelope is the generic envelope for all client-to-server messages.
// The Type field is used for routing; Raw holds the full JSON payload.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling to capture the raw payload.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// --- Client-to-Server message payloads ---

// AuthMsg optionally identifies the client with a JWT.
type AuthMsg struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// StartSessionMsg starts a new session, or resumes SessionID when set.
type StartSessionMsg struct {
	Type      string   `json:"type"`
	SessionID string   `json:"sessionId,omitempty"`
	Players   []string `json:"players"`
}

// GenerateRoundMsg asks for the next round. Nil Modes means the server defaults.
type GenerateRoundMsg struct {
	Type          string                `json:"type"`
	ImpostorCount int                   `json:"impostorCount"`
	Categories    []string              `json:"categories"`
	Modes         *protocol.Modes       `json:"modes,omitempty"`
	Memory        *lexicon.MemoryConfig `json:"memory,omitempty"`
}

// OptionMsg selects an Architect word or an Oracle hint by index.
type OptionMsg struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// RenunciaDecisionMsg answers a pending Renuncia offer.
type RenunciaDecisionMsg struct {
	Type        string            `json:"type"`
	Decision    protocol.Decision `json:"decision"`
	RevealIndex int               `json:"revealIndex"`
}

// RecordOutcomeMsg reports who won the last round.
type RecordOutcomeMsg struct {
	Type    string       `json:"type"`
	Outcome game.Outcome `json:"outcome"`
}

// --- Server-to-Client messages ---

// ErrorMsg is sent when a client action is invalid.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// AuthenticatedMsg confirms a valid token.
type AuthenticatedMsg struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// SessionStartedMsg confirms the session and its roster.
type SessionStartedMsg struct {
	Type         string        `json:"type"`
	SessionID    string        `json:"sessionId"`
	Players      []game.Player `json:"players"`
	RoundCounter int           `json:"roundCounter"`
	Resumed      bool          `json:"resumed"`
}

// RoundMsg carries a generated or updated round.
type RoundMsg struct {
	Type  string             `json:"type"`
	Round engine.RoundResult `json:"round"`
}

// OutcomeRecordedMsg confirms a recorded outcome.
type OutcomeRecordedMsg struct {
	Type         string       `json:"type"`
	RoundCounter int          `json:"roundCounter"`
	Outcome      game.Outcome `json:"outcome"`
}

// DebugStatsMsg carries the debug overlay table.
type DebugStatsMsg struct {
	Type  string                `json:"type"`
	Stats []infinitum.DebugStat `json:"stats"`
}
