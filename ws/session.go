package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"impostor-server/auth"
	"impostor-server/engine"
	"impostor-server/enginerr"
	"impostor-server/game"
	"impostor-server/protocol"
	"impostor-server/storage"
)

// Session is the state of one game session on a connection.
type Session struct {
	ID      string
	OwnerID string
	Players []game.Player
	// History is the committed history, including Current.
	History game.GameHistory
	// Prior is the history Current was generated from.
	Prior   game.GameHistory
	Current *engine.RoundResult
	// Decided is set once Current has a recorded outcome. Protocol
	// decisions re-commit from Prior and would drop it.
	Decided bool
}

func (s *Session) record() storage.Session {
	return storage.Session{ID: s.ID, OwnerID: s.OwnerID, Players: s.Players, History: s.History}
}

// PersistLoop writes session snapshots in order, each bounded by the
// configured timeout. It exits when the client's persist channel closes.
func (c *Client) PersistLoop() {
	timeout := time.Duration(c.Hub.Config.PersistTimeoutMS) * time.Millisecond
	for snap := range c.persist {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		if err := c.Hub.Store.SaveSession(ctx, snap); err != nil {
			slog.Error("saving session", "tag", "ws", "session", snap.ID, "err", err)
		} else if last, ok := snap.History.LastMatchLog(); ok {
			if err := c.Hub.Store.UpsertMatchLog(ctx, snap.ID, last); err != nil {
				slog.Error("saving match log", "tag", "ws", "session", snap.ID, "err", err)
			}
		}
		cancel()
	}
}

func (c *Client) save() {
	snap := c.Session.record()
	snap.Players = append([]game.Player(nil), snap.Players...)
	snap.History = snap.History.Clone()
	select {
	case c.persist <- snap:
	default:
		slog.Warn("persist queue full, dropping snapshot", "tag", "ws", "session", snap.ID)
	}
}

func (c *Client) handleAuth(raw json.RawMessage) {
	var msg AuthMsg
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Token == "" {
		c.sendError("Invalid auth message.")
		return
	}
	if c.Hub.Config.AuthBaseURL == "" {
		c.sendError("Server auth not configured.")
		return
	}
	claims, err := auth.ValidateToken(c.Hub.Config.AuthBaseURL, msg.Token)
	if err != nil {
		slog.Info("token rejected", "tag", "auth", "err", err)
		c.sendError("Invalid or expired token.")
		return
	}
	c.UserID = auth.UserIDFromClaims(claims)
	c.sendJSON(AuthenticatedMsg{Type: "authenticated", UserID: c.UserID, Name: auth.FirstNameFromClaims(claims)})
}

// validateRoster checks count, length and case-insensitive uniqueness.
func (c *Client) validateRoster(names []string) error {
	cfg := c.Hub.Config
	if len(names) < cfg.MinPlayers || len(names) > cfg.MaxPlayers {
		return fmt.Errorf("A session needs between %d and %d players.", cfg.MinPlayers, cfg.MaxPlayers)
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		trimmed := strings.TrimSpace(n)
		if l := utf8.RuneCountInString(trimmed); l < 1 || l > cfg.MaxNameLength {
			return fmt.Errorf("Names must be between 1 and %d characters.", cfg.MaxNameLength)
		}
		key := game.VaultKey(trimmed)
		if seen[key] {
			return fmt.Errorf("Duplicate player name: %s.", trimmed)
		}
		seen[key] = true
	}
	return nil
}

// buildRoster reuses ids of players already in previous, by name.
func buildRoster(names []string, previous []game.Player) []game.Player {
	known := make(map[string]game.Player, len(previous))
	for _, p := range previous {
		known[game.VaultKey(p.Name)] = p
	}
	out := make([]game.Player, len(names))
	for i, n := range names {
		n = strings.TrimSpace(n)
		if p, ok := known[game.VaultKey(n)]; ok {
			p.Name = n
			out[i] = p
			continue
		}
		out[i] = game.NewPlayer(n)
	}
	return out
}

func (c *Client) handleStartSession(raw json.RawMessage) {
	var msg StartSessionMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid start_session message.")
		return
	}

	sess := &Session{ID: uuid.NewString(), OwnerID: c.UserID, History: game.NewHistory()}
	resumed := false
	if msg.SessionID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(c.Hub.Config.PersistTimeoutMS)*time.Millisecond)
		stored, err := c.Hub.Store.LoadSession(ctx, msg.SessionID)
		cancel()
		switch {
		case errors.Is(err, enginerr.ErrSessionNotFound):
			c.sendError("Session not found.")
			return
		case err != nil:
			slog.Error("loading session", "tag", "ws", "session", msg.SessionID, "err", err)
			c.sendError("Failed to load session.")
			return
		}
		if stored.OwnerID != "" && stored.OwnerID != c.UserID {
			c.sendError("Session not found.")
			return
		}
		sess.ID = stored.ID
		sess.OwnerID = stored.OwnerID
		sess.Players = stored.Players
		sess.History = stored.History
		resumed = true
	}

	if len(msg.Players) > 0 || !resumed {
		if err := c.validateRoster(msg.Players); err != nil {
			c.sendError(err.Error())
			return
		}
		sess.Players = buildRoster(msg.Players, sess.Players)
	}
	sess.Prior = sess.History
	c.Session = sess
	c.save()

	if c.UserID != "" {
		names := make([]string, len(sess.Players))
		for i, p := range sess.Players {
			names[i] = p.Name
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(c.Hub.Config.PersistTimeoutMS)*time.Millisecond)
			defer cancel()
			if err := c.Hub.Store.SavePlayerNames(ctx, c.UserID, names); err != nil {
				slog.Error("saving player names", "tag", "ws", "err", err)
			}
		}()
	}

	slog.Info("session started", "tag", "ws", "session", sess.ID, "players", len(sess.Players), "resumed", resumed)
	c.sendJSON(SessionStartedMsg{
		Type:         "session_started",
		SessionID:    sess.ID,
		Players:      sess.Players,
		RoundCounter: sess.History.RoundCounter,
		Resumed:      resumed,
	})
}

func (c *Client) requireSession() bool {
	if c.Session == nil {
		c.sendError("No active session.")
		return false
	}
	return true
}

func (c *Client) requireRound() bool {
	if !c.requireSession() {
		return false
	}
	if c.Session.Current == nil {
		c.sendError("No round in progress.")
		return false
	}
	return true
}

// requireUndecided is requireRound for operations that rewrite the round.
func (c *Client) requireUndecided() bool {
	if !c.requireRound() {
		return false
	}
	if c.Session.Decided {
		c.sendError("The round outcome is already recorded.")
		return false
	}
	return true
}

func (c *Client) roundConfig(msg GenerateRoundMsg) engine.RoundConfig {
	cfg := c.Hub.Config
	modes := protocol.Modes{
		Hint:  cfg.Round.HintMode,
		Troll: cfg.Round.TrollMode,
		Party: cfg.Round.PartyMode,
	}
	if msg.Modes != nil {
		modes = *msg.Modes
	}
	if !cfg.DebugOverrides {
		modes.ForceTroll = ""
		modes.ForceArchitect = false
		modes.ForceRenuncia = false
	}
	count := msg.ImpostorCount
	if count <= 0 {
		count = cfg.Round.ImpostorCount
	}
	rc := engine.RoundConfig{
		Players:       c.Session.Players,
		ImpostorCount: count,
		Categories:    msg.Categories,
		History:       c.Session.History,
		Modes:         modes,
	}
	if msg.Memory != nil {
		rc.Memory = *msg.Memory
	}
	return rc
}

func (c *Client) handleGenerateRound(raw json.RawMessage) {
	if !c.requireSession() {
		return
	}
	var msg GenerateRoundMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid generate_round message.")
		return
	}
	prior := c.Session.History
	res, err := c.engine.GenerateRound(c.roundConfig(msg))
	if err != nil {
		slog.Error("generating round", "tag", "ws", "session", c.Session.ID, "err", err)
		c.sendError("Failed to generate round.")
		return
	}
	c.Session.Prior = prior
	c.Session.Decided = false
	c.commitRound(res)
}

func (c *Client) commitRound(res engine.RoundResult) {
	c.Session.Current = &res
	c.Session.History = res.NewHistory
	c.save()
	c.sendJSON(RoundMsg{Type: "round", Round: res})
}

// sendEngineError maps caller-misuse errors to client messages.
func (c *Client) sendEngineError(err error) {
	switch {
	case errors.Is(err, enginerr.ErrNoArchitect):
		c.sendError("No Architect choice is pending.")
	case errors.Is(err, enginerr.ErrRegenerationsExhausted):
		c.sendError("No regenerations left.")
	case errors.Is(err, enginerr.ErrNoOracle):
		c.sendError("No Oracle choice is pending.")
	case errors.Is(err, enginerr.ErrNoRenuncia):
		c.sendError("No Renuncia offer is pending.")
	case errors.Is(err, enginerr.ErrUnknownDecision):
		c.sendError("Unknown Renuncia decision.")
	case errors.Is(err, enginerr.ErrInvalidOption):
		c.sendError("Option out of range.")
	case errors.Is(err, enginerr.ErrInvalidOutcome):
		c.sendError("Outcome must be impostors or civilians.")
	case errors.Is(err, enginerr.ErrNoRound):
		c.sendError("No round in progress.")
	default:
		slog.Error("engine operation failed", "tag", "ws", "err", err)
		c.sendError("Operation failed.")
	}
}

func (c *Client) handleRegenerateArchitect() {
	if !c.requireUndecided() {
		return
	}
	res, err := c.engine.RegenerateArchitectOptions(*c.Session.Current)
	if err != nil {
		c.sendEngineError(err)
		return
	}
	c.Session.Current = &res
	c.sendJSON(RoundMsg{Type: "round", Round: res})
}

func (c *Client) handleArchitectChoice(raw json.RawMessage) {
	if !c.requireUndecided() {
		return
	}
	var msg OptionMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid architect_choice message.")
		return
	}
	res, err := c.engine.ApplyArchitectChoice(c.Session.Prior, *c.Session.Current, msg.Index)
	if err != nil {
		c.sendEngineError(err)
		return
	}
	c.commitRound(res)
}

func (c *Client) handleOracleChoice(raw json.RawMessage) {
	if !c.requireUndecided() {
		return
	}
	var msg OptionMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid oracle_choice message.")
		return
	}
	res, err := c.engine.ApplyOracleChoice(c.Session.Prior, *c.Session.Current, msg.Index)
	if err != nil {
		c.sendEngineError(err)
		return
	}
	c.commitRound(res)
}

func (c *Client) handleRenunciaDecision(raw json.RawMessage) {
	if !c.requireUndecided() {
		return
	}
	var msg RenunciaDecisionMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid renuncia_decision message.")
		return
	}
	res, err := c.engine.ApplyRenunciaDecision(c.Session.Prior, *c.Session.Current, msg.Decision, msg.RevealIndex)
	if err != nil {
		c.sendEngineError(err)
		return
	}
	c.commitRound(res)
}

func (c *Client) handleRecordOutcome(raw json.RawMessage) {
	if !c.requireSession() {
		return
	}
	var msg RecordOutcomeMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid record_outcome message.")
		return
	}
	h, err := c.engine.RecordOutcome(c.Session.History, msg.Outcome)
	if err != nil {
		c.sendEngineError(err)
		return
	}
	c.Session.History = h
	if c.Session.Current != nil {
		c.Session.Current.NewHistory = h
		c.Session.Decided = true
	}
	c.save()
	c.sendJSON(OutcomeRecordedMsg{Type: "outcome_recorded", RoundCounter: h.RoundCounter, Outcome: msg.Outcome})
}

func (c *Client) handleDebugStats() {
	if !c.requireSession() {
		return
	}
	if !c.Hub.Config.DebugOverrides {
		c.sendError("Debug tools are disabled.")
		return
	}
	stats := c.engine.DebugPlayerStats(c.Session.Players, c.Session.History)
	c.sendJSON(DebugStatsMsg{Type: "debug_stats", Stats: stats})
}
