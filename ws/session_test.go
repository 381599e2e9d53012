package ws

import (
	"encoding/json"
	"strings"
	"testing"

	"impostor-server/config"
	"impostor-server/engine"
	"impostor-server/game"
	"impostor-server/lexicon"
	"impostor-server/protocol"
	"impostor-server/storage"
)

func testClient(debug bool) *Client {
	cfg := config.Defaults()
	cfg.DebugOverrides = debug
	return &Client{Hub: &Hub{Config: cfg}, Send: make(chan []byte, 8)}
}

func TestValidateRoster(t *testing.T) {
	c := testClient(false)
	tests := []struct {
		name    string
		names   []string
		wantErr bool
	}{
		{"ok", []string{"Ana", "Beto", "Caro"}, false},
		{"too few", []string{"Ana", "Beto"}, true},
		{"empty name", []string{"Ana", "  ", "Caro"}, true},
		{"too long", []string{"Ana", "Beto", strings.Repeat("x", 25)}, true},
		{"max length runes", []string{"Ana", "Beto", strings.Repeat("ñ", 24)}, false},
		{"duplicate ignoring case", []string{"Ana", "Beto", "ana"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.validateRoster(tt.names)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRoster(%v) error = %v, wantErr %v", tt.names, err, tt.wantErr)
			}
		})
	}
}

func TestBuildRosterReusesIDs(t *testing.T) {
	previous := []game.Player{{ID: "id-ana", Name: "Ana"}, {ID: "id-beto", Name: "Beto"}}
	got := buildRoster([]string{" ANA ", "Caro"}, previous)
	if len(got) != 2 {
		t.Fatalf("got %d players", len(got))
	}
	if got[0].ID != "id-ana" || got[0].Name != "ANA" {
		t.Errorf("reused player = %+v", got[0])
	}
	if got[1].ID == "" || got[1].ID == "id-beto" || got[1].Name != "Caro" {
		t.Errorf("new player = %+v", got[1])
	}
}

func TestRoundConfigDefaults(t *testing.T) {
	c := testClient(false)
	c.Hub.Config.Round.ImpostorCount = 2
	c.Hub.Config.Round.TrollMode = true
	c.Session = &Session{Players: []game.Player{{ID: "a", Name: "Ana"}}, History: game.NewHistory()}

	rc := c.roundConfig(GenerateRoundMsg{})
	if rc.ImpostorCount != 2 {
		t.Errorf("ImpostorCount = %d, want 2", rc.ImpostorCount)
	}
	if !rc.Modes.Hint || !rc.Modes.Troll || rc.Modes.Party {
		t.Errorf("modes = %+v", rc.Modes)
	}
	if len(rc.Players) != 1 {
		t.Errorf("players = %v", rc.Players)
	}
}

func TestRoundConfigStripsForceFlags(t *testing.T) {
	modes := protocol.Modes{Architect: true, ForceTroll: protocol.ScenarioEspejoTotal, ForceArchitect: true, ForceRenuncia: true}
	tests := []struct {
		name  string
		debug bool
		kept  bool
	}{
		{"debug off", false, false},
		{"debug on", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(tt.debug)
			c.Session = &Session{History: game.NewHistory()}
			m := modes
			rc := c.roundConfig(GenerateRoundMsg{ImpostorCount: 1, Modes: &m})
			if !rc.Modes.Architect {
				t.Error("Architect mode should be kept")
			}
			kept := rc.Modes.ForceTroll != "" && rc.Modes.ForceArchitect && rc.Modes.ForceRenuncia
			stripped := rc.Modes.ForceTroll == "" && !rc.Modes.ForceArchitect && !rc.Modes.ForceRenuncia
			if tt.kept && !kept || !tt.kept && !stripped {
				t.Errorf("force flags = %+v", rc.Modes)
			}
		})
	}
}

func TestRequireRound(t *testing.T) {
	c := testClient(false)
	if c.requireRound() {
		t.Error("requireRound without session should fail")
	}
	c.Session = &Session{History: game.NewHistory()}
	if c.requireRound() {
		t.Error("requireRound without a round should fail")
	}
	if len(c.Send) != 2 {
		t.Errorf("expected 2 error messages, got %d", len(c.Send))
	}
}

func lastMessage(t *testing.T, c *Client) map[string]any {
	t.Helper()
	var last []byte
	for len(c.Send) > 0 {
		last = <-c.Send
	}
	if last == nil {
		t.Fatal("no message sent")
	}
	var msg map[string]any
	if err := json.Unmarshal(last, &msg); err != nil {
		t.Fatal(err)
	}
	return msg
}

func TestDecisionsRejectedAfterOutcome(t *testing.T) {
	c := testClient(false)
	c.Send = make(chan []byte, 32)
	c.engine = engine.New(engine.WithBank(lexicon.DefaultBank()))
	c.persist = make(chan storage.Session, 16)
	c.Session = &Session{
		ID:      "s1",
		Players: []game.Player{{ID: "a", Name: "Ana"}, {ID: "b", Name: "Beto"}, {ID: "c", Name: "Caro"}},
		History: game.NewHistory(),
	}

	c.handleGenerateRound(json.RawMessage(`{"type":"generate_round"}`))
	if msg := lastMessage(t, c); msg["type"] != "round" {
		t.Fatalf("expected round, got %v", msg)
	}
	c.handleRecordOutcome(json.RawMessage(`{"type":"record_outcome","outcome":"civilians"}`))
	if msg := lastMessage(t, c); msg["type"] != "outcome_recorded" {
		t.Fatalf("expected outcome_recorded, got %v", msg)
	}

	for _, handle := range []func(){
		func() { c.handleOracleChoice(json.RawMessage(`{"index":0}`)) },
		func() { c.handleArchitectChoice(json.RawMessage(`{"index":0}`)) },
		func() { c.handleRenunciaDecision(json.RawMessage(`{"decision":"accept"}`)) },
		c.handleRegenerateArchitect,
	} {
		handle()
		msg := lastMessage(t, c)
		if msg["type"] != "error" || msg["message"] != "The round outcome is already recorded." {
			t.Errorf("expected outcome already recorded error, got %v", msg)
		}
	}
	last, ok := c.Session.History.LastMatchLog()
	if !ok || last.Outcome != game.OutcomeCivilians {
		t.Errorf("recorded outcome lost: %+v", last)
	}

	c.handleGenerateRound(json.RawMessage(`{"type":"generate_round"}`))
	if c.Session.Decided {
		t.Error("a new round should accept decisions again")
	}
}
