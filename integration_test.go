package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"impostor-server/api"
	"impostor-server/config"
	"impostor-server/lexicon"
	"impostor-server/storage"
	"impostor-server/ws"
)

// setupTestServer creates a test HTTP server with the full server stack over an in-memory store.
func setupTestServer(t *testing.T) (*httptest.Server, *storage.MemoryStore, func()) {
	t.Helper()

	cfg := config.Defaults()
	cfg.PersistTimeoutMS = 1000
	store := storage.NewMemoryStore()
	bank := lexicon.DefaultBank()

	ctx, cancel := context.WithCancel(context.Background())
	hub := ws.NewHub(cfg, store, bank)
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	api.NewHandler(cfg, store, bank).Routes(mux)

	server := httptest.NewServer(mux)
	cleanup := func() {
		server.Close()
		cancel()
	}
	return server, store, cleanup
}

// connectWS creates a WebSocket connection to the test server.
func connectWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	return conn
}

// readMsg reads a JSON message from the WebSocket and returns it as a map.
func readMsg(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	var msg map[string]interface{}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to unmarshal: %v\ndata: %s", err, string(data))
	}
	return msg
}

// sendMsg sends a JSON message over the WebSocket.
func sendMsg(t *testing.T, conn *websocket.Conn, msg interface{}) {
	t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
}

func startSession(t *testing.T, conn *websocket.Conn, players ...string) string {
	t.Helper()
	sendMsg(t, conn, map[string]interface{}{"type": "start_session", "players": players})
	msg := readMsg(t, conn)
	if msg["type"] != "session_started" {
		t.Fatalf("expected session_started, got %v", msg)
	}
	id, _ := msg["sessionId"].(string)
	if id == "" {
		t.Fatal("session_started without sessionId")
	}
	return id
}

func TestIntegration_FullRound(t *testing.T) {
	server, store, cleanup := setupTestServer(t)
	defer cleanup()

	conn := connectWS(t, server)
	defer conn.Close()

	sessionID := startSession(t, conn, "Ana", "Beto", "Caro", "Dani")

	sendMsg(t, conn, map[string]interface{}{"type": "generate_round", "impostorCount": 1})
	msg := readMsg(t, conn)
	if msg["type"] != "round" {
		t.Fatalf("expected round, got %v", msg)
	}
	round := msg["round"].(map[string]interface{})
	if round["round"].(float64) != 1 {
		t.Errorf("round number = %v, want 1", round["round"])
	}
	players := round["players"].([]interface{})
	if len(players) != 4 {
		t.Fatalf("expected 4 players, got %d", len(players))
	}
	impostors := 0
	for _, p := range players {
		if p.(map[string]interface{})["role"] == "impostor" {
			impostors++
		}
	}
	if impostors != 1 {
		t.Errorf("expected 1 impostor, got %d", impostors)
	}

	sendMsg(t, conn, map[string]string{"type": "record_outcome", "outcome": "civilians"})
	rec := readMsg(t, conn)
	if rec["type"] != "outcome_recorded" {
		t.Fatalf("expected outcome_recorded, got %v", rec)
	}

	// Persistence is asynchronous; wait for the match log to land.
	deadline := time.Now().Add(2 * time.Second)
	for {
		logs, err := store.ListMatchLogs(context.Background(), sessionID, 10, 0)
		if err != nil {
			t.Fatalf("ListMatchLogs: %v", err)
		}
		if len(logs) == 1 && logs[0].Outcome == "civilians" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("match log not persisted with outcome, got %+v", logs)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestIntegration_ResumeSession(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	conn := connectWS(t, server)
	sessionID := startSession(t, conn, "Ana", "Beto", "Caro")
	sendMsg(t, conn, map[string]interface{}{"type": "generate_round"})
	if msg := readMsg(t, conn); msg["type"] != "round" {
		t.Fatalf("expected round, got %v", msg)
	}
	conn.Close()

	conn2 := connectWS(t, server)
	defer conn2.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		sendMsg(t, conn2, map[string]interface{}{"type": "start_session", "sessionId": sessionID})
		msg := readMsg(t, conn2)
		if msg["type"] == "session_started" {
			if msg["resumed"] != true {
				t.Errorf("expected resumed=true")
			}
			if msg["roundCounter"].(float64) == 1 {
				break
			}
		} else if msg["message"] != "Session not found." {
			t.Fatalf("unexpected message %v", msg)
		}
		if time.Now().After(deadline) {
			t.Fatalf("session was not resumed with its round, last message %v", msg)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestIntegration_ErrorOnInvalidRoster(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	conn := connectWS(t, server)
	defer conn.Close()

	tests := []struct {
		name    string
		players []string
	}{
		{"too few", []string{"Ana", "Beto"}},
		{"duplicate", []string{"Ana", "Beto", "ANA"}},
		{"too long", []string{"Ana", "Beto", strings.Repeat("a", 25)}},
	}
	for _, tt := range tests {
		sendMsg(t, conn, map[string]interface{}{"type": "start_session", "players": tt.players})
		if msg := readMsg(t, conn); msg["type"] != "error" {
			t.Errorf("%s: expected error, got %v", tt.name, msg["type"])
		}
	}
}

func TestIntegration_ErrorsWithoutSession(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	conn := connectWS(t, server)
	defer conn.Close()

	for _, typ := range []string{"generate_round", "architect_choice", "record_outcome", "bogus"} {
		sendMsg(t, conn, map[string]string{"type": typ})
		if msg := readMsg(t, conn); msg["type"] != "error" {
			t.Errorf("%s: expected error, got %v", typ, msg["type"])
		}
	}
}

func TestIntegration_AuthNotConfigured(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	conn := connectWS(t, server)
	defer conn.Close()

	sendMsg(t, conn, map[string]string{"type": "auth", "token": "abc"})
	msg := readMsg(t, conn)
	if msg["type"] != "error" || msg["message"] != "Server auth not configured." {
		t.Fatalf("expected auth not configured error, got %v", msg)
	}
}

func TestIntegration_Categories(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	resp, err := http.Get(server.URL + "/api/categories")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var list []api.CategoryInfo
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) == 0 {
		t.Error("expected the embedded bank to have categories")
	}
}
