package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"impostor-server/config"
	"impostor-server/game"
	"impostor-server/infinitum"
	"impostor-server/lexicon"
	"impostor-server/storage"
)

func setupHandler(t *testing.T, debug bool) (*http.ServeMux, *storage.MemoryStore) {
	t.Helper()
	cfg := config.Defaults()
	cfg.DebugOverrides = debug
	store := storage.NewMemoryStore()
	bank := lexicon.NewStaticBank(map[string][]lexicon.WordPair{
		"Animales": {{Word: "Gato", Hints: []string{"Felino"}}, {Word: "Perro", Hints: []string{"Ladra"}}},
		"Comida":   {{Word: "Pizza", Hints: []string{"Horno"}}},
	})
	mux := http.NewServeMux()
	NewHandler(cfg, store, bank).Routes(mux)
	return mux, store
}

func seedSession(t *testing.T, store *storage.MemoryStore, owner string) storage.Session {
	t.Helper()
	h := game.NewHistory()
	h.RoundCounter = 2
	h.AppendMatchLog(game.MatchLog{ID: "log-1", Round: 1, Word: "Gato"})
	h.AppendMatchLog(game.MatchLog{ID: "log-2", Round: 2, Word: "Pizza"})
	sess := storage.Session{
		ID:      "11111111-1111-1111-1111-111111111111",
		OwnerID: owner,
		Players: []game.Player{{ID: "a", Name: "Ana"}, {ID: "b", Name: "Beto"}, {ID: "c", Name: "Caro"}},
		History: h,
	}
	ctx := context.Background()
	if err := store.SaveSession(ctx, sess); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	for _, l := range h.MatchLogs {
		if err := store.UpsertMatchLog(ctx, sess.ID, l); err != nil {
			t.Fatalf("UpsertMatchLog: %v", err)
		}
	}
	return sess
}

func get(mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestCategories(t *testing.T) {
	mux, _ := setupHandler(t, false)
	rec := get(mux, "/api/categories")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var list []CategoryInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "Animales" || list[0].Words != 2 || list[1].Words != 1 {
		t.Errorf("categories = %+v", list)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS origin = %q", got)
	}
}

func TestPreflightAndMethod(t *testing.T) {
	mux, _ := setupHandler(t, false)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/categories", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("OPTIONS status = %d, want 204", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/categories", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	mux, _ := setupHandler(t, false)
	for _, path := range []string{"/api/sessions", "/api/players"} {
		if rec := get(mux, path); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s status = %d, want 401", path, rec.Code)
		}
	}
}

func TestMatchLogs(t *testing.T) {
	mux, store := setupHandler(t, false)
	sess := seedSession(t, store, "")

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all", "", []string{"log-2", "log-1"}},
		{"limit", "?limit=1", []string{"log-2"}},
		{"offset", "?limit=1&offset=1", []string{"log-1"}},
		{"past end", "?offset=5", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(mux, "/api/sessions/"+sess.ID+"/logs"+tt.query)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			var logs []game.MatchLog
			if err := json.Unmarshal(rec.Body.Bytes(), &logs); err != nil {
				t.Fatal(err)
			}
			if len(logs) != len(tt.want) {
				t.Fatalf("got %d logs, want %d", len(logs), len(tt.want))
			}
			for i, id := range tt.want {
				if logs[i].ID != id {
					t.Errorf("logs[%d] = %s, want %s", i, logs[i].ID, id)
				}
			}
		})
	}
}

func TestMatchLogsNotFound(t *testing.T) {
	mux, store := setupHandler(t, false)
	if rec := get(mux, "/api/sessions/22222222-2222-2222-2222-222222222222/logs"); rec.Code != http.StatusNotFound {
		t.Errorf("missing session status = %d, want 404", rec.Code)
	}

	owned := seedSession(t, store, "user-1")
	if rec := get(mux, "/api/sessions/"+owned.ID+"/logs"); rec.Code != http.StatusNotFound {
		t.Errorf("owned session without token status = %d, want 404", rec.Code)
	}
}

func TestDebug(t *testing.T) {
	mux, store := setupHandler(t, false)
	sess := seedSession(t, store, "")
	if rec := get(mux, "/api/sessions/"+sess.ID+"/debug"); rec.Code != http.StatusNotFound {
		t.Errorf("debug disabled status = %d, want 404", rec.Code)
	}

	mux, store = setupHandler(t, true)
	sess = seedSession(t, store, "")
	rec := get(mux, "/api/sessions/"+sess.ID+"/debug")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats []infinitum.DebugStat
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if len(stats) != 3 {
		t.Fatalf("got %d rows, want 3", len(stats))
	}
	var total float64
	for _, s := range stats {
		total += s.Probability
	}
	if total < 0.99 || total > 1.01 {
		t.Errorf("probabilities sum to %f, want 1", total)
	}
}
