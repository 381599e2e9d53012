package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"impostor-server/auth"
	"impostor-server/config"
	"impostor-server/enginerr"
	"impostor-server/game"
	"impostor-server/infinitum"
	"impostor-server/lexicon"
	"impostor-server/storage"
)

const bearerPrefix = "Bearer "

// Handler holds dependencies for API handlers.
type Handler struct {
	Config *config.Config
	Store  storage.SessionStore
	Bank   lexicon.Bank
}

// NewHandler creates a new API handler with the given dependencies.
func NewHandler(cfg *config.Config, store storage.SessionStore, bank lexicon.Bank) *Handler {
	return &Handler{
		Config: cfg,
		Store:  store,
		Bank:   bank,
	}
}

// Routes registers every API endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/categories", h.Categories)
	mux.HandleFunc("/api/sessions", h.Sessions)
	mux.HandleFunc("/api/sessions/{id}/logs", h.MatchLogs)
	mux.HandleFunc("/api/sessions/{id}/debug", h.Debug)
	mux.HandleFunc("/api/players", h.Players)
}

// CORS sets CORS headers on the response. Call before writing body.
func CORS(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

// preflight handles CORS and rejects anything but GET.
func preflight(w http.ResponseWriter, r *http.Request) bool {
	if CORS(w, r) {
		return true
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return true
	}
	return false
}

// extractUserID validates the Authorization header and returns the user ID, or empty string on failure.
func (h *Handler) extractUserID(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return ""
	}
	token := strings.TrimSpace(authHeader[len(bearerPrefix):])
	claims, err := auth.ValidateToken(h.Config.AuthBaseURL, token)
	if err != nil {
		return ""
	}
	return auth.UserIDFromClaims(claims)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encoding response", "tag", "api", "err", err)
	}
}

// CategoryInfo describes one category of the word bank.
type CategoryInfo struct {
	Name  string `json:"name"`
	Words int    `json:"words"`
}

// Categories lists the word bank categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	names := h.Bank.Categories()
	list := make([]CategoryInfo, len(names))
	for i, n := range names {
		list[i] = CategoryInfo{Name: n, Words: len(h.Bank.Words(n))}
	}
	writeJSON(w, list)
}

// Sessions lists the authenticated user's sessions, newest first.
func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	userID := h.extractUserID(r)
	if userID == "" {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = h.Config.MatchLogPageSize
	}
	list, err := h.Store.ListSessions(r.Context(), userID, limit)
	if err != nil {
		slog.Error("listing sessions", "tag", "api", "err", err)
		http.Error(w, "failed to load sessions", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []storage.SessionSummary{}
	}
	writeJSON(w, list)
}

// session loads the session in the path and checks its owner. It writes
// the error response and returns nil on failure.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *storage.Session {
	id := r.PathValue("id")
	sess, err := h.Store.LoadSession(r.Context(), id)
	if errors.Is(err, enginerr.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil
	}
	if err != nil {
		slog.Error("loading session", "tag", "api", "session", id, "err", err)
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return nil
	}
	if sess.OwnerID != "" && sess.OwnerID != h.extractUserID(r) {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil
	}
	return sess
}

// MatchLogs returns a page of a session's match logs, newest first.
func (h *Handler) MatchLogs(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = h.Config.MatchLogPageSize
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	logs, err := h.Store.ListMatchLogs(r.Context(), sess.ID, limit, offset)
	if err != nil {
		slog.Error("listing match logs", "tag", "api", "session", sess.ID, "err", err)
		http.Error(w, "failed to load match logs", http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []game.MatchLog{}
	}
	writeJSON(w, logs)
}

// Debug returns the selection weights of a session's roster. Only served
// when debug overrides are enabled.
func (h *Handler) Debug(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	if !h.Config.DebugOverrides {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, infinitum.DebugStats(sess.Players, sess.History))
}

// Players returns the authenticated user's saved player names.
func (h *Handler) Players(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	userID := h.extractUserID(r)
	if userID == "" {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return
	}
	names, err := h.Store.ListPlayerNames(r.Context(), userID)
	if err != nil {
		slog.Error("listing player names", "tag", "api", "err", err)
		http.Error(w, "failed to load players", http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, names)
}
