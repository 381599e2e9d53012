package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// RoundDefaults are the protocol toggles a session starts with when the
// client does not send its own.
type RoundDefaults struct {
	ImpostorCount int  `json:"impostor_count"`
	HintMode      bool `json:"hint_mode"`
	TrollMode     bool `json:"troll_mode"`
	PartyMode     bool `json:"party_mode"`
}

// Config holds all configurable server parameters.
type Config struct {
	WSPort        int `json:"ws_port"`
	MaxNameLength int `json:"max_name_length"`
	MinPlayers    int `json:"min_players"`
	MaxPlayers    int `json:"max_players"`

	// PersistTimeoutMS bounds each fire-and-forget write to storage.
	PersistTimeoutMS int `json:"persist_timeout_ms"`
	// MatchLogPageSize is the default page size of /api/sessions/{id}/logs.
	MatchLogPageSize int `json:"match_log_page_size"`

	// DebugOverrides lets clients force troll, Architect and Renuncia events.
	DebugOverrides bool `json:"debug_overrides"`

	LogLevel     string `json:"log_level"`
	WordBankPath string `json:"word_bank_path"`

	// DatabaseURL is read from DATABASE_URL; when empty sessions live in memory only.
	DatabaseURL string `json:"-"`
	// AuthBaseURL is the JWKS issuer base URL; when empty auth is disabled.
	AuthBaseURL string `json:"-"`

	Round RoundDefaults `json:"round"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		WSPort:           8080,
		MaxNameLength:    24,
		MinPlayers:       3,
		MaxPlayers:       20,
		PersistTimeoutMS: 5000,
		MatchLogPageSize: 20,
		LogLevel:         "info",
		Round: RoundDefaults{
			ImpostorCount: 1,
			HintMode:      true,
		},
	}
}

// Load reads configuration from an optional config.json file,
// then applies environment variable overrides. Fields not set
// in either source retain their default values.
func Load() *Config {
	cfg := Defaults()

	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			slog.Warn("failed to parse config.json", "tag", "config", "err", err)
		}
	}

	overrideInt(&cfg.WSPort, "WS_PORT")
	overrideInt(&cfg.MaxNameLength, "MAX_NAME_LENGTH")
	overrideInt(&cfg.MinPlayers, "MIN_PLAYERS")
	overrideInt(&cfg.MaxPlayers, "MAX_PLAYERS")
	overrideInt(&cfg.PersistTimeoutMS, "PERSIST_TIMEOUT_MS")
	overrideInt(&cfg.MatchLogPageSize, "MATCH_LOG_PAGE_SIZE")
	overrideBool(&cfg.DebugOverrides, "DEBUG_OVERRIDES")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideString(&cfg.WordBankPath, "WORD_BANK_PATH")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.AuthBaseURL, "AUTH_BASE_URL")
	overrideInt(&cfg.Round.ImpostorCount, "DEFAULT_IMPOSTOR_COUNT")
	overrideBool(&cfg.Round.HintMode, "DEFAULT_HINT_MODE")
	overrideBool(&cfg.Round.TrollMode, "DEFAULT_TROLL_MODE")
	overrideBool(&cfg.Round.PartyMode, "DEFAULT_PARTY_MODE")

	return cfg
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			slog.Warn("invalid integer in environment", "tag", "config", "key", envKey, "value", val)
		}
	}
}

func overrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*field = b
		} else {
			slog.Warn("invalid boolean in environment", "tag", "config", "key", envKey, "value", val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
