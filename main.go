package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"impostor-server/api"
	"impostor-server/config"
	"impostor-server/lexicon"
	"impostor-server/loghandler"
	"impostor-server/storage"
	"impostor-server/ws"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stdout, cfg.SlogLevel())))

	if envErr != nil {
		slog.Info("no .env file found; using environment variables", "tag", "main")
	}
	if cfg.AuthBaseURL == "" {
		slog.Info("AUTH_BASE_URL is not set; auth messages will be rejected and sessions stay anonymous", "tag", "main")
	} else {
		slog.Info("auth configured", "tag", "main", "base_url", cfg.AuthBaseURL)
	}

	var bank lexicon.Bank = lexicon.DefaultBank()
	if cfg.WordBankPath != "" {
		loaded, err := lexicon.LoadBankFile(cfg.WordBankPath)
		if err != nil {
			slog.Error("failed to load word bank, using the embedded one", "tag", "main", "path", cfg.WordBankPath, "err", err)
		} else {
			bank = loaded
		}
	}
	slog.Info("word bank ready", "tag", "main", "categories", len(bank.Categories()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store storage.SessionStore
	pg, err := storage.NewStore(ctx, cfg.DatabaseURL)
	switch {
	case err != nil:
		slog.Error("failed to connect to Postgres, using in-memory store", "tag", "main", "err", err)
		store = storage.NewMemoryStore()
	case pg == nil:
		slog.Info("DATABASE_URL is not set; sessions are kept in memory", "tag", "main")
		store = storage.NewMemoryStore()
	default:
		store = pg
	}
	defer store.Close()

	hub := ws.NewHub(cfg, store, bank)
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	api.NewHandler(cfg, store, bank).Routes(mux)

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.WSPort), Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("server shutdown", "tag", "main", "err", err)
		}
	}()

	slog.Info("Impostor server listening", "tag", "main", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "tag", "main", "err", err)
		os.Exit(1)
	}
}
