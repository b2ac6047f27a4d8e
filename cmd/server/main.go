package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/healio/chat-backend/internal/chat"
	"github.com/healio/chat-backend/internal/config"
	"github.com/healio/chat-backend/internal/history"
	"github.com/healio/chat-backend/internal/server"
)

func main() {
	// Optional: local development settings.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("starting chat backend",
		"listen", cfg.ListenAddr,
		"model", cfg.OpenAI.Model,
		"streaming", cfg.OpenAI.Stream,
		"history_enabled", cfg.HistoryEnabled(),
	)

	completion, err := chat.NewClient(cfg.OpenAI)
	if err != nil {
		slog.Error("failed to initialize completion client", "error", err)
		os.Exit(1)
	}

	var store history.Store
	if cfg.HistoryEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = history.NewRedisStore(rdb)
	} else {
		slog.Warn("history store not configured, /history endpoints will report errors")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, completion, store)
	srvErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down...")
		shutCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	case err := <-srvErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
