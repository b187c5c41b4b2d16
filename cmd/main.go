/*
Package main is the entry point for the Room Chat server.

It loads configuration, initializes the global logger, opens the configured
store, wires the chat core and serves the HTTP and WebSocket endpoints until
an interrupt signal (SIGINT, SIGTERM) triggers a graceful shutdown.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"roomchat/internal/app/chat"
	"roomchat/internal/app/store"
	"roomchat/internal/app/store/memstore"
	"roomchat/internal/app/store/pgstore"
	"roomchat/internal/app/store/sqlstore"
	"roomchat/internal/configs"
	"roomchat/internal/handler"
	"roomchat/internal/pkg/logx"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.LogLevel, cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Str("store", cfg.StoreDriver).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Int("history_limit", cfg.HistoryLimit).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logx.Fatal(err, "Server stopped with error")
	}

	logx.Info("Server gracefully stopped.")
}

func run(ctx context.Context, cfg *configs.AppConfig) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logx.Error(err, "Failed to close store")
		}
	}()

	// Presence from a previous process refers to connections that no longer exist.
	if err := st.ClearPresence(ctx); err != nil {
		return fmt.Errorf("clear stale presence: %w", err)
	}

	router := chat.NewRouter()
	directory := chat.NewDirectory(st, router)
	presence := chat.NewPresenceRegistry(st, directory, router, chat.WithJoinerExcluded(cfg.ExcludeJoinerFromRecipients))
	channel := chat.NewChannel(st, router)
	manager := chat.NewManager(cfg, router, directory, presence, channel)

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: handler.Router(ctx, &handler.AppDeps{
			Manager:   manager,
			Directory: directory,
			Channel:   channel,
			Config:    cfg,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logx.Info("Room Chat server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logx.Info("Received shutdown signal. Starting graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Hijacked WebSocket connections are not tracked by the server; close them first.
		manager.Shutdown()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg *configs.AppConfig) (store.Store, error) {
	switch cfg.StoreDriver {
	case configs.StorePostgres:
		return pgstore.Open(ctx, cfg.DatabaseDSN)
	case configs.StoreSQLite:
		return sqlstore.Open(cfg.SQLitePath)
	default:
		return memstore.New(), nil
	}
}
