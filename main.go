// main.go
//
// Entry point for the Hero of Habits game server.
//   - Loads .env, then config (defaults → config.yaml → HOH_* env).
//   - Sets up logging and metrics.
//   - Opens the configured store (sqlite3 | pgx | memory) and applies migrations.
//   - Serves HTTP until SIGINT/SIGTERM, then shuts down gracefully.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hero-of-habits/internal/auth"
	"github.com/robalobadob/hero-of-habits/internal/config"
	"github.com/robalobadob/hero-of-habits/internal/httpserver"
	"github.com/robalobadob/hero-of-habits/internal/logging"
	"github.com/robalobadob/hero-of-habits/internal/metrics"
	"github.com/robalobadob/hero-of-habits/internal/minigame"
	"github.com/robalobadob/hero-of-habits/internal/progression"
	"github.com/robalobadob/hero-of-habits/internal/store"
)

// backend is what the server needs from persistence.
type backend interface {
	store.Store
	store.Users
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logFile, err := logging.Setup(logging.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, File: cfg.Log.File})
	if err != nil {
		log.Warn().Err(err).Str("level", cfg.Log.Level).Msg("bad log level, using info")
	}
	defer logFile.Close()
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, closeStore, err := openBackend(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("open store")
	}
	defer closeStore()

	am := auth.NewManager(be, auth.Config{
		Secret:        cfg.Auth.JWTSecret,
		TTL:           cfg.Auth.TokenTTL(),
		CookieName:    cfg.Auth.CookieName,
		SecureCookies: cfg.Auth.SecureCookies,
	})
	srv := httpserver.New(progression.New(be), am, minigame.NewSessions(minigame.DefaultSessionTTL), httpserver.Options{
		ClientOrigins:  cfg.Server.ClientOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	hs := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("store", cfg.Database.Driver).Msg("starting hero-of-habits server")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
}

// openBackend returns the configured store and its closer.
func openBackend(ctx context.Context, dc config.DatabaseConfig) (backend, func(), error) {
	if dc.Driver == store.DriverMemory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return store.NewMemory(), func() {}, nil
	}
	db, err := store.OpenDB(ctx, dc.Driver, dc.DSN)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	st := store.NewSQL(db)
	return st, func() {
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}, nil
}
