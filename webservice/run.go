// Package webservice boots the stashlog HTTP server: configuration,
// storage, sessions, router, and graceful shutdown.
package webservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stashlog/stashlog/internal/auth"
	"github.com/stashlog/stashlog/internal/config"
	"github.com/stashlog/stashlog/internal/logger"
	"github.com/stashlog/stashlog/internal/store"
	"github.com/stashlog/stashlog/internal/store/postgres"
	"github.com/stashlog/stashlog/internal/store/sqlite"
	"github.com/stashlog/stashlog/internal/web"
)

// Run starts the HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("stashlog")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("stashlog starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := NewStore(cfg)
	if err != nil {
		log.Error().Err(err).Msg("storage unavailable")
		return err
	}
	defer func() { _ = st.Close() }()

	sessions := auth.NewSessions(cfg.SessionSecret, cfg.SecureCookies)
	handler, err := web.NewHandler(st, sessions, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to build handlers")
		return err
	}
	router := web.NewRouter(handler, sessions, log)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := serveHTTP(server, log)

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
			return err
		}
		log.Info().Msg("server exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("http server failed")
		return err
	}
}

// NewStore opens the store selected by configuration. Postgres runs its
// embedded migrations on open; the sqlite store creates its schema itself.
func NewStore(cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		return postgres.New(cfg.PostgresDSN)
	case "sqlite":
		return sqlite.New(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}
