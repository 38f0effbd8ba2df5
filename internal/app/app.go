package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/nexuschat/nexuschat-server/internal/config"
	"github.com/nexuschat/nexuschat-server/internal/core"
	"github.com/nexuschat/nexuschat-server/internal/names"
	"github.com/nexuschat/nexuschat-server/internal/store"
	"github.com/nexuschat/nexuschat-server/internal/store/sqlite"
	transporthttp "github.com/nexuschat/nexuschat-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	rooms, err := core.NewRegistry(cfg.Rooms, cfg.DefaultRoom)
	if err != nil {
		return nil, fmt.Errorf("init rooms: %w", err)
	}

	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	orphaned, err := unlistedRooms(context.Background(), st, rooms)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("check stored rooms: %w", err)
	}
	for _, room := range orphaned {
		logger.Warn().Str("room", room).Msg("stored messages belong to a room that is not configured, they stay unreachable")
	}
	if cfg.AdminToken == "" {
		logger.Warn().Msg("admin token not set, room clearing is disabled")
	}

	generator := names.New()
	hub := core.NewHub(st, rooms, core.NewAuthorizer(cfg.AdminToken),
		core.WithLogger(logger),
		core.WithNameFunc(generator.Generate),
		core.WithCooldowns(core.CooldownConfig{
			Post:    cfg.Cooldowns.Post,
			SetName: cfg.Cooldowns.SetName,
			Clear:   cfg.Cooldowns.Clear,
		}),
	)
	server := transporthttp.NewServer(hub, *cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// unlistedRooms returns the rooms holding stored messages that are missing
// from the allow-list.
func unlistedRooms(ctx context.Context, st store.Store, rooms *core.Registry) ([]string, error) {
	stored, err := st.MessageRooms(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, room := range stored {
		if !rooms.Has(room) {
			out = append(out, room)
		}
	}
	return out, nil
}

// Addr returns the address the HTTP server listens on.
func (a *App) Addr() string {
	return a.server.Addr
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	hubCtx, stopHub := context.WithCancel(ctx)
	hubDone := make(chan struct{})
	go func() {
		a.hub.Run(hubCtx)
		close(hubDone)
	}()

	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		stopHub()
		<-hubDone
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		// Disconnecting the sessions first lets hijacked WebSocket
		// handlers return before the server drains.
		stopHub()
		<-hubDone

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
