package command

import (
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/todo-api/internal/config"
	"github.com/iliyamo/todo-api/internal/database"
	"github.com/iliyamo/todo-api/internal/events"
	"github.com/iliyamo/todo-api/internal/router"
	"github.com/iliyamo/todo-api/internal/server"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serve the todo REST API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) (runErr error) {
	cfg, logger, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	rl, rlErr := config.LoadRateLimitConfig()
	ev, evErr := config.LoadEventsConfig()
	if err := errors.Join(rlErr, evErr); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := database.Open(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}()

	deps := router.Deps{
		Config:    cfg,
		RateLimit: rl,
		DB:        db,
		Events:    events.Nop{},
		Logger:    logger,
	}
	if rl.Enabled {
		if rdb := config.NewRedisClient(cmd.Context(), logger); rdb != nil {
			defer func() { _ = rdb.Close() }()
			deps.Redis = rdb
		}
	}

	grp, ctx := errgroup.WithContext(cmd.Context())

	if ev.Enabled {
		deps.Events = events.NewAMQPPublisher(ev.URL, ev.Queue, logger)
		if ev.Consume {
			consumer := &events.Consumer{URL: ev.URL, Queue: ev.Queue, LogPath: ev.LogPath, Logger: logger}
			logger.InfoContext(ctx, "starting event consumer...",
				slog.String("queue", ev.Queue), slog.String("log", ev.LogPath))
			grp.Go(func() error { return consumer.Run(ctx) })
		}
	}

	addr := net.JoinHostPort("", cfg.Port)
	listener, err := server.Listen(ctx, addr)
	if err != nil {
		return err
	}

	e := router.New(deps)
	logger.InfoContext(ctx,
		"starting API server...",
		slog.String("address", listener.Addr().String()),
		slog.String("env", cfg.Env),
	)
	server.Serve(ctx, grp, e.Server, listener, server.ShutdownTimeout)
	return grp.Wait()
}
