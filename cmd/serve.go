package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lyrx/internal/repositories"
	"github.com/desertthunder/lyrx/internal/server"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
)

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", shared.ErrInvalidArgument, cfg.Port)
	}

	db, closeDB, err := r.openDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	opts := server.Options{Logger: r.logger}

	if cfg.Metrics {
		metrics, err := server.NewMetrics()
		if err != nil {
			return err
		}
		if err := metrics.RegisterDB(db, r.config.Database.Driver); err != nil {
			return err
		}
		opts.Metrics = metrics
	}

	if path := r.config.Logging.RequestLog; path != "" {
		requestLog, err := shared.NewFileLogger(path)
		if err != nil {
			return err
		}
		opts.RequestLog = requestLog
		r.logger.Info("writing request log", "path", path)
	}

	catalog := services.NewCatalog(repositories.NewSongRepository(db), r.logger)
	srv := server.New(cfg, catalog, opts)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("starting lyrics API", "addr", srv.Addr(), "driver", r.config.Database.Driver, "strict_status", cfg.StrictStatus)
	return srv.Start(ctx)
}
