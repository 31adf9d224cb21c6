package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lyrx/internal/repositories"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
)

// SetupConfig writes the example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		return fmt.Errorf("%w: --config", shared.ErrMissingArgument)
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	return r.writePlain("✓ Wrote %s\nEdit [database] and [server], or set LYRX_DATABASE_DSN, then run 'lyrx setup database'\n", path)
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "driver", r.config.Database.Driver)

	db, closeDB, err := r.openDB(ctx)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer closeDB()

	statuses, err := shared.MigrationStatuses(ctx, db, r.config.Database.Driver)
	if err != nil {
		return err
	}

	songs, err := services.NewCatalog(repositories.NewSongRepository(db), r.logger).CountSongs(ctx)
	if err != nil {
		return fmt.Errorf("failed to count songs: %w", err)
	}

	r.logger.Infof("setup complete for %s database", r.config.Database.Driver)
	return r.writePlain("✓ Database ready (%d migrations applied, %d song(s))\n", len(statuses), songs)
}
