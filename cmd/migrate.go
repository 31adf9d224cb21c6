package main

import (
	"context"
	"errors"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lyrx/internal/shared"
)

// MigrateUp applies every pending migration.
func (r *Runner) MigrateUp(ctx context.Context, cmd *cli.Command) error {
	_, closeDB, err := r.openDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	return r.writePlain("✓ Migrations up to date\n")
}

// MigrateRollback reverts the most recently applied migration.
func (r *Runner) MigrateRollback(ctx context.Context, cmd *cli.Command) error {
	db, closeDB, err := r.connect()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := shared.RollbackMigration(ctx, db, r.config.Database.Driver); err != nil {
		if errors.Is(err, shared.ErrNoMigrations) {
			r.logger.Warn("nothing to roll back")
			return nil
		}
		return err
	}

	return r.writePlain("✓ Rolled back latest migration\n")
}

// MigrateStatus prints every known migration with its applied time.
func (r *Runner) MigrateStatus(ctx context.Context, cmd *cli.Command) error {
	db, closeDB, err := r.connect()
	if err != nil {
		return err
	}
	defer closeDB()

	statuses, err := shared.MigrationStatuses(ctx, db, r.config.Database.Driver)
	if err != nil {
		return err
	}

	rows := make([][]string, len(statuses))
	for i, s := range statuses {
		applied := "pending"
		if s.Applied {
			applied = s.AppliedAt.Format("2006-01-02 15:04:05")
		}
		rows[i] = []string{strconv.Itoa(s.Version), s.Name, applied}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("VERSION", "NAME", "APPLIED").
		Rows(rows...)

	return r.writePlain("%s\n", t.Render())
}
