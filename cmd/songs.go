package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lyrx/internal/formatter"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/desertthunder/lyrx/internal/tasks"
)

// SongsList prints every song as a table, JSON or CSV.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("json") && cmd.Bool("csv") {
		return fmt.Errorf("%w: cannot specify both --json and --csv", shared.ErrInvalidArgument)
	}

	catalog, closeDB, err := r.openCatalog(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	songs, err := catalog.ListSongs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list songs: %w", err)
	}

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(songs, cmd.Bool("pretty"))
	case cmd.Bool("csv"):
		data, err := formatter.SongsToCSV(songs)
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	default:
		return r.writeBytes(formatter.SongsToText(songs))
	}
}

// SongsShow prints one song with its sections.
func (r *Runner) SongsShow(ctx context.Context, cmd *cli.Command) error {
	id, err := songID(cmd)
	if err != nil {
		return err
	}

	format := formatter.FormatText
	switch {
	case cmd.Bool("json") && cmd.Bool("markdown"):
		return fmt.Errorf("%w: cannot specify both --json and --markdown", shared.ErrInvalidArgument)
	case cmd.Bool("json"):
		format = formatter.FormatJSON
	case cmd.Bool("markdown"):
		format = formatter.FormatMarkdown
	}

	catalog, closeDB, err := r.openCatalog(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	song, err := catalog.GetSong(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get song %d: %w", id, err)
	}

	data, err := formatter.RenderSong(song, format)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// SongsExport writes one song to a file in the requested format.
func (r *Runner) SongsExport(ctx context.Context, cmd *cli.Command) error {
	id, err := songID(cmd)
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	catalog, closeDB, err := r.openCatalog(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	song, err := catalog.GetSong(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get song %d: %w", id, err)
	}

	path := cmd.String("output")
	if path == "" {
		path = formatter.DefaultExportPath(song, format)
	}

	written, err := formatter.ExportSong(song, format, path, r.output)
	if err != nil {
		return err
	}
	if written != "" {
		r.logger.Info("song exported", "id", id, "format", format, "path", written)
		return r.writePlain("✓ Exported %q to %s\n", song.Title, written)
	}
	return nil
}

// SongsExportAll writes every song, or the --id songs, to a directory with live progress.
func (r *Runner) SongsExportAll(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	catalog, closeDB, err := r.openCatalog(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	prog := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		quiet := false
		for u := range prog {
			if quiet || u.Phase != tasks.ExportSong || u.Step == 0 {
				continue
			}
			if err := r.writePlain("%s\n", u.Message); err != nil {
				r.logger.Warn("progress output stopped", "err", err)
				quiet = true
			}
		}
	}()

	result, err := tasks.NewExporter(catalog, r.logger).BulkExport(ctx, prog, cmd.Int64Slice("id"), tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("dir"),
		NumWorkers: int(cmd.Int("workers")),
	})
	close(prog)
	<-done
	if err != nil {
		return err
	}

	r.logger.Info("bulk export finished", "dir", result.OutputDirectory, "ok", result.SuccessfulExports, "failed", result.FailedExports)
	if err := r.writePlain("✓ Exported %d of %d song(s) to %s (manifest: %s)\n",
		result.SuccessfulExports, result.TotalSongs, result.OutputDirectory, result.ManifestPath); err != nil {
		return err
	}
	if result.FailedExports > 0 {
		return fmt.Errorf("%d song(s) failed to export, see %s", result.FailedExports, result.ManifestPath)
	}
	return nil
}

// SongsImport adds every song in a JSON file, validating each like add-song does.
//
// Songs are added independently; a failed entry does not stop the ones after it.
func (r *Runner) SongsImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path to a JSON file", shared.ErrMissingArgument)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	entries, err := splitImport(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	catalog, closeDB, err := r.openCatalog(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	var errs []error
	added := 0
	for i, raw := range entries {
		var req models.SongRequest
		if err := models.DecodeObject(raw, &req); err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i+1, err))
			continue
		}

		id, err := catalog.AddSong(ctx, &req)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i+1, err))
			continue
		}
		added++
		r.logger.Debug("song imported", "entry", i+1, "id", id)
	}

	if err := r.writePlain("✓ Imported %d of %d song(s) from %s\n", added, len(entries), path); err != nil {
		return err
	}
	return errors.Join(errs...)
}

// SongsDelete removes a song and its sections.
func (r *Runner) SongsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := songID(cmd)
	if err != nil {
		return err
	}

	catalog, closeDB, err := r.openCatalog(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	song, err := catalog.GetSong(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get song %d: %w", id, err)
	}

	fid := models.FlexInt(id)
	if err := catalog.DeleteSong(ctx, &models.DeleteRequest{ID: &fid}); err != nil {
		return fmt.Errorf("failed to delete song %d: %w", id, err)
	}

	return r.writePlain("✓ Deleted %q (%d)\n", song.Title, id)
}

// splitImport accepts a single JSON object or an array of them.
func splitImport(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if !strings.HasPrefix(string(data), "[") {
		return []json.RawMessage{data}, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidJSON, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no songs to import", shared.ErrInvalidArgument)
	}
	return entries, nil
}
