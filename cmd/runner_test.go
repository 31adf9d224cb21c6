package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/lyrx/internal/repositories"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
	tu "github.com/desertthunder/lyrx/internal/testing"
)

// newTestRunner returns a runner over an in-memory catalog, writing command output to the returned buffer.
func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer, *sql.DB) {
	t.Helper()

	db := tu.NewTestDB(t)
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: shared.DefaultConfig(),
		DB:     db,
		Logger: shared.NewLogger(&bytes.Buffer{}),
		Output: output,
	})
	return runner, output, db
}

func runApp(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	return r.App().Run(context.Background(), append([]string{"lyrx"}, args...))
}

func addSong(t *testing.T, db *sql.DB, overrides map[string]any) int64 {
	t.Helper()

	catalog := services.NewCatalog(repositories.NewSongRepository(db), nil)
	id, err := catalog.AddSong(context.Background(), tu.SongRequest(t, tu.SongBody(overrides)))
	if err != nil {
		t.Fatalf("failed to add song: %v", err)
	}
	return id
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			db := tu.NewTestDB(t)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				DB:         db,
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.db != db {
				t.Error("expected db to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil config defers loading", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config != nil {
				t.Error("expected config to be resolved by Before, not NewRunner")
			}
		})
	})

	t.Run("Before", func(t *testing.T) {
		t.Run("loads --config and opens its database", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			content := "[database]\ndriver = \"sqlite3\"\ndsn = \":memory:\"\n\n[logging]\nlevel = \"debug\"\nformat = \"json\"\n"
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(&bytes.Buffer{}), Output: output})

			if err := runApp(t, runner, "--config", path, "migrate", "status"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if runner.configPath != path {
				t.Errorf("expected configPath %s, got %s", path, runner.configPath)
			}
			if runner.config.Database.DSN != ":memory:" {
				t.Errorf("expected dsn from file, got %q", runner.config.Database.DSN)
			}
			if runner.config.Server.Port != 8080 {
				t.Errorf("expected default port for missing keys, got %d", runner.config.Server.Port)
			}
			if !strings.Contains(output.String(), "pending") {
				t.Errorf("fresh database should list pending migrations, got:\n%s", output.String())
			}
		})

		t.Run("rejects an invalid config file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte("[database]\ndriver = \"postgres\"\n"), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(&bytes.Buffer{}), Output: &bytes.Buffer{}})
			err := runApp(t, runner, "--config", path, "migrate", "status")

			if !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "<value>"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "<value>"`) {
				t.Errorf("expected formatted, unescaped JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)

			if err == nil || !strings.Contains(err.Error(), "failed to encode JSON") {
				t.Errorf("expected encode error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writePlain("test"); err == nil {
				t.Fatal("expected error from failing writer")
			}
			if err := runner.writeBytes([]byte("test")); err == nil {
				t.Fatal("expected error from failing writer")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := make([]string, len(commands))
		for i, c := range commands {
			names[i] = c.Name
		}

		expected := []string{"serve", "setup", "migrate", "songs", "tui"}
		if strings.Join(names, ",") != strings.Join(expected, ",") {
			t.Errorf("expected commands %v, got %v", expected, names)
		}
	})
}

func TestSetup(t *testing.T) {
	t.Run("config writes the example file", func(t *testing.T) {
		runner, output, _ := newTestRunner(t)
		runner.configPath = filepath.Join(t.TempDir(), "config.toml")

		if err := runApp(t, runner, "setup", "config"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, runner.configPath)
		if content := tu.MustReadFile(t, runner.configPath); !strings.Contains(content, "[database]") {
			t.Errorf("unexpected config content:\n%s", content)
		}
		if !strings.Contains(output.String(), "lyrx setup database") {
			t.Errorf("expected next steps, got %q", output.String())
		}
	})

	t.Run("config refuses to overwrite", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)
		runner.configPath = filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(runner.configPath, []byte("# mine\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if err := runApp(t, runner, "setup", "config"); err == nil {
			t.Fatal("expected an error for an existing file")
		}
		if content := tu.MustReadFile(t, runner.configPath); content != "# mine\n" {
			t.Errorf("existing config was modified: %q", content)
		}
	})

	t.Run("database", func(t *testing.T) {
		runner, output, db := newTestRunner(t)
		addSong(t, db, nil)
		addSong(t, db, map[string]any{"title": "second"})

		if err := runApp(t, runner, "setup", "database"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Database ready") || !strings.Contains(output.String(), "2 song(s)") {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}

func TestMigrate(t *testing.T) {
	runner, output, db := newTestRunner(t)

	if err := runApp(t, runner, "migrate", "status"); err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if strings.Contains(output.String(), "pending") {
		t.Errorf("test database should be fully migrated, got:\n%s", output.String())
	}

	if err := runApp(t, runner, "migrate", "rollback"); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}

	output.Reset()
	if err := runApp(t, runner, "migrate", "status"); err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(output.String(), "pending") {
		t.Errorf("expected a pending migration after rollback, got:\n%s", output.String())
	}

	if err := runApp(t, runner, "migrate", "up"); err != nil {
		t.Fatalf("up failed: %v", err)
	}
	if n := tu.CountRows(t, db, "songs"); n != 0 {
		t.Errorf("expected an empty songs table, got %d rows", n)
	}
}
