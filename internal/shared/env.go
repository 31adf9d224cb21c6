package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override config.toml values.
const (
	EnvDatabaseDriver = "LYRX_DATABASE_DRIVER"
	EnvDatabaseDSN    = "LYRX_DATABASE_DSN"
	EnvServerHost     = "LYRX_SERVER_HOST"
	EnvServerPort     = "LYRX_SERVER_PORT"
	EnvLogLevel       = "LYRX_LOG_LEVEL"
	EnvRequestLog     = "LYRX_REQUEST_LOG"
)

// LoadDotEnv loads variables from the given .env files into the process environment.
//
// Missing files are ignored; variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values with the LYRX_* environment variables that are set.
func ApplyEnv(c *Config) error {
	if v, ok := os.LookupEnv(EnvDatabaseDriver); ok && v != "" {
		c.Database.Driver = v
	}
	if v, ok := os.LookupEnv(EnvDatabaseDSN); ok && v != "" {
		c.Database.DSN = v
	}
	if v, ok := os.LookupEnv(EnvServerHost); ok && v != "" {
		c.Server.Host = v
	}
	if v, ok := os.LookupEnv(EnvServerPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a port", ErrInvalidConfig, EnvServerPort, v)
		}
		c.Server.Port = port
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := os.LookupEnv(EnvRequestLog); ok {
		c.Logging.RequestLog = v
	}
	return nil
}
