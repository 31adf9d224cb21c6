package shared

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database/sql driver names.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// NewDatabase opens a connection for the given driver and DSN and verifies it with a ping.
//
// sqlite3 DSNs get foreign keys and a busy timeout enabled and the pool pinned to a single connection,
// which also keeps ":memory:" databases alive for the lifetime of the pool.
// mysql DSNs always parse DATETIME columns into [time.Time].
func NewDatabase(driver, dsn string) (*sql.DB, error) {
	var err error
	switch driver {
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
	case DriverMySQL:
		if dsn, err = mysqlDSN(dsn); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDB, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ConfigureDatabase sets connection pool settings for the database.
//
// sqlite3 pools stay at one connection regardless of the requested sizes.
func ConfigureDatabase(db *sql.DB, driver string, maxOpenConns, maxIdleConns int) {
	if driver == DriverSQLite {
		return
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
}

// OpenDatabase opens the database described by c and applies its pool settings.
func OpenDatabase(c DatabaseConfig) (*sql.DB, error) {
	db, err := NewDatabase(c.Driver, c.DSN)
	if err != nil {
		return nil, err
	}
	ConfigureDatabase(db, c.Driver, c.MaxOpenConns, c.MaxIdleConns)
	return db, nil
}

func sqliteDSN(dsn string) string {
	params := []string{"_foreign_keys=1", "_busy_timeout=5000"}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	var missing []string
	for _, p := range params {
		key := p[:strings.Index(p, "=")]
		if !strings.Contains(dsn, key+"=") {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return dsn
	}
	return dsn + sep + strings.Join(missing, "&")
}

func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}
