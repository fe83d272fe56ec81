// stickybans/database/database.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

var (
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	ErrNotFound          = errors.New("record not found")
)

// DatabaseService is the central struct for all database operations.
type DatabaseService struct {
	DB     *sql.DB
	logger *slog.Logger
	driver string
}

// ParseDatabaseURL splits a "driver://dsn" URL into the database/sql driver name and its DSN.
func ParseDatabaseURL(databaseURL string) (driver, dsn string, err error) {
	scheme, rest, ok := strings.Cut(databaseURL, "://")
	if !ok || rest == "" {
		return "", "", fmt.Errorf("database URL must look like driver://dsn, got %q", databaseURL)
	}
	switch strings.ToLower(scheme) {
	case "mysql", "mariadb":
		return DriverMySQL, rest, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, rest, nil
	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedDriver, scheme)
	}
}

// InitDB connects to the database named by databaseURL. SQLite databases get the
// development schema applied; MySQL is expected to already carry the game schema.
func InitDB(databaseURL string, logger *slog.Logger) (*DatabaseService, error) {
	driver, dsn, err := ParseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	switch driver {
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid MySQL DSN: %w", err)
		}
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create MySQL connector: %w", err)
		}
		db = sql.OpenDB(connector)
	case DriverSQLite:
		db, err = sql.Open(DriverSQLite, dsn)
		if err != nil {
			return nil, err
		}
		if _, err = db.Exec(devSchema); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute development schema: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	logger.Info("Database connection established", "driver", driver)
	ds := New(db, logger)
	ds.driver = driver
	return ds, nil
}

// New wraps an already opened handle.
func New(db *sql.DB, logger *slog.Logger) *DatabaseService {
	return &DatabaseService{DB: db, logger: logger}
}

// ConfigurePool applies connection pool limits. Each in-flight request holds at most one
// connection at a time.
func (ds *DatabaseService) ConfigurePool(maxOpen, maxIdle int, lifetime time.Duration) {
	ds.DB.SetMaxOpenConns(maxOpen)
	ds.DB.SetMaxIdleConns(maxIdle)
	ds.DB.SetConnMaxLifetime(lifetime)
}

// Driver reports which database/sql driver backs the service.
func (ds *DatabaseService) Driver() string {
	return ds.driver
}

func (ds *DatabaseService) Close() error {
	return ds.DB.Close()
}

// closeRows closes a result set, logging rather than returning the error.
func (ds *DatabaseService) closeRows(rows *sql.Rows, where string) {
	if err := rows.Close(); err != nil {
		ds.logger.Error("Failed to close rows", "in", where, "error", err)
	}
}

// placeholders returns "?,?,?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return "?" + strings.Repeat(",?", n-1)
}
