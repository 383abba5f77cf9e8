// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database: a single file next to the binary, no
// server to run. For a low-traffic classroom app that is all the durability
// we need, and ":memory:" gives every test its own throwaway database.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite: no CGo, no C compiler, cross
// compilation just works.
//
// WHY sqlx ON TOP OF database/sql?
// sqlx keeps the database/sql model (pool, contexts, placeholders) but scans
// rows straight into structs via `db:"..."` tags, so repositories don't
// repeat every column in a Scan call.
//
// SCHEMA CHANGES:
// Tables are created by goose migrations embedded in the binary (see
// migrations/). Migrate is idempotent; goose records applied versions in
// its own goose_db_version table.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	// The driver registers itself with database/sql as "sqlite".
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/studyhub/internal/repository/sqlite/migrations"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DB wraps a sqlx connection pool and hands out the per-table stores.
type DB struct {
	conn   *sqlx.DB
	logger *slog.Logger
}

// New opens (or creates) the SQLite database at dbPath.
//
// dbPath examples:
//   - "data/studyhub.db" → file-based database (persistent)
//   - ":memory:"         → in-memory database (tests)
//
// PRAGMAS IN THE DSN:
// busy_timeout and foreign_keys are per-connection settings. Passing them as
// _pragma DSN parameters makes the driver apply them to EVERY connection the
// pool opens, not just the first one.
func New(dbPath string, logger *slog.Logger) (*DB, error) {
	dsn := "file:" + dbPath +
		"?_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)"

	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if dbPath == MemoryPath {
		// Each connection to ":memory:" is a DIFFERENT empty database.
		// Pin the pool to one connection so every query sees the same data.
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in flight. Unlike the
	// pragmas above it is stored in the database file, so once is enough.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	return &DB{conn: conn, logger: logger}, nil
}

// Open is New followed by Migrate, which is what the server and most tests want.
func Open(ctx context.Context, dbPath string, logger *slog.Logger) (*DB, error) {
	db, err := New(dbPath, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// Migrate applies all pending migrations from the embedded migrations FS.
func (db *DB) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{db.logger})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("sqlite: setting goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db.conn.DB, "."); err != nil {
		return fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return nil
}

// Users returns the user store backed by this database.
func (db *DB) Users() *UserStore {
	return &UserStore{conn: db.conn}
}

// Questions returns the question store backed by this database.
func (db *DB) Questions() *QuestionStore {
	return &QuestionStore{conn: db.conn}
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// gooseLogger routes goose's printf-style output into slog.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Debug("goose", slog.String("msg", fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error("goose", slog.String("msg", fmt.Sprintf(format, v...)))
}
