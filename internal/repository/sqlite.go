package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/sqlite.sql
var sqliteSchema string

type sqliteDialect struct{}

func (sqliteDialect) name() string               { return "sqlite" }
func (sqliteDialect) rebind(query string) string { return query }
func (sqliteDialect) timeArg(t time.Time) any    { return t.UnixMilli() }

// isDuplicate matches key collisions only; other constraint failures such
// as NOT NULL stay ordinary errors.
func (sqliteDialect) isDuplicate(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}

// lockUser is a no-op: the store runs on a single connection, so
// transactions are already serialised.
func (sqliteDialect) lockUser(context.Context, *sql.Tx, int64) error { return nil }

func openSQLite(ctx context.Context, path string, timeout time.Duration, log zerolog.Logger) (*SQLStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	inMemory := path == ":memory:" || strings.Contains(path, "mode=memory")
	if !inMemory && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.ExecContext(ctx, "PRAGMA busy_timeout = 5000")
	if !inMemory {
		_, _ = db.ExecContext(ctx, "PRAGMA journal_mode = WAL")
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	s := &SQLStore{db: db, d: sqliteDialect{}, timeout: timeout, log: log}
	log.Info().Str("dialect", s.d.name()).Str("path", path).Msg("store opened")
	return s, nil
}
