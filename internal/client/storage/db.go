// Package storage persists client state in a local SQLite database.
//
// Two areas are kept apart, mirroring a browser: the cookie jar (a small
// key-value area holding the sealed session credential) and the persisted
// state slices that are rehydrated into in-memory stores at startup.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gallerist/internal/client/storage/migrations"
	"github.com/dmitrijs2005/gallerist/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the state database at dsn and migrates it.
// SQLite allows one writer, so the pool is capped at a single connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if isPlainPath(dsn) {
		if _, err := filex.EnsureParentDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate state db: %w", err)
	}
	return db, nil
}

// isPlainPath reports whether dsn names a file rather than a URI or an
// in-memory database.
func isPlainPath(dsn string) bool {
	return dsn != "" && !strings.HasPrefix(dsn, "file:") && !strings.HasPrefix(dsn, ":memory:")
}
