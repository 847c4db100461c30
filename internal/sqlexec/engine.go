package sqlexec

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// Engine evaluates sales views with SQLite.
type Engine struct {
	db *sql.DB
}

// Open creates or opens the database at dsn and applies the schema.
// Use MemoryDSN for a scratch database that vanishes on Close.
func Open(dsn string) (*Engine, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Every :memory: connection is a distinct database, so keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Engine{db: db}, nil
}

// Close closes the database connection.
func (e *Engine) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}

// Query executes a query against the loaded batch.
// Callers are responsible for closing the returned rows.
func (e *Engine) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return e.db.QueryContext(ctx, query, args...)
}

// applyPragmas configures the scratch database. Durability is irrelevant:
// the table is rebuilt from the input file on every run.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA synchronous = OFF",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA case_sensitive_like = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// pragma returns the current value of a pragma. Used for testing.
func (e *Engine) pragma(name string) (string, error) {
	var value string
	if err := e.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return "", fmt.Errorf("failed to query %s: %w", name, err)
	}
	return value, nil
}
