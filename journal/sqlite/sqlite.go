// Package sqlite provides a durable journal backend on SQLite.
//
// It is registered under the name "sqlite"; the DSN is the database
// path (":memory:" works for throwaway databases). WAL mode keeps reads
// concurrent with the single writer, which matches the engine's own
// single-writer design.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/scalaz/scalaz-actors/journal"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (events table keyed by entity_id, seq)
const currentSchemaVersion = 1

func init() {
	journal.Register("sqlite", func(dsn string) (journal.Journal, error) {
		return Open(dsn)
	})
}

// Journal stores event payloads in a SQLite database.
type Journal struct {
	db *sql.DB
}

// Open creates or opens a SQLite journal at the given path.
// Applies required pragmas and the schema automatically; safe to call
// on an existing database.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (durable at WAL checkpoint granularity)
//   - 5-second busy timeout for lock contention
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY between the append transaction and replay reads.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Append durably persists one payload for the entity.
//
// The next per-entity sequence number is allocated and the row inserted
// inside a single transaction, so an append is atomic: either the event
// is on disk with the next seq, or nothing changed.
func (j *Journal) Append(ctx context.Context, entity journal.EntityID, payload []byte) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append event: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var nextSeq int64
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM events WHERE entity_id = ?
	`, string(entity)).Scan(&nextSeq)
	if err != nil {
		return fmt.Errorf("append event: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO events (entity_id, seq, payload) VALUES (?, ?, ?)
	`, string(entity), nextSeq, payload)
	if err != nil {
		return fmt.Errorf("append event: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append event: commit: %w", err)
	}
	return nil
}

// ReadAll returns the entity's payloads ordered by sequence number.
// Returns an empty slice (not nil) when the entity has no history.
func (j *Journal) ReadAll(ctx context.Context, entity journal.EntityID) ([][]byte, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT payload FROM events
		WHERE entity_id = ?
		ORDER BY seq ASC
	`, string(entity))
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	defer rows.Close()

	payloads := [][]byte{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		payloads = append(payloads, payload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return payloads, nil
}

// Len reports how many events the entity's stream holds.
func (j *Journal) Len(ctx context.Context, entity journal.EntityID) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM events WHERE entity_id = ?
	`, string(entity)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and records the schema
// version. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}
