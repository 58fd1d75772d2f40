package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const entityCollectionsSchema = `CREATE TABLE IF NOT EXISTS entity_collections (
	name TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLBackend stores each collection as one row of entity_collections. It
// works against PostgreSQL and SQLite.
type SQLBackend struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLBackend constructs a backend over an open database handle.
func NewSQLBackend(db *sqlx.DB) *SQLBackend {
	return &SQLBackend{db: db, now: time.Now}
}

// EnsureSchema creates the collections table when missing.
func (b *SQLBackend) EnsureSchema(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, entityCollectionsSchema); err != nil {
		return fmt.Errorf("create entity_collections: %w", err)
	}
	return nil
}

// Get loads the payload stored for key.
func (b *SQLBackend) Get(ctx context.Context, key string) ([]byte, error) {
	query := b.db.Rebind(`SELECT payload FROM entity_collections WHERE name = ?`)
	var payload string
	if err := b.db.GetContext(ctx, &payload, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("select collection %s: %w", key, err)
	}
	return []byte(payload), nil
}

// Apply upserts and deletes the batch inside one database transaction.
func (b *SQLBackend) Apply(ctx context.Context, batch Batch) (err error) {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin collections transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	upsert := tx.Rebind(`INSERT INTO entity_collections (name, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT (name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`)
	now := b.now().UTC()
	for _, key := range batch.Keys() {
		if _, err = tx.ExecContext(ctx, upsert, key, string(batch.Puts[key]), now); err != nil {
			return fmt.Errorf("upsert collection %s: %w", key, err)
		}
	}

	remove := tx.Rebind(`DELETE FROM entity_collections WHERE name = ?`)
	for _, key := range batch.Deletes {
		if _, err = tx.ExecContext(ctx, remove, key); err != nil {
			return fmt.Errorf("delete collection %s: %w", key, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit collections transaction: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (b *SQLBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

// Close closes the database handle.
func (b *SQLBackend) Close() error {
	return b.db.Close()
}
