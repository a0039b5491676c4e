package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteBackend stores documents as JSON in a single SQLite table.
type SQLiteBackend struct {
	db  *sql.DB
	now func() time.Time
}

// SQLiteOption configures a SQLiteBackend.
type SQLiteOption func(*SQLiteBackend)

// WithClock sets the source of ingestion timestamps.
func WithClock(now func() time.Time) SQLiteOption {
	return func(b *SQLiteBackend) {
		b.now = now
	}
}

// OpenSQLite opens or creates a SQLite document database at path.
func OpenSQLite(path string, opts ...SQLiteOption) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			key TEXT NOT NULL,
			data TEXT NOT NULL,
			ingested_at TEXT NOT NULL,
			PRIMARY KEY (collection, key)
		);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	b := &SQLiteBackend{db: db, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func (b *SQLiteBackend) Exists(ctx context.Context, collection, key string) (bool, error) {
	var n int
	err := b.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = ? AND key = ?`,
		collection, key).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b *SQLiteBackend) Get(ctx context.Context, collection, key string) (Document, error) {
	var data, stamp string
	err := b.db.QueryRowContext(ctx,
		`SELECT data, ingested_at FROM documents WHERE collection = ? AND key = ?`,
		collection, key).Scan(&data, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	if doc == nil {
		doc = Document{}
	}
	t, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return nil, fmt.Errorf("parsing ingested_at: %w", err)
	}
	doc[FieldIngestedAt] = t
	return doc, nil
}

func (b *SQLiteBackend) Put(ctx context.Context, collection, key string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	stamp := b.now().UTC().Format(time.RFC3339Nano)
	_, err = b.db.ExecContext(ctx, `
		INSERT INTO documents (collection, key, data, ingested_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, key) DO UPDATE SET
			data = excluded.data,
			ingested_at = excluded.ingested_at`,
		collection, key, string(data), stamp)
	return err
}

func (b *SQLiteBackend) Delete(ctx context.Context, collection, key string) (bool, error) {
	res, err := b.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND key = ?`, collection, key)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateField rewrites the stored JSON with one field changed. The ingestion
// timestamp is left as it was.
func (b *SQLiteBackend) UpdateField(ctx context.Context, collection, key, field string, value any) (bool, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND key = ?`,
		collection, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return false, fmt.Errorf("decoding document: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	doc[field] = value
	updated, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("encoding document: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET data = ? WHERE collection = ? AND key = ?`,
		string(updated), collection, key); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing: %w", err)
	}
	return true, nil
}
