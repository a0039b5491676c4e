// Package docstore persists documents by key within named collections.
//
// A Store wraps a Backend (SQLite or MongoDB) with upsert semantics: writes
// are skipped for existing keys unless override is set, every write stamps
// the document with an ingestion timestamp, and reads of missing keys are
// not errors.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// FieldIngestedAt is the document field holding the write timestamp.
const FieldIngestedAt = "ingested_at"

// ErrNotFound is returned by a Backend when a key does not exist.
var ErrNotFound = errors.New("document not found")

// ErrProtectedField is returned when updating a field the store manages.
var ErrProtectedField = errors.New("field cannot be updated")

// Document is a schemaless record.
type Document map[string]any

// IngestedAt returns the document's write timestamp, if present.
func (d Document) IngestedAt() (time.Time, bool) {
	t, ok := d[FieldIngestedAt].(time.Time)
	return t, ok
}

// Backend is a key-value document database.
type Backend interface {
	Exists(ctx context.Context, collection, key string) (bool, error)
	// Get returns ErrNotFound for a missing key.
	Get(ctx context.Context, collection, key string) (Document, error)
	// Put fully replaces the document at key and assigns its ingestion timestamp.
	Put(ctx context.Context, collection, key string, doc Document) error
	Delete(ctx context.Context, collection, key string) (bool, error)
	// UpdateField sets one field of an existing document and reports whether
	// the key existed. It never creates a document.
	UpdateField(ctx context.Context, collection, key, field string, value any) (bool, error)
	Close() error
}

// WriteAction describes what Write did.
type WriteAction int

const (
	Skipped WriteAction = iota
	Created
	Replaced
)

func (a WriteAction) String() string {
	switch a {
	case Skipped:
		return "skipped"
	case Created:
		return "created"
	case Replaced:
		return "replaced"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Store applies upsert semantics over a Backend.
type Store struct {
	backend   Backend
	logger    *slog.Logger
	protected map[string]bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for store operations.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProtectedFields adds fields that UpdateField refuses to change.
func WithProtectedFields(fields ...string) Option {
	return func(s *Store) {
		for _, f := range fields {
			s.protected[f] = true
		}
	}
}

// New creates a Store over backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		logger:    slog.New(slog.DiscardHandler),
		protected: map[string]bool{FieldIngestedAt: true},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Exists reports whether key is present in collection.
func (s *Store) Exists(ctx context.Context, collection, key string) (bool, error) {
	ok, err := s.backend.Exists(ctx, collection, key)
	if err != nil {
		return false, fmt.Errorf("checking %s/%s: %w", collection, key, err)
	}
	return ok, nil
}

// Write stores doc at key. An existing document is left untouched unless
// override is set, in which case it is fully replaced.
func (s *Store) Write(ctx context.Context, collection, key string, doc Document, override bool) (WriteAction, error) {
	exists, err := s.Exists(ctx, collection, key)
	if err != nil {
		return Skipped, err
	}
	if exists && !override {
		s.logger.Info("document already exists, skipping", "collection", collection, "key", key)
		return Skipped, nil
	}

	clean := make(Document, len(doc))
	for k, v := range doc {
		if k == FieldIngestedAt {
			continue
		}
		clean[k] = v
	}
	if err := s.backend.Put(ctx, collection, key, clean); err != nil {
		return Skipped, fmt.Errorf("writing %s/%s: %w", collection, key, err)
	}

	action := Created
	if exists {
		action = Replaced
	}
	s.logger.Info("document written", "collection", collection, "key", key, "action", action.String())
	return action, nil
}

// Read returns the document at key. A missing key yields (nil, false, nil).
func (s *Store) Read(ctx context.Context, collection, key string) (Document, bool, error) {
	doc, err := s.backend.Get(ctx, collection, key)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s/%s: %w", collection, key, err)
	}
	return doc, true, nil
}

// Delete removes the document at key, reporting whether one was removed.
// Backend failures are logged and reported as false.
func (s *Store) Delete(ctx context.Context, collection, key string) bool {
	ok, err := s.backend.Delete(ctx, collection, key)
	if err != nil {
		s.logger.Error("delete failed", "collection", collection, "key", key, "error", err)
		return false
	}
	return ok
}

// UpdateField sets field on an existing document. A missing key yields
// (false, nil) and creates nothing.
func (s *Store) UpdateField(ctx context.Context, collection, key, field string, value any) (bool, error) {
	if field == "" {
		return false, fmt.Errorf("%w: empty field name", ErrProtectedField)
	}
	if s.protected[field] {
		return false, fmt.Errorf("%w: %s", ErrProtectedField, field)
	}
	ok, err := s.backend.UpdateField(ctx, collection, key, field, value)
	if err != nil {
		s.logger.Error("update failed", "collection", collection, "key", key, "field", field, "error", err)
		return false, fmt.Errorf("updating %s/%s: %w", collection, key, err)
	}
	return ok, nil
}
