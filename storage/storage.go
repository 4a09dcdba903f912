// Package storage persists the materialized swap lifecycle model in a
// PebbleDB key-value store. All mutation happens through a Tx, which wraps
// an indexed pebble batch: writes become visible to reads inside the same
// Tx and are committed atomically, giving one storage transaction per
// block.
package storage

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("storage: not found")

	// ErrCursorConflict is returned when the cursor compare-and-set fails,
	// which means another writer has advanced the cursor. The caller must
	// treat this as fatal.
	ErrCursorConflict = errors.New("storage: cursor conflict")
)

// Config holds store configuration.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// Cache size in MB.
	Cache int

	// InMemory backs the store with an in-memory filesystem (tests).
	InMemory bool
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig(path string) *Config {
	return &Config{Path: path, Cache: 128}
}

// Store is the PebbleDB-backed store for the swap lifecycle model.
type Store struct {
	db     *pebble.DB
	logger *zap.Logger
}

// Open opens (or creates) the store.
func Open(cfg *Config, logger *zap.Logger) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := &pebble.Options{
		Cache:                    pebble.NewCache(int64(cfg.Cache) << 20),
		MaxConcurrentCompactions: func() int { return 1 },
	}
	if cfg.InMemory {
		opts.FS = vfs.NewMem()
	}

	db, err := pebble.Open(cfg.Path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble database: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// OpenMemory opens an in-memory store for tests.
func OpenMemory() (*Store, error) {
	return Open(&Config{Path: "mem", Cache: 8, InMemory: true}, zap.NewNop())
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Begin starts a new storage transaction. The caller must either Commit or
// Discard it.
func (s *Store) Begin() *Tx {
	return &Tx{store: s, batch: s.db.NewIndexedBatch()}
}

// View runs fn inside a read-only transaction that is always discarded.
func (s *Store) View(fn func(*Tx) error) error {
	tx := s.Begin()
	defer tx.Discard()
	return fn(tx)
}

// Update runs fn inside a transaction and commits it when fn succeeds.
func (s *Store) Update(fn func(*Tx) error) error {
	tx := s.Begin()
	if err := fn(tx); err != nil {
		tx.Discard()
		return err
	}
	return tx.Commit()
}
