// Package index persists the content-hash index: one row per distinct
// digest, pointing at a representative file. The first file seen with a
// hash wins; later files with the same hash are reported, not stored.
//
// The store is a single SQLite file with the table
//
//	file_hashes(filehash TEXT PRIMARY KEY, filename TEXT, filetype TEXT, filesize TEXT)
//
// All access goes through one connection, and each batch write is one
// transaction, so a committed batch is durable and a failed one leaves no
// partial rows.
package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/jamesainslie/sift/pkg/sift/logging"
)

// Errors returned by the store.
var (
	ErrClosed   = errors.New("index is closed")
	ErrNotFound = errors.New("hash not indexed")
	ErrSchema   = errors.New("incompatible file_hashes schema")
)

// Config configures how the database is opened.
type Config struct {
	// Path is the database file. Parent directories are created.
	Path string

	// BusyTimeout is how long a statement waits on a locked database.
	// Zero uses 5s.
	BusyTimeout time.Duration
}

// Store is the persisted index. Methods are safe for concurrent use; the
// single underlying connection serializes them.
type Store struct {
	db     *sqlx.DB
	path   string
	logger *logging.Logger

	mu     sync.Mutex
	closed bool
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	return OpenWithConfig(ctx, Config{Path: path})
}

// OpenWithConfig opens or creates the database described by cfg. The
// schema is not created; call InitializeSchema.
func OpenWithConfig(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("index path required")
	}
	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve index path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	busy := int(cfg.BusyTimeout / time.Millisecond)
	if busy <= 0 {
		busy = 5000
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", abs, busy)

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping index: %w", err)
	}

	return &Store{
		db:     db,
		path:   abs,
		logger: logging.Get("index"),
	}, nil
}

// Path returns the absolute database path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database. Committed writes are already durable.
// Calling Close more than once is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	return nil
}

func (s *Store) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
