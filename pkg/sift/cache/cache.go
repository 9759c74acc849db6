package cache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jamesainslie/sift/pkg/sift/logging"
)

// Cache serves digests for one algorithm and buffers new ones until Flush.
// Lookup and Record are safe for concurrent use.
type Cache struct {
	store     *Store
	algorithm string
	logger    *logging.Logger

	mu      sync.Mutex
	pending map[string]*Entry
}

// Open opens the cache stored in dir for the given digest algorithm.
func Open(dir, algorithm string) (*Cache, error) {
	store, err := OpenStore(dir)
	if err != nil {
		return nil, err
	}

	return &Cache{
		store:     store,
		algorithm: algorithm,
		logger:    logging.Get("cache"),
		pending:   make(map[string]*Entry),
	}, nil
}

// Lookup returns the cached entry for path if it still matches size and
// mtime (UnixNano).
func (c *Cache) Lookup(path string, size, mtime int64) (*Entry, bool) {
	entry, err := c.store.Get(MakeKey(c.algorithm, path))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Debug("cache read failed", "path", path, "error", err)
		}
		return nil, false
	}
	if !entry.Matches(size, mtime) {
		return nil, false
	}
	return entry, true
}

// Record buffers a freshly computed entry for path.
func (c *Cache) Record(path string, size, mtime int64, hash, label string) {
	c.mu.Lock()
	c.pending[path] = &Entry{
		Version: Version,
		Size:    size,
		Mtime:   mtime,
		Hash:    hash,
		Type:    label,
	}
	c.mu.Unlock()
}

// Flush writes buffered entries in one batch and returns how many.
func (c *Cache) Flush() (int, error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[string]*Entry)
	c.mu.Unlock()

	if len(pending) == 0 {
		return 0, nil
	}

	err := c.store.PutBatch(pending, func(path string) []byte {
		return MakeKey(c.algorithm, path)
	})
	if err != nil {
		return 0, fmt.Errorf("writing cache batch: %w", err)
	}

	c.logger.Debug("cache flushed", "entries", len(pending))
	return len(pending), nil
}

// Forget drops the entry for path, e.g. after the file was moved or deleted.
func (c *Cache) Forget(path string) error {
	return c.store.Delete(MakeKey(c.algorithm, path))
}

// Clear removes every entry for this cache's algorithm.
func (c *Cache) Clear() (int, error) {
	return c.store.DeletePrefix(MakeKeyPrefix(c.algorithm))
}

// Len returns the number of stored entries for this cache's algorithm.
func (c *Cache) Len() (int, error) {
	return c.store.Count(MakeKeyPrefix(c.algorithm))
}

// Close flushes pending entries and closes the store.
func (c *Cache) Close() error {
	_, flushErr := c.Flush()
	closeErr := c.store.Close()
	return errors.Join(flushErr, closeErr)
}
