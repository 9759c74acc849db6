package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyRoundTrip(t *testing.T) {
	key := MakeKey("sha512", "/data/a.txt")
	alg, path := ParseKey(key)
	assert.Equal(t, "sha512", alg)
	assert.Equal(t, "/data/a.txt", path)

	alg, path = ParseKey([]byte("noseparator"))
	assert.Equal(t, "noseparator", alg)
	assert.Empty(t, path)
}

func TestEntryMatches(t *testing.T) {
	e := &Entry{Version: Version, Size: 10, Mtime: 42}
	assert.True(t, e.Matches(10, 42))
	assert.False(t, e.Matches(11, 42))
	assert.False(t, e.Matches(10, 43))

	old := &Entry{Version: Version - 1, Size: 10, Mtime: 42}
	assert.False(t, old.Matches(10, 42))
}

func TestCacheRecordFlushLookup(t *testing.T) {
	c, err := Open(t.TempDir(), "sha512")
	require.NoError(t, err)
	defer c.Close()

	mtime := time.Now().UnixNano()
	c.Record("/data/a.txt", 2, mtime, "abc", "ASCII text")

	_, ok := c.Lookup("/data/a.txt", 2, mtime)
	assert.False(t, ok, "entries are not visible before Flush")

	n, err := c.Flush()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entry, ok := c.Lookup("/data/a.txt", 2, mtime)
	require.True(t, ok)
	assert.Equal(t, "abc", entry.Hash)
	assert.Equal(t, "ASCII text", entry.Type)

	_, ok = c.Lookup("/data/a.txt", 3, mtime)
	assert.False(t, ok, "size change invalidates")

	_, ok = c.Lookup("/data/a.txt", 2, mtime+1)
	assert.False(t, ok, "mtime change invalidates")
}

func TestCacheAlgorithmsAreSeparate(t *testing.T) {
	dir := t.TempDir()

	c, err := Open(dir, "sha512")
	require.NoError(t, err)
	c.Record("/a", 1, 1, "h512", "data")
	require.NoError(t, c.Close())

	c, err = Open(dir, "sha256")
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Lookup("/a", 1, 1)
	assert.False(t, ok)
}

func TestCacheForgetAndClear(t *testing.T) {
	c, err := Open(t.TempDir(), "sha512")
	require.NoError(t, err)
	defer c.Close()

	c.Record("/a", 1, 1, "h1", "data")
	c.Record("/b", 1, 1, "h2", "data")
	c.Record("/c", 1, 1, "h3", "data")
	_, err = c.Flush()
	require.NoError(t, err)

	n, err := c.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, c.Forget("/a"))
	_, ok := c.Lookup("/a", 1, 1)
	assert.False(t, ok)

	removed, err := c.Clear()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	n, err = c.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFlushEmpty(t *testing.T) {
	c, err := Open(t.TempDir(), "sha512")
	require.NoError(t, err)
	defer c.Close()

	n, err := c.Flush()
	require.NoError(t, err)
	assert.Zero(t, n)
}
