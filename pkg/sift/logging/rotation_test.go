package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotationBySize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sift.log")

	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 64})
	require.NoError(t, err)
	defer w.Close()

	line := []byte(strings.Repeat("x", 40) + "\n")
	for range 3 {
		_, err := w.Write(line)
		require.NoError(t, err)
		// Distinct rotation stamps need distinct seconds.
		time.Sleep(1100 * time.Millisecond)
	}

	assert.GreaterOrEqual(t, len(w.rotated()), 1)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.LessOrEqual(t, info.Size(), int64(64))
}

func TestRotationMaxBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sift.log")

	for i := range 4 {
		stale := filepath.Join(dir, "sift.2024010"+string(rune('1'+i))+"T000000.log")
		require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
		mod := time.Now().Add(-time.Duration(i+1) * time.Hour)
		require.NoError(t, os.Chtimes(stale, mod, mod))
	}

	w, err := NewRotatingWriter(path, RotationConfig{MaxBackups: 2})
	require.NoError(t, err)
	defer w.Close()

	assert.Len(t, w.rotated(), 2)
}

func TestRotationMaxAge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sift.log")

	old := filepath.Join(dir, "sift.20200101T000000.log")
	require.NoError(t, os.WriteFile(old, []byte("old"), 0o644))
	past := time.Now().AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(old, past, past))

	fresh := filepath.Join(dir, "sift.20990101T000000.log")
	require.NoError(t, os.WriteFile(fresh, []byte("new"), 0o644))

	w, err := NewRotatingWriter(path, RotationConfig{MaxAge: 7})
	require.NoError(t, err)
	defer w.Close()

	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err), "file older than MaxAge should be removed")
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestRotatingWriterCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "sift.log")

	w, err := NewRotatingWriter(path, RotationConfig{})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRotatingWriterCloseTwice(t *testing.T) {
	w, err := NewRotatingWriter(filepath.Join(t.TempDir(), "sift.log"), RotationConfig{})
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("late"))
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestRotatingWriterConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sift.log")
	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 1 << 20})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				if _, err := w.Write([]byte("line\n")); err != nil {
					t.Errorf("Write() error = %v", err)
				}
			}
		}()
	}
	wg.Wait()
	require.NoError(t, w.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 500, strings.Count(string(content), "line\n"))
}

func TestDueDaily(t *testing.T) {
	w := &RotatingWriter{cfg: RotationConfig{MaxSize: 1 << 20, Daily: true}}
	now := time.Now()

	w.openedOn = now
	assert.False(t, w.due(10, now))

	w.openedOn = now.AddDate(0, 0, -1)
	assert.True(t, w.due(10, now))

	w.cfg.Daily = false
	assert.False(t, w.due(10, now))
}
