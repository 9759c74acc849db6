package manifest

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned by Get for an unknown ID.
var ErrNotFound = errors.New("manifest entry not found")

// Manifest stores entries as JSON files in one directory.
type Manifest struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// New returns a Manifest rooted at dir. The directory is created lazily.
func New(dir string) (*Manifest, error) {
	if dir == "" {
		return nil, errors.New("manifest directory cannot be empty")
	}
	return &Manifest{dir: dir, now: time.Now}, nil
}

// Dir returns the manifest directory.
func (m *Manifest) Dir() string {
	return m.dir
}

// EnsureDir creates the manifest directory.
func (m *Manifest) EnsureDir() error {
	return os.MkdirAll(m.dir, 0o755)
}

// LogIndex records an index batch for root.
func (m *Manifest) LogIndex(root string, files []FileRecord) (*Entry, error) {
	return m.Log(OpIndex, root, files)
}

// LogMove records a category move.
func (m *Manifest) LogMove(keyword string, files []FileRecord) (*Entry, error) {
	return m.Log(OpMove, keyword, files)
}

// LogDelete records a category delete.
func (m *Manifest) LogDelete(keyword string, files []FileRecord) (*Entry, error) {
	return m.Log(OpDelete, keyword, files)
}

// Log writes one entry and returns it.
func (m *Manifest) Log(op Operation, label string, files []FileRecord) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if files == nil {
		files = []FileRecord{}
	}
	now := m.now().UTC()
	entry := &Entry{
		ID:        newID(op, now),
		Timestamp: now,
		Operation: op,
		Label:     label,
		Files:     files,
		Summary:   summarize(files),
	}

	if err := m.write(entry); err != nil {
		return nil, fmt.Errorf("failed to write manifest entry: %w", err)
	}
	return entry, nil
}

func (m *Manifest) write(entry *Entry) error {
	if err := m.EnsureDir(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	tmp, err := os.CreateTemp(m.dir, ".entry-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, filepath.Join(m.dir, entry.ID+".json")); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// List returns entries newest first. limit <= 0 returns all of them.
// Unreadable entry files are skipped.
func (m *Manifest) List(limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get returns the entry with the given ID.
func (m *Manifest) Get(id string) (*Entry, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("invalid entry ID %q", id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, err := m.readFile(filepath.Join(m.dir, id+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Cleanup removes entries older than retentionDays and returns how many
// were removed. retentionDays <= 0 keeps everything.
func (m *Manifest) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().AddDate(0, 0, -retentionDays)
	entries, err := m.readAll()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if !e.Timestamp.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(m.dir, e.ID+".json")); err == nil {
			removed++
		}
	}
	return removed, nil
}

func (m *Manifest) readAll() ([]Entry, error) {
	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read manifest directory: %w", err)
	}

	entries := []Entry{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		entry, err := m.readFile(filepath.Join(m.dir, f.Name()))
		if err != nil {
			continue
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

func (m *Manifest) readFile(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return &entry, nil
}

// newID returns an ID like "move-2026-01-02T15-04-05-1a2b3c4d5e6f".
func newID(op Operation, ts time.Time) string {
	suffix := make([]byte, 6)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("%s-%s-%s", op, ts.Format("2006-01-02T15-04-05"), hex.EncodeToString(suffix))
}
