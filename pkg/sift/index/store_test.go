package index

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/sift/pkg/sift/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func rec(path, hash, typ string, size int64) types.FileRecord {
	return types.FileRecord{Path: path, Hash: hash, Type: typ, Size: size}
}

func TestIsEmptyAndInitializeSchema(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	empty, err := s.IsEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, empty, "missing table counts as empty")

	require.NoError(t, s.InitializeSchema(ctx))
	require.NoError(t, s.InitializeSchema(ctx), "schema creation is idempotent")

	empty, err = s.IsEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)

	_, err = s.BulkCreate(ctx, []types.FileRecord{rec("/a", "h1", "ASCII text", 2)})
	require.NoError(t, err)

	empty, err = s.IsEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, empty)
}

func TestInitializeSchemaRejectsForeignTable(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.db.ExecContext(ctx, `CREATE TABLE file_hashes (id INTEGER PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)

	err = s.InitializeSchema(ctx)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestBulkCreate(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.InitializeSchema(ctx))

	records := []types.FileRecord{
		rec("/r/a.txt", "h-hi", "ASCII text", 2),
		rec("/r/b.txt", "h-hi", "ASCII text", 2),
		rec("/r/c.pdf", "h-pdf", "PDF document", 1024),
	}

	report, err := s.BulkCreate(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, ModeBootstrap, report.Mode)
	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, 2, report.Inserted)
	require.Len(t, report.Collisions, 1)
	assert.Equal(t, Collision{Hash: "h-hi", Path: "/r/b.txt", Existing: "/r/a.txt"}, report.Collisions[0])
	assert.True(t, errors.Is(report.Collisions[0].Err(), types.ErrUniqueness))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	entry, err := s.Lookup(ctx, "h-pdf")
	require.NoError(t, err)
	assert.Equal(t, "/r/c.pdf", entry.Filename)
	assert.Equal(t, "1024", entry.Filesize)
	assert.Equal(t, int64(1024), entry.Size())
	assert.Equal(t, rec("/r/c.pdf", "h-pdf", "PDF document", 1024), entry.Record())
}

func TestBulkCreateTwiceAddsNothing(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.InitializeSchema(ctx))

	records := []types.FileRecord{
		rec("/a", "h1", "ASCII text", 1),
		rec("/b", "h2", "ASCII text", 1),
	}

	_, err := s.BulkCreate(ctx, records)
	require.NoError(t, err)

	report, err := s.BulkCreate(ctx, records)
	require.NoError(t, err)
	assert.Zero(t, report.Inserted)
	assert.Len(t, report.Collisions, 2)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestIncrementalUpdate(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.InitializeSchema(ctx))

	_, err := s.BulkCreate(ctx, []types.FileRecord{rec("/old/a", "h1", "ASCII text", 1)})
	require.NoError(t, err)

	report, err := s.IncrementalUpdate(ctx, []types.FileRecord{
		rec("/new/a-copy", "h1", "ASCII text", 1),
		rec("/new/b", "h2", "PDF document", 9),
		rec("/new/b-copy", "h2", "PDF document", 9),
	})
	require.NoError(t, err)
	assert.Equal(t, ModeIncremental, report.Mode)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, []Collision{
		{Hash: "h1", Path: "/new/a-copy", Existing: "/old/a"},
		{Hash: "h2", Path: "/new/b-copy", Existing: "/new/b"},
	}, report.Collisions)

	entry, err := s.Lookup(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "/old/a", entry.Filename, "first writer wins")
}

func TestReconcileChoosesMode(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	report, err := s.Reconcile(ctx, []types.FileRecord{rec("/a", "h1", "data", 1)})
	require.NoError(t, err)
	assert.Equal(t, ModeBootstrap, report.Mode)

	report, err = s.Reconcile(ctx, []types.FileRecord{rec("/b", "h2", "data", 1)})
	require.NoError(t, err)
	assert.Equal(t, ModeIncremental, report.Mode)
	assert.Equal(t, 1, report.Inserted)
}

func TestQueryByTypeSubstring(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.InitializeSchema(ctx))

	_, err := s.BulkCreate(ctx, []types.FileRecord{
		rec("/z/report.pdf", "h1", "PDF document", 10),
		rec("/a/notes.txt", "h2", "ASCII text", 5),
		rec("/b/photo.jpg", "h3", "JPEG image data", 99),
		rec("/c/readme", "h4", "UTF-8 Unicode text", 7),
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		keyword string
		want    []string
	}{
		{"exact label", "PDF document", []string{"/z/report.pdf"}},
		{"substring anywhere", "text", []string{"/a/notes.txt", "/c/readme"}},
		{"case sensitive", "pdf", nil},
		{"no match", "Zip archive", nil},
		{"injection attempt is literal", "' OR 1=1 --", nil},
		{"like wildcard is literal", "%", nil},
		{"empty matches all", "", []string{"/a/notes.txt", "/b/photo.jpg", "/c/readme", "/z/report.pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := s.QueryByTypeSubstring(ctx, tt.keyword)
			require.NoError(t, err)

			var got []string
			for _, m := range matches {
				got = append(got, m.Filename)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupMissing(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.InitializeSchema(ctx))

	_, err := s.Lookup(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestForgetAndRelocate(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.InitializeSchema(ctx))

	_, err := s.BulkCreate(ctx, []types.FileRecord{
		rec("/a", "h1", "data", 1),
		rec("/b", "h2", "data", 1),
		rec("/c", "h3", "data", 1),
	})
	require.NoError(t, err)

	removed, err := s.ForgetPaths(ctx, []string{"/a", "/missing"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	require.NoError(t, s.RelocatePath(ctx, "/b", "/moved/b"))
	require.NoError(t, s.RelocatePath(ctx, "/not-indexed", "/x"))

	entry, err := s.Lookup(ctx, "h2")
	require.NoError(t, err)
	assert.Equal(t, "/moved/b", entry.Filename)

	_, err = s.Lookup(ctx, "h1")
	assert.ErrorIs(t, err, ErrNotFound)

	removed, err = s.ForgetPaths(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "index.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = s.Reconcile(ctx, []types.FileRecord{rec("/a", "h1", "data", 3)})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCloseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Count(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.BulkCreate(ctx, nil)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	assert.Error(t, err)
}
