package category

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/sift/pkg/sift/index"
	"github.com/jamesainslie/sift/pkg/sift/types"
)

// fakeIndex answers queries from a fixed row set and records sync calls.
type fakeIndex struct {
	rows      []index.Match
	err       error
	forgotten []string
	relocated map[string]string
}

func (f *fakeIndex) QueryByTypeSubstring(_ context.Context, keyword string) ([]index.Match, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []index.Match
	for _, r := range f.rows {
		if strings.Contains(r.Filetype, keyword) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeIndex) ForgetPaths(_ context.Context, paths []string) (int64, error) {
	f.forgotten = append(f.forgotten, paths...)
	return int64(len(paths)), nil
}

func (f *fakeIndex) RelocatePath(_ context.Context, from, to string) error {
	if f.relocated == nil {
		f.relocated = make(map[string]string)
	}
	f.relocated[from] = to
	return nil
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func row(path, typ string) index.Match {
	return index.Match{Hash: path, Filename: path, Filetype: typ, Filesize: "1"}
}

func TestMoveRenamesSameBaseName(t *testing.T) {
	base := t.TempDir()
	src := t.TempDir()
	a := writeFile(t, filepath.Join(src, "one", "report.pdf"), "first")
	b := writeFile(t, filepath.Join(src, "two", "report.pdf"), "second")
	c := writeFile(t, filepath.Join(src, "notes.pdf"), "third")

	idx := &fakeIndex{rows: []index.Match{row(a, "PDF document"), row(b, "PDF document"), row(c, "PDF document")}}
	eng := New(idx, Options{Mode: ModeMove, Gate: ApproveAll})

	reports, err := eng.Apply(context.Background(), base, Map{{Keyword: "PDF", Destination: "Documents"}})
	require.NoError(t, err)
	require.Len(t, reports, 1)

	r := reports[0]
	require.NoError(t, r.Err)
	assert.True(t, r.Approved)
	assert.Equal(t, 3, r.Attempted())
	assert.Equal(t, 3, r.Succeeded())

	entries, err := os.ReadDir(filepath.Join(base, "Documents"))
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	renamed := regexp.MustCompile(`^report-[0-9a-f-]{36}\.pdf$`)
	var plain, suffixed int
	contents := map[string]bool{}
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(base, "Documents", e.Name()))
		require.NoError(t, err)
		contents[string(data)] = true
		switch {
		case e.Name() == "report.pdf":
			plain++
		case renamed.MatchString(e.Name()):
			suffixed++
		}
	}
	assert.Equal(t, 1, plain)
	assert.Equal(t, 1, suffixed)
	assert.Equal(t, map[string]bool{"first": true, "second": true, "third": true}, contents)

	for _, p := range []string{a, b, c} {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err), "source %s should be gone", p)
	}
}

func TestMoveAbortsWhenDestinationExists(t *testing.T) {
	base := t.TempDir()
	src := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "Images"), 0o755))
	img := writeFile(t, filepath.Join(src, "cat.png"), "png")
	txt := writeFile(t, filepath.Join(src, "a.txt"), "text")

	idx := &fakeIndex{rows: []index.Match{row(img, "PNG image data"), row(txt, "ASCII text")}}
	eng := New(idx, Options{Mode: ModeMove, Gate: ApproveAll})

	reports, err := eng.Apply(context.Background(), base, Map{
		{Keyword: "image", Destination: "Images"},
		{Keyword: "text", Destination: "Text"},
	})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.True(t, errors.Is(reports[0].Err, types.ErrDestinationExists))
	assert.Equal(t, 0, reports[0].Attempted())
	_, err = os.Stat(img)
	assert.NoError(t, err, "file must stay when the rule aborts")

	require.NoError(t, reports[1].Err)
	assert.Equal(t, 1, reports[1].Succeeded())
	_, err = os.Stat(filepath.Join(base, "Text", "a.txt"))
	assert.NoError(t, err)
}

func TestDeniedPlanHasNoSideEffects(t *testing.T) {
	base := t.TempDir()
	f := writeFile(t, filepath.Join(t.TempDir(), "a.txt"), "x")

	idx := &fakeIndex{rows: []index.Match{row(f, "ASCII text"), row("/other.txt", "UTF-8 Unicode text")}}

	for _, mode := range []Mode{ModeMove, ModeDelete} {
		eng := New(idx, Options{Mode: mode, Gate: DenyAll, Sync: idx})
		reports, err := eng.Apply(context.Background(), base, Map{{Keyword: "text", Destination: "Text"}})
		require.NoError(t, err)
		require.Len(t, reports, 1)

		r := reports[0]
		assert.False(t, r.Approved)
		assert.Empty(t, r.Outcomes)
		assert.Equal(t, []string{f, "/other.txt"}, r.Plan.Paths)
		assert.Equal(t, []string{"ASCII text", "UTF-8 Unicode text"}, r.Plan.Types)
	}

	_, err := os.Stat(f)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(base, "Text"))
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, idx.forgotten)
	assert.Empty(t, idx.relocated)
}

func TestNilGateDenies(t *testing.T) {
	f := writeFile(t, filepath.Join(t.TempDir(), "a.txt"), "x")
	idx := &fakeIndex{rows: []index.Match{row(f, "ASCII text")}}

	reports, err := New(idx, Options{Mode: ModeDelete}).Apply(context.Background(), "", Map{{Keyword: "text"}})
	require.NoError(t, err)
	assert.False(t, reports[0].Approved)

	_, err = os.Stat(f)
	assert.NoError(t, err)
}

func TestGateSeesPlan(t *testing.T) {
	f := writeFile(t, filepath.Join(t.TempDir(), "a.txt"), "x")
	idx := &fakeIndex{rows: []index.Match{row(f, "ASCII text")}}

	var seen []Plan
	gate := GateFunc(func(p Plan) (bool, error) {
		seen = append(seen, p)
		return false, nil
	})

	_, err := New(idx, Options{Mode: ModeDelete, Gate: gate}).Apply(context.Background(), "", Map{{Keyword: "ASCII"}})
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, "ASCII", seen[0].Rule.Keyword)
	assert.Equal(t, ModeDelete, seen[0].Mode)
	assert.Equal(t, []string{f}, seen[0].Paths)
}

func TestGateErrorFailsRuleOnly(t *testing.T) {
	f := writeFile(t, filepath.Join(t.TempDir(), "a.txt"), "x")
	idx := &fakeIndex{rows: []index.Match{row(f, "ASCII text")}}
	boom := errors.New("no tty")

	gate := GateFunc(func(Plan) (bool, error) { return false, boom })
	reports, err := New(idx, Options{Mode: ModeDelete, Gate: gate}).Apply(context.Background(), "", Map{{Keyword: "a"}, {Keyword: "b"}})
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.ErrorIs(t, reports[0].Err, boom)
	assert.ErrorIs(t, reports[1].Err, boom)
}

func TestDeleteContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.log"), "a")
	gone := filepath.Join(dir, "vanished.log")
	c := writeFile(t, filepath.Join(dir, "c.log"), "c")

	idx := &fakeIndex{rows: []index.Match{row(a, "ASCII text"), row(gone, "ASCII text"), row(c, "ASCII text")}}
	eng := New(idx, Options{Mode: ModeDelete, Gate: ApproveAll, Sync: idx})

	reports, err := eng.Apply(context.Background(), "", Map{{Keyword: "ASCII"}})
	require.NoError(t, err)

	r := reports[0]
	assert.Equal(t, 3, r.Attempted())
	assert.Equal(t, 2, r.Succeeded())
	assert.Equal(t, 1, r.Failed())
	assert.True(t, r.Outcomes[1].Failed())
	assert.ErrorIs(t, r.Outcomes[1].Err, types.ErrIO)

	for _, p := range []string{a, c} {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err))
	}
	assert.Equal(t, []string{a, c}, idx.forgotten)
}

func TestMoveSyncRelocates(t *testing.T) {
	base := t.TempDir()
	f := writeFile(t, filepath.Join(t.TempDir(), "song.mp3"), "id3")
	idx := &fakeIndex{rows: []index.Match{row(f, "Audio file with ID3")}}

	reports, err := New(idx, Options{Mode: ModeMove, Gate: ApproveAll, Sync: idx}).
		Apply(context.Background(), base, Map{{Keyword: "Audio", Destination: "Music"}})
	require.NoError(t, err)
	require.NoError(t, reports[0].SyncErr)
	assert.Equal(t, map[string]string{f: filepath.Join(base, "Music", "song.mp3")}, idx.relocated)
}

func TestQueryErrorFailsRuleOnly(t *testing.T) {
	idx := &fakeIndex{err: index.ErrClosed}
	reports, err := New(idx, Options{Mode: ModeDelete, Gate: ApproveAll}).Apply(context.Background(), "", Map{{Keyword: "x"}})
	require.NoError(t, err)
	assert.ErrorIs(t, reports[0].Err, index.ErrClosed)
}

func TestStructuralErrors(t *testing.T) {
	file := writeFile(t, filepath.Join(t.TempDir(), "plain"), "x")
	dir := t.TempDir()

	tests := []struct {
		name string
		mode Mode
		base string
		m    Map
		want error
	}{
		{name: "empty map", mode: ModeDelete, m: Map{}, want: types.ErrConfig},
		{name: "empty keyword", mode: ModeDelete, m: Map{{Keyword: " "}}, want: types.ErrConfig},
		{name: "base missing", mode: ModeMove, base: filepath.Join(dir, "nope"), m: Map{{Keyword: "a", Destination: "A"}}, want: types.ErrNotADirectory},
		{name: "base is file", mode: ModeMove, base: file, m: Map{{Keyword: "a", Destination: "A"}}, want: types.ErrNotADirectory},
		{name: "empty destination", mode: ModeMove, base: dir, m: Map{{Keyword: "a"}}, want: types.ErrConfig},
		{name: "absolute destination", mode: ModeMove, base: dir, m: Map{{Keyword: "a", Destination: "/tmp/x"}}, want: types.ErrConfig},
		{name: "escaping destination", mode: ModeMove, base: dir, m: Map{{Keyword: "a", Destination: "../x"}}, want: types.ErrConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&fakeIndex{}, Options{Mode: tt.mode, Gate: ApproveAll}).Apply(context.Background(), tt.base, tt.m)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestApplyAgainstIndexStore(t *testing.T) {
	ctx := context.Background()
	store, err := index.Open(ctx, filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	src := t.TempDir()
	a := writeFile(t, filepath.Join(src, "a.txt"), "a")
	b := writeFile(t, filepath.Join(src, "b.bin"), "b")

	_, err = store.Reconcile(ctx, []types.FileRecord{
		{Path: a, Hash: "h1", Type: "ASCII text", Size: 1},
		{Path: b, Hash: "h2", Type: "data", Size: 1},
	})
	require.NoError(t, err)

	base := t.TempDir()
	eng := New(store, Options{Mode: ModeMove, Gate: ApproveAll, Sync: store})
	reports, err := eng.Apply(ctx, base, Map{{Keyword: "text", Destination: "Text"}})
	require.NoError(t, err)
	require.Equal(t, 1, reports[0].Succeeded())

	moved := filepath.Join(base, "Text", "a.txt")
	_, err = os.Stat(moved)
	require.NoError(t, err)

	entry, err := store.Lookup(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, moved, entry.Filename)
}

func TestUniqueName(t *testing.T) {
	dir := t.TempDir()

	got, err := uniqueName(dir, "a.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.tar.gz"), got)

	writeFile(t, filepath.Join(dir, "a.tar.gz"), "x")
	got, err = uniqueName(dir, "a.tar.gz")
	require.NoError(t, err)
	assert.Regexp(t, `a\.tar-[0-9a-f-]{36}\.gz$`, got)

	writeFile(t, filepath.Join(dir, "Makefile"), "x")
	got, err = uniqueName(dir, "Makefile")
	require.NoError(t, err)
	assert.Regexp(t, `Makefile-[0-9a-f-]{36}$`, got)
}

func TestCopyFileRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "src"), "new")
	dst := writeFile(t, filepath.Join(dir, "dst"), "old")

	assert.Error(t, copyFile(src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Move ")
	require.NoError(t, err)
	assert.Equal(t, ModeMove, m)

	m, err = ParseMode("delete")
	require.NoError(t, err)
	assert.Equal(t, ModeDelete, m)

	_, err = ParseMode("copy")
	assert.ErrorIs(t, err, types.ErrConfig)
}
