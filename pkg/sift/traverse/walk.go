package traverse

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/jamesainslie/sift/pkg/sift/types"
)

// discovery collects what the parallel walk saw. Paths are relative to
// the root in slash form.
type discovery struct {
	mu         sync.Mutex
	files      []string
	entries    map[string]int // directory -> number of entries seen
	unreadable map[string]struct{}
}

func (d *discovery) addDir(rel string) {
	d.mu.Lock()
	if _, ok := d.entries[rel]; !ok {
		d.entries[rel] = 0
	}
	d.mu.Unlock()
}

func (d *discovery) addEntry(parent string) {
	d.mu.Lock()
	d.entries[parent]++
	d.mu.Unlock()
}

func (d *discovery) addFile(rel string) {
	d.mu.Lock()
	d.files = append(d.files, rel)
	d.mu.Unlock()
}

func (d *discovery) markUnreadable(rel string) {
	d.mu.Lock()
	d.unreadable[rel] = struct{}{}
	d.mu.Unlock()
}

// emptyDirs returns readable directories that had no entries, in
// discovery order, with absolute paths.
func (d *discovery) emptyDirs(root string) []types.EmptyEntity {
	var rels []string
	for rel, n := range d.entries {
		if n > 0 {
			continue
		}
		if _, bad := d.unreadable[rel]; bad {
			continue
		}
		rels = append(rels, rel)
	}
	sortDiscovery(rels, dirPosition)

	out := make([]types.EmptyEntity, len(rels))
	for i, rel := range rels {
		out[i] = types.EmptyEntity{Path: absPath(root, rel), IsDir: true}
	}
	return out
}

// discover walks root and returns regular files sorted in discovery order.
func (e *Engine) discover(ctx context.Context, root string) (*discovery, error) {
	found := &discovery{
		entries:    map[string]int{"": 0},
		unreadable: make(map[string]struct{}),
	}
	e.dirsScanned.Add(1)

	skip := make(map[string]struct{}, len(e.opts.Skip))
	for _, s := range e.opts.Skip {
		skip[s] = struct{}{}
	}

	conf := fastwalk.Config{
		Follow:     false,
		NumWorkers: e.opts.WalkWorkers,
	}

	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel := relPath(root, path)

		if err != nil {
			e.addError(path, err)
			if rel == "" || (d != nil && d.IsDir()) {
				found.markUnreadable(rel)
			}
			e.logger.Debug("walk error", "path", path, "error", err)
			return nil
		}

		if rel == "" {
			return nil
		}

		found.addEntry(parentOf(rel))

		if _, skipped := skip[rel]; skipped {
			e.logger.Debug("skipping", "path", rel)
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		switch {
		case d.IsDir():
			found.addDir(rel)
			e.dirsScanned.Add(1)
			e.currentPath.Store(path)
			e.reportProgress()
		case d.Type().IsRegular():
			found.addFile(rel)
			e.filesScanned.Add(1)
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return nil, ctxErrOr(ctx, err)
		}
		return nil, err
	}

	sortDiscovery(found.files, filePosition)
	return found, nil
}

func ctxErrOr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// relPath returns path relative to root in slash form; root itself is "".
func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

func parentOf(rel string) string {
	i := strings.LastIndexByte(rel, '/')
	if i < 0 {
		return ""
	}
	return rel[:i]
}

func absPath(root, rel string) string {
	if rel == "" {
		return root
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}

// mergeEmpty combines empty files and directories into one list in
// discovery order.
func mergeEmpty(root string, files, dirs []types.EmptyEntity) []types.EmptyEntity {
	out := make([]types.EmptyEntity, 0, len(files)+len(dirs))
	out = append(out, files...)
	out = append(out, dirs...)

	sortDiscovery(out, func(ent types.EmptyEntity) position {
		rel := relPath(root, ent.Path)
		if ent.IsDir {
			return dirPosition(rel)
		}
		return filePosition(rel)
	})
	return out
}
