package traverse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jamesainslie/sift/pkg/sift/logging"
	"github.com/jamesainslie/sift/pkg/sift/types"
)

// Result is the outcome of one walk.
type Result struct {
	// Root is the absolute walk root.
	Root string `json:"root"`

	// TypeCounts counts recorded files per primary type label, including
	// zero-length files under the "empty" label.
	TypeCounts map[string]int `json:"type_counts"`

	// Records holds one entry per fingerprinted file in discovery order.
	Records []types.FileRecord `json:"records"`

	// Duplicates groups paths sharing a content hash.
	Duplicates types.DuplicateGroups `json:"duplicates"`

	// Empty lists zero-length files and directories without entries.
	Empty []types.EmptyEntity `json:"empty"`

	// Errors lists per-path failures that did not stop the walk.
	Errors []types.ScanError `json:"errors,omitempty"`

	Stats types.Stats `json:"stats"`
}

func newResult(root string) *Result {
	return &Result{
		Root:       root,
		TypeCounts: make(map[string]int),
		Records:    []types.FileRecord{},
		Duplicates: make(types.DuplicateGroups),
		Empty:      []types.EmptyEntity{},
	}
}

// Engine runs walks with a fixed set of options.
type Engine struct {
	opts   Options
	logger *logging.Logger

	dirsScanned  atomic.Int64
	filesScanned atomic.Int64
	filesHashed  atomic.Int64
	bytesHashed  atomic.Int64
	cacheHits    atomic.Int64
	walkComplete atomic.Bool
	currentPath  atomic.Value
	lastProgress atomic.Int64

	errorsMu sync.Mutex
	errors   []types.ScanError
}

// New returns an Engine. Options are validated by Walk.
func New(opts Options) *Engine {
	e := &Engine{
		opts:   opts,
		logger: logging.Get("traverse"),
	}
	e.currentPath.Store("")
	return e
}

// Walk traverses the configured root.
//
// A root that is missing or not a directory yields an empty Result and an
// error wrapping types.ErrNotADirectory. A cancelled context yields
// ctx.Err() and no Result. Every other failure is per-path and is
// reported in Result.Errors.
func (e *Engine) Walk(ctx context.Context) (*Result, error) {
	start := time.Now()
	e.reset()

	if err := e.opts.Validate(); err != nil {
		return newResult(e.opts.Root), err
	}

	root, err := resolveRoot(e.opts.Root)
	if err != nil {
		e.logger.Warn("walk root rejected", "root", e.opts.Root, "error", err)
		return newResult(e.opts.Root), err
	}

	e.logger.Info("walk started",
		"root", root,
		"workers", e.opts.Workers,
		"skip", len(e.opts.Skip),
		"algorithm", e.opts.Fingerprinter.Algorithm(),
	)
	e.currentPath.Store(root)
	e.reportProgressForce()

	found, err := e.discover(ctx, root)
	if err != nil {
		return nil, err
	}

	e.walkComplete.Store(true)
	e.reportProgressForce()

	outcomes, err := e.processAll(ctx, root, found.files)
	if err != nil {
		return nil, err
	}

	result := newResult(root)
	reduce(result, outcomes, e.opts.IncludeEmptyDuplicates)
	result.Empty = mergeEmpty(root, result.Empty, found.emptyDirs(root))

	if e.opts.Cache != nil {
		if n, err := e.opts.Cache.Flush(); err != nil {
			e.addError("cache", err)
		} else if n > 0 {
			e.logger.Debug("digest cache updated", "entries", n)
		}
	}

	result.Errors = e.collectErrors()
	result.Stats = types.Stats{
		DirsScanned:  e.dirsScanned.Load(),
		FilesScanned: e.filesScanned.Load(),
		TotalBytes:   totalBytes(result.Records),
		CacheHits:    e.cacheHits.Load(),
		Elapsed:      time.Since(start),
	}

	e.logger.Info("walk finished",
		"root", root,
		"files", len(result.Records),
		"dirs", result.Stats.DirsScanned,
		"duplicate_groups", result.Duplicates.Count(),
		"empty", len(result.Empty),
		"errors", len(result.Errors),
		"elapsed", result.Stats.Elapsed,
	)

	return result, nil
}

func (e *Engine) reset() {
	e.dirsScanned.Store(0)
	e.filesScanned.Store(0)
	e.filesHashed.Store(0)
	e.bytesHashed.Store(0)
	e.cacheHits.Store(0)
	e.walkComplete.Store(false)
	e.errorsMu.Lock()
	e.errors = nil
	e.errorsMu.Unlock()
}

// resolveRoot returns the absolute form of root if it is a directory.
func resolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", types.ErrNotADirectory, root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", types.ErrNotADirectory, abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", types.ErrNotADirectory, abs)
	}

	return abs, nil
}

func (e *Engine) addError(path string, err error) {
	e.errorsMu.Lock()
	e.errors = append(e.errors, types.ScanError{Path: path, Error: err.Error()})
	e.errorsMu.Unlock()
}

func (e *Engine) collectErrors() []types.ScanError {
	e.errorsMu.Lock()
	defer e.errorsMu.Unlock()

	out := slices.Clone(e.errors)
	slices.SortStableFunc(out, func(a, b types.ScanError) int {
		if a.Path < b.Path {
			return -1
		}
		if a.Path > b.Path {
			return 1
		}
		return 0
	})
	return out
}

// reportProgress calls OnProgress at most every 50ms.
func (e *Engine) reportProgress() {
	if e.opts.OnProgress == nil {
		return
	}
	now := time.Now().UnixMilli()
	last := e.lastProgress.Load()
	if now-last < 50 {
		return
	}
	if !e.lastProgress.CompareAndSwap(last, now) {
		return
	}
	e.sendProgress()
}

func (e *Engine) reportProgressForce() {
	if e.opts.OnProgress == nil {
		return
	}
	e.lastProgress.Store(time.Now().UnixMilli())
	e.sendProgress()
}

func (e *Engine) sendProgress() {
	current, _ := e.currentPath.Load().(string)
	e.opts.OnProgress(types.Progress{
		DirsScanned:  e.dirsScanned.Load(),
		FilesScanned: e.filesScanned.Load(),
		FilesHashed:  e.filesHashed.Load(),
		BytesHashed:  e.bytesHashed.Load(),
		CurrentPath:  current,
		WalkComplete: e.walkComplete.Load(),
	})
}

func totalBytes(records []types.FileRecord) int64 {
	var n int64
	for _, r := range records {
		n += r.Size
	}
	return n
}

// isCancellation reports whether err stems from ctx being done.
func isCancellation(ctx context.Context, err error) bool {
	if ctx.Err() == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
