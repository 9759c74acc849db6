// Package traverse walks a directory tree and produces, in one pass, a
// fingerprinted record for every regular file, per-type counts, duplicate
// groups and the list of empty files and directories.
//
// Directory discovery runs in parallel; fingerprinting and classification
// run in a bounded worker pool. Results are reduced sequentially in a
// deterministic top-down discovery order, so the same tree always yields
// the same records and duplicate groups regardless of scheduling.
package traverse

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/jamesainslie/sift/pkg/sift/cache"
	"github.com/jamesainslie/sift/pkg/sift/classify"
	"github.com/jamesainslie/sift/pkg/sift/fingerprint"
	"github.com/jamesainslie/sift/pkg/sift/tuner"
	"github.com/jamesainslie/sift/pkg/sift/types"
)

// Options configures a walk.
type Options struct {
	// Root is the directory to walk. Empty means the working directory.
	Root string

	// Skip lists slash-separated paths relative to Root. A matching
	// directory is pruned with its whole subtree; a matching file is
	// ignored. Matching is exact.
	Skip []string

	// Workers bounds concurrent fingerprint and classify calls.
	// Zero sizes the pool from detected resources.
	Workers int

	// WalkWorkers is the number of directory-reading goroutines.
	// Zero sizes it from detected resources.
	WalkWorkers int

	// Fingerprinter computes content digests. Nil uses the default algorithm.
	Fingerprinter *fingerprint.Fingerprinter

	// Classifier labels file content. Nil uses the magic-byte classifier.
	Classifier classify.Classifier

	// Cache, when set, supplies digests for files whose size and mtime are
	// unchanged since they were last hashed, and stores new ones.
	Cache *cache.Cache

	// FileTimeout bounds the hashing of a single file. Zero disables it.
	FileTimeout time.Duration

	// IncludeEmptyDuplicates groups zero-length files under the empty-hash
	// sentinel. Such groups say nothing about content and are off by default.
	IncludeEmptyDuplicates bool

	// OnProgress receives throttled progress snapshots. It is called from
	// multiple goroutines.
	OnProgress func(types.Progress)
}

// Validate applies defaults and normalizes the skip list. Absolute skip
// entries are rejected because they can never match a relative subpath.
func (o *Options) Validate() error {
	if o.Root == "" {
		o.Root = "."
	}

	if o.Workers < 1 || o.WalkWorkers < 1 {
		sized := tuner.Auto(o.Workers)
		if o.Workers < 1 {
			o.Workers = sized.HashWorkers
		}
		if o.WalkWorkers < 1 {
			o.WalkWorkers = sized.WalkWorkers
		}
	}

	if o.Fingerprinter == nil {
		o.Fingerprinter = fingerprint.New(fingerprint.Default)
	}
	if o.Classifier == nil {
		o.Classifier = classify.NewMagic()
	}
	if o.FileTimeout < 0 {
		o.FileTimeout = 0
	}

	skip := make([]string, 0, len(o.Skip))
	for _, entry := range o.Skip {
		norm, err := normalizeSkip(entry)
		if err != nil {
			return err
		}
		if norm != "" {
			skip = append(skip, norm)
		}
	}
	o.Skip = skip

	return nil
}

func normalizeSkip(entry string) (string, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return "", nil
	}
	slashed := filepath.ToSlash(entry)
	if path.IsAbs(slashed) || filepath.IsAbs(entry) {
		return "", fmt.Errorf("%w: skip entry %q must be relative to the walk root", types.ErrConfig, entry)
	}
	cleaned := path.Clean(slashed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: skip entry %q is outside the walk root", types.ErrConfig, entry)
	}
	return cleaned, nil
}
