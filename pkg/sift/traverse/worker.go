package traverse

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/jamesainslie/sift/pkg/sift/classify"
	"github.com/jamesainslie/sift/pkg/sift/types"
)

// outcome is the per-file result of the worker pool.
type outcome struct {
	record types.FileRecord
	ok     bool
}

// processAll fingerprints and classifies files with at most
// opts.Workers in flight. outcomes[i] belongs to files[i].
func (e *Engine) processAll(ctx context.Context, root string, files []string) ([]outcome, error) {
	outcomes := make([]outcome, len(files))

	var g errgroup.Group
	g.SetLimit(e.opts.Workers)

	for i, rel := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outcomes[i] = e.process(ctx, absPath(root, rel))
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		e.logger.Info("walk cancelled", "root", root, "hashed", e.filesHashed.Load())
		return nil, err
	}
	return outcomes, nil
}

// process builds the record for one file. Failures to stat or fingerprint
// drop the file; classifier failures fall back to classify.FallbackLabel.
func (e *Engine) process(ctx context.Context, path string) outcome {
	e.currentPath.Store(path)
	defer e.reportProgress()

	info, err := os.Lstat(path)
	if err != nil {
		e.addError(path, err)
		e.logger.Warn("stat failed, skipping file", "path", path, "error", err)
		return outcome{}
	}

	size := info.Size()
	if size <= 0 {
		e.filesHashed.Add(1)
		return outcome{
			record: types.FileRecord{Path: path, Hash: types.EmptyHash, Type: classify.EmptyLabel, Size: 0},
			ok:     true,
		}
	}

	mtime := info.ModTime().UnixNano()
	if e.opts.Cache != nil {
		if entry, hit := e.opts.Cache.Lookup(path, size, mtime); hit {
			e.cacheHits.Add(1)
			e.filesHashed.Add(1)
			return outcome{
				record: types.FileRecord{Path: path, Hash: entry.Hash, Type: entry.Type, Size: size},
				ok:     true,
			}
		}
	}

	hash, err := e.fingerprint(ctx, path)
	if err != nil {
		if !isCancellation(ctx, err) {
			e.addError(path, err)
			e.logger.Warn("fingerprint failed, skipping file", "path", path, "error", err)
		}
		return outcome{}
	}

	label := e.classify(path)

	if e.opts.Cache != nil {
		e.opts.Cache.Record(path, size, mtime, hash, label)
	}

	e.filesHashed.Add(1)
	e.bytesHashed.Add(size)

	return outcome{
		record: types.FileRecord{Path: path, Hash: hash, Type: label, Size: size},
		ok:     true,
	}
}

func (e *Engine) fingerprint(ctx context.Context, path string) (string, error) {
	if e.opts.FileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.FileTimeout)
		defer cancel()
	}
	return e.opts.Fingerprinter.File(ctx, path)
}

func (e *Engine) classify(path string) string {
	raw, err := e.opts.Classifier.Classify(path)
	if err != nil {
		e.addError(path, err)
		e.logger.Warn("classification failed, using fallback label",
			"path", path, "label", classify.FallbackLabel, "error", err)
		return classify.FallbackLabel
	}

	label := classify.Primary(raw)
	if label == "" {
		return classify.FallbackLabel
	}
	return label
}
