package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jamesainslie/sift/pkg/sift/cache"
	"github.com/jamesainslie/sift/pkg/sift/classify"
	"github.com/jamesainslie/sift/pkg/sift/config"
	"github.com/jamesainslie/sift/pkg/sift/fingerprint"
	"github.com/jamesainslie/sift/pkg/sift/index"
	"github.com/jamesainslie/sift/pkg/sift/manifest"
	"github.com/jamesainslie/sift/pkg/sift/output"
	"github.com/jamesainslie/sift/pkg/sift/traverse"
	"github.com/spf13/viper"
)

// resolvePath picks the argument, then default_path, then ".", and makes
// it absolute.
func resolvePath(args []string, cfg *config.Config) (string, error) {
	p := "."
	if len(args) > 0 && args[0] != "" {
		p = args[0]
	} else if cfg.DefaultPath != "" {
		p = cfg.DefaultPath
	}

	expanded, err := config.ExpandPath(p)
	if err != nil {
		return "", fmt.Errorf("failed to expand path: %w", err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	return abs, nil
}

// resolveSkip merges skip entries from config, flags and the skip file.
func resolveSkip(cfg *config.Config) ([]string, error) {
	var skip []string
	for _, s := range cfg.Skip {
		skip = append(skip, parseCommaSeparated(s)...)
	}
	if cfg.SkipFile != "" {
		fromFile, err := config.LoadSkipFile(cfg.SkipFile)
		if err != nil {
			return nil, err
		}
		skip = append(skip, fromFile...)
	}
	return skip, nil
}

// walkSetup holds a configured walk and the resources it needs closed.
type walkSetup struct {
	opts  traverse.Options
	cache *cache.Cache
}

func (w *walkSetup) Close() {
	if w.cache == nil {
		return
	}
	if err := w.cache.Close(); err != nil {
		printVerbose("closing digest cache: %v", err)
	}
}

// newWalk builds traverse options for root from cfg. A cache that cannot
// be opened is skipped with a warning rather than failing the walk.
func newWalk(root string, cfg *config.Config) (*walkSetup, error) {
	alg, err := fingerprint.ParseAlgorithm(cfg.Hash.Algorithm)
	if err != nil {
		return nil, err
	}
	skip, err := resolveSkip(cfg)
	if err != nil {
		return nil, err
	}

	setup := &walkSetup{opts: traverse.Options{
		Root:                   root,
		Skip:                   skip,
		Workers:                cfg.Workers.Hash,
		WalkWorkers:            cfg.Workers.Walk,
		Fingerprinter:          fingerprint.New(alg),
		Classifier:             classify.NewMagic(),
		FileTimeout:            cfg.FileTimeout,
		IncludeEmptyDuplicates: cfg.Duplicates.IncludeEmpty,
	}}

	if cfg.Cache.Enabled && !viper.GetBool("no_cache") {
		c, err := cache.Open(cfg.Cache.Path, string(alg))
		if err != nil {
			printInfo("Warning: digest cache unavailable: %v", err)
		} else {
			setup.cache = c
			setup.opts.Cache = c
		}
	}

	printVerbose("walk: root=%s algorithm=%s workers=%d skip=%v cache=%t",
		root, alg, setup.opts.Workers, skip, setup.cache != nil)
	return setup, nil
}

// openIndex opens the configured index file.
func openIndex(ctx context.Context, cfg *config.Config) (*index.Store, error) {
	path := cfg.Index.Path
	if path == "" {
		path = config.DefaultIndexPath()
	}
	store, err := index.OpenWithConfig(ctx, index.Config{Path: path, BusyTimeout: cfg.Index.BusyTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", path, err)
	}
	return store, nil
}

// openManifest returns nil when the manifest is disabled.
func openManifest(cfg *config.Config) (*manifest.Manifest, error) {
	if !cfg.Manifest.Enabled {
		return nil, nil
	}
	dir := cfg.Manifest.Path
	if dir == "" {
		dir = filepath.Join(config.DataDir(), "manifest")
	}
	return manifest.New(dir)
}

// writeResult renders r in the configured format to w.
func writeResult(w io.Writer, cfg *config.Config, r *output.Result) error {
	name := cfg.Format
	if name == "" {
		name = config.DefaultFormat
	}
	formatter, err := output.Get(name)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, r); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// signalContext is cancelled on SIGINT or SIGTERM. interrupted reports
// whether a signal arrived.
func signalContext() (ctx context.Context, stop func(), interrupted func() bool) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx, cancel, func() bool {
		return ctx.Err() != nil
	}
}

// parseCommaSeparated splits a comma-separated string and trims whitespace.
func parseCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// isTerminal reports whether f is attached to a character device.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
