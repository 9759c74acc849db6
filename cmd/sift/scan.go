package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jamesainslie/sift/pkg/sift/config"
	"github.com/jamesainslie/sift/pkg/sift/index"
	"github.com/jamesainslie/sift/pkg/sift/manifest"
	"github.com/jamesainslie/sift/pkg/sift/output"
	"github.com/jamesainslie/sift/pkg/sift/traverse"
	"github.com/jamesainslie/sift/pkg/sift/types"
	"github.com/spf13/cobra"
)

var (
	scanIndex   bool
	scanRecords bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Report types, duplicates and empties under a directory",
	Long: `Walk a directory, hash and classify every regular file, then report the
count per content type, groups of identical files and empty files and
directories. This is also what "sift [path]" does.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, scanCmd} {
		cmd.Flags().BoolVar(&scanIndex, "index", false, "also reconcile the walked files into the index")
		cmd.Flags().BoolVar(&scanRecords, "records", false, "include every file record in the output")
	}
	rootCmd.AddCommand(scanCmd)
}

// runScan walks a tree and reports types, duplicates and empties.
func runScan(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	root, err := resolvePath(args, cfg)
	if err != nil {
		return err
	}

	ctx, stop, interrupted := signalContext()
	defer stop()

	result, err := walk(ctx, root, cfg)
	if err != nil {
		if interrupted() {
			printInfo("Scan cancelled")
			return nil
		}
		return err
	}

	out := output.FromScan(result, scanRecords)
	if scanIndex {
		report, path, err := reconcile(ctx, cfg, result, false)
		if err != nil {
			return err
		}
		out.WithIndex(path, report)
	}
	return writeResult(os.Stdout, cfg, out)
}

// walk runs one traversal of root with progress on stderr.
func walk(ctx context.Context, root string, cfg *config.Config) (*traverse.Result, error) {
	setup, err := newWalk(root, cfg)
	if err != nil {
		return nil, err
	}
	defer setup.Close()

	progress := newWalkProgress(root)
	if progress != nil {
		setup.opts.OnProgress = progress.Update
	}

	result, err := traverse.New(setup.opts).Walk(ctx)
	progress.Finish()
	if err != nil {
		if errors.Is(err, types.ErrNotADirectory) {
			return nil, fmt.Errorf("cannot scan %s: %w", root, err)
		}
		return nil, err
	}
	return result, nil
}

// reconcile writes the walked records to the index and records the batch
// in the manifest. bootstrap forces a bulk create.
func reconcile(ctx context.Context, cfg *config.Config, result *traverse.Result, bootstrap bool) (*index.WriteReport, string, error) {
	store, err := openIndex(ctx, cfg)
	if err != nil {
		return nil, "", err
	}
	defer store.Close()

	var report *index.WriteReport
	if bootstrap {
		if err = store.InitializeSchema(ctx); err == nil {
			report, err = store.BulkCreate(ctx, result.Records)
		}
	} else {
		report, err = store.Reconcile(ctx, result.Records)
	}
	if err != nil {
		return nil, store.Path(), fmt.Errorf("index update failed: %w", err)
	}

	printInfo("Indexed %d of %d files (%s, %d already indexed)",
		report.Inserted, report.Attempted, report.Mode, len(report.Collisions))
	logIndexBatch(cfg, result, report)
	return report, store.Path(), nil
}

func logIndexBatch(cfg *config.Config, result *traverse.Result, report *index.WriteReport) {
	m, err := openManifest(cfg)
	if err != nil || m == nil {
		return
	}

	collided := make(map[string]string, len(report.Collisions))
	for _, c := range report.Collisions {
		collided[c.Path] = c.Err().Error()
	}
	files := make([]manifest.FileRecord, 0, len(result.Records))
	for _, r := range result.Records {
		files = append(files, manifest.FileRecord{
			Path:  r.Path,
			Size:  r.Size,
			Hash:  r.Hash,
			Type:  r.Type,
			Error: collided[r.Path],
		})
	}
	if _, err := m.LogIndex(result.Root, files); err != nil {
		printVerbose("manifest: %v", err)
	}
}
