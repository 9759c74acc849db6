package main

import (
	"os"

	"github.com/jamesainslie/sift/pkg/sift/output"
	"github.com/spf13/cobra"
)

var indexBootstrap bool

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Walk a tree and add its files to the index",
	Long: `Walk a directory and store one row per distinct content hash in the
SQLite index.

An empty index is filled with a bulk create; otherwise each file is looked up
first and only new content is inserted. Files whose content is already indexed
under another path are reported and left out.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexBootstrap, "bootstrap", false, "force a bulk create even when the index has rows")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(_ *cobra.Command, args []string) error {
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
			printInfo("Index cancelled, nothing written")
			return nil
		}
		return err
	}

	report, path, err := reconcile(ctx, cfg, result, indexBootstrap)
	if err != nil {
		return err
	}
	return writeResult(os.Stdout, cfg, output.FromScan(result, false).WithIndex(path, report))
}
