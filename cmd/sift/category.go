package main

import (
	"fmt"
	"os"

	"github.com/jamesainslie/sift/pkg/sift/category"
	"github.com/jamesainslie/sift/pkg/sift/config"
	"github.com/jamesainslie/sift/pkg/sift/manifest"
	"github.com/jamesainslie/sift/pkg/sift/output"
	"github.com/jamesainslie/sift/pkg/sift/trash"
	"github.com/spf13/cobra"
)

// categoryFlags are shared by move and delete.
type categoryFlags struct {
	categories string
	yes        bool
	dryRun     bool
	syncIndex  bool
	useTrash   bool
}

var (
	moveFlags   categoryFlags
	deleteFlags categoryFlags
)

var moveCmd = &cobra.Command{
	Use:   "move [base]",
	Short: "Move indexed files into folders by content type",
	Long: `Move indexed files whose type contains a keyword into a folder under base.

The category file maps keywords to destinations relative to base, applied in
file order:

  {"PDF": "documents", "JPEG image": "photos"}

Each destination must not exist yet. Files that share a name are renamed with
a unique suffix. Every rule is confirmed before anything changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runCategories(category.ModeMove, &moveFlags, args)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete indexed files by content type",
	Long: `Delete indexed files whose type contains any of the listed keywords.

The category file is a JSON array of keywords:

  ["ELF", "Zip archive"]

Every keyword is confirmed before anything is removed. Use --trash to move
files to the system trash instead of unlinking them.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, args []string) error {
		return runCategories(category.ModeDelete, &deleteFlags, args)
	},
}

func init() {
	for _, c := range []struct {
		cmd   *cobra.Command
		flags *categoryFlags
	}{{moveCmd, &moveFlags}, {deleteCmd, &deleteFlags}} {
		f := c.cmd.Flags()
		f.StringVarP(&c.flags.categories, "categories", "c", "", "JSON category file")
		f.BoolVarP(&c.flags.yes, "yes", "y", false, "apply every rule without asking")
		f.BoolVar(&c.flags.dryRun, "dry-run", false, "show what would change and stop")
		f.BoolVar(&c.flags.syncIndex, "sync-index", false, "update index rows for moved and deleted files")
		rootCmd.AddCommand(c.cmd)
	}
	deleteCmd.Flags().BoolVar(&deleteFlags.useTrash, "trash", false, "move files to the system trash")
}

func runCategories(mode category.Mode, flags *categoryFlags, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := flags.categories
	if path == "" {
		path = cfg.Categories.Move
		if mode == category.ModeDelete {
			path = cfg.Categories.Delete
		}
	}
	if path == "" {
		return fmt.Errorf("no category file: pass --categories or set categories.%s", mode)
	}
	if path, err = config.ExpandPath(path); err != nil {
		return err
	}
	rules, err := config.LoadCategories(path, mode)
	if err != nil {
		return err
	}

	var base string
	if mode == category.ModeMove {
		if base, err = resolvePath(args, cfg); err != nil {
			return err
		}
	}

	ctx, stop, interrupted := signalContext()
	defer stop()

	store, err := openIndex(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.InitializeSchema(ctx); err != nil {
		return err
	}

	opts := category.Options{
		Mode:    mode,
		Gate:    newGate(flags.yes, flags.dryRun),
		Remover: trash.New(flags.useTrash),
	}
	if flags.syncIndex {
		opts.Sync = store
	}

	reports, err := category.New(store, opts).Apply(ctx, base, rules)
	if err != nil && !interrupted() {
		return err
	}

	if !flags.dryRun {
		logCategoryRun(cfg, mode, reports)
	}

	out := output.FromCategories(store.Path(), reports)
	out.Interrupted = interrupted()
	if flags.dryRun {
		out.Warnings = append(out.Warnings, "dry run: nothing was changed")
	}
	return writeResult(os.Stdout, cfg, out)
}

// logCategoryRun writes one manifest entry per approved rule.
func logCategoryRun(cfg *config.Config, mode category.Mode, reports []category.Report) {
	m, err := openManifest(cfg)
	if err != nil || m == nil {
		return
	}

	for _, rep := range reports {
		if !rep.Approved || len(rep.Outcomes) == 0 {
			continue
		}
		files := make([]manifest.FileRecord, 0, len(rep.Outcomes))
		for _, o := range rep.Outcomes {
			rec := manifest.FileRecord{Path: o.Path, Target: o.Target, Method: o.Method}
			if o.Err != nil {
				rec.Error = o.Err.Error()
			}
			files = append(files, rec)
		}

		log := m.LogMove
		if mode == category.ModeDelete {
			log = m.LogDelete
		}
		if _, err := log(rep.Plan.Rule.Keyword, files); err != nil {
			printVerbose("manifest: %v", err)
		}
	}
}
