package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jamesainslie/sift/pkg/sift/config"
	"github.com/jamesainslie/sift/pkg/sift/manifest"
	"github.com/jamesainslie/sift/pkg/sift/types"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	Long: `View the history of index, move and delete operations.

Every index batch and every approved category rule is recorded with the
files it touched and how each one fared.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show details of a specific operation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove history entries older than the retention period",
	RunE:  runHistoryClean,
}

var historyLimit int

// showLimit bounds the files printed by history show.
const showLimit = 50

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// historyManifest opens the manifest even when recording is disabled, so
// older entries stay readable.
func historyManifest() (*manifest.Manifest, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	cfg.Manifest.Enabled = true
	m, err := openManifest(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize manifest: %w", err)
	}
	return m, cfg, nil
}

func runHistory(_ *cobra.Command, _ []string) error {
	m, _, err := historyManifest()
	if err != nil {
		return err
	}

	entries, err := m.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if len(entries) == 0 {
		printInfo("No history entries found.")
		printInfo("Run 'sift index [path]' to build the index.")
		return nil
	}

	fmt.Printf("\n%-44s  %-7s  %-24s  %6s  %6s\n", "ID", "TYPE", "LABEL", "FILES", "FAILED")
	fmt.Println(strings.Repeat("-", 95))
	for _, entry := range entries {
		fmt.Printf("%-44s  %-7s  %-24s  %6d  %6d\n",
			truncateString(entry.ID, 44),
			entry.Operation,
			truncateString(entry.Label, 24),
			entry.Summary.TotalFiles,
			entry.Summary.Failed,
		)
	}
	fmt.Println(strings.Repeat("-", 95))
	fmt.Printf("\nShowing %d entries. Use --limit to see more.\n", len(entries))
	fmt.Println("Use 'sift history show <id>' for details on a specific entry.")
	return nil
}

func runHistoryShow(_ *cobra.Command, args []string) error {
	m, _, err := historyManifest()
	if err != nil {
		return err
	}

	entry, err := m.Get(args[0])
	if errors.Is(err, manifest.ErrNotFound) {
		return fmt.Errorf("no history entry %q", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	fmt.Println("\nOperation Details")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("ID:         %s\n", entry.ID)
	fmt.Printf("Timestamp:  %s\n", entry.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Operation:  %s\n", entry.Operation)
	if entry.Label != "" {
		fmt.Printf("Label:      %s\n", entry.Label)
	}
	fmt.Printf("Files:      %d (%d failed)\n", entry.Summary.TotalFiles, entry.Summary.Failed)
	if entry.Summary.TotalBytes > 0 {
		fmt.Printf("Total Size: %s\n", types.FormatSize(entry.Summary.TotalBytes))
	}

	if len(entry.Files) == 0 {
		return nil
	}
	fmt.Println("\nFiles:")
	fmt.Println(strings.Repeat("-", 60))
	for i, f := range entry.Files {
		if i == showLimit {
			fmt.Printf("\n... and %d more files\n", len(entry.Files)-showLimit)
			break
		}
		fmt.Println(describeFile(f))
	}
	return nil
}

// describeFile renders one manifest file line.
func describeFile(f manifest.FileRecord) string {
	var b strings.Builder
	b.WriteString(f.Path)
	if f.Target != "" {
		b.WriteString(" -> ")
		b.WriteString(f.Target)
	}
	if f.Method != "" {
		fmt.Fprintf(&b, " [%s]", f.Method)
	}
	if f.Error != "" {
		fmt.Fprintf(&b, " (error: %s)", f.Error)
	}
	return b.String()
}

func runHistoryClean(_ *cobra.Command, _ []string) error {
	m, cfg, err := historyManifest()
	if err != nil {
		return err
	}

	retentionDays := cfg.Manifest.RetentionDays
	if retentionDays <= 0 {
		retentionDays = config.DefaultRetentionDays
	}

	printInfo("Cleaning history entries older than %d days...", retentionDays)
	removed, err := m.Cleanup(retentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}
	printInfo("Removed %d entries.", removed)
	return nil
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
