package main

import (
	"os"

	"github.com/jamesainslie/sift/pkg/sift/index"
	"github.com/jamesainslie/sift/pkg/sift/output"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <keyword>",
	Short: "List indexed files whose type contains a keyword",
	Long: `Search the index for files whose type label contains the keyword.
Matching is case-sensitive and unanchored: "PDF" matches "PDF document".`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openIndex(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var matches []index.Match
	empty, err := store.IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		if matches, err = store.QueryByTypeSubstring(ctx, args[0]); err != nil {
			return err
		}
	}
	return writeResult(os.Stdout, cfg, output.FromQuery(store.Path(), args[0], matches))
}
