package main

import (
	"fmt"
	"os"

	"github.com/jamesainslie/sift/pkg/sift/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "sift [path]",
		Short: "Fingerprint, classify and deduplicate files",
		Long: `Sift walks a directory tree, hashes and classifies every file, and reports
content types, duplicate files and empty files and directories.

Results can be stored in a SQLite index and used to move or delete files by
content type.

Examples:
  sift ~/Downloads                   # report types, duplicates and empties
  sift -o paths ~/Photos | xargs rm  # print redundant duplicate copies
  sift index ~/Archive               # add files to the index
  sift query PDF                     # list indexed PDF documents
  sift move --categories cats.json ~/Sorted
  sift delete --categories junk.json --dry-run`,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: initializeLogging,
		RunE:              runScan,
		SilenceUsage:      true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ~/.config/sift/config.yaml)")
	flags.StringP("output", "o", "", "output format: pretty, plain, json, yaml, paths")
	flags.BoolP("quiet", "q", false, "minimal output")
	flags.BoolP("verbose", "v", false, "debug output")
	flags.String("index-path", "", "SQLite index file")
	flags.IntP("workers", "w", 0, "hash worker count (0=auto)")
	flags.String("algorithm", "", "digest algorithm: sha512 or sha256")
	flags.StringSliceP("skip", "x", nil, "relative path to skip (repeatable)")
	flags.String("skip-file", "", "file listing paths to skip, one per line")
	flags.Bool("no-cache", false, "ignore and do not update the digest cache")
	flags.Duration("file-timeout", 0, "per-file hashing deadline (0=none)")
	flags.Bool("include-empty-duplicates", false, "group zero-length files as duplicates")

	_ = viper.BindPFlag("format", flags.Lookup("output"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("index.path", flags.Lookup("index-path"))
	_ = viper.BindPFlag("workers.hash", flags.Lookup("workers"))
	_ = viper.BindPFlag("hash.algorithm", flags.Lookup("algorithm"))
	_ = viper.BindPFlag("skip", flags.Lookup("skip"))
	_ = viper.BindPFlag("skip_file", flags.Lookup("skip-file"))
	_ = viper.BindPFlag("no_cache", flags.Lookup("no-cache"))
	_ = viper.BindPFlag("file_timeout", flags.Lookup("file-timeout"))
	_ = viper.BindPFlag("duplicates.include_empty", flags.Lookup("include-empty-duplicates"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	v := viper.GetViper()
	config.SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		config.AddConfigPaths(v)
	}
	if err := config.ReadInConfig(v); err != nil {
		printError("%v", err)
	}
}

// loadConfig decodes the merged flag, env, file and default settings.
func loadConfig() (*config.Config, error) {
	return config.FromViper(viper.GetViper())
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		return err
	}
	return nil
}

func getVerbose() bool {
	return viper.GetBool("verbose")
}

func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints to stderr in verbose mode.
func printVerbose(format string, args ...any) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints to stderr unless quiet. Stdout is reserved for results.
func printInfo(format string, args ...any) {
	if !getQuiet() {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
