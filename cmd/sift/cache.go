package main

import (
	"fmt"

	"github.com/jamesainslie/sift/pkg/sift/cache"
	"github.com/jamesainslie/sift/pkg/sift/fingerprint"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the digest cache",
	Long: `Commands for managing the digest cache.

The cache remembers each file's digest and type keyed by path, size and
modification time, so unchanged files are not re-read on the next walk.`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached digests for the configured algorithm",
	RunE: func(_ *cobra.Command, _ []string) error {
		c, err := openDigestCache()
		if err != nil {
			return err
		}
		defer c.Close()

		n, err := c.Clear()
		if err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Printf("Removed %d cached digests.\n", n)
		return nil
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		c, err := openDigestCache()
		if err != nil {
			return err
		}
		defer c.Close()

		n, err := c.Len()
		if err != nil {
			return fmt.Errorf("failed to count cache entries: %w", err)
		}
		fmt.Printf("Cache location: %s\n", cfg.Cache.Path)
		fmt.Printf("Cache enabled:  %t\n", cfg.Cache.Enabled)
		fmt.Printf("Algorithm:      %s\n", cfg.Hash.Algorithm)
		fmt.Printf("Entries:        %d\n", n)
		return nil
	},
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show cache location",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Println(cfg.Cache.Path)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}

// openDigestCache opens the configured cache for the configured algorithm.
func openDigestCache() (*cache.Cache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	alg, err := fingerprint.ParseAlgorithm(cfg.Hash.Algorithm)
	if err != nil {
		return nil, err
	}
	c, err := cache.Open(cfg.Cache.Path, string(alg))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", cfg.Cache.Path, err)
	}
	return c, nil
}
