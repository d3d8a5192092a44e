// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docrank/internal/embed"
)

const defaultCachePath = ".cache/embeddings.db"

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and prune the embedding cache",
	Long: `Cache manages the SQLite database of computed embeddings used when
embedding.cache_path (or analyze --cache) is set.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count cached embeddings per model",
	RunE:  runCacheStats,
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	c, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	stats, err := c.Stats(context.Background())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	models := make([]string, 0, len(stats.Models))
	for m := range stats.Models {
		models = append(models, m)
	}
	sort.Strings(models)
	for _, m := range models {
		fmt.Fprintf(out, "%-40s  %d\n", m, stats.Models[m])
	}
	fmt.Fprintf(out, "%d embeddings\n", stats.Entries)
	return nil
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete cached embeddings older than a given age",
	RunE:  runCachePrune,
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	olderThan, _ := cmd.Flags().GetDuration("older-than")
	if olderThan <= 0 {
		return fmt.Errorf("--older-than must be positive")
	}

	c, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	n, err := c.Prune(context.Background(), time.Now().Add(-olderThan))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pruned %d embeddings\n", n)
	return nil
}

// openCache opens the cache at --path, the configured cache path, or the
// default location. The wrapped embedder is never called by stats or prune.
func openCache(cmd *cobra.Command) (*embed.Cache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		path = cfg.Embedding.CachePath
	}
	if path == "" {
		path = defaultCachePath
	}
	return embed.NewCache(embed.NewHash(cfg.Embedding.Dimensions), path)
}

func init() {
	cacheCmd.PersistentFlags().String("path", "", "cache database (default: embedding.cache_path or "+defaultCachePath+")")
	cachePruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "prune embeddings stored longer ago than this")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}
