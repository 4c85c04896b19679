// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citeverify/internal/cache"
	"github.com/pdiddy/citeverify/internal/report"
)

var errCacheDisabled = errors.New("result cache is disabled (backend none)")

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the verification result cache",
	Long: `Cache administers the verification result cache selected by the
cache.backend setting (sqlite by default, stored under ~/.citeverify).`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry counts by query type",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cache entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(cmd, func(s cache.Store) error {
			n, err := s.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d entries\n", n)
			return nil
		})
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired cache entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(cmd, func(s cache.Store) error {
			n, err := s.ClearExpired(cmd.Context())
			if err != nil {
				return fmt.Errorf("pruning cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired entries\n", n)
			return nil
		})
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd, cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}

// withCache opens the configured store, runs fn and closes the store.
func withCache(cmd *cobra.Command, fn func(cache.Store) error) error {
	s, err := cache.Open(cmd.Context(), current.cfg.Cache)
	if err != nil {
		return fmt.Errorf("opening %s cache: %w", current.cfg.Cache.Backend, err)
	}
	if s == nil {
		return errCacheDisabled
	}
	defer s.Close()
	return fn(s)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	return withCache(cmd, func(s cache.Store) error {
		st, err := s.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("reading cache stats: %w", err)
		}
		return writeStats(cmd.OutOrStdout(), st, format)
	})
}

func writeStats(w io.Writer, st cache.Stats, format report.Format) error {
	switch format {
	case report.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	case report.FormatYAML:
		return yaml.NewEncoder(w).Encode(st)
	}

	fmt.Fprintf(w, "Location: %s\n", st.Location)
	fmt.Fprintf(w, "TTL:      %s\n", st.TTL)
	fmt.Fprintf(w, "Entries:  %d (%d valid, %d expired)\n", st.Total, st.Valid, st.Expired)

	types := make([]string, 0, len(st.ByType))
	for t := range st.ByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(w, "  %-6s %d\n", t, st.ByType[t])
	}
	return nil
}
