package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdverify/internal/app"
	"github.com/doeshing/cmdverify/internal/infrastructure/cli/helpers"
)

const (
	msgNoCachedResults = "No cached results."
)

// NewCacheCommand creates the cache command with all subcommands
func NewCacheCommand(rt *Runtime) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the validation cache",
	}

	cacheCmd.AddCommand(
		newCacheStatsCommand(rt),
		newCacheClearCommand(rt),
		newCachePathCommand(rt),
	)

	return cacheCmd
}

func newCacheStatsCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache size, watermark and per-category counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := rt.Container(cmd.Context())
			if err != nil {
				return err
			}
			defer container.Close()
			return showCacheStats(cmd.OutOrStdout(), container)
		},
	}
}

func newCacheClearCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached result and the watermark",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := rt.Container(cmd.Context())
			if err != nil {
				return err
			}
			defer container.Close()
			return clearCache(cmd.OutOrStdout(), container)
		},
	}
}

func newCachePathCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := rt.Container(cmd.Context())
			if err != nil {
				return err
			}
			defer container.Close()
			fmt.Fprintln(cmd.OutOrStdout(), container.CommandCache.Dir())
			return nil
		},
	}
}

// clearCache clears cached results. CommandCache.Clear drops the watermark
// too, so the next run revalidates everything.
func clearCache(out io.Writer, container *app.Container) error {
	if err := container.CommandCache.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintln(out, MsgCacheCleared)
	return nil
}

// showCacheStats displays cache settings and per-category statistics
func showCacheStats(out io.Writer, container *app.Container) error {
	dir := container.CommandCache.Dir()
	size, err := helpers.CalculateDirectorySize(dir)
	if err != nil {
		return fmt.Errorf("failed to calculate cache size: %w", err)
	}
	watermark, err := container.Watermark.Read()
	if err != nil {
		return fmt.Errorf("failed to read watermark: %w", err)
	}
	if watermark == "" {
		watermark = "(none)"
	}

	fmt.Fprintf(out, "Cache directory: %s\nBackend: %s\nSize: %s\nLast validated commit: %s (%s)\n",
		dir,
		container.Config.CacheBackend(),
		helpers.FormatBytes(size),
		watermark,
		container.Watermark.Path())

	entries, corrupted, err := container.CommandCache.Entries()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Entries: %d\n", len(entries)+corrupted)
	if corrupted > 0 {
		fmt.Fprintf(out, "Corrupted: %d (repaired on the next verify)\n", corrupted)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, msgNoCachedResults)
		return nil
	}

	counts := make(map[string]int)
	failed := 0
	for _, entry := range entries {
		counts[string(entry.Category)]++
		if !entry.Success {
			failed++
		}
	}
	fmt.Fprintln(out, "Entries per category:")
	for _, stat := range helpers.CalculateTopCounts(counts, 0) {
		fmt.Fprintf(out, "  %s: %d\n", stat.Label, stat.Count)
	}
	fmt.Fprintf(out, "Success rate: %.1f%%\n", helpers.CalculateSuccessRate(len(entries)-failed, len(entries)))
	return nil
}
