package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/infrastructure/cli/helpers"
	"github.com/doeshing/cmdverify/internal/infrastructure/history"
)

// maxHistoryAnalysisRecords bounds how many runs `history stats` reads.
const maxHistoryAnalysisRecords = 1000

// NewHistoryCommand creates the history command with all subcommands. Without a
// subcommand it lists recent runs.
func NewHistoryCommand(rt *Runtime) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past verification runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, rt, func(store *history.SQLiteStore) error {
				return listHistoryEntries(cmd.OutOrStdout(), rt, store, limit)
			})
		},
	}
	historyCmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max runs to show")

	historyCmd.AddCommand(
		newHistoryListCommand(rt),
		newHistoryClearCommand(rt),
		newHistoryExportCommand(rt),
		newHistoryStatsCommand(rt),
	)

	return historyCmd
}

func newHistoryListCommand(rt *Runtime) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, rt, func(store *history.SQLiteStore) error {
				return listHistoryEntries(cmd.OutOrStdout(), rt, store, limit)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max runs to show")
	return cmd
}

func newHistoryClearCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, rt, func(store *history.SQLiteStore) error {
				if err := store.Clear(); err != nil {
					return fmt.Errorf("failed to clear history: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), MsgHistoryCleared)
				return nil
			})
		},
	}
}

func newHistoryExportCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export history to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, rt, func(store *history.SQLiteStore) error {
				if err := store.ExportJSON(args[0]); err != nil {
					return fmt.Errorf("failed to export history to %s: %w", args[0], err)
				}
				return nil
			})
		},
	}
}

func newHistoryStatsCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show pass rate and cache efficiency across runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, rt, func(store *history.SQLiteStore) error {
				return showHistoryStats(cmd.OutOrStdout(), store)
			})
		},
	}
}

// withHistory builds the container and hands its history store to fn.
func withHistory(cmd *cobra.Command, rt *Runtime, fn func(*history.SQLiteStore) error) error {
	container, err := rt.Container(cmd.Context())
	if err != nil {
		return err
	}
	defer container.Close()
	if container.HistoryStore == nil {
		return errors.New(ErrHistoryStoreUnavailable)
	}
	return fn(container.HistoryStore)
}

func listHistoryEntries(out io.Writer, rt *Runtime, store *history.SQLiteStore, limit int) error {
	records, err := store.Records(limit)
	if err != nil {
		return fmt.Errorf("failed to retrieve history records: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}
	rt.Renderer(out).History(records)
	return nil
}

// historyStatistics holds aggregates over recorded runs
type historyStatistics struct {
	runs       int
	clean      int
	forced     int
	commands   int
	failed     int
	hits       int
	lookups    int
	byCommit   map[string]int
	avgSeconds float64
}

func analyzeHistoryRecords(records []domain.RunRecord) historyStatistics {
	stats := historyStatistics{
		runs:     len(records),
		byCommit: make(map[string]int),
	}
	var totalMS int64
	for _, rec := range records {
		if rec.Failed == 0 {
			stats.clean++
		}
		if rec.Forced {
			stats.forced++
		}
		stats.commands += rec.Total
		stats.failed += rec.Failed
		stats.hits += rec.CacheHits
		stats.lookups += rec.CacheHits + rec.CacheMisses
		totalMS += rec.DurationMS
		if rec.Commit != "" {
			stats.byCommit[shortCommit(rec.Commit)]++
		}
	}
	if stats.runs > 0 {
		stats.avgSeconds = float64(totalMS) / float64(stats.runs) / 1000
	}
	return stats
}

func showHistoryStats(out io.Writer, store *history.SQLiteStore) error {
	records, err := store.Records(maxHistoryAnalysisRecords)
	if err != nil {
		return fmt.Errorf("failed to retrieve history for analysis: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}
	displayHistoryStatistics(out, analyzeHistoryRecords(records))
	return nil
}

func displayHistoryStatistics(out io.Writer, stats historyStatistics) {
	fmt.Fprintf(out, "Runs analyzed: %d (forced: %d)\nClean runs: %.1f%%\nCommand pass rate: %.1f%%\nCache hit rate: %.1f%%\nAverage duration: %.2fs\n",
		stats.runs,
		stats.forced,
		helpers.CalculateSuccessRate(stats.clean, stats.runs),
		helpers.CalculateSuccessRate(stats.commands-stats.failed, stats.commands),
		helpers.CalculateSuccessRate(stats.hits, stats.lookups),
		stats.avgSeconds)

	if len(stats.byCommit) == 0 {
		return
	}
	fmt.Fprintln(out, "Most verified commits:")
	for _, stat := range helpers.CalculateTopCounts(stats.byCommit, 5) {
		fmt.Fprintf(out, "  %s (%d)\n", stat.Label, stat.Count)
	}
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
