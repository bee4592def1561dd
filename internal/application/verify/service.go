// Package verify runs the incremental validation of documented commands.
package verify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/ports"
)

// Options control a single run.
type Options struct {
	// Force clears the cache first so every command is revalidated.
	Force bool
}

// Service orchestrates discovery, change impact, validation and write-back.
type Service struct {
	Source      ports.DocumentSource
	Analyzer    ports.ImpactAnalyzer
	Classifiers Chain
	Prober      ports.AvailabilityProber
	Cache       ports.CommandCache
	Watermark   ports.WatermarkStore
	History     ports.RunRecorder
	Metrics     ports.MetricsSink
	Logger      ports.Logger

	TreatUnknownAsWarning bool

	Now   func() time.Time
	NewID func() string
}

// Run validates the documented commands that changed since the last run and
// reuses cached results for the rest. The watermark only advances once every
// command has a result and the current commit is known.
func (s *Service) Run(ctx context.Context, opts Options) (domain.Summary, error) {
	if s.Source == nil || s.Analyzer == nil || s.Prober == nil || s.Cache == nil ||
		s.Watermark == nil || s.Logger == nil {
		return domain.Summary{}, errors.New("verify.Service dependencies not satisfied")
	}

	started := s.now()
	state := domain.NewRunState(s.newID(), started)

	if opts.Force {
		if err := s.Cache.Clear(); err != nil {
			return domain.Summary{}, fmt.Errorf("clear cache: %w", err)
		}
		s.Logger.Info("cache cleared, revalidating everything", nil)
	}

	extracted, err := s.Source.Discover(ctx)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("discover commands: %w", err)
	}
	entries := Dedupe(extracted)

	s.Analyzer.Analyze(ctx, state, entries)

	results := make([]domain.Result, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return domain.Summary{}, err
		}
		results = append(results, s.resolve(ctx, state, entry))
	}
	// A validation interrupted by cancellation is incomplete; the watermark must not move.
	if err := ctx.Err(); err != nil {
		return domain.Summary{}, err
	}

	summary := buildSummary(state, results, s.now())

	if state.CurrentCommit != "" {
		if err := s.Watermark.Write(state.CurrentCommit); err != nil {
			s.Logger.Warn("failed to record validated commit", map[string]interface{}{"error": err.Error()})
		}
	}
	s.record(summary, started, opts.Force)

	s.Logger.Info("verification complete", map[string]interface{}{
		"run":      summary.RunID,
		"total":    summary.Total,
		"failed":   summary.Failed,
		"hits":     summary.Cache.Hits,
		"misses":   summary.Cache.Misses,
		"repaired": summary.Cache.Repaired,
		"reason":   string(summary.Reason),
	})
	return summary, nil
}

// Classify returns the chain's classification for a single command.
func (s *Service) Classify(command string) domain.Classification {
	cls, _ := s.Classifiers.Classify(command)
	return cls
}

func (s *Service) resolve(ctx context.Context, state *domain.RunState, entry domain.CommandEntry) domain.Result {
	if !state.Affected(entry.Command) {
		cached, status, err := s.Cache.Load(entry.Command)
		if err != nil {
			s.Logger.Warn("cache read failed", map[string]interface{}{"command": entry.Command, "error": err.Error()})
		}
		switch status {
		case domain.LoadHit:
			state.Counters.Hits++
			return domain.Result{Entry: entry, Outcome: cached, FromCache: true}
		case domain.LoadCorrupted:
			state.Counters.Repaired++
		}
	}
	state.Counters.Misses++

	outcome, probed := s.validate(ctx, entry)
	if ctx.Err() != nil {
		return domain.Result{Entry: entry, Outcome: outcome, Probed: probed}
	}
	outcome.Commit = state.CurrentCommit
	outcome.ValidatedAt = s.now().UTC()
	if err := s.Cache.Save(entry.Command, outcome); err != nil {
		s.Logger.Warn("cache write failed", map[string]interface{}{"command": entry.Command, "error": err.Error()})
	} else {
		state.Counters.Writes++
	}
	outcome.Command = entry.Command
	return domain.Result{Entry: entry, Outcome: outcome, Probed: probed}
}

func (s *Service) validate(ctx context.Context, entry domain.CommandEntry) (domain.CacheEntry, bool) {
	cls := s.Classify(entry.Command)
	if cls.Category == domain.CategorySkip {
		return skippedOutcome(cls), false
	}
	avail := s.Prober.Probe(ctx, entry)
	if avail.Executable == "" {
		avail.Executable = entry.Executable()
	}
	return probedOutcome(cls, avail, s.TreatUnknownAsWarning), true
}

func (s *Service) record(summary domain.Summary, started time.Time, forced bool) {
	if s.History != nil {
		if err := s.History.Save(runRecord(summary, started, forced)); err != nil {
			s.Logger.Warn("failed to record run history", map[string]interface{}{"error": err.Error()})
		}
	}
	if s.Metrics != nil {
		if err := s.Metrics.Observe(summary); err != nil {
			s.Logger.Warn("failed to export metrics", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
