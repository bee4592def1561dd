package verify

import (
	"time"

	"github.com/doeshing/cmdverify/internal/domain"
)

func buildSummary(state *domain.RunState, results []domain.Result, finished time.Time) domain.Summary {
	s := domain.Summary{
		RunID:        state.ID,
		Commit:       state.CurrentCommit,
		Reason:       state.Reason,
		Total:        len(results),
		ByCategory:   make(map[domain.Category]int),
		ChangedFiles: len(state.ChangedFiles),
		DurationMS:   finished.Sub(state.StartedAt).Milliseconds(),
		Results:      results,
	}
	for _, r := range results {
		out := r.Outcome
		s.ByCategory[out.Category]++
		if out.Category == domain.CategorySkip {
			s.Skipped++
		} else if out.Available {
			s.Available++
		} else {
			s.Unavailable++
		}
		if out.Success {
			s.Succeeded++
		} else {
			s.Failed++
		}
		if state.Affected(r.Entry.Command) {
			s.Affected++
		}
	}

	c := state.Counters
	s.Cache = domain.CacheSummary{Hits: c.Hits, Misses: c.Misses, Repaired: c.Repaired, Writes: c.Writes}
	if lookups := c.Hits + c.Misses; lookups > 0 {
		s.Cache.HitRate = float64(c.Hits) / float64(lookups)
	}
	return s
}

func runRecord(s domain.Summary, started time.Time, forced bool) domain.RunRecord {
	return domain.RunRecord{
		ID:          s.RunID,
		StartedAt:   started,
		DurationMS:  s.DurationMS,
		Commit:      s.Commit,
		Total:       s.Total,
		Succeeded:   s.Succeeded,
		Failed:      s.Failed,
		CacheHits:   s.Cache.Hits,
		CacheMisses: s.Cache.Misses,
		Repaired:    s.Cache.Repaired,
		Forced:      forced,
	}
}
