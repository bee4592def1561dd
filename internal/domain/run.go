package domain

import (
	"sort"
	"time"
)

// RunState is the per-run working set threaded through the orchestrator.
// Only CurrentCommit outlives the run, and only after it completes.
type RunState struct {
	ID                  string
	StartedAt           time.Time
	LastValidatedCommit string
	CurrentCommit       string
	ChangedFiles        map[string]struct{}
	AffectedCommands    map[string]struct{}
	Everything          bool
	Reason              ImpactReason
	Counters            RunCounters
}

// NewRunState builds an empty state for a run.
func NewRunState(id string, started time.Time) *RunState {
	return &RunState{
		ID:               id,
		StartedAt:        started,
		ChangedFiles:     map[string]struct{}{},
		AffectedCommands: map[string]struct{}{},
	}
}

// Affected reports whether the command must be revalidated.
func (s *RunState) Affected(command string) bool {
	if s.Everything {
		return true
	}
	_, ok := s.AffectedCommands[command]
	return ok
}

// SortedChangedFiles returns the changed files in lexical order.
func (s *RunState) SortedChangedFiles() []string {
	files := make([]string, 0, len(s.ChangedFiles))
	for f := range s.ChangedFiles {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// ImpactReason explains how the affected set was derived.
type ImpactReason string

const (
	ImpactFirstRun       ImpactReason = "first-run"
	ImpactUnchanged      ImpactReason = "unchanged"
	ImpactDiff           ImpactReason = "diff"
	ImpactDiffFailed     ImpactReason = "diff-failed"
	ImpactGitUnavailable ImpactReason = "git-unavailable"
)

// RunCounters aggregates cache activity during a run.
type RunCounters struct {
	Hits     int
	Misses   int
	Repaired int
	Writes   int
}

// Result pairs a command with the validation outcome used for it.
type Result struct {
	Entry     CommandEntry `json:"entry"`
	Outcome   CacheEntry   `json:"outcome"`
	FromCache bool         `json:"fromCache"`
	Probed    bool         `json:"probed"`
}

// CacheSummary reports cache activity.
type CacheSummary struct {
	Hits     int     `json:"hits"`
	Misses   int     `json:"misses"`
	Repaired int     `json:"repaired"`
	Writes   int     `json:"writes"`
	HitRate  float64 `json:"hitRate"`
}

// Summary is the aggregate report of a run.
type Summary struct {
	RunID        string           `json:"runId"`
	Commit       string           `json:"commit"`
	Reason       ImpactReason     `json:"reason"`
	Total        int              `json:"total"`
	ByCategory   map[Category]int `json:"byCategory"`
	Available    int              `json:"available"`
	Unavailable  int              `json:"unavailable"`
	Succeeded    int              `json:"succeeded"`
	Failed       int              `json:"failed"`
	Skipped      int              `json:"skipped"`
	ChangedFiles int              `json:"changedFiles"`
	Affected     int              `json:"affected"`
	Cache        CacheSummary     `json:"cache"`
	DurationMS   int64            `json:"durationMs"`
	Results      []Result         `json:"results"`
}

// HasErrors reports whether any result failed with error severity.
func (s Summary) HasErrors() bool {
	for _, r := range s.Results {
		if !r.Outcome.Success && r.Outcome.Severity == SeverityError {
			return true
		}
	}
	return false
}
