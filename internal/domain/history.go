package domain

import "time"

// CacheSchemaVersion is the only schema version accepted on load.
const CacheSchemaVersion = 1

// CacheEntry is the persisted validation result for one distinct command.
type CacheEntry struct {
	Command       string    `json:"command"`
	Category      Category  `json:"category"`
	Confidence    float64   `json:"confidence"`
	Validated     bool      `json:"validated"`
	Available     bool      `json:"available"`
	Success       bool      `json:"success"`
	Message       string    `json:"message"`
	Suggestion    string    `json:"suggestion"`
	Severity      Severity  `json:"severity"`
	ValidatedAt   time.Time `json:"validatedAt"`
	Commit        string    `json:"commit"`
	Checksum      string    `json:"checksum"`
	SchemaVersion int       `json:"schemaVersion"`
}

// LoadStatus distinguishes the outcomes of a cache lookup.
type LoadStatus int

const (
	LoadMiss LoadStatus = iota
	LoadHit
	LoadCorrupted
)

func (s LoadStatus) String() string {
	switch s {
	case LoadHit:
		return "hit"
	case LoadCorrupted:
		return "corrupted"
	default:
		return "miss"
	}
}

// RunRecord is a completed run as stored in the history database.
type RunRecord struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	DurationMS  int64     `json:"duration_ms"`
	Commit      string    `json:"commit"`
	Total       int       `json:"total"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
	CacheHits   int       `json:"cache_hits"`
	CacheMisses int       `json:"cache_misses"`
	Repaired    int       `json:"repaired"`
	Forced      bool      `json:"forced"`
}
