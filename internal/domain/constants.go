package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// FilePermissions is the permission for cache and state files (rw-r--r--)
	FilePermissions = 0o644
)

// Timeout and duration constants
const (
	// DefaultProbeTimeout bounds a single PATH lookup
	DefaultProbeTimeout = 2 * time.Second
	// DefaultGitTimeout bounds a single git invocation
	DefaultGitTimeout = 10 * time.Second
	// DefaultWatchDebounce coalesces bursts of filesystem events in watch mode
	DefaultWatchDebounce = 500 * time.Millisecond
)

// Layout constants
const (
	// DefaultConfigDir holds the tool's project-local state
	DefaultConfigDir = ".cmdverify"
	// DefaultCacheDir is the cache root relative to the project
	DefaultCacheDir = ".cmdverify/cache"
	// DefaultKnowledgeBase is the knowledge base path relative to the project
	DefaultKnowledgeBase = ".cmdverify/knowledge.json"
	// DefaultHistoryDB is the run history database relative to the project
	DefaultHistoryDB = ".cmdverify/history.db"
	// WatermarkFile stores the last validated commit inside the cache dir
	WatermarkFile = "last-validation-commit.txt"
	// CommandsDir holds one JSON file per command inside the cache dir
	CommandsDir = "commands"
	// BadgerDir holds the embedded KV store inside the cache dir
	BadgerDir = "badger"
)

// History constants
const (
	// DefaultHistoryLimit is the default number of runs to display
	DefaultHistoryLimit = 20
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
