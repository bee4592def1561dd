// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the verification core and external
// adapters (infrastructure). Following the Ports and Adapters (Hexagonal) pattern,
// these interfaces keep the orchestrator independent of specific implementations
// like the cache backend, the git executable, or the markdown parser.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., Classifier, KeyValueStore)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/doeshing/cmdverify/internal/domain"
)

// ConfigProvider loads the effective configuration for a project.
// Implementations typically read .cmdverify.yaml from the project root.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// Classifier is one link in the classification chain.
// It returns ok == false when it has no opinion about the command.
type Classifier interface {
	Classify(command string) (domain.Classification, bool)
}

// AvailabilityProber checks whether a command's executable is on PATH.
// A missing binary is a normal outcome, not an error.
type AvailabilityProber interface {
	Probe(ctx context.Context, entry domain.CommandEntry) domain.Availability
}

// KeyValueStore is the raw persistence beneath the command cache.
// Get returns ok == false for a missing key.
type KeyValueStore interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Clear() error
}

// CommandCache stores validated results addressed by command text.
type CommandCache interface {
	Load(command string) (domain.CacheEntry, domain.LoadStatus, error)
	Save(command string, entry domain.CacheEntry) error
	Clear() error
}

// WatermarkStore persists the last validated commit.
type WatermarkStore interface {
	Read() (string, error)
	Write(commit string) error
}

// GitClient exposes the small slice of git the change analyzer needs.
type GitClient interface {
	CurrentCommit(ctx context.Context) (string, error)
	ChangedFiles(ctx context.Context, from, to string) ([]string, error)
}

// DocumentSource discovers candidate commands in project documentation.
type DocumentSource interface {
	Discover(ctx context.Context) ([]domain.ExtractedCommand, error)
}

// CommandExtractor turns one markdown file into candidate commands.
type CommandExtractor interface {
	Extract(path string, content []byte) []domain.ExtractedCommand
}

// ImpactAnalyzer decides which commands need revalidation.
type ImpactAnalyzer interface {
	Analyze(ctx context.Context, state *domain.RunState, commands []domain.CommandEntry)
}

// RunRecorder keeps a history of completed runs.
type RunRecorder interface {
	Save(record domain.RunRecord) error
	Records(limit int) ([]domain.RunRecord, error)
}

// MetricsSink receives the summary of a completed run.
type MetricsSink interface {
	Observe(summary domain.Summary) error
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stderr, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
