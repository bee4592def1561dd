package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/pkg/logger"
)

func newFileCache(t *testing.T) (*CommandCache, *FileStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "cache")
	store := NewFileStore(filepath.Join(dir, domain.CommandsDir))
	return NewCommandCache(store, dir, logger.Nop()), store, dir
}

func sampleEntry() domain.CacheEntry {
	return domain.CacheEntry{
		Category:    domain.CategorySafe,
		Confidence:  0.95,
		Validated:   true,
		Available:   true,
		Success:     true,
		Message:     "npm is available",
		Severity:    domain.SeverityInfo,
		ValidatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Commit:      "abc123",
	}
}

func TestCommandCacheMissingEntryIsMiss(t *testing.T) {
	cache, _, _ := newFileCache(t)
	_, status, err := cache.Load("npm test")
	if err != nil || status != domain.LoadMiss {
		t.Fatalf("expected silent miss, got status=%s err=%v", status, err)
	}
}

func TestCommandCacheRoundTrip(t *testing.T) {
	cache, store, _ := newFileCache(t)
	if err := cache.Save("  npm test ", sampleEntry()); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	entry, status, err := cache.Load("npm test")
	if err != nil || status != domain.LoadHit {
		t.Fatalf("expected hit, got status=%s err=%v", status, err)
	}
	if entry.Command != "npm test" || entry.Checksum != Key("npm test") || entry.SchemaVersion != 1 {
		t.Fatalf("entry not stamped: %+v", entry)
	}
	if _, err := os.Stat(store.pathFor(Key("npm test"))); err != nil {
		t.Fatalf("expected file at content address: %v", err)
	}
}

func TestCommandCacheDiscardsInvalidJSON(t *testing.T) {
	cache, store, _ := newFileCache(t)
	path := store.pathFor(Key("npm test"))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"command": "npm te`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, status, err := cache.Load("npm test")
	if err != nil || status != domain.LoadCorrupted {
		t.Fatalf("expected corrupted, got status=%s err=%v", status, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("corrupted file must be deleted, stat err=%v", err)
	}
	if _, status, _ := cache.Load("npm test"); status != domain.LoadMiss {
		t.Fatalf("second load should be a plain miss, got %s", status)
	}
}

func TestCommandCacheDiscardsTamperedEntries(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m map[string]interface{})
	}{
		{name: "wrong checksum", mutate: func(m map[string]interface{}) { m["checksum"] = "deadbeef" }},
		{name: "schema version", mutate: func(m map[string]interface{}) { m["schemaVersion"] = 2 }},
		{name: "missing field", mutate: func(m map[string]interface{}) { delete(m, "success") }},
		{name: "confidence as string", mutate: func(m map[string]interface{}) { m["confidence"] = "high" }},
		{name: "boolean as number", mutate: func(m map[string]interface{}) { m["available"] = 1 }},
		{name: "unparseable date", mutate: func(m map[string]interface{}) { m["validatedAt"] = "yesterday" }},
		{name: "unknown category", mutate: func(m map[string]interface{}) { m["category"] = "spicy" }},
		{name: "foreign command", mutate: func(m map[string]interface{}) {
			m["command"] = "yarn test"
			m["checksum"] = Key("yarn test")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, store, _ := newFileCache(t)
			if err := cache.Save("npm test", sampleEntry()); err != nil {
				t.Fatal(err)
			}
			path := store.pathFor(Key("npm test"))
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			var m map[string]interface{}
			if err := json.Unmarshal(data, &m); err != nil {
				t.Fatal(err)
			}
			tt.mutate(m)
			data, _ = json.Marshal(m)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				t.Fatal(err)
			}

			if _, status, err := cache.Load("npm test"); err != nil || status != domain.LoadCorrupted {
				t.Fatalf("expected corrupted, got status=%s err=%v", status, err)
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Fatal("tampered entry must be deleted")
			}
		})
	}
}

func TestCommandCacheSaveOverwrites(t *testing.T) {
	cache, _, _ := newFileCache(t)
	first := sampleEntry()
	if err := cache.Save("npm test", first); err != nil {
		t.Fatal(err)
	}
	second := sampleEntry()
	second.Available = false
	second.Success = false
	if err := cache.Save("npm test", second); err != nil {
		t.Fatal(err)
	}
	entry, status, _ := cache.Load("npm test")
	if status != domain.LoadHit || entry.Success {
		t.Fatalf("expected overwritten entry, got %+v (%s)", entry, status)
	}
}

func TestCommandCacheClearRemovesDirectory(t *testing.T) {
	cache, _, dir := newFileCache(t)
	if err := cache.Save("npm test", sampleEntry()); err != nil {
		t.Fatal(err)
	}
	if err := NewWatermark(dir).Write("abc123"); err != nil {
		t.Fatal(err)
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("cache dir should be gone, stat err=%v", err)
	}
	if commit, _ := NewWatermark(dir).Read(); commit != "" {
		t.Fatalf("watermark should be cleared, got %q", commit)
	}
}

func TestCommandCacheClearKeepsForeignFiles(t *testing.T) {
	cache, _, dir := newFileCache(t)
	if err := cache.Save("npm test", sampleEntry()); err != nil {
		t.Fatal(err)
	}
	notes := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notes, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if _, err := os.Stat(notes); err != nil {
		t.Fatalf("unrelated file should survive Clear: %v", err)
	}
	if _, status, _ := cache.Load("npm test"); status != domain.LoadMiss {
		t.Fatalf("entries should be gone, got %s", status)
	}
}

func TestKeyIsStableAndTrimmed(t *testing.T) {
	if Key("npm test") != Key("  npm test\n") {
		t.Fatal("key must ignore surrounding whitespace")
	}
	if Key("npm test") == Key("npm  test") {
		t.Fatal("inner whitespace is significant")
	}
	if len(Key("x")) != 64 {
		t.Fatalf("expected hex sha256, got %s", Key("x"))
	}
}

func TestCommandCacheEntriesCountsCorruption(t *testing.T) {
	cache, store, _ := newFileCache(t)
	if err := cache.Save("npm test", sampleEntry()); err != nil {
		t.Fatal(err)
	}
	dangerous := sampleEntry()
	dangerous.Category = domain.CategoryDangerous
	if err := cache.Save("rm -rf build", dangerous); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(Key("make all"), []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	entries, corrupted, err := cache.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || corrupted != 1 {
		t.Fatalf("expected 2 entries and 1 corrupted, got %d and %d", len(entries), corrupted)
	}
	if _, err := os.Stat(store.pathFor(Key("make all"))); err != nil {
		t.Fatalf("Entries must not delete corrupted files: %v", err)
	}
}
