// Package cache persists validation results addressed by a hash of the command text.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/ports"
)

// CommandCache validates entries on the way in and out of a KeyValueStore.
// Anything that fails validation is deleted and reported as corrupted; it is
// never returned to the caller.
type CommandCache struct {
	store  ports.KeyValueStore
	dir    string
	logger ports.Logger
}

// NewCommandCache wraps store. dir is the cache root removed by Clear once empty.
func NewCommandCache(store ports.KeyValueStore, dir string, logger ports.Logger) *CommandCache {
	return &CommandCache{store: store, dir: dir, logger: logger}
}

// Key returns the content address of a command. It doubles as the entry checksum.
func Key(command string) string {
	sum := sha256.Sum256([]byte(domain.NormalizeCommand(command)))
	return hex.EncodeToString(sum[:])
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
	kindBool
	kindDate
)

var requiredFields = map[string]fieldKind{
	"command":       kindString,
	"category":      kindString,
	"confidence":    kindNumber,
	"validated":     kindBool,
	"available":     kindBool,
	"success":       kindBool,
	"validatedAt":   kindDate,
	"checksum":      kindString,
	"schemaVersion": kindNumber,
}

var optionalFields = map[string]fieldKind{
	"message":    kindString,
	"suggestion": kindString,
	"severity":   kindString,
	"commit":     kindString,
}

// Load returns the cached entry for command. A missing entry is LoadMiss with no
// error; a malformed one is deleted and reported as LoadCorrupted.
func (c *CommandCache) Load(command string) (domain.CacheEntry, domain.LoadStatus, error) {
	key := Key(command)
	data, ok, err := c.store.Get(key)
	if err != nil {
		return domain.CacheEntry{}, domain.LoadMiss, fmt.Errorf("read cache entry %s: %w", key, err)
	}
	if !ok {
		return domain.CacheEntry{}, domain.LoadMiss, nil
	}

	entry, err := decodeEntry(data, domain.NormalizeCommand(command))
	if err != nil {
		c.discard(key, command, err)
		return domain.CacheEntry{}, domain.LoadCorrupted, nil
	}
	return entry, domain.LoadHit, nil
}

func decodeEntry(data []byte, command string) (domain.CacheEntry, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.CacheEntry{}, fmt.Errorf("invalid JSON: %w", err)
	}
	for name, kind := range requiredFields {
		value, present := raw[name]
		if !present {
			return domain.CacheEntry{}, fmt.Errorf("missing field %q", name)
		}
		if err := checkKind(name, value, kind); err != nil {
			return domain.CacheEntry{}, err
		}
	}
	for name, kind := range optionalFields {
		if value, present := raw[name]; present && value != nil {
			if err := checkKind(name, value, kind); err != nil {
				return domain.CacheEntry{}, err
			}
		}
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return domain.CacheEntry{}, fmt.Errorf("decode entry: %w", err)
	}
	if entry.SchemaVersion != domain.CacheSchemaVersion {
		return domain.CacheEntry{}, fmt.Errorf("schema version %d, want %d", entry.SchemaVersion, domain.CacheSchemaVersion)
	}
	if _, ok := domain.ParseCategory(string(entry.Category)); !ok {
		return domain.CacheEntry{}, fmt.Errorf("unknown category %q", entry.Category)
	}
	if entry.Command != command {
		return domain.CacheEntry{}, fmt.Errorf("entry belongs to a different command")
	}
	if entry.Checksum != Key(entry.Command) {
		return domain.CacheEntry{}, fmt.Errorf("checksum mismatch")
	}
	return entry, nil
}

func checkKind(name string, value interface{}, kind fieldKind) error {
	switch kind {
	case kindString:
		if _, ok := value.(string); ok {
			return nil
		}
	case kindNumber:
		if _, ok := value.(float64); ok {
			return nil
		}
	case kindBool:
		if _, ok := value.(bool); ok {
			return nil
		}
	case kindDate:
		if s, ok := value.(string); ok {
			if _, err := time.Parse(time.RFC3339Nano, s); err == nil {
				return nil
			}
		}
	}
	return fmt.Errorf("field %q has the wrong type", name)
}

func (c *CommandCache) discard(key, command string, cause error) {
	fields := map[string]interface{}{
		"key":     key,
		"command": command,
		"reason":  cause.Error(),
	}
	if err := c.store.Delete(key); err != nil {
		fields["delete_error"] = err.Error()
	}
	if c.logger != nil {
		c.logger.Warn("discarding corrupted cache entry", fields)
	}
}

// Save stamps the checksum and schema version and overwrites any prior entry.
func (c *CommandCache) Save(command string, entry domain.CacheEntry) error {
	entry.Command = domain.NormalizeCommand(command)
	entry.Checksum = Key(entry.Command)
	entry.SchemaVersion = domain.CacheSchemaVersion
	if entry.ValidatedAt.IsZero() {
		entry.ValidatedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	return c.store.Put(entry.Checksum, data)
}

// Clear drops every entry and the watermark, then removes the cache directory
// if nothing else lives in it.
func (c *CommandCache) Clear() error {
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("clear cache store: %w", err)
	}
	if c.dir == "" {
		return nil
	}
	if err := NewWatermark(c.dir).Remove(); err != nil {
		return err
	}
	// Only an empty dir is removed. cacheDir is user-configurable and may hold
	// files this cache does not own, and an open badger store keeps its files.
	_ = os.Remove(c.dir)
	return nil
}

// Dir exposes the cache root.
func (c *CommandCache) Dir() string {
	return c.dir
}

var _ ports.CommandCache = (*CommandCache)(nil)

// Entries decodes every stored entry for reporting. Entries that fail
// validation are counted, not repaired; the next Load of that command does
// that. It requires a store that can enumerate its keys.
func (c *CommandCache) Entries() ([]domain.CacheEntry, int, error) {
	lister, ok := c.store.(interface{ Keys() ([]string, error) })
	if !ok {
		return nil, 0, fmt.Errorf("cache store cannot list entries")
	}
	keys, err := lister.Keys()
	if err != nil {
		return nil, 0, fmt.Errorf("list cache entries: %w", err)
	}
	sort.Strings(keys)

	var entries []domain.CacheEntry
	corrupted := 0
	for _, key := range keys {
		data, ok, err := c.store.Get(key)
		if err != nil {
			return nil, 0, fmt.Errorf("read cache entry %s: %w", key, err)
		}
		if !ok {
			continue
		}
		var probe struct {
			Command string `json:"command"`
		}
		if json.Unmarshal(data, &probe) != nil || Key(probe.Command) != key {
			corrupted++
			continue
		}
		entry, err := decodeEntry(data, probe.Command)
		if err != nil {
			corrupted++
			continue
		}
		entries = append(entries, entry)
	}
	return entries, corrupted, nil
}
