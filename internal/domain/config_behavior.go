package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// ProbeTimeoutDuration parses the configured probe timeout, falling back to the default.
func (c *Config) ProbeTimeoutDuration() time.Duration {
	if c.ProbeTimeout == "" {
		return DefaultProbeTimeout
	}
	d, err := time.ParseDuration(c.ProbeTimeout)
	if err != nil || d <= 0 {
		return DefaultProbeTimeout
	}
	return d
}

// CacheBackend returns the configured backend name, defaulting to the file store.
func (c *Config) CacheBackend() string {
	if c.Cache.Backend == "" {
		return CacheBackendFile
	}
	return c.Cache.Backend
}

// ResolvePaths makes every relative path in the config absolute against root.
func (c *Config) ResolvePaths(root string) {
	c.CacheDir = resolveAgainst(root, c.CacheDir)
	c.KnowledgeBase = resolveAgainst(root, c.KnowledgeBase)
	if c.HistoryDB != "" {
		c.HistoryDB = resolveAgainst(root, c.HistoryDB)
	}
	if c.MetricsFile != "" {
		c.MetricsFile = resolveAgainst(root, c.MetricsFile)
	}
}

// CacheDirRelative returns the cache dir as a slash path relative to root, if it lives inside it.
func (c *Config) CacheDirRelative(root string) (string, bool) {
	return relativeTo(root, c.CacheDir)
}

// SettingsFiles returns the root-relative slash paths of every file that can
// change a verdict: the config file candidates, the config file in use and the
// knowledge base. Files outside root are left out since git diffs never list them.
func (c *Config) SettingsFiles(root, configPath string, candidates []string) []string {
	seen := map[string]struct{}{}
	var files []string
	add := func(rel string) {
		if _, ok := seen[rel]; ok || rel == "" {
			return
		}
		seen[rel] = struct{}{}
		files = append(files, rel)
	}
	for _, name := range candidates {
		add(filepath.ToSlash(name))
	}
	for _, path := range []string{configPath, c.KnowledgeBase} {
		if path == "" {
			continue
		}
		if rel, ok := relativeTo(root, resolveAgainst(root, path)); ok {
			add(rel)
		}
	}
	return files
}

func relativeTo(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func resolveAgainst(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, filepath.FromSlash(path))
}
