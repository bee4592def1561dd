package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/ports"
)

// alwaysSkipped directories are never scanned regardless of include globs.
var alwaysSkipped = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
}

// Source walks a project tree and extracts commands from matching files.
type Source struct {
	root      string
	include   []string
	ignore    []string
	extractor ports.CommandExtractor
	logger    ports.Logger
}

// NewSource builds a discovery walker. The cache directory, when it lives
// inside root, is ignored automatically.
func NewSource(root string, cfg domain.Config, extractor ports.CommandExtractor, logger ports.Logger) *Source {
	ignore := append([]string(nil), cfg.Ignore...)
	if rel, ok := cfg.CacheDirRelative(root); ok {
		ignore = append(ignore, rel+"/**")
	}
	return &Source{
		root:      root,
		include:   cfg.Include,
		ignore:    ignore,
		extractor: extractor,
		logger:    logger,
	}
}

// Files returns matching slash paths relative to root, sorted.
func (s *Source) Files(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Debug("skipping unreadable path", map[string]interface{}{"path": path, "error": err.Error()})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if alwaysSkipped[d.Name()] || s.ignored(rel) || s.ignored(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if s.included(rel) && !s.ignored(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.root, err)
	}
	sort.Strings(files)
	return files, nil
}

// Discover extracts commands from every matching file, in path order.
func (s *Source) Discover(ctx context.Context) ([]domain.ExtractedCommand, error) {
	files, err := s.Files(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.ExtractedCommand
	for _, rel := range files {
		content, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
		if err != nil {
			s.logger.Warn("failed to read documentation file", map[string]interface{}{"file": rel, "error": err.Error()})
			continue
		}
		out = append(out, s.extractor.Extract(rel, content)...)
	}
	s.logger.Debug("discovery complete", map[string]interface{}{"files": len(files), "commands": len(out)})
	return out, nil
}

func (s *Source) included(rel string) bool {
	return matchAny(s.include, rel)
}

func (s *Source) ignored(rel string) bool {
	return matchAny(s.ignore, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

var _ ports.DocumentSource = (*Source)(nil)
