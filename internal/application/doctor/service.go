// Package doctor diagnoses the environment a verification run depends on.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	appconfig "github.com/doeshing/cmdverify/internal/application/config"
	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/ports"
)

// GitProbe reports whether git can be used for change detection.
type GitProbe interface {
	Available() bool
	IsRepository(ctx context.Context) bool
	TopLevel(ctx context.Context) (string, error)
}

// KnowledgeInspector loads the knowledge base and lists patterns that fail to compile.
type KnowledgeInspector func(cfg domain.Config) (found bool, invalid []string, err error)

// DocumentCounter counts the documentation files discovery would scan.
type DocumentCounter func(ctx context.Context, cfg domain.Config) (int, error)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Root           string
	Git            GitProbe
	Knowledge      KnowledgeInspector
	Documents      DocumentCounter
	LookupTool     string
}

// Run executes checks and returns a report. The error is non-nil only when the
// configuration cannot be loaded.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		details := err.Error()
		if cfgErr, ok := domain.AsConfigurationError(err); ok && len(cfgErr.Hints) > 0 {
			details += "; " + strings.Join(cfgErr.Hints, "; ")
		}
		checks = append(checks, fail("Config file", details))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("format %s, cache backend %s", formatVersion(cfg), cfg.CacheBackend())))
	}
	cfg.ResolvePaths(s.Root)

	checks = append(checks, s.knowledgeCheck(cfg))
	checks = append(checks, s.gitCheck(ctx))
	checks = append(checks, s.lookupCheck())
	checks = append(checks, cacheDirCheck(cfg.CacheDir))
	if s.Documents != nil {
		checks = append(checks, s.documentsCheck(ctx, cfg))
	}

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) knowledgeCheck(cfg domain.Config) domain.HealthCheck {
	if s.Knowledge == nil {
		return warn("Knowledge base", "inspector not configured")
	}
	found, invalid, err := s.Knowledge(cfg)
	switch {
	case err != nil:
		return fail("Knowledge base", err.Error())
	case !found && cfg.FailOnMissingKnowledgeBase:
		return fail("Knowledge base", fmt.Sprintf("%s is missing and failOnMissingKnowledgeBase is set", cfg.KnowledgeBase))
	case !found:
		return warn("Knowledge base", fmt.Sprintf("%s not found, built-in patterns only (run `cmdverify init`)", cfg.KnowledgeBase))
	case len(invalid) > 0:
		return warn("Knowledge base", fmt.Sprintf("%d invalid pattern(s) ignored: %s", len(invalid), strings.Join(invalid, ", ")))
	default:
		return ok("Knowledge base", cfg.KnowledgeBase)
	}
}

func (s *Service) gitCheck(ctx context.Context) domain.HealthCheck {
	if s.Git == nil || !s.Git.Available() {
		return warn("Git", "git not found, every run revalidates all commands")
	}
	if !s.Git.IsRepository(ctx) {
		return warn("Git", "not a git repository, every run revalidates all commands")
	}
	top, err := s.Git.TopLevel(ctx)
	if err != nil {
		return ok("Git", "repository detected")
	}
	if rel, inside := relativeProject(top, s.Root); inside {
		return ok("Git", fmt.Sprintf("project %s inside repository %s", rel, top))
	}
	return ok("Git", "repository "+top)
}

// relativeProject reports the project's slash path inside the repository, if it is nested.
func relativeProject(top, root string) (string, bool) {
	if top == "" || root == "" {
		return "", false
	}
	rel, err := filepath.Rel(top, root)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (s *Service) lookupCheck() domain.HealthCheck {
	tool := s.LookupTool
	if tool == "" {
		return warn("PATH lookup", "no lookup tool configured")
	}
	path, err := exec.LookPath(tool)
	if err != nil {
		return fail("PATH lookup", fmt.Sprintf("%s not found, availability checks will report every command missing", tool))
	}
	return ok("PATH lookup", path)
}

func (s *Service) documentsCheck(ctx context.Context, cfg domain.Config) domain.HealthCheck {
	n, err := s.Documents(ctx, cfg)
	if err != nil {
		return fail("Documentation", err.Error())
	}
	if n == 0 {
		return warn("Documentation", fmt.Sprintf("no files match include %v", cfg.Include))
	}
	return ok("Documentation", fmt.Sprintf("%d file(s) to scan", n))
}

func cacheDirCheck(dir string) domain.HealthCheck {
	if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
		return fail("Cache directory", err.Error())
	}
	probe, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return fail("Cache directory", fmt.Sprintf("%s is not writable: %v", dir, err))
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return ok("Cache directory", dir)
}

func formatVersion(cfg domain.Config) string {
	if cfg.ConfigFormatVersion == "" {
		return "1"
	}
	return cfg.ConfigFormatVersion
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
