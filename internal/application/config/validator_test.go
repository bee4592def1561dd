package config

import (
	"strings"
	"testing"

	"github.com/doeshing/cmdverify/internal/domain"
)

func validConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion:   "1",
		Include:               []string{"**/*.md"},
		Ignore:                []string{"vendor/**"},
		CacheDir:              domain.DefaultCacheDir,
		KnowledgeBase:         domain.DefaultKnowledgeBase,
		TreatUnknownAsWarning: true,
		ProbeTimeout:          "2s",
		Cache:                 domain.CacheSettings{Backend: domain.CacheBackendFile},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Config)
		field  string
	}{
		{"no include", func(c *domain.Config) { c.Include = nil }, "include"},
		{"bad glob", func(c *domain.Config) { c.Ignore = []string{"docs/[draft"} }, "ignore[0]"},
		{"empty cache dir", func(c *domain.Config) { c.CacheDir = "" }, "cacheDir"},
		{"bad timeout", func(c *domain.Config) { c.ProbeTimeout = "soon" }, "probeTimeout"},
		{"negative timeout", func(c *domain.Config) { c.ProbeTimeout = "-1s" }, "probeTimeout"},
		{"unknown backend", func(c *domain.Config) { c.Cache.Backend = "redis" }, "cache.backend"},
		{"future format", func(c *domain.Config) { c.ConfigFormatVersion = "2" }, "configFormatVersion"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := Validate(cfg)
			cfgErr, ok := domain.AsConfigurationError(err)
			if !ok {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if !strings.Contains(cfgErr.Error(), tt.field) {
				t.Errorf("error %q does not name %s", cfgErr.Error(), tt.field)
			}
			if len(cfgErr.Hints) == 0 || cfgErr.Hints[0] == "" {
				t.Error("expected a remediation hint")
			}
		})
	}
}
