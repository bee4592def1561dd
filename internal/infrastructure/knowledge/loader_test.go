package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/doeshing/cmdverify/internal/domain"
)

func TestLoadMissingFileIsTolerated(t *testing.T) {
	kb, found, err := Load(filepath.Join(t.TempDir(), "knowledge.json"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found || kb == nil {
		t.Fatalf("expected empty knowledge base, got %+v found=%v", kb, found)
	}
}

func TestLoadMissingFileStrictIsConfigurationError(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "knowledge.json"), true)
	cfgErr, ok := domain.AsConfigurationError(err)
	if !ok {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if len(cfgErr.Hints) == 0 {
		t.Fatal("configuration errors must carry remediation hints")
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(path, false); err == nil {
		t.Fatal("expected parse error")
	} else if _, ok := domain.AsConfigurationError(err); !ok {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
}

func TestLoadParsesRulesAndFilePatterns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.json")
	raw := `{
  "validationRules": {
    "skip": {"exactMatches": ["claude"]},
    "safe": {"patterns": ["make\\s+\\w+"]}
  },
  "filePatterns": {
    "rules": [
      {"filePattern": "Dockerfile", "invalidates": ["docker"]},
      {"filePattern": "docs/**/*.md", "invalidates": "same-file"}
    ]
  }
}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	kb, found, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !found {
		t.Fatal("expected found=true")
	}
	if got := kb.ValidationRules.Skip.ExactMatches; len(got) != 1 || got[0] != "claude" {
		t.Fatalf("skip exact matches = %v", got)
	}
	if len(kb.FilePatterns.Rules) != 2 || kb.FilePatterns.Rules[1].Mode != domain.InvalidateSameFile {
		t.Fatalf("file rules = %+v", kb.FilePatterns.Rules)
	}
}
