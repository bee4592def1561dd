package impact

import (
	"testing"
	"time"

	"github.com/doeshing/cmdverify/internal/domain"
)

var timeZero time.Time

func TestHasCommandPrefix(t *testing.T) {
	tests := []struct {
		command, prefix string
		want            bool
	}{
		{"npm test", "npm", true},
		{"npm", "npm", true},
		{"npmx run", "npm", false},
		{"npm run build", "npm run", true},
		{"npm runner", "npm run", false},
		{"python3 -m venv .venv", "python", false},
		{"python3 -m venv .venv", "python3", true},
		{"anything", "", false},
	}
	for _, tt := range tests {
		if got := HasCommandPrefix(tt.command, tt.prefix); got != tt.want {
			t.Errorf("HasCommandPrefix(%q, %q) = %v, want %v", tt.command, tt.prefix, got, tt.want)
		}
	}
}

func TestKnowledgeRuleMatchesBaseName(t *testing.T) {
	rule := KnowledgeRule(domainRule("*.toml"))
	if !rule.Matches("config/app.toml") {
		t.Fatal("slash-free pattern should match base name")
	}
	rule = KnowledgeRule(domainRule("config/*.toml"))
	if rule.Matches("other/app.toml") {
		t.Fatal("pattern with a directory must match the full path")
	}
}

func domainRule(pattern string) domain.FileRule {
	return domain.FileRule{FilePattern: pattern, Mode: domain.InvalidateSameFile}
}
