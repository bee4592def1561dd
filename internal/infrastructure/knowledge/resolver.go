package knowledge

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/ports"
)

// scriptRunner matches project script invocations. Skip patterns never apply to
// them, however broad the pattern: these are real commands.
var scriptRunner = regexp.MustCompile(`^(npm|yarn|pnpm)\s+run\s`)

// Resolver applies knowledge base overrides ahead of the built-in tables.
type Resolver struct {
	skip      ruleSet
	overrides []categoryRules
	fileRules []domain.FileRule
	invalid   []InvalidPattern
}

type categoryRules struct {
	category domain.Category
	rules    ruleSet
}

type ruleSet struct {
	exact    []string
	patterns []*regexp.Regexp
}

// InvalidPattern records a knowledge base regex that failed to compile.
type InvalidPattern struct {
	Category domain.Category
	Pattern  string
	Err      string
}

// NewResolver compiles the knowledge base once for the run. Each pattern is
// compiled on its own so a malformed one is dropped without affecting the rest.
func NewResolver(kb *domain.KnowledgeBase, logger ports.Logger) *Resolver {
	r := &Resolver{}
	if kb == nil {
		return r
	}
	rules := kb.ValidationRules
	r.skip = r.compile(domain.CategorySkip, rules.Skip, logger)
	r.overrides = []categoryRules{
		{category: domain.CategoryDangerous, rules: r.compile(domain.CategoryDangerous, rules.Dangerous, logger)},
		{category: domain.CategorySafe, rules: r.compile(domain.CategorySafe, rules.Safe, logger)},
		{category: domain.CategoryConditional, rules: r.compile(domain.CategoryConditional, rules.Conditional, logger)},
	}
	r.fileRules = append(r.fileRules, kb.FilePatterns.Rules...)
	return r
}

func (r *Resolver) compile(category domain.Category, set domain.RuleSet, logger ports.Logger) ruleSet {
	var out ruleSet
	for _, exact := range set.ExactMatches {
		if exact = strings.TrimSpace(exact); exact != "" {
			out.exact = append(out.exact, exact)
		}
	}
	for _, pattern := range set.Patterns {
		re, err := compileAnchored(pattern)
		if err != nil {
			r.invalid = append(r.invalid, InvalidPattern{Category: category, Pattern: pattern, Err: err.Error()})
			if logger != nil {
				logger.Warn("ignoring invalid knowledge base pattern", map[string]interface{}{
					"category": string(category),
					"pattern":  pattern,
					"error":    err.Error(),
				})
			}
			continue
		}
		out.patterns = append(out.patterns, re)
	}
	return out
}

func compileAnchored(pattern string) (*regexp.Regexp, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	if !strings.HasPrefix(pattern, "^") {
		pattern = "^(?:" + pattern + ")"
	}
	return regexp.Compile(pattern)
}

// Classify implements ports.Classifier.
func (r *Resolver) Classify(command string) (domain.Classification, bool) {
	command = strings.TrimSpace(command)
	if command == "" {
		return domain.Classification{}, false
	}

	if matchesExact(r.skip.exact, command) {
		return domain.Classification{Category: domain.CategorySkip, Confidence: domain.ConfidenceExact}, true
	}
	if !scriptRunner.MatchString(command) && matchesPattern(r.skip.patterns, command) {
		return domain.Classification{Category: domain.CategorySkip, Confidence: domain.ConfidencePattern}, true
	}

	for _, o := range r.overrides {
		if matchesExact(o.rules.exact, command) {
			return domain.Classification{Category: o.category, Confidence: domain.ConfidenceExact}, true
		}
		if matchesPattern(o.rules.patterns, command) {
			return domain.Classification{Category: o.category, Confidence: domain.ConfidencePattern}, true
		}
	}
	return domain.Classification{}, false
}

// FileRules returns the knowledge base invalidation rules in authored order.
func (r *Resolver) FileRules() []domain.FileRule {
	return r.fileRules
}

// Invalid lists the patterns dropped at compile time.
func (r *Resolver) Invalid() []InvalidPattern {
	return r.invalid
}

// matchesExact reports whether command equals an entry or starts with it on a word boundary.
func matchesExact(entries []string, command string) bool {
	for _, entry := range entries {
		if command == entry {
			return true
		}
		if strings.HasPrefix(command, entry) {
			rest := command[len(entry):]
			if rest != "" && unicode.IsSpace(rune(rest[0])) {
				return true
			}
		}
	}
	return false
}

func matchesPattern(patterns []*regexp.Regexp, command string) bool {
	for _, re := range patterns {
		if re.MatchString(command) {
			return true
		}
	}
	return false
}

var _ ports.Classifier = (*Resolver)(nil)
