package security

import (
	"regexp"
	"strings"

	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/ports"
)

// PatternClassifier implements the built-in classification tables.
type PatternClassifier struct {
	families []family
}

type family struct {
	category   domain.Category
	confidence float64
	patterns   []compiledPattern
}

type compiledPattern struct {
	re   *regexp.Regexp
	rule PatternRule
}

// PatternRule describes a regex-based classification rule.
type PatternRule struct {
	Pattern string
	Message string
}

// Match is the rule that produced a classification.
type Match struct {
	Classification domain.Classification
	Rule           PatternRule
}

// NewPatternClassifier compiles the built-in tables. The tables are static, so a
// compile failure is a programming error and panics.
func NewPatternClassifier() *PatternClassifier {
	return &PatternClassifier{
		families: []family{
			compileFamily(domain.CategoryDangerous, domain.ConfidencePattern, dangerousPatterns()),
			compileFamily(domain.CategorySafe, domain.ConfidencePattern, safePatterns()),
			compileFamily(domain.CategoryConditional, domain.ConfidenceConditional, conditionalPatterns()),
		},
	}
}

func compileFamily(category domain.Category, confidence float64, rules []PatternRule) family {
	f := family{category: category, confidence: confidence}
	for _, rule := range rules {
		f.patterns = append(f.patterns, compiledPattern{
			re:   regexp.MustCompile(rule.Pattern),
			rule: rule,
		})
	}
	return f
}

// Classify implements ports.Classifier. Dangerous rules are always checked first,
// so a command that also looks safe is still reported as dangerous.
func (c *PatternClassifier) Classify(command string) (domain.Classification, bool) {
	return c.Explain(command).Classification, true
}

// Explain classifies the command and returns the matching rule, if any.
func (c *PatternClassifier) Explain(command string) Match {
	command = strings.TrimSpace(command)
	for _, f := range c.families {
		for _, p := range f.patterns {
			if p.re.MatchString(command) {
				return Match{
					Classification: domain.Classification{Category: f.category, Confidence: f.confidence},
					Rule:           p.rule,
				}
			}
		}
	}
	return Match{
		Classification: domain.Classification{Category: domain.CategoryUnknown, Confidence: domain.ConfidenceUnknown},
	}
}

func dangerousPatterns() []PatternRule {
	return []PatternRule{
		{Pattern: `^(sudo\s+)?rm\s+(-[a-zA-Z]*[rR][a-zA-Z]*\s+|-[a-zA-Z]*[fF][a-zA-Z]*\s+)*(/|/\*|~|~/|\$HOME|\*)(\s|$)`, Message: "Recursive delete of a root, home or wildcard path"},
		{Pattern: `^sudo\s+rm\s`, Message: "Deleting files as root"},
		{Pattern: `^(sudo\s+)?dd\s+.*\bof=/dev/`, Message: "Raw disk writing"},
		{Pattern: `^(sudo\s+)?dd\s+if=`, Message: "Raw disk copy"},
		{Pattern: `^(sudo\s+)?mkfs(\.\w+)?\s`, Message: "Formatting filesystem"},
		{Pattern: `>\s*/dev/(sd[a-z]|nvme\d|hd[a-z]|disk\d)`, Message: "Writing to block device"},
		{Pattern: `^(sudo\s+)?chmod\s+(-R\s+)?777\s+/(\s|$)`, Message: "World-writable root"},
		{Pattern: `^(curl|wget)\s.*\|\s*(sudo\s+)?(ba|z)?sh\b`, Message: "Piping a remote script into a shell"},
		{Pattern: `^:\(\)\s*\{\s*:\s*\|\s*:\s*&\s*\}\s*;\s*:`, Message: "Fork bomb"},
		{Pattern: `^(sudo\s+)?(shutdown|reboot|halt|poweroff)\b`, Message: "Stopping the host"},
		{Pattern: `^git\s+push\s+.*(--force\b|-f\b)`, Message: "Force push rewrites shared history"},
		{Pattern: `^git\s+reset\s+--hard\b`, Message: "Discards uncommitted work"},
		{Pattern: `^git\s+clean\s+-[a-zA-Z]*f`, Message: "Deletes untracked files"},
		{Pattern: `(?i)\bdrop\s+(database|table|schema)\b`, Message: "Drops database objects"},
		{Pattern: `^(sudo\s+)?chown\s+-R\s+\S+\s+/(\s|$)`, Message: "Recursive ownership change of root"},
	}
}

func safePatterns() []PatternRule {
	return []PatternRule{
		{Pattern: `^(npm|yarn|pnpm)\s+(test|t|run\s+[\w:.-]+|install|i|ci|build|start|lint|typecheck|audit|outdated|ls|list)(\s|$)`, Message: "Project script or dependency command"},
		{Pattern: `^(npm|yarn|pnpm)$`, Message: "Package manager install"},
		{Pattern: `^(node|npm|yarn|pnpm|npx|python3?|pip3?|go|cargo|rustc|java|ruby|deno|bun|git|docker|kubectl)\s+(--version|-v|version|-V)$`, Message: "Version query"},
		{Pattern: `^git\s+(status|log|diff|show|branch|fetch|pull|clone|checkout|switch|add|commit|push|tag|remote|init|stash)(\s|$)`, Message: "Standard git workflow"},
		{Pattern: `^(ls|cat|echo|pwd|cd|mkdir|touch|head|tail|grep|find|which|wc|less|more|tree|env|printenv)(\s|$)`, Message: "Read-only shell utility"},
		{Pattern: `^go\s+(build|test|run|vet|fmt|mod|generate|install|get)(\s|$)`, Message: "Go toolchain"},
		{Pattern: `^cargo\s+(build|test|run|check|fmt|clippy)(\s|$)`, Message: "Cargo toolchain"},
		{Pattern: `^(python3?|py)\s+-m\s+(pytest|unittest|venv|pip)\b`, Message: "Python module invocation"},
		{Pattern: `^(pytest|tox|make|just)(\s|$)`, Message: "Test or build runner"},
		{Pattern: `^(tsc|eslint|prettier|jest|vitest|mocha)(\s|$)`, Message: "JavaScript tooling"},
	}
}

func conditionalPatterns() []PatternRule {
	return []PatternRule{
		{Pattern: `^npx\s`, Message: "Downloads and runs a package"},
		{Pattern: `^(pip3?|pipx)\s+install\b`, Message: "Installs Python packages"},
		{Pattern: `^(brew|apt|apt-get|yum|dnf|pacman|choco|winget|snap)\s`, Message: "System package manager"},
		{Pattern: `^sudo\s`, Message: "Requires elevated privileges"},
		{Pattern: `^docker(-compose)?\s`, Message: "Container runtime"},
		{Pattern: `^(kubectl|helm|terraform|ansible|aws|gcloud|az)\s`, Message: "Touches remote infrastructure"},
		{Pattern: `^(curl|wget)\s`, Message: "Network access"},
		{Pattern: `^(rm|mv|cp|chmod|chown|ln)\s`, Message: "Modifies the filesystem"},
		{Pattern: `^(export|source|\.)\s`, Message: "Changes the shell environment"},
		{Pattern: `^(python3?|node|ruby|bash|sh|zsh|perl)\s+\S+`, Message: "Runs a script"},
		{Pattern: `^\./\S+`, Message: "Runs a local script"},
	}
}

var _ ports.Classifier = (*PatternClassifier)(nil)
