package impact

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/doeshing/cmdverify/internal/domain"
)

// Rule maps a changed file onto the commands it invalidates.
type Rule struct {
	Name string
	// Matches reports whether the rule applies to a changed slash path.
	Matches func(file string) bool
	// Everything invalidates every command when the rule matches.
	Everything bool
	// Affects reports whether a command is invalidated by the changed file.
	Affects func(file string, entry domain.CommandEntry) bool
}

var (
	manifestFiles = []string{
		"package.json", "package-lock.json", "npm-shrinkwrap.json",
		"yarn.lock", "pnpm-lock.yaml", "pnpm-workspace.yaml",
	}
	nodePrefixes = []string{"npm", "yarn", "pnpm", "node", "npx"}

	buildConfigGlobs = []string{
		"tsconfig*.json", "webpack.*", "vite.config.*", "rollup.config.*",
		"babel.config.*", "Makefile", ".eslintrc*", "jest.config.*",
	}
	buildKeywords = []string{"build", "test", "typecheck"}

	sourceDirs = []string{"src", "lib", "app", "test", "tests", "internal", "cmd", "pkg"}

	pythonGlobs    = []string{"requirements*.txt", "setup.py", "setup.cfg", "pyproject.toml", "Pipfile*"}
	pythonPrefixes = []string{"pip", "pip3", "python", "python3"}
)

// BuiltinRules returns the default invalidation rules in evaluation order.
func BuiltinRules() []Rule {
	return []Rule{
		{
			Name:    "markdown",
			Matches: isMarkdown,
			Affects: sameFile,
		},
		{
			Name:    "node-manifest",
			Matches: baseIn(manifestFiles),
			Affects: prefixed(nodePrefixes),
		},
		{
			Name:    "build-config",
			Matches: baseGlob(buildConfigGlobs),
			Affects: containsAny(buildKeywords),
		},
		{
			Name:    "source-tree",
			Matches: underDir(sourceDirs),
			Affects: containsAny([]string{"test"}),
		},
		{
			Name:    "python-manifest",
			Matches: baseGlob(pythonGlobs),
			Affects: prefixed(pythonPrefixes),
		},
	}
}

// SettingsRule invalidates everything when one of the given slash paths
// changes. It covers the config file and the knowledge base, whose edits can
// flip any cached verdict.
func SettingsRule(paths []string) Rule {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p != "" {
			set[p] = struct{}{}
		}
	}
	return Rule{
		Name: "settings",
		Matches: func(file string) bool {
			_, ok := set[file]
			return ok
		},
		Everything: true,
	}
}

// KnowledgeRule converts a knowledge base file rule.
// Patterns without a slash also match the base name of the changed file.
func KnowledgeRule(fr domain.FileRule) Rule {
	pattern := fr.FilePattern
	r := Rule{
		Name: "knowledge:" + pattern,
		Matches: func(file string) bool {
			if ok, _ := doublestar.Match(pattern, file); ok {
				return true
			}
			if !strings.Contains(pattern, "/") {
				ok, _ := doublestar.Match(pattern, path.Base(file))
				return ok
			}
			return false
		},
	}
	switch fr.Mode {
	case domain.InvalidateAll:
		r.Everything = true
	case domain.InvalidateSameFile:
		r.Affects = sameFile
	default:
		r.Affects = prefixed(fr.Prefixes)
	}
	return r
}

func isMarkdown(file string) bool {
	switch strings.ToLower(path.Ext(file)) {
	case ".md", ".markdown", ".mdx":
		return true
	}
	return false
}

func sameFile(file string, entry domain.CommandEntry) bool {
	return entry.InFile(file)
}

func baseIn(names []string) func(string) bool {
	return func(file string) bool {
		base := path.Base(file)
		for _, n := range names {
			if base == n {
				return true
			}
		}
		return false
	}
}

func baseGlob(globs []string) func(string) bool {
	return func(file string) bool {
		base := path.Base(file)
		for _, g := range globs {
			if ok, _ := doublestar.Match(g, base); ok {
				return true
			}
		}
		return false
	}
}

func underDir(dirs []string) func(string) bool {
	return func(file string) bool {
		first, _, found := strings.Cut(file, "/")
		if !found {
			return false
		}
		for _, d := range dirs {
			if first == d {
				return true
			}
		}
		return false
	}
}

// HasCommandPrefix matches whole words: "npm" matches "npm test" but not "npmx".
func HasCommandPrefix(command, prefix string) bool {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" || !strings.HasPrefix(command, prefix) {
		return false
	}
	if len(command) == len(prefix) {
		return true
	}
	next := command[len(prefix)]
	return next == ' ' || next == '\t'
}

func prefixed(prefixes []string) func(string, domain.CommandEntry) bool {
	return func(_ string, entry domain.CommandEntry) bool {
		for _, p := range prefixes {
			if HasCommandPrefix(entry.Command, p) {
				return true
			}
		}
		return false
	}
}

func containsAny(words []string) func(string, domain.CommandEntry) bool {
	return func(_ string, entry domain.CommandEntry) bool {
		lower := strings.ToLower(entry.Command)
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}
}
