package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// KnowledgeBase is the project-authored override file.
type KnowledgeBase struct {
	ValidationRules ValidationRules `json:"validationRules"`
	FilePatterns    FilePatterns    `json:"filePatterns"`
}

// ValidationRules holds per-category overrides.
type ValidationRules struct {
	Skip        RuleSet `json:"skip"`
	Safe        RuleSet `json:"safe"`
	Conditional RuleSet `json:"conditional"`
	Dangerous   RuleSet `json:"dangerous"`
}

// RuleSet is a list of regex patterns plus literal command matches.
type RuleSet struct {
	Patterns     []string `json:"patterns"`
	ExactMatches []string `json:"exactMatches"`
}

// FilePatterns wraps the knowledge base invalidation rules.
type FilePatterns struct {
	Rules []FileRule `json:"rules"`
}

// InvalidationMode selects what a file rule invalidates.
type InvalidationMode string

const (
	InvalidateAll      InvalidationMode = "all"
	InvalidateSameFile InvalidationMode = "same-file"
	InvalidatePrefix   InvalidationMode = "prefix"
)

// FileRule maps a changed-file glob onto the commands it invalidates.
type FileRule struct {
	FilePattern string
	Mode        InvalidationMode
	Prefixes    []string
}

type fileRuleJSON struct {
	FilePattern string          `json:"filePattern"`
	Invalidates json.RawMessage `json:"invalidates"`
}

// UnmarshalJSON accepts "all", "same-file", a single prefix string or a list of prefixes.
func (r *FileRule) UnmarshalJSON(data []byte) error {
	var raw fileRuleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.FilePattern = strings.TrimSpace(raw.FilePattern)
	if r.FilePattern == "" {
		return fmt.Errorf("file rule: filePattern is required")
	}
	if len(raw.Invalidates) == 0 || string(raw.Invalidates) == "null" {
		return fmt.Errorf("file rule %q: invalidates is required", r.FilePattern)
	}

	var single string
	if err := json.Unmarshal(raw.Invalidates, &single); err == nil {
		switch strings.ToLower(strings.TrimSpace(single)) {
		case "all", "*":
			r.Mode = InvalidateAll
		case "same-file", "self", "file":
			r.Mode = InvalidateSameFile
		case "":
			return fmt.Errorf("file rule %q: invalidates is empty", r.FilePattern)
		default:
			r.Mode = InvalidatePrefix
			r.Prefixes = []string{strings.TrimSpace(single)}
		}
		return nil
	}

	var prefixes []string
	if err := json.Unmarshal(raw.Invalidates, &prefixes); err != nil {
		return fmt.Errorf("file rule %q: invalidates must be a string or a list of prefixes", r.FilePattern)
	}
	r.Mode = InvalidatePrefix
	for _, p := range prefixes {
		if p = strings.TrimSpace(p); p != "" {
			r.Prefixes = append(r.Prefixes, p)
		}
	}
	if len(r.Prefixes) == 0 {
		return fmt.Errorf("file rule %q: prefix list is empty", r.FilePattern)
	}
	return nil
}

// MarshalJSON writes the rule back in its authored shape.
func (r FileRule) MarshalJSON() ([]byte, error) {
	out := struct {
		FilePattern string      `json:"filePattern"`
		Invalidates interface{} `json:"invalidates"`
	}{FilePattern: r.FilePattern}
	switch r.Mode {
	case InvalidateAll, InvalidateSameFile:
		out.Invalidates = string(r.Mode)
	default:
		out.Invalidates = r.Prefixes
	}
	return json.Marshal(out)
}
