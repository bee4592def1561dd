package domain

import "strings"

// Category enumerates classification outcomes for a documented command.
type Category string

const (
	CategorySkip        Category = "skip"
	CategorySafe        Category = "safe"
	CategoryConditional Category = "conditional"
	CategoryDangerous   Category = "dangerous"
	CategoryUnknown     Category = "unknown"
)

// Confidence values assigned by the rule layers.
const (
	ConfidenceExact       = 1.0
	ConfidencePattern     = 0.95
	ConfidenceConditional = 0.90
	ConfidenceUnknown     = 0.50
)

// Classification is the (category, confidence) pair assigned to a command.
type Classification struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
}

// Categories lists every category in reporting order.
func Categories() []Category {
	return []Category{CategorySafe, CategoryConditional, CategoryDangerous, CategoryUnknown, CategorySkip}
}

// ParseCategory maps a raw string onto a known Category.
func ParseCategory(value string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(value))) {
	case CategorySkip:
		return CategorySkip, true
	case CategorySafe:
		return CategorySafe, true
	case CategoryConditional:
		return CategoryConditional, true
	case CategoryDangerous:
		return CategoryDangerous, true
	case CategoryUnknown:
		return CategoryUnknown, true
	default:
		return "", false
	}
}

// Severity describes how a result should be surfaced to the user.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Availability is the outcome of a PATH lookup for a command's executable.
type Availability struct {
	Executable string
	Available  bool
	Error      string
}
