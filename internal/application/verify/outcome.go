package verify

import (
	"fmt"

	"github.com/doeshing/cmdverify/internal/domain"
)

// Succeeded applies the success rule for a probed command.
func Succeeded(category domain.Category, available, treatUnknownAsWarning bool) bool {
	switch category {
	case domain.CategorySkip:
		return true
	case domain.CategorySafe, domain.CategoryConditional:
		return available
	case domain.CategoryDangerous:
		return false
	default:
		if treatUnknownAsWarning {
			return true
		}
		return available
	}
}

// skippedOutcome records a command excluded from validation.
func skippedOutcome(cls domain.Classification) domain.CacheEntry {
	return domain.CacheEntry{
		Category:   cls.Category,
		Confidence: cls.Confidence,
		Validated:  false,
		Available:  false,
		Success:    true,
		Message:    "Skipped by knowledge base rule",
		Severity:   domain.SeverityInfo,
	}
}

// probedOutcome builds the user-facing result for a classified, probed command.
func probedOutcome(cls domain.Classification, avail domain.Availability, treatUnknownAsWarning bool) domain.CacheEntry {
	out := domain.CacheEntry{
		Category:   cls.Category,
		Confidence: cls.Confidence,
		Validated:  true,
		Available:  avail.Available,
		Success:    Succeeded(cls.Category, avail.Available, treatUnknownAsWarning),
	}
	exe := avail.Executable
	missing := fmt.Sprintf("%s is not installed or not on PATH", exe)
	if avail.Error != "" {
		missing = avail.Error
	}

	switch cls.Category {
	case domain.CategoryDangerous:
		out.Severity = domain.SeverityError
		out.Message = "Potentially destructive command in documentation"
		out.Suggestion = "Replace it with a safer alternative, or mark it safe in the knowledge base if it is intended"
	case domain.CategorySafe, domain.CategoryConditional:
		if avail.Available {
			out.Severity = domain.SeverityInfo
			out.Message = fmt.Sprintf("%s is available", exe)
			if cls.Category == domain.CategoryConditional {
				out.Message += "; the command changes project state"
			}
			break
		}
		out.Severity = domain.SeverityError
		if cls.Category == domain.CategoryConditional {
			out.Severity = domain.SeverityWarning
		}
		out.Message = missing
		out.Suggestion = fmt.Sprintf("Install %s or list it as a prerequisite in the documentation", exe)
	default:
		out.Severity = domain.SeverityWarning
		if avail.Available {
			out.Message = fmt.Sprintf("Unrecognized command; %s is available", exe)
		} else {
			out.Message = fmt.Sprintf("Unrecognized command; %s", missing)
		}
		out.Suggestion = "Classify it in the knowledge base (safe, conditional, dangerous or skip)"
		if !out.Success {
			out.Severity = domain.SeverityError
		}
	}
	return out
}
