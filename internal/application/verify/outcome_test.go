package verify

import (
	"testing"

	"github.com/doeshing/cmdverify/internal/domain"
)

func TestSucceeded(t *testing.T) {
	tests := []struct {
		category  domain.Category
		available bool
		lenient   bool
		want      bool
	}{
		{domain.CategorySafe, true, false, true},
		{domain.CategorySafe, false, true, false},
		{domain.CategoryConditional, true, false, true},
		{domain.CategoryConditional, false, true, false},
		{domain.CategoryDangerous, true, true, false},
		{domain.CategoryUnknown, false, true, true},
		{domain.CategoryUnknown, false, false, false},
		{domain.CategoryUnknown, true, false, true},
		{domain.CategorySkip, false, false, true},
	}
	for _, tt := range tests {
		if got := Succeeded(tt.category, tt.available, tt.lenient); got != tt.want {
			t.Errorf("Succeeded(%s, available=%v, lenient=%v) = %v, want %v",
				tt.category, tt.available, tt.lenient, got, tt.want)
		}
	}
}

func TestFailedOutcomesCarrySuggestions(t *testing.T) {
	missing := domain.Availability{Executable: "terraform", Error: "terraform not found"}
	for _, category := range []domain.Category{
		domain.CategorySafe, domain.CategoryConditional, domain.CategoryDangerous, domain.CategoryUnknown,
	} {
		out := probedOutcome(domain.Classification{Category: category}, missing, false)
		if out.Success {
			t.Fatalf("%s with missing binary should fail", category)
		}
		if out.Suggestion == "" {
			t.Errorf("%s failure has no suggestion", category)
		}
	}
}

func TestChainFallsBackToUnknown(t *testing.T) {
	cls, ok := Chain{nil}.Classify("anything")
	if ok || cls.Category != domain.CategoryUnknown || cls.Confidence != domain.ConfidenceUnknown {
		t.Fatalf("unexpected fallback %+v ok=%v", cls, ok)
	}
}
