package verify

import (
	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/ports"
)

// Chain asks each classifier in turn and keeps the first opinion.
type Chain []ports.Classifier

// Classify returns unknown with ok == false when no link has an opinion.
func (c Chain) Classify(command string) (domain.Classification, bool) {
	command = domain.NormalizeCommand(command)
	for _, link := range c {
		if link == nil {
			continue
		}
		if cls, ok := link.Classify(command); ok {
			return cls, true
		}
	}
	return domain.Classification{Category: domain.CategoryUnknown, Confidence: domain.ConfidenceUnknown}, false
}

var _ ports.Classifier = Chain(nil)
