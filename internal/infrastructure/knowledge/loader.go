// Package knowledge loads the project knowledge base and resolves commands against it.
package knowledge

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/doeshing/cmdverify/internal/domain"
)

// Load reads the knowledge base at path. A missing file yields an empty knowledge
// base unless strict is set, in which case it is a configuration error.
func Load(path string, strict bool) (*domain.KnowledgeBase, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if strict {
				return nil, false, domain.NewConfigurationError("knowledge base", fmt.Errorf("%s not found", path),
					fmt.Sprintf("create %s (see `cmdverify doctor` for the expected layout)", path),
					"point knowledgeBase in .cmdverify.yaml at the existing file",
					"or set failOnMissingKnowledgeBase: false to run with built-in rules only",
				)
			}
			return &domain.KnowledgeBase{}, false, nil
		}
		return nil, false, domain.NewConfigurationError("knowledge base", err,
			fmt.Sprintf("check that %s is readable", path))
	}

	var kb domain.KnowledgeBase
	if err := json.Unmarshal(data, &kb); err != nil {
		return nil, true, domain.NewConfigurationError("knowledge base", fmt.Errorf("parse %s: %w", path, err),
			"the knowledge base must be a JSON object with validationRules and filePatterns",
			"validate it with `jq . "+path+"`",
		)
	}
	return &kb, true, nil
}
