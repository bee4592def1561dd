package assets

import (
	_ "embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// DefaultKnowledgeJSON is the starter knowledge base written by `cmdverify init`.
//
//go:embed defaults/knowledge.json
var DefaultKnowledgeJSON []byte
