package domain

import "strings"

// Location points at a place in the documentation where a command appears.
type Location struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Type     string `json:"type"`
	Language string `json:"language,omitempty"`
}

// ExtractedCommand is a single candidate produced by the markdown extractor.
type ExtractedCommand struct {
	Command  string
	File     string
	Line     int
	Type     string
	Language string
}

// CommandEntry is a distinct command with every place it was found.
// Entries are rebuilt on each run and never persisted.
type CommandEntry struct {
	Command   string     `json:"command"`
	Locations []Location `json:"locations"`
}

// NormalizeCommand returns the identity used for deduplication and cache keys.
func NormalizeCommand(command string) string {
	return strings.TrimSpace(command)
}

// Executable returns the first whitespace-delimited token of the command.
func (e CommandEntry) Executable() string {
	fields := strings.Fields(e.Command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// InFile reports whether the command is documented in the given slash path.
func (e CommandEntry) InFile(path string) bool {
	for _, loc := range e.Locations {
		if loc.File == path {
			return true
		}
	}
	return false
}
