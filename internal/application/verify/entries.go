package verify

import (
	"sort"

	"github.com/doeshing/cmdverify/internal/domain"
)

// Dedupe groups extracted commands by normalized text, keeping first-seen
// order and merging every location sorted by file then line.
func Dedupe(extracted []domain.ExtractedCommand) []domain.CommandEntry {
	index := make(map[string]int)
	var entries []domain.CommandEntry
	seen := make(map[string]map[domain.Location]bool)

	for _, ex := range extracted {
		cmd := domain.NormalizeCommand(ex.Command)
		if cmd == "" {
			continue
		}
		loc := domain.Location{File: ex.File, Line: ex.Line, Type: ex.Type, Language: ex.Language}
		i, ok := index[cmd]
		if !ok {
			i = len(entries)
			index[cmd] = i
			entries = append(entries, domain.CommandEntry{Command: cmd})
			seen[cmd] = make(map[domain.Location]bool)
		}
		if seen[cmd][loc] {
			continue
		}
		seen[cmd][loc] = true
		entries[i].Locations = append(entries[i].Locations, loc)
	}

	for i := range entries {
		locs := entries[i].Locations
		sort.SliceStable(locs, func(a, b int) bool {
			if locs[a].File != locs[b].File {
				return locs[a].File < locs[b].File
			}
			return locs[a].Line < locs[b].Line
		})
	}
	return entries
}
