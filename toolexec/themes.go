package toolexec

import (
	"sort"
	"strings"
)

// venueThemeTable is the single canonical theme-derivation table for
// attractions, keyed by a lowercase venue-type keyword found in the
// attraction's name or notes. This resolves the design note's open
// question directly: the reference code carried two feature-mapper
// modules with slightly divergent rules; this rewrite keeps exactly
// one table per venue type.
var venueThemeTable = map[string][]string{
	"museum":    {"art", "history", "culture"},
	"gallery":   {"art", "culture"},
	"cathedral": {"history", "culture", "architecture"},
	"church":    {"history", "culture"},
	"palace":    {"history", "architecture"},
	"park":      {"outdoors", "relaxation"},
	"garden":    {"outdoors", "relaxation"},
	"market":    {"food", "culture"},
	"restaurant": {"food"},
	"cafe":      {"food", "relaxation"},
	"beach":     {"outdoors", "relaxation"},
	"stadium":   {"sports"},
	"theater":   {"culture", "entertainment"},
	"theatre":   {"culture", "entertainment"},
	"zoo":       {"family", "outdoors"},
	"aquarium":  {"family", "science"},
}

// DeriveThemes maps an attraction's name/notes to a deduplicated theme
// list using venueThemeTable. Unmatched venues yield no themes rather
// than a guessed default, preserving the "no evidence, no claim"
// discipline one layer up at the synthesizer.
func DeriveThemes(name, notes string) []string {
	haystack := strings.ToLower(name + " " + notes)

	keywords := make([]string, 0, len(venueThemeTable))
	for k := range venueThemeTable {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)

	seen := map[string]struct{}{}
	var out []string
	for _, keyword := range keywords {
		if !strings.Contains(haystack, keyword) {
			continue
		}
		for _, t := range venueThemeTable[keyword] {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				out = append(out, t)
			}
		}
	}
	return out
}
