// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package structure

import (
	"slices"
	"sort"

	"github.com/pdiddy/docrank/pkg/types"
)

// Filter keeps the most confident sections while spreading them across
// documents. Sections are visited by descending confidence (ties keep
// input order). A section whose document has not been kept yet is always
// taken; others are taken only while fewer than floor sections are kept.
// Filtering stops at max sections. Sections with an empty Document never
// mark their bucket as seen. If nothing would be kept, the input is
// returned unchanged.
func Filter(sections []types.Section, floor, max int) []types.Section {
	sorted := slices.Clone(sections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	seen := make(map[string]bool)
	var kept []types.Section
	for _, s := range sorted {
		if len(kept) >= max {
			break
		}
		if !seen[s.Document] || len(kept) < floor {
			kept = append(kept, s)
			if s.Document != "" {
				seen[s.Document] = true
			}
		}
	}

	if len(kept) == 0 {
		return sections
	}
	return kept
}
