package search

import (
	"sort"

	"github.com/kamusis/skill-cortex/internal/skills"
)

// SortByID sorts records by skill ID (ascending). Scan order follows the
// filesystem and is not meaningful to callers.
func SortByID(records []skills.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})
}
