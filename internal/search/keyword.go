package search

import (
	"strings"

	"github.com/kamusis/skill-cortex/internal/skills"
	"github.com/kamusis/skill-cortex/internal/tags"
)

// KeywordSearch filters records whose id, title, description summary or
// category path contain the trimmed query, ignoring case. Every requested tag
// must be present on the record. Results are sorted by skill ID.
func KeywordSearch(records []skills.Record, q Query) []skills.Record {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	want := tags.Normalize(q.Tags)

	out := []skills.Record{}
	for _, r := range records {
		if !matchesText(r, needle) || !hasTags(r, want) {
			continue
		}
		out = append(out, r)
	}

	SortByID(out)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// WithIssues returns the records that failed tag validation, sorted by ID.
func WithIssues(records []skills.Record) []skills.Record {
	out := []skills.Record{}
	for _, r := range records {
		if r.HasIssues() {
			out = append(out, r)
		}
	}
	SortByID(out)
	return out
}

// matchesText reports whether needle occurs as one contiguous substring of
// the record's space-joined id, title, description summary and category path.
func matchesText(r skills.Record, needle string) bool {
	if needle == "" {
		return true
	}
	hay := strings.ToLower(strings.Join([]string{
		r.ID,
		r.Header.Title,
		r.Summary,
		strings.Join(r.CategoryPath, "/"),
	}, " "))
	return strings.Contains(hay, needle)
}

func hasTags(r skills.Record, want []string) bool {
	if len(want) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(r.Header.Tags))
	for _, t := range r.Header.Tags {
		have[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := have[t]; !ok {
			return false
		}
	}
	return true
}
