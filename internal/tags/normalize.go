// Package tags canonicalizes skill tags and checks them against the tag
// taxonomy (the allow-list of sanctioned tags).
package tags

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize trims and lowercases every tag, drops empty ones and removes
// duplicates. The first occurrence wins and relative order is kept.
func Normalize(in []string) []string {
	lower := cases.Lower(language.Und)
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		t := canonical(lower, raw)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Format renders tags the way they are written back into a header: [a, b].
func Format(tags []string) string {
	return "[" + strings.Join(tags, ", ") + "]"
}

func canonical(lower cases.Caser, s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(lower.String(s))
}
