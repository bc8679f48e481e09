// Package search answers keyword and tag queries over indexed skills.
package search

import "github.com/kamusis/skill-cortex/internal/skills"

// Query selects skills. Empty fields match everything.
type Query struct {
	Text  string
	Tags  []string
	Limit int
}

// Summary is the compact listing shape of a skill.
type Summary struct {
	SkillID             string   `json:"skill_id"`
	Title               string   `json:"title"`
	DescriptionSnapshot string   `json:"description_snapshot"`
	Tags                []string `json:"tags"`
	TagIssues           []string `json:"tag_issues"`
	CategoryPath        []string `json:"category_path"`
}

// Summarize converts a record into its listing shape.
func Summarize(r skills.Record) Summary {
	return Summary{
		SkillID:             r.ID,
		Title:               r.Header.Title,
		DescriptionSnapshot: r.Summary,
		Tags:                orEmpty(r.Header.Tags),
		TagIssues:           orEmpty(r.TagIssues),
		CategoryPath:        orEmpty(r.CategoryPath),
	}
}

// SummarizeAll converts records in order.
func SummarizeAll(records []skills.Record) []Summary {
	out := make([]Summary, 0, len(records))
	for _, r := range records {
		out = append(out, Summarize(r))
	}
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
