// Package index persists the skill index to a single versioned JSON file.
// Only the flat record list is stored; the category tree is rebuilt on load.
package index

import (
	"strings"

	"github.com/kamusis/skill-cortex/internal/frontmatter"
	"github.com/kamusis/skill-cortex/internal/skills"
)

// Version is the only cache schema version Load accepts.
const Version = 1

// File is the on-disk layout of the cache.
type File struct {
	Version int          `json:"version"`
	Skills  []SkillEntry `json:"skills"`
}

// SkillEntry is one flattened skills.Record.
type SkillEntry struct {
	SkillID             string   `json:"skill_id"`
	SourceRoot          string   `json:"source_root"`
	SkillPath           string   `json:"skill_path"`
	CategoryPath        []string `json:"category_path"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Tags                []string `json:"tags"`
	DescriptionSnapshot string   `json:"description_snapshot"`
	TagIssues           []string `json:"tag_issues"`
}

// RecordToEntry flattens a record for writing.
func RecordToEntry(r skills.Record) SkillEntry {
	return SkillEntry{
		SkillID:             r.ID,
		SourceRoot:          r.SourceRoot,
		SkillPath:           r.DocumentPath,
		CategoryPath:        nonBlank(r.CategoryPath),
		Title:               r.Header.Title,
		Description:         r.Header.Description,
		Tags:                nonBlank(r.Header.Tags),
		DescriptionSnapshot: r.Summary,
		TagIssues:           nonBlank(r.TagIssues),
	}
}

// EntryToRecord restores a record. Blank list items are dropped.
func EntryToRecord(e SkillEntry) skills.Record {
	return skills.Record{
		ID:           e.SkillID,
		SourceRoot:   e.SourceRoot,
		DocumentPath: e.SkillPath,
		CategoryPath: nonBlank(e.CategoryPath),
		Header: frontmatter.Header{
			Title:       e.Title,
			Description: e.Description,
			Tags:        nonBlank(e.Tags),
		},
		Summary:   e.DescriptionSnapshot,
		TagIssues: nonBlank(e.TagIssues),
	}
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
