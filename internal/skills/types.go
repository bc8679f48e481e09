// Package skills builds the skill index: one record per SKILL.md found under
// the configured roots, plus the category tree that mirrors their directories.
package skills

import "github.com/kamusis/skill-cortex/internal/frontmatter"

// FileName is the header-bearing document looked for under every root.
const FileName = "SKILL.md"

// Record is one indexed skill. Records are created by Scan (or restored from
// the cache) and never mutated afterwards.
type Record struct {
	// ID is "<root dir name>:<slash-separated path relative to the root>".
	ID           string
	SourceRoot   string
	DocumentPath string
	// CategoryPath holds the directories between the root and the document.
	CategoryPath []string
	Header       frontmatter.Header
	Summary      string
	TagIssues    []string
}

// HasIssues reports whether the record failed tag validation.
func (r Record) HasIssues() bool { return len(r.TagIssues) > 0 }

// Node is one category in the tree. The root has name "/" and an empty path.
type Node struct {
	Name     string
	Path     []string
	Children map[string]*Node
	Skills   []Record
}

// ScanResult pairs the flat record list with the tree built from it. Both
// halves always come from the same pass; a rebuild replaces the whole value.
type ScanResult struct {
	Records []Record
	Tree    *Node
}

// Skip records a document left out of the index and why.
type Skip struct {
	Path   string
	Reason string
}

// NewScanResult builds the tree for records and returns the pair.
func NewScanResult(records []Record) *ScanResult {
	if records == nil {
		records = []Record{}
	}
	return &ScanResult{Records: records, Tree: BuildTree(records)}
}

// Get returns the record with the given id.
func (r *ScanResult) Get(id string) (Record, bool) {
	for _, rec := range r.Records {
		if rec.ID == id {
			return rec, true
		}
	}
	return Record{}, false
}
