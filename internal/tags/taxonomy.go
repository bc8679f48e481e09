package tags

import (
	"bufio"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Issue codes attached to index records.
const (
	IssueMissingTags = "missing_tags"
	IssueInvalidTags = "invalid_tags"
)

// Taxonomy is the set of allowed tags. An empty taxonomy places no
// restriction on tags.
type Taxonomy struct {
	allowed map[string]struct{}
}

// NewTaxonomy builds a taxonomy from already-read tags.
func NewTaxonomy(allowed ...string) *Taxonomy {
	lower := cases.Lower(language.Und)
	t := &Taxonomy{allowed: make(map[string]struct{}, len(allowed))}
	for _, a := range allowed {
		if c := canonical(lower, a); c != "" {
			t.allowed[c] = struct{}{}
		}
	}
	return t
}

// LoadTaxonomy reads a line-oriented tag list. Blank lines and lines starting
// with # are ignored, and a leading "-" list marker is stripped.
//
// An absent or unreadable file yields an empty taxonomy, which accepts every tag.
func LoadTaxonomy(path string) *Taxonomy {
	if path == "" {
		return NewTaxonomy()
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return NewTaxonomy()
	}
	f, err := os.Open(path)
	if err != nil {
		return NewTaxonomy()
	}
	defer f.Close()

	var allowed []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "-")
		allowed = append(allowed, line)
	}
	if scanner.Err() != nil {
		return NewTaxonomy()
	}
	return NewTaxonomy(allowed...)
}

// Len returns the number of allowed tags. Zero means unrestricted.
func (t *Taxonomy) Len() int {
	if t == nil {
		return 0
	}
	return len(t.allowed)
}

// Tags returns the allowed tags, sorted.
func (t *Taxonomy) Tags() []string {
	out := []string{}
	if t == nil {
		return out
	}
	for tag := range t.allowed {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Allows reports whether tag passes the taxonomy.
func (t *Taxonomy) Allows(tag string) bool {
	if t.Len() == 0 {
		return true
	}
	_, ok := t.allowed[tag]
	return ok
}

// Invalid returns the tags not in the taxonomy, in input order.
func (t *Taxonomy) Invalid(tags []string) []string {
	var out []string
	for _, tag := range tags {
		if !t.Allows(tag) {
			out = append(out, tag)
		}
	}
	return out
}

// Validate returns the issue codes for a normalized tag set. An empty tag set
// yields only missing_tags.
func (t *Taxonomy) Validate(tags []string) []string {
	if len(tags) == 0 {
		return []string{IssueMissingTags}
	}
	issues := []string{}
	if invalid := t.Invalid(tags); len(invalid) > 0 {
		issues = append(issues, IssueInvalidTags+":"+strings.Join(invalid, ","))
	}
	return issues
}
