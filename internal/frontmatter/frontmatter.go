// Package frontmatter reads and edits the metadata header of a SKILL.md file.
//
// Only the subset used by skill documents is understood:
//
//	---
//	title: Kafka consumer tuning
//	name: kafka-tuning
//	description: "How to size consumer groups"
//	tags: [kafka, ops]
//	tags:
//	  - kafka
//	  - ops
//	---
//
// Anything else in the header is ignored when parsing and copied through
// unchanged when rewriting tags.
package frontmatter

import (
	"strings"

	"github.com/kamusis/skill-cortex/internal/tags"
)

const (
	delimiter = "---"
	bom       = "\ufeff"

	// DefaultSummaryWords is the word limit of a description summary.
	DefaultSummaryWords = 30
)

// Header is the metadata extracted from a document header.
type Header struct {
	Title       string
	Description string
	Tags        []string
}

type state int

const (
	inHeader state = iota
	inTagBlock
)

type parser struct {
	state       state
	title       string
	description string
	tags        []string
}

// Parse extracts the header from a document. Title and description are
// required; tags are normalized.
func Parse(text string) (Header, error) {
	lines := splitLines(strings.TrimLeft(text, bom))
	end, err := locate(lines)
	if err != nil {
		return Header{}, err
	}

	p := &parser{}
	for _, raw := range lines[1:end] {
		p.feed(strings.TrimSpace(raw))
	}

	if p.title == "" {
		return Header{}, ErrMissingTitle
	}
	if p.description == "" {
		return Header{}, ErrMissingDescription
	}
	return Header{
		Title:       p.title,
		Description: p.description,
		Tags:        tags.Normalize(p.tags),
	}, nil
}

func (p *parser) feed(line string) {
	if line == "" {
		return
	}
	if p.state == inTagBlock {
		if strings.HasPrefix(line, "-") {
			p.tags = append(p.tags, unquote(strings.TrimSpace(line[1:])))
			return
		}
		p.state = inHeader
	}

	key, value, ok := splitKeyValue(line)
	if !ok {
		return
	}
	switch strings.ToLower(key) {
	case "title":
		p.title = unquote(value)
	case "name":
		if p.title == "" {
			p.title = unquote(value)
		}
	case "description":
		p.description = unquote(value)
	case "tags":
		if value == "" || value == "[]" {
			p.state = inTagBlock
			return
		}
		p.tags = append(p.tags, parseInlineTags(value)...)
	}
}

func splitKeyValue(line string) (string, string, bool) {
	key, value, ok := strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}

// parseInlineTags handles "[a, b]" and "a, b".
func parseInlineTags(value string) []string {
	v := strings.TrimSpace(value)
	if strings.HasPrefix(v, "[") && strings.HasSuffix(v, "]") {
		v = strings.TrimSpace(v[1 : len(v)-1])
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, unquote(part))
	}
	return out
}

// unquote strips one pair of matching surrounding quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// locate returns the index of the closing delimiter line.
func locate(lines []string) (int, error) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != delimiter {
		return 0, ErrMissingHeader
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == delimiter {
			return i, nil
		}
	}
	return 0, ErrUnterminatedHeader
}

// splitLines splits after every "\n", keeping line endings so the pieces
// concatenate back to the input.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Summary returns the first maxWords whitespace-separated words of desc.
func Summary(desc string, maxWords int) string {
	words := strings.Fields(desc)
	if maxWords >= 0 && len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " ")
}
