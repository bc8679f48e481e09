package frontmatter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/kamusis/skill-cortex/internal/tags"
)

// RewriteTags replaces the tags line of the header in text with newTags,
// or appends one at the end of the header when there is none. Every other
// byte of the document is kept as is.
func RewriteTags(text string, newTags []string) (string, error) {
	prefix := ""
	if strings.HasPrefix(text, bom) {
		prefix = bom
		text = strings.TrimPrefix(text, bom)
	}
	lines := splitLines(text)
	end, err := locate(lines)
	if err != nil {
		return "", err
	}

	eol := "\n"
	if strings.HasSuffix(lines[0], "\r\n") {
		eol = "\r\n"
	}
	tagsLine := "tags: " + tags.Format(newTags) + eol

	var b strings.Builder
	b.Grow(len(text) + len(tagsLine))
	b.WriteString(prefix)
	b.WriteString(lines[0])
	found := false
	for _, raw := range lines[1:end] {
		if isTagsLine(raw) {
			b.WriteString(tagsLine)
			found = true
			continue
		}
		b.WriteString(raw)
	}
	if !found {
		b.WriteString(tagsLine)
	}
	for _, raw := range lines[end:] {
		b.WriteString(raw)
	}
	return b.String(), nil
}

func isTagsLine(raw string) bool {
	s := strings.TrimLeft(raw, " \t")
	return len(s) >= 5 && strings.EqualFold(s[:5], "tags:")
}

// RewriteFileTags rewrites the tags of the document at path in place. The
// file is replaced as a whole; on any header error nothing is written. A
// symlinked document is rewritten at its target and the link is kept.
func RewriteFileTags(path string, newTags []string) error {
	if target, err := filepath.EvalSymlinks(path); err == nil {
		path = target
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: cannot read %s: %w", ErrReadFailed, path, err)
	}
	out, err := RewriteTags(string(b), newTags)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(out)); err != nil {
		return fmt.Errorf("%w: cannot write %s: %w", ErrWriteFailed, path, err)
	}
	return nil
}
