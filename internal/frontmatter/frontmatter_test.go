package frontmatter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want Header
	}{
		{
			name: "inline bracket tags",
			doc:  "---\ntitle: Kafka\ndescription: Consumer tuning\ntags: [Kafka, ops, kafka]\n---\nbody\n",
			want: Header{Title: "Kafka", Description: "Consumer tuning", Tags: []string{"kafka", "ops"}},
		},
		{
			name: "comma tags without brackets",
			doc:  "---\ntitle: T\ndescription: D\ntags: a, 'b', \"c\"\n---\n",
			want: Header{Title: "T", Description: "D", Tags: []string{"a", "b", "c"}},
		},
		{
			name: "block list tags",
			doc:  "---\ntitle: T\ntags:\n  - one\n  - \"Two\"\ndescription: D\n---\n",
			want: Header{Title: "T", Description: "D", Tags: []string{"one", "two"}},
		},
		{
			name: "empty bracket opens block list",
			doc:  "---\ntitle: T\ndescription: D\ntags: []\n- x\n---\n",
			want: Header{Title: "T", Description: "D", Tags: []string{"x"}},
		},
		{
			name: "inline value does not consume dash lines",
			doc:  "---\ntitle: T\ndescription: D\ntags: [a]\n- b\n---\n",
			want: Header{Title: "T", Description: "D", Tags: []string{"a"}},
		},
		{
			name: "name is a fallback for title",
			doc:  "---\nname: fallback\ndescription: D\n---\n",
			want: Header{Title: "fallback", Description: "D", Tags: []string{}},
		},
		{
			name: "title wins over earlier name",
			doc:  "---\nname: n\ntitle: t\ndescription: D\n---\n",
			want: Header{Title: "t", Description: "D", Tags: []string{}},
		},
		{
			name: "name after title is ignored",
			doc:  "---\ntitle: t\nname: n\ndescription: D\n---\n",
			want: Header{Title: "t", Description: "D", Tags: []string{}},
		},
		{
			name: "keys are case-insensitive and last wins",
			doc:  "---\nTITLE: first\nTitle: second\nDescription: 'quoted: value'\n---\n",
			want: Header{Title: "second", Description: "quoted: value", Tags: []string{}},
		},
		{
			name: "byte order mark and CRLF",
			doc:  "\ufeff---\r\ntitle: T\r\ndescription: D\r\n---\r\nbody",
			want: Header{Title: "T", Description: "D", Tags: []string{}},
		},
		{
			name: "lines without colon are ignored",
			doc:  "---\njust text\ntitle: T\n: no key\ndescription: D\n---\n",
			want: Header{Title: "T", Description: "D", Tags: []string{}},
		},
		{
			name: "mismatched quotes are kept",
			doc:  "---\ntitle: \"T'\ndescription: D\n---\n",
			want: Header{Title: "\"T'", Description: "D", Tags: []string{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
		code string
	}{
		{name: "empty", doc: "", want: ErrMissingHeader, code: "missing_header"},
		{name: "no delimiter", doc: "# Title\n---\ntitle: T\n---\n", want: ErrMissingHeader, code: "missing_header"},
		{name: "unterminated", doc: "---\ntitle: T\ndescription: D\n", want: ErrUnterminatedHeader, code: "unterminated_header"},
		{name: "missing title", doc: "---\ndescription: D\n---\n", want: ErrMissingTitle, code: "missing_title"},
		{name: "empty title", doc: "---\ntitle: ''\ndescription: D\n---\n", want: ErrMissingTitle, code: "missing_title"},
		{name: "missing description", doc: "---\ntitle: T\n---\n", want: ErrMissingDescription, code: "missing_description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.code, Code(err))
		})
	}
}

func TestSummary(t *testing.T) {
	long := strings.Repeat("word ", 45)
	got := Summary(long, DefaultSummaryWords)
	assert.Len(t, strings.Fields(got), 30)
	assert.True(t, strings.HasPrefix(strings.Join(strings.Fields(long), " "), got))

	assert.Equal(t, "a b c", Summary("  a \n b\tc  ", 30))
	assert.Equal(t, "", Summary("", 30))
}

func TestRewriteTags(t *testing.T) {
	t.Run("replaces existing line", func(t *testing.T) {
		in := "---\ntitle: X\ndescription: Y\ntags: [a]\n---\nbody"
		out, err := RewriteTags(in, []string{"b", "c"})
		require.NoError(t, err)
		assert.Equal(t, "---\ntitle: X\ndescription: Y\ntags: [b, c]\n---\nbody", out)
	})

	t.Run("appends when absent", func(t *testing.T) {
		in := "---\ntitle: X\ndescription: Y\n---\n\n# Body\n\ntags: not header\n"
		out, err := RewriteTags(in, []string{"go"})
		require.NoError(t, err)
		assert.Equal(t, "---\ntitle: X\ndescription: Y\ntags: [go]\n---\n\n# Body\n\ntags: not header\n", out)
	})

	t.Run("matches indented and mixed case key", func(t *testing.T) {
		in := "---\ntitle: X\n  TAGS: old\ndescription: Y\n---\n"
		out, err := RewriteTags(in, []string{"new"})
		require.NoError(t, err)
		assert.Equal(t, "---\ntitle: X\ntags: [new]\ndescription: Y\n---\n", out)
	})

	t.Run("keeps CRLF and byte order mark", func(t *testing.T) {
		in := "\ufeff---\r\ntitle: X\r\ntags: a\r\ndescription: Y\r\n---\r\nbody\r\n"
		out, err := RewriteTags(in, []string{"b"})
		require.NoError(t, err)
		assert.Equal(t, "\ufeff---\r\ntitle: X\r\ntags: [b]\r\ndescription: Y\r\n---\r\nbody\r\n", out)
	})

	t.Run("result parses with new tags", func(t *testing.T) {
		in := "---\ntitle: X\ndescription: Y\ntags:\n  - a\n---\nbody"
		out, err := RewriteTags(in, []string{"b"})
		require.NoError(t, err)
		h, err := Parse(out)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, h.Tags)
	})

	t.Run("structural errors", func(t *testing.T) {
		_, err := RewriteTags("no header\n", []string{"a"})
		assert.ErrorIs(t, err, ErrMissingHeader)
		_, err = RewriteTags("---\ntitle: X\n", []string{"a"})
		assert.ErrorIs(t, err, ErrUnterminatedHeader)
	})
}

func TestRewriteFileTags(t *testing.T) {
	dir := t.TempDir()

	t.Run("writes file", func(t *testing.T) {
		p := filepath.Join(dir, "SKILL.md")
		require.NoError(t, os.WriteFile(p, []byte("---\ntitle: X\ndescription: Y\ntags: [a]\n---\nbody"), 0o644))

		require.NoError(t, RewriteFileTags(p, []string{"b", "c"}))

		b, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, "---\ntitle: X\ndescription: Y\ntags: [b, c]\n---\nbody", string(b))
	})

	t.Run("leaves malformed file untouched", func(t *testing.T) {
		p := filepath.Join(dir, "BROKEN.md")
		orig := "---\ntitle: X\ndescription: Y\n"
		require.NoError(t, os.WriteFile(p, []byte(orig), 0o644))

		err := RewriteFileTags(p, []string{"b"})
		require.Error(t, err)
		assert.Equal(t, "unterminated_header", Code(err))

		b, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, orig, string(b))
	})

	t.Run("writes through a symlink", func(t *testing.T) {
		target := filepath.Join(dir, "real.md")
		link := filepath.Join(dir, "LINK.md")
		require.NoError(t, os.WriteFile(target, []byte("---\ntitle: X\ndescription: Y\n---\n"), 0o644))
		if err := os.Symlink(target, link); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}

		require.NoError(t, RewriteFileTags(link, []string{"go"}))

		info, err := os.Lstat(link)
		require.NoError(t, err)
		assert.NotZero(t, info.Mode()&os.ModeSymlink, "link must survive the rewrite")
		b, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "---\ntitle: X\ndescription: Y\ntags: [go]\n---\n", string(b))
	})

	t.Run("missing file", func(t *testing.T) {
		err := RewriteFileTags(filepath.Join(dir, "nope.md"), []string{"b"})
		require.Error(t, err)
		assert.Equal(t, "read_failed", Code(err))
	})
}
