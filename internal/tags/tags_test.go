package tags

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil", in: nil, want: []string{}},
		{name: "trim and lowercase", in: []string{"  Python ", "WEB"}, want: []string{"python", "web"}},
		{name: "drops empty", in: []string{"", "   ", "go"}, want: []string{"go"}},
		{name: "first occurrence wins", in: []string{"b", "A", "B", "a", "c"}, want: []string{"b", "a", "c"}},
		{name: "unicode", in: []string{"Ärger", "ärger"}, want: []string{"ärger"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got), "normalize must be idempotent")
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "[b, c]", Format([]string{"b", "c"}))
	assert.Equal(t, "[]", Format(nil))
}

func TestLoadTaxonomy(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tags.md")
	content := "# Allowed tags\n\n- Python\n-web\n  data  \n# trailing comment\n-\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	tax := LoadTaxonomy(p)
	assert.Equal(t, 3, tax.Len())
	assert.True(t, tax.Allows("python"))
	assert.True(t, tax.Allows("web"))
	assert.True(t, tax.Allows("data"))
	assert.False(t, tax.Allows("rust"))
	assert.Equal(t, []string{"data", "python", "web"}, tax.Tags())
}

func TestLoadTaxonomy_AbsentMeansUnrestricted(t *testing.T) {
	dir := t.TempDir()

	for _, p := range []string{"", filepath.Join(dir, "missing.md"), dir} {
		tax := LoadTaxonomy(p)
		assert.Equal(t, 0, tax.Len(), "path %q", p)
		assert.True(t, tax.Allows("anything"))
		assert.Equal(t, []string{}, tax.Tags())
	}
}

func TestValidate(t *testing.T) {
	t.Run("empty tags always missing_tags", func(t *testing.T) {
		assert.Equal(t, []string{"missing_tags"}, NewTaxonomy().Validate(nil))
		assert.Equal(t, []string{"missing_tags"}, NewTaxonomy("python").Validate([]string{}))
	})

	t.Run("invalid tags in input order", func(t *testing.T) {
		tax := NewTaxonomy("python")
		assert.Equal(t, []string{"invalid_tags:web"}, tax.Validate([]string{"python", "web"}))
		assert.Equal(t, []string{"invalid_tags:z,a"}, tax.Validate([]string{"z", "python", "a"}))
	})

	t.Run("clean", func(t *testing.T) {
		assert.Empty(t, NewTaxonomy("python").Validate([]string{"python"}))
	})

	t.Run("empty taxonomy accepts all", func(t *testing.T) {
		assert.Empty(t, NewTaxonomy().Validate([]string{"x", "y"}))
	})

	t.Run("nil taxonomy accepts all", func(t *testing.T) {
		var tax *Taxonomy
		assert.Empty(t, tax.Validate([]string{"x"}))
	})
}
