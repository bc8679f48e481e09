package importer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamusis/skill-cortex/internal/importer"
)

var excludes = []string{".DS_Store", "*.tmp", "**/.git/**", "**/node_modules/**"}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content+"\n"), 0o644))
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func TestImportRepo_BasicAndConflict(t *testing.T) {
	tmp := t.TempDir()
	anthropic := filepath.Join(tmp, "anthropic")
	community := filepath.Join(tmp, "community")
	dst := filepath.Join(tmp, "imported")

	writeFile(t, anthropic, "docs/pdf/SKILL.md", "V5 pdf")
	writeFile(t, anthropic, "docs/pdf/scripts/run.sh", "echo run")
	writeFile(t, anthropic, "docs/pdf/.DS_Store", "junk")
	writeFile(t, anthropic, "docs/pdf/forms/SKILL.md", "nested skill")
	writeFile(t, anthropic, "web/SKILL.md", "web")
	writeFile(t, anthropic, "README.md", "not a skill")
	writeFile(t, anthropic, ".git/objects/SKILL.md", "git internals")

	r1, err := importer.ImportRepo(anthropic, dst, "anthropic", importer.Options{Excludes: excludes})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/pdf", "web"}, r1.Skills)
	assert.Equal(t, 4, r1.Imported) // pdf SKILL.md, run.sh, forms/SKILL.md, web SKILL.md
	assert.Zero(t, r1.Skipped)
	assert.Empty(t, r1.Conflicts)
	assert.Empty(t, r1.Errors)
	assert.Equal(t, 2, r1.SkillsImported)

	assert.True(t, exists(filepath.Join(dst, "docs", "pdf", "forms", "SKILL.md")))
	assert.False(t, exists(filepath.Join(dst, "docs", "pdf", ".DS_Store")))
	assert.False(t, exists(filepath.Join(dst, "README.md")))
	assert.False(t, exists(filepath.Join(dst, ".git")))

	writeFile(t, community, "docs/pdf/SKILL.md", "V1 pdf")
	writeFile(t, community, "docs/pdf/scripts/run.sh", "echo run")
	writeFile(t, community, "web/SKILL.md", "web")

	r2, err := importer.ImportRepo(community, dst, "community", importer.Options{Excludes: excludes})
	require.NoError(t, err)
	assert.Equal(t, 2, r2.Skipped)
	require.Len(t, r2.Conflicts, 1)
	assert.Equal(t, filepath.Join(dst, "docs", "pdf", "SKILL.conflict-community.md"), r2.Conflicts[0].Conflict)
	assert.Equal(t, 1, r2.SkillsConflicts)
	assert.Equal(t, 1, r2.SkillsSkipped)
	assert.Zero(t, r2.SkillsImported)

	data, err := os.ReadFile(filepath.Join(dst, "docs", "pdf", "SKILL.md"))
	require.NoError(t, err)
	assert.Equal(t, "V5 pdf\n", string(data), "original must not be overwritten")
	assert.True(t, exists(r2.Conflicts[0].Conflict))

	assert.Equal(t, []string{filepath.Join("docs", "pdf", "SKILL.conflict-community.md")}, importer.FindConflicts(dst))
	assert.Empty(t, importer.FindConflicts(filepath.Join(tmp, "missing")))
}

func TestImportRepo_DryRunWritesNothing(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	dst := filepath.Join(tmp, "dst")
	writeFile(t, src, "a/SKILL.md", "a")
	writeFile(t, src, "b/c/SKILL.md", "c")

	res, err := importer.ImportRepo(src, dst, "src", importer.Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b/c"}, res.Skills)
	assert.Equal(t, 2, res.Imported)
	assert.False(t, exists(dst))
}

func TestImportRepo_MissingSource(t *testing.T) {
	_, err := importer.ImportRepo(filepath.Join(t.TempDir(), "nope"), t.TempDir(), "nope", importer.Options{})
	assert.Error(t, err)
}

func TestLoadRepoList(t *testing.T) {
	p := filepath.Join(t.TempDir(), "repos.yaml")
	body := `repositories:
  - name: one
    url: https://example.com/one.git
    branch: main
  - name: off
    url: https://example.com/off.git
    enabled: false
  - url: https://example.com/anon.git
  - name: nourl
`
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))

	repos, err := importer.LoadRepoList(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "one", repos[0].Name)
	assert.Equal(t, "main", repos[0].Branch)
	assert.True(t, repos[0].IsEnabled())
}

func TestLoadRepoList_MissingUsesDefaults(t *testing.T) {
	repos, err := importer.LoadRepoList(context.Background(), filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, importer.DefaultRepos(), repos)
}

func TestRun(t *testing.T) {
	tmp := t.TempDir()
	sources := filepath.Join(tmp, "sources")
	imported := filepath.Join(tmp, "imported")
	writeFile(t, sources, "one/x/SKILL.md", "x")
	writeFile(t, sources, "two/y/SKILL.md", "y")
	writeFile(t, imported, "stale/SKILL.md", "old")

	repos := []importer.Repo{
		{Name: "one", URL: "u1"},
		{Name: "missing", URL: "u2"},
		{Name: "two", URL: "u3"},
	}

	reports, err := importer.Run(context.Background(), repos, importer.RunOptions{
		SourcesDir: sources,
		ImportDir:  imported,
		Clean:      true,
		Only:       []string{"one", "missing"},
	})
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "one", reports[0].Name)
	require.NoError(t, reports[0].Err)
	assert.Equal(t, []string{"x"}, reports[0].Result.Skills)
	assert.Error(t, reports[1].Err)

	assert.True(t, exists(filepath.Join(imported, "one", "x", "SKILL.md")))
	assert.False(t, exists(filepath.Join(imported, "two")))
	assert.False(t, exists(filepath.Join(imported, "stale")), "clean removes previous imports")
}
