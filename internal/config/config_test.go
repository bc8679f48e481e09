package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := isolateHome(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(home, ".claude", "skills"), ".skills"}, cfg.Roots)
	assert.Equal(t, filepath.Join(".skill_cortex_cache", "index.json"), cfg.CachePath)
	assert.Equal(t, "tags.md", cfg.TagsPath)
	assert.Equal(t, 10*time.Second, cfg.LockTimeout)
	assert.NotEmpty(t, cfg.Excludes)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	isolateHome(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	home := isolateHome(t)
	p := filepath.Join(t.TempDir(), "config.yaml")
	body := "roots:\n  - ~/skills\n  - /srv/skills\ncache_path: ~/cache/index.json\nlock_timeout: 2s\n"
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(home, "skills"), "/srv/skills"}, cfg.Roots)
	assert.Equal(t, filepath.Join(home, "cache", "index.json"), cfg.CachePath)
	assert.Equal(t, "tags.md", cfg.TagsPath, "unset keys keep defaults")
	assert.Equal(t, 2*time.Second, cfg.LockTimeout)
}

func TestLoad_InvalidYAML(t *testing.T) {
	isolateHome(t)
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("roots: [unclosed\n"), 0o644))

	_, err := Load(p)
	assert.ErrorContains(t, err, "invalid YAML")
}

func TestLoad_EnvOverrides(t *testing.T) {
	home := isolateHome(t)
	writeDotEnv(t, home, EnvTagsPath+"=/etc/tags.md\n")
	t.Setenv(EnvRoots, " /a , ,/b ")
	t.Setenv(EnvCachePath, "/tmp/idx.json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, cfg.Roots)
	assert.Equal(t, "/tmp/idx.json", cfg.CachePath)
	assert.Equal(t, "/etc/tags.md", cfg.TagsPath)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	isolateHome(t)
	p := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := &Config{Roots: []string{"/x"}, CachePath: "/c.json", TagsPath: "/t.md", LockTimeout: 3 * time.Second}

	require.NoError(t, Save(p, want))
	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, want.Roots, got.Roots)
	assert.Equal(t, want.CachePath, got.CachePath)
	assert.Equal(t, want.LockTimeout, got.LockTimeout)
}

func TestExpandPath(t *testing.T) {
	home := isolateHome(t)

	for in, want := range map[string]string{
		"~":          home,
		"~/a/b":      filepath.Join(home, "a", "b"),
		"~other/a":   "~other/a",
		"/abs":       "/abs",
		"relative/x": "relative/x",
	} {
		got, err := ExpandPath(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}
