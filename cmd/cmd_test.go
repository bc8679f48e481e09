package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kamusis/skill-cortex/internal/config"
	"github.com/kamusis/skill-cortex/internal/search/index"
)

// testEnv lays out a root with two skills, a taxonomy and a config file
// pointing at them, and isolates HOME and the override variables.
type testEnv struct {
	dir     string
	root    string
	cache   string
	cfgPath string
	cfg     *config.Config
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("USERPROFILE", tmp)
	for _, k := range []string{config.EnvRoots, config.EnvCachePath, config.EnvTagsPath} {
		t.Setenv(k, "")
	}

	e := testEnv{
		dir:     tmp,
		root:    filepath.Join(tmp, "library"),
		cache:   filepath.Join(tmp, "cache", "index.json"),
		cfgPath: filepath.Join(tmp, "config.yaml"),
	}
	writeTestFile(t, filepath.Join(e.root, "ops", "k8s", "SKILL.md"),
		"---\ntitle: Rollout\ndescription: Safe deployments\ntags: [ops]\n---\nbody\n")
	writeTestFile(t, filepath.Join(e.root, "data", "kafka", "SKILL.md"),
		"---\ntitle: Kafka\ndescription: Consumer tuning\n---\ntext\n")
	writeTestFile(t, filepath.Join(tmp, "tags.md"), "- ops\n- kafka\n- data\n")

	e.cfg = &config.Config{
		Roots:      []string{e.root},
		CachePath:  e.cache,
		TagsPath:   filepath.Join(tmp, "tags.md"),
		SourcesDir: filepath.Join(tmp, "sources"),
		ImportDir:  filepath.Join(tmp, "imported"),
		ReposFile:  filepath.Join(tmp, "repos.yaml"),
	}
	if err := config.Save(e.cfgPath, e.cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return e
}

func writeTestFile(t *testing.T, p, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (e testEnv) run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(append([]string{"--config", e.cfgPath}, args...))
	return rootCmd.ExecuteContext(context.Background())
}

func TestScanWritesCache(t *testing.T) {
	e := newTestEnv(t)
	if err := e.run(t, "scan"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	res, err := index.Inspect(e.cache)
	if err != nil {
		t.Fatalf("inspect cache: %v", err)
	}
	if len(res.Records) != 2 {
		t.Errorf("expected 2 cached skills, got %d", len(res.Records))
	}
}

func TestTagsSetRewritesDocument(t *testing.T) {
	e := newTestEnv(t)
	if err := e.run(t, "tags", "set", "library:data/kafka/SKILL.md", "Kafka", "data", "kafka"); err != nil {
		t.Fatalf("tags set: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(e.root, "data", "kafka", "SKILL.md"))
	if err != nil {
		t.Fatal(err)
	}
	want := "---\ntitle: Kafka\ndescription: Consumer tuning\ntags: [kafka, data]\n---\ntext\n"
	if string(data) != want {
		t.Errorf("document = %q, want %q", data, want)
	}

	if err := e.run(t, "tags", "set", "library:data/kafka/SKILL.md", "nope"); err == nil {
		t.Error("expected an error for a tag outside the taxonomy")
	}
	if err := e.run(t, "tags", "set", "library:missing/SKILL.md", "ops"); err == nil {
		t.Error("expected an error for an unknown skill")
	}
}

func TestTreeUnknownPath(t *testing.T) {
	e := newTestEnv(t)
	if err := e.run(t, "tree", "ops"); err != nil {
		t.Fatalf("tree ops: %v", err)
	}
	if err := e.run(t, "tree", "nowhere"); err == nil {
		t.Error("expected an error for an unknown category")
	}
}

func TestImportAndDoctorFix(t *testing.T) {
	e := newTestEnv(t)
	writeTestFile(t, e.cfg.ReposFile, "repositories:\n  - name: upstream\n    url: https://example.com/upstream.git\n")
	writeTestFile(t, filepath.Join(e.cfg.SourcesDir, "upstream", "pdf", "SKILL.md"), "incoming\n")
	writeTestFile(t, filepath.Join(e.cfg.ImportDir, "upstream", "pdf", "SKILL.md"), "local edit\n")

	if err := e.run(t, "import"); err != nil {
		t.Fatalf("import: %v", err)
	}
	conflict := filepath.Join(e.cfg.ImportDir, "upstream", "pdf", "SKILL.conflict-upstream.md")
	if _, err := os.Stat(conflict); err != nil {
		t.Fatalf("conflict file not written: %v", err)
	}
	kept, _ := os.ReadFile(filepath.Join(e.cfg.ImportDir, "upstream", "pdf", "SKILL.md"))
	if !strings.Contains(string(kept), "local edit") {
		t.Errorf("original overwritten: %q", kept)
	}

	if err := e.run(t, "doctor"); err == nil {
		t.Error("doctor should report the unresolved conflict")
	}
	if err := e.run(t, "doctor", "fix"); err != nil {
		t.Fatalf("doctor fix: %v", err)
	}
	if _, err := os.Stat(conflict); !os.IsNotExist(err) {
		t.Errorf("conflict file still present: %v", err)
	}
	if _, err := index.Inspect(e.cache); err != nil {
		t.Errorf("doctor fix should rebuild the cache: %v", err)
	}
}

func TestDoctorFixWritesMissingConfig(t *testing.T) {
	e := newTestEnv(t)
	t.Setenv(config.EnvRoots, e.root)
	t.Setenv(config.EnvCachePath, e.cache)

	rootCmd.SetArgs([]string{"--config", "", "doctor", "fix"})
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("doctor fix: %v", err)
	}
	p, err := config.ConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvRoots, "")
	got, err := config.Load(p)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if len(got.Roots) != 1 || got.Roots[0] != e.root {
		t.Errorf("roots = %v, want [%s]", got.Roots, e.root)
	}
}
