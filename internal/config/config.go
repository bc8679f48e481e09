package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvRoots     = "SKILL_CORTEX_ROOTS"
	EnvCachePath = "SKILL_CORTEX_CACHE_PATH"
	EnvTagsPath  = "SKILL_CORTEX_TAGS_PATH"
)

// Config is the in-memory representation of ~/.skill-cortex/config.yaml.
type Config struct {
	Roots       []string      `yaml:"roots"`
	CachePath   string        `yaml:"cache_path"`
	TagsPath    string        `yaml:"tags_path"`
	LockTimeout time.Duration `yaml:"lock_timeout,omitempty"`
	Excludes    []string      `yaml:"excludes,omitempty"`
	SourcesDir  string        `yaml:"sources_dir,omitempty"`
	ImportDir   string        `yaml:"import_dir,omitempty"`
	ReposFile   string        `yaml:"repos_file,omitempty"`
}

// HomeDir returns the absolute path to ~/.skill-cortex/.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".skill-cortex"), nil
}

// ConfigPath returns the absolute path to ~/.skill-cortex/config.yaml.
func ConfigPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(home, ".skill-cortex")

	return &Config{
		Roots: []string{
			filepath.Join(home, ".claude", "skills"),
			".skills",
		},
		CachePath:   filepath.Join(".skill_cortex_cache", "index.json"),
		TagsPath:    "tags.md",
		LockTimeout: 10 * time.Second,
		Excludes: []string{
			"**/.DS_Store",
			"**/Thumbs.db",
			"**/*.tmp",
			"**/*.bak",
			"**/*~",
			"**/.git/**",
			"**/__pycache__/**",
			"**/*.log",
		},
		SourcesDir: filepath.Join(dir, "sources"),
		ImportDir:  filepath.Join(".skills", "imported"),
		ReposFile:  filepath.Join(dir, "repos.yaml"),
	}, nil
}

// Load reads the config file at path, or ~/.skill-cortex/config.yaml when
// path is empty. A missing file yields the defaults. Fields absent from the
// file keep their default value. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		if path, err = ConfigPath(); err != nil {
			return nil, err
		}
	}
	if path, err = ExpandPath(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.expand(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save marshals cfg and writes it to path, creating the parent directory.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	roots, err := GetConfigValue(EnvRoots)
	if err != nil {
		return err
	}
	if roots != "" {
		c.Roots = splitList(roots)
	}
	if v, err := GetConfigValue(EnvCachePath); err != nil {
		return err
	} else if v != "" {
		c.CachePath = v
	}
	if v, err := GetConfigValue(EnvTagsPath); err != nil {
		return err
	} else if v != "" {
		c.TagsPath = v
	}
	return nil
}

func (c *Config) expand() error {
	var err error
	for i, r := range c.Roots {
		if c.Roots[i], err = ExpandPath(r); err != nil {
			return err
		}
	}
	for _, p := range []*string{&c.CachePath, &c.TagsPath, &c.SourcesDir, &c.ImportDir, &c.ReposFile} {
		if *p, err = ExpandPath(*p); err != nil {
			return err
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
