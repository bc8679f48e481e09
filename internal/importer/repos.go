package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kamusis/skill-cortex/internal/logger"
)

// Repo is one source repository entry of the repository list.
type Repo struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Enabled *bool  `yaml:"enabled,omitempty"`
	Branch  string `yaml:"branch,omitempty"`
}

// IsEnabled reports whether the entry is enabled. Entries are enabled by default.
func (r Repo) IsEnabled() bool { return r.Enabled == nil || *r.Enabled }

type repoList struct {
	Repositories []Repo `yaml:"repositories"`
}

// DefaultRepos is used when no repository list exists.
func DefaultRepos() []Repo {
	return []Repo{
		{Name: "agentskills_agentskills", URL: "https://github.com/agentskills/agentskills.git"},
		{Name: "anthropics_skills", URL: "https://github.com/anthropics/skills.git"},
		{Name: "huggingface_skills", URL: "https://github.com/huggingface/skills.git"},
		{Name: "composio_awesome_skills", URL: "https://github.com/ComposioHQ/awesome-claude-skills.git"},
	}
}

// LoadRepoList reads the YAML repository list at path. Entries without a
// name or url, and disabled entries, are dropped with a log line. A missing
// file yields DefaultRepos.
func LoadRepoList(ctx context.Context, path string) ([]Repo, error) {
	log := logger.G(ctx)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.WithField("path", path).Debug("no repository list, using defaults")
		return DefaultRepos(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read repository list %s: %w", path, err)
	}

	var list repoList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}

	out := []Repo{}
	for i, r := range list.Repositories {
		switch {
		case r.Name == "":
			log.WithField("index", i+1).Warn("repository entry missing name, skipping")
		case r.URL == "":
			log.WithField("repo", r.Name).Warn("repository entry missing url, skipping")
		case !r.IsEnabled():
			log.WithField("repo", r.Name).Info("skipping disabled repository")
		default:
			out = append(out, r)
		}
	}
	return out, nil
}

// RunOptions controls a multi-repository import.
type RunOptions struct {
	SourcesDir string
	ImportDir  string
	Excludes   []string
	DryRun     bool
	Clean      bool
	// Only limits the run to the named repositories when non-empty.
	Only []string
}

// RepoReport is the outcome for one repository.
type RepoReport struct {
	Name   string
	Result *Result
	Err    error
}

// Run imports every repository from SourcesDir/<name> into ImportDir/<name>.
// A failing repository is reported and the run continues.
func Run(ctx context.Context, repos []Repo, opts RunOptions) ([]RepoReport, error) {
	log := logger.G(ctx)

	if opts.Clean && !opts.DryRun {
		log.WithField("dir", opts.ImportDir).Info("cleaning import directory")
		if err := os.RemoveAll(opts.ImportDir); err != nil {
			return nil, fmt.Errorf("cannot clean %s: %w", opts.ImportDir, err)
		}
	}

	only := map[string]bool{}
	for _, name := range opts.Only {
		only[name] = true
	}

	reports := []RepoReport{}
	for _, repo := range repos {
		if len(only) > 0 && !only[repo.Name] {
			continue
		}
		rlog := log.WithField("repo", repo.Name)
		res, err := ImportRepo(
			filepath.Join(opts.SourcesDir, repo.Name),
			filepath.Join(opts.ImportDir, repo.Name),
			repo.Name,
			Options{Excludes: opts.Excludes, DryRun: opts.DryRun},
		)
		if err != nil {
			rlog.WithError(err).Warn("repository import failed")
		} else {
			for _, se := range res.Errors {
				rlog.WithField("skill", se.Skill).WithError(se.Err).Warn("skill import failed")
			}
			rlog.WithField("skills", len(res.Skills)).Info("repository imported")
		}
		reports = append(reports, RepoReport{Name: repo.Name, Result: res, Err: err})
	}
	return reports, nil
}
