package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamusis/skill-cortex/internal/importer"
)

var (
	flagImportDryRun bool
	flagImportClean  bool
	flagImportOnly   []string
	flagImportRepos  string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy skill folders from fetched source repositories into the import dir",
	Long: `Import skills from source repositories that were already fetched into
sources_dir/<name>. Every folder containing a SKILL.md is copied to
import_dir/<name>/<relative path>. Files that already exist with different
content are kept and the incoming version is stored next to them as
<name>.conflict-<repo>.<ext>.

The repository list is read from repos_file (YAML):

  repositories:
    - name: anthropics_skills
      url: https://github.com/anthropics/skills.git
      branch: main
      enabled: true`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagImportDryRun, "dry-run", false, "Show what would be imported without writing")
	importCmd.Flags().BoolVar(&flagImportClean, "clean", false, "Remove the import dir before importing")
	importCmd.Flags().StringSliceVar(&flagImportOnly, "only", nil, "Limit to the named repositories (repeatable)")
	importCmd.Flags().StringVar(&flagImportRepos, "repos", "", "Repository list file (default repos_file from config)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	reposFile := cfg.ReposFile
	if flagImportRepos != "" {
		reposFile = flagImportRepos
	}
	repos, err := importer.LoadRepoList(ctx, reposFile)
	if err != nil {
		return err
	}

	mode := "Import"
	if flagImportDryRun {
		mode = "Import (dry run)"
	}
	printSection(mode)
	printInfo("", fmt.Sprintf("sources: %s", cfg.SourcesDir))
	printInfo("", fmt.Sprintf("target:  %s", cfg.ImportDir))
	if len(flagImportOnly) > 0 {
		printInfo("", "only: "+strings.Join(flagImportOnly, ", "))
	}

	reports, err := importer.Run(ctx, repos, importer.RunOptions{
		SourcesDir: cfg.SourcesDir,
		ImportDir:  cfg.ImportDir,
		Excludes:   cfg.Excludes,
		DryRun:     flagImportDryRun,
		Clean:      flagImportClean,
		Only:       flagImportOnly,
	})
	if err != nil {
		return err
	}

	var (
		failedRepos int
		totalSkills int
		conflicts   []importer.ConflictPair
	)
	for _, r := range reports {
		if r.Err != nil {
			failedRepos++
			if errors.Is(r.Err, fs.ErrNotExist) {
				printMiss(r.Name, fmt.Sprintf("not fetched: %s", filepath.Join(cfg.SourcesDir, r.Name)))
			} else {
				printErr(r.Name, r.Err.Error())
			}
			continue
		}
		res := r.Result
		totalSkills += len(res.Skills)
		if len(res.Skills) == 0 {
			printSkip(r.Name, "no skills found")
			continue
		}
		printOK(r.Name, fmt.Sprintf("%d skill(s): %d new, %d unchanged, %d with conflicts",
			len(res.Skills), res.SkillsImported, res.SkillsSkipped, res.SkillsConflicts))
		if flagImportDryRun {
			for _, s := range res.Skills {
				fmt.Printf("       %s\n", s)
			}
		}
		for _, se := range res.Errors {
			printErr(r.Name, se.Error())
		}
		conflicts = append(conflicts, res.Conflicts...)
	}

	if len(conflicts) > 0 {
		printBullet(fmt.Sprintf("Conflicts (%d):", len(conflicts)))
		for _, c := range conflicts {
			printWarn(c.Source, fmt.Sprintf("%s → %s", c.Original, c.Conflict))
		}
		fmt.Println("\n  Review the .conflict-* files, then run 'skill-cortex doctor fix' to remove them.")
	}

	fmt.Println()
	verb := "imported"
	if flagImportDryRun {
		verb = "would be imported"
	}
	fmt.Printf("  %d skill(s) %s from %d repository(ies).\n", totalSkills, verb, len(reports)-failedRepos)
	if !flagImportDryRun && totalSkills > 0 {
		fmt.Println("  Run 'skill-cortex scan' to refresh the index.")
	}
	if failedRepos > 0 {
		return fmt.Errorf("%d repository(ies) failed", failedRepos)
	}
	return nil
}
