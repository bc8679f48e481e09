package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kamusis/skill-cortex/internal/config"
	"github.com/kamusis/skill-cortex/internal/importer"
	"github.com/kamusis/skill-cortex/internal/search/index"
	"github.com/kamusis/skill-cortex/internal/skills"
	"github.com/kamusis/skill-cortex/internal/tags"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check roots, taxonomy, index cache and documents",
	Long: `Check that the configured roots exist, the tag taxonomy loads, the
index cache is readable and every SKILL.md can be indexed. Run this command
when a skill does not show up or something seems wrong.`,
	RunE: runDoctor,
}

var doctorFixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Automatically fix detected issues",
	Long: `Fix detected issues.

Currently fixes:
  - Missing config file: writes the effective settings to the config path
  - Missing dotenv file: writes a template with the override keys left blank
  - Unresolved import conflicts: deletes all .conflict-* files from the import dir
  - Unusable index cache: rebuilds it from the roots

Run 'skill-cortex doctor' first to see what will be fixed.`,
	RunE: runDoctorFix,
}

func init() {
	doctorCmd.AddCommand(doctorFixCmd)
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("skill-cortex doctor")
	fmt.Println()

	// ── Check 1: config ─────────────────────────────────────────────────────
	fmt.Println("[ Config ]")
	cfgPath := flagConfig
	if cfgPath == "" {
		cfgPath, _ = config.ConfigPath()
	}
	cfg, err := loadConfig()
	if err != nil {
		failD("%v", err)
		return fmt.Errorf("doctor found issues")
	}
	if _, statErr := os.Stat(cfgPath); statErr != nil {
		printSkip("", fmt.Sprintf("no config file at %s — using defaults", cfgPath))
	} else {
		printOK("", fmt.Sprintf("valid YAML: %s", cfgPath))
	}
	if envPath, err := config.DotEnvPath(); err == nil {
		if _, statErr := os.Stat(envPath); statErr != nil {
			printSkip("", fmt.Sprintf("no dotenv file at %s", envPath))
		} else {
			printOK("", fmt.Sprintf("dotenv: %s", envPath))
		}
	}
	fmt.Println()

	// ── Check 2: roots ──────────────────────────────────────────────────────
	fmt.Println("[ Roots ]")
	existing := 0
	for _, root := range cfg.Roots {
		info, err := os.Stat(root)
		switch {
		case err != nil:
			printMiss("", fmt.Sprintf("%s (missing)", root))
		case !info.IsDir():
			failD("%s is not a directory", root)
		default:
			existing++
			printOK("", root)
		}
	}
	if existing == 0 {
		failD("no usable root — configure roots in %s or %s", cfgPath, config.EnvRoots)
	}
	fmt.Println()

	// ── Check 3: taxonomy ───────────────────────────────────────────────────
	fmt.Println("[ Taxonomy ]")
	tax := tags.LoadTaxonomy(cfg.TagsPath)
	if tax.Len() == 0 {
		printWarn("", fmt.Sprintf("no tags loaded from %s — every tag is accepted", cfg.TagsPath))
	} else {
		printOK("", fmt.Sprintf("%d allowed tag(s) from %s", tax.Len(), cfg.TagsPath))
	}
	fmt.Println()

	// ── Check 4: cache ──────────────────────────────────────────────────────
	fmt.Println("[ Index cache ]")
	cached, cacheErr := index.Inspect(cfg.CachePath)
	if cacheErr != nil {
		printWarn("", fmt.Sprintf("%v — it will be rebuilt on next use", cacheErr))
	} else {
		printOK("", fmt.Sprintf("%d skill(s) in %s", len(cached.Records), cfg.CachePath))
	}
	fmt.Println()

	// ── Check 5: documents ──────────────────────────────────────────────────
	fmt.Println("[ Documents ]")
	res, skipped := skills.Scan(cfg.Roots, tax)
	printOK("", fmt.Sprintf("%d skill(s) indexable", len(res.Records)))
	for _, s := range skipped {
		printWarn(s.Reason, s.Path)
	}
	if len(skipped) > 0 {
		allOK = false
	}
	if cached != nil && len(cached.Records) != len(res.Records) {
		printWarn("", fmt.Sprintf("cache is stale (%d cached, %d on disk) — run 'skill-cortex scan'", len(cached.Records), len(res.Records)))
	}
	issues := 0
	for _, r := range res.Records {
		if r.HasIssues() {
			issues++
		}
	}
	if issues > 0 {
		printWarn("", fmt.Sprintf("%d skill(s) with tag issues — run 'skill-cortex tags list'", issues))
	}
	fmt.Println()

	// ── Check 6: unresolved import conflicts ────────────────────────────────
	fmt.Println("[ Unresolved conflicts ]")
	conflicts := importer.FindConflicts(cfg.ImportDir)
	if len(conflicts) == 0 {
		printOK("", "no unresolved conflict files found")
	} else {
		for _, c := range conflicts {
			printWarn("", c)
		}
		fmt.Printf("\n  %s  %d unresolved conflict file(s) in %s.\n", warnIcon, len(conflicts), cfg.ImportDir)
		fmt.Println("     Review them, then run 'skill-cortex doctor fix'.")
		allOK = false
	}
	fmt.Println()

	fmt.Println("===================")
	if !allOK {
		fmt.Fprintf(os.Stderr, "%s  One or more checks failed. See details above.\n", errIcon)
		return fmt.Errorf("doctor found issues")
	}
	fmt.Printf("%s  All checks passed.\n", okIcon)
	return nil
}

func runDoctorFix(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	printSection("skill-cortex doctor fix")

	var failed int

	fmt.Println("\n[ Config ]")
	cfgPath := flagConfig
	if cfgPath == "" {
		if cfgPath, err = config.ConfigPath(); err != nil {
			return err
		}
	}
	if _, statErr := os.Stat(cfgPath); statErr == nil {
		printOK("", "config file present — nothing to fix")
	} else if err := config.Save(cfgPath, cfg); err != nil {
		printErr("", err.Error())
		failed++
	} else {
		printOK("", fmt.Sprintf("config written: %s", cfgPath))
	}

	fmt.Println("\n[ Dotenv ]")
	if created, err := config.EnsureDotEnvTemplate(); err != nil {
		printErr("", err.Error())
		failed++
	} else if created {
		printOK("", "dotenv template created")
	} else {
		printOK("", "dotenv file present — nothing to fix")
	}

	fmt.Println("\n[ Unresolved conflicts ]")
	conflicts := importer.FindConflicts(cfg.ImportDir)
	if len(conflicts) == 0 {
		printOK("", "no conflict files found — nothing to fix")
	}
	for _, rel := range conflicts {
		if err := os.Remove(filepath.Join(cfg.ImportDir, rel)); err != nil {
			printErr("", fmt.Sprintf("cannot delete %s: %v", rel, err))
			failed++
		} else {
			printOK("", fmt.Sprintf("deleted %s", rel))
		}
	}

	fmt.Println("\n[ Index cache ]")
	if _, err := index.Inspect(cfg.CachePath); err == nil {
		printOK("", "cache is readable — nothing to fix")
	} else {
		res, err := newCatalog(cfg).Rescan(cmd.Context())
		if err != nil {
			printErr("", fmt.Sprintf("cannot rebuild cache: %v", err))
			failed++
		} else {
			printOK("", fmt.Sprintf("cache rebuilt with %d skill(s)", len(res.Records)))
		}
	}

	fmt.Println()
	if failed > 0 {
		return fmt.Errorf("%d fix(es) failed", failed)
	}
	return nil
}
