package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamusis/skill-cortex/internal/skills"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Rescan every root and rewrite the index cache",
	Long: `Walk every configured root for SKILL.md documents, rebuild the index
from scratch and save it to the cache. Documents that could not be indexed
are listed with the reason.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat := newCatalog(cfg)

	printSection("Scan")
	res, err := cat.Rescan(cmd.Context())
	if res == nil {
		return err
	}
	printOK("", fmt.Sprintf("%d skill(s) indexed from %d root(s)", len(res.Records), len(cfg.Roots)))
	if err != nil {
		printWarn("", fmt.Sprintf("cache not saved: %v", err))
	} else {
		printOK("", fmt.Sprintf("cache written: %s", cfg.CachePath))
	}

	printSkipped(cat.Skipped())

	issues := 0
	for _, r := range res.Records {
		if r.HasIssues() {
			issues++
		}
	}
	if issues > 0 {
		printWarn("", fmt.Sprintf("%d skill(s) with tag issues — run 'skill-cortex tags list'", issues))
	}
	return nil
}

func printSkipped(skipped []skills.Skip) {
	if len(skipped) == 0 {
		return
	}
	printBullet(fmt.Sprintf("Skipped (%d):", len(skipped)))
	for _, s := range skipped {
		printSkip(s.Reason, s.Path)
	}
}
