package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamusis/skill-cortex/internal/catalog"
	"github.com/kamusis/skill-cortex/internal/search"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Inspect and rewrite skill tags",
}

var tagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List skills whose tags are missing or outside the taxonomy",
	Args:  cobra.NoArgs,
	RunE:  runTagsList,
}

var tagsAllowedCmd = &cobra.Command{
	Use:   "allowed",
	Short: "Show the tag taxonomy in use",
	Args:  cobra.NoArgs,
	RunE:  runTagsAllowed,
}

var tagsSetCmd = &cobra.Command{
	Use:   "set <skill-id> <tag>...",
	Short: "Rewrite the tags of a skill and refresh the index",
	Long: `Replace the tags: line in the header of a skill's SKILL.md. Tags are
trimmed, lowercased and deduplicated, and must belong to the taxonomy when
one is configured. The rest of the document is left untouched. The index is
rebuilt afterwards.

Example:
  skill-cortex tags set skills:data/kafka/SKILL.md kafka data`,
	Args: cobra.MinimumNArgs(2),
	RunE: runTagsSet,
}

func init() {
	tagsCmd.AddCommand(tagsListCmd, tagsAllowedCmd, tagsSetCmd)
	rootCmd.AddCommand(tagsCmd)
}

func runTagsList(cmd *cobra.Command, _ []string) error {
	_, cat, err := openCatalog(cmd.Context())
	if err != nil {
		return err
	}
	snap, err := cat.Snapshot()
	if err != nil {
		return err
	}
	bad := search.WithIssues(snap.Records)

	printSection("Tag issues")
	if len(bad) == 0 {
		printOK("", "every skill has valid tags")
		return nil
	}
	for _, s := range search.SummarizeAll(bad) {
		printSkill(s)
	}
	fmt.Printf("\n  %d skill(s) need attention.\n", len(bad))
	return nil
}

func runTagsAllowed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat := newCatalog(cfg)
	if err := cat.EnsureLoaded(cmd.Context()); err != nil {
		return err
	}
	tax := cat.Taxonomy()

	printSection("Taxonomy")
	if tax.Len() == 0 {
		printSkip("", fmt.Sprintf("no taxonomy at %s — every tag is accepted", cfg.TagsPath))
		return nil
	}
	printInfo("", fmt.Sprintf("%d tag(s) from %s", tax.Len(), cfg.TagsPath))
	fmt.Printf("  %s\n", strings.Join(tax.Tags(), ", "))
	return nil
}

func runTagsSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat := newCatalog(cfg)

	outcomes, err := cat.ApplyTags(cmd.Context(), []catalog.TagUpdate{{SkillID: args[0], Tags: args[1:]}})
	if outcomes == nil {
		return err
	}
	failed := 0
	for _, o := range outcomes {
		if o.OK {
			printOK(o.SkillID, "tags: ["+strings.Join(o.Tags, ", ")+"]")
			continue
		}
		failed++
		msg := o.Error
		if len(o.Invalid) > 0 {
			msg += ": " + strings.Join(o.Invalid, ", ")
		}
		if o.Detail != "" {
			msg += " (" + o.Detail + ")"
		}
		printErr(o.SkillID, msg)
	}
	if err != nil {
		printWarn("", fmt.Sprintf("index cache not saved: %v", err))
	}
	if failed > 0 {
		return fmt.Errorf("%d update(s) failed", failed)
	}
	return nil
}
