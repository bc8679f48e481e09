package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamusis/skill-cortex/internal/catalog"
	"github.com/kamusis/skill-cortex/internal/tags"
)

var flagShowMeta bool

var showCmd = &cobra.Command{
	Use:   "show <skill-id>",
	Short: "Print the SKILL.md document of a skill",
	Long: `Print the raw SKILL.md of a skill. With --meta, print the indexed
metadata instead: title, category, tags, tag issues and document path.

Example:
  skill-cortex show skills:data/kafka/SKILL.md
  skill-cortex show --meta skills:data/kafka/SKILL.md`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&flagShowMeta, "meta", false, "Print indexed metadata instead of the document")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	_, cat, err := openCatalog(cmd.Context())
	if err != nil {
		return err
	}
	id := strings.TrimSpace(args[0])

	if !flagShowMeta {
		content, err := cat.Content(id)
		if errors.Is(err, catalog.ErrSkillNotFound) {
			printMiss("", fmt.Sprintf("skill not found: %s", id))
		}
		if err != nil {
			return err
		}
		fmt.Print(content)
		return nil
	}

	rec, err := cat.Get(id)
	if err != nil {
		printMiss("", fmt.Sprintf("skill not found: %s", id))
		return err
	}
	printSection(rec.Header.Title)
	fmt.Printf("  ID:          %s\n", rec.ID)
	fmt.Printf("  Category:    /%s\n", strings.Join(rec.CategoryPath, "/"))
	fmt.Printf("  Tags:        %s\n", tags.Format(rec.Header.Tags))
	fmt.Printf("  Description: %s\n", rec.Header.Description)
	fmt.Printf("  Document:    %s\n", rec.DocumentPath)
	fmt.Printf("  Root:        %s\n", rec.SourceRoot)
	if rec.HasIssues() {
		printWarn("", "tag issues: "+strings.Join(rec.TagIssues, " "))
	}
	return nil
}
