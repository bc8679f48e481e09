package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamusis/skill-cortex/internal/search"
)

var (
	flagSearchTags []string
	flagSearchK    int
	flagSearchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search skills by keyword and tag",
	Long: `Search the index. The query is matched as one phrase (case-insensitive)
against the skill id, title, description and category path joined by
spaces. --tag restricts results to skills carrying all the given tags.

Example:
  skill-cortex search kafka consumer
  skill-cortex search --tag ops --tag k8s`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringSliceVarP(&flagSearchTags, "tag", "t", nil, "Required tag (repeatable)")
	searchCmd.Flags().IntVar(&flagSearchK, "k", 0, "Maximum number of results (0 = all)")
	searchCmd.Flags().BoolVar(&flagSearchJSON, "json", false, "Print results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && len(flagSearchTags) == 0 {
		return cmd.Help()
	}
	_, cat, err := openCatalog(cmd.Context())
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	found, err := cat.Search(search.Query{Text: query, Tags: flagSearchTags, Limit: flagSearchK})
	if err != nil {
		return err
	}
	results := search.SummarizeAll(found)

	if flagSearchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	fmt.Printf("\nskill-cortex search %q", query)
	if len(flagSearchTags) > 0 {
		fmt.Printf(" --tag %s", strings.Join(flagSearchTags, ","))
	}
	fmt.Printf("\n\nResults (%d found):\n", len(results))
	for _, s := range results {
		printSkill(s)
	}
	return nil
}
