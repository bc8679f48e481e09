package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamusis/skill-cortex/internal/catalog"
	"github.com/kamusis/skill-cortex/internal/search"
	"github.com/kamusis/skill-cortex/internal/skills"
)

var flagTreeRecursive bool

var treeCmd = &cobra.Command{
	Use:   "tree [path]",
	Short: "List categories and skills at a node of the category tree",
	Long: `List the sub-categories and the skills stored directly at a category.
The path is slash separated; omit it for the root.

Example:
  skill-cortex tree
  skill-cortex tree data/kafka
  skill-cortex tree --recursive`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTree,
}

func init() {
	treeCmd.Flags().BoolVarP(&flagTreeRecursive, "recursive", "r", false, "Print the whole subtree")
	rootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	_, cat, err := openCatalog(cmd.Context())
	if err != nil {
		return err
	}
	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	node, err := cat.List(path)
	if errors.Is(err, catalog.ErrPathNotFound) {
		printMiss("", fmt.Sprintf("category not found: %s", "/"+strings.Join(skills.ParsePath(path), "/")))
		return err
	}
	if err != nil {
		return err
	}

	printSection("/" + strings.Join(node.Path, "/"))
	if flagTreeRecursive {
		printSubtree(node, 0)
		return nil
	}

	names := node.ChildNames()
	if len(names) > 0 {
		printBullet(fmt.Sprintf("Categories (%d):", len(names)))
		for _, name := range names {
			printInfo("", name+"/")
		}
	}
	if len(node.Skills) > 0 {
		printBullet(fmt.Sprintf("Skills (%d):", len(node.Skills)))
		for _, s := range search.SummarizeAll(node.Skills) {
			printSkill(s)
		}
	}
	if len(names) == 0 && len(node.Skills) == 0 {
		printSkip("", "empty")
	}
	return nil
}

func printSubtree(node *skills.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, s := range node.Skills {
		fmt.Printf("  %s%s  %s\n", indent, s.Header.Title, faint(s.ID))
	}
	for _, name := range node.ChildNames() {
		fmt.Printf("  %s%s/\n", indent, bold(name))
		printSubtree(node.Children[name], depth+1)
	}
}
