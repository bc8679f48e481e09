package skills

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kamusis/skill-cortex/internal/frontmatter"
	"github.com/kamusis/skill-cortex/internal/tags"
)

// Skip reasons that do not come from header parsing.
const (
	ReasonReadFailed = "read_failed"
	ReasonWalkFailed = "walk_failed"
)

// Scan walks every root for SKILL.md files and indexes them against tax.
//
// Roots that do not exist or are not directories are ignored. A document that
// cannot be read or parsed is left out and reported in the returned skips;
// it never stops the scan.
func Scan(roots []string, tax *tags.Taxonomy) (*ScanResult, []Skip) {
	tree := NewRoot()
	records := []Record{}
	var skipped []Skip

	for _, root := range roots {
		abs, walkRoot, ok := resolveRoot(root)
		if !ok {
			continue
		}
		rootName := filepath.Base(abs)

		walkFn := func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path != walkRoot {
					skipped = append(skipped, Skip{Path: path, Reason: ReasonWalkFailed})
				}
				return nil
			}
			if d.IsDir() || d.Name() != FileName {
				return nil
			}

			rel, err := filepath.Rel(walkRoot, path)
			if err != nil {
				skipped = append(skipped, Skip{Path: path, Reason: ReasonWalkFailed})
				return nil
			}
			docPath := filepath.Join(abs, rel)

			b, err := os.ReadFile(path)
			if err != nil {
				skipped = append(skipped, Skip{Path: docPath, Reason: ReasonReadFailed})
				return nil
			}
			h, err := frontmatter.Parse(string(b))
			if err != nil {
				skipped = append(skipped, Skip{Path: docPath, Reason: frontmatter.Code(err)})
				return nil
			}

			rec := Record{
				ID:           rootName + ":" + filepath.ToSlash(rel),
				SourceRoot:   abs,
				DocumentPath: docPath,
				CategoryPath: categoryPath(rel),
				Header:       h,
				Summary:      frontmatter.Summary(h.Description, frontmatter.DefaultSummaryWords),
				TagIssues:    tax.Validate(h.Tags),
			}
			records = append(records, rec)
			Insert(tree, rec)
			return nil
		}

		_ = filepath.WalkDir(walkRoot, walkFn)
	}

	return &ScanResult{Records: records, Tree: tree}, skipped
}

// resolveRoot returns the absolute root and the directory to walk, which
// differs when the root is a symlink.
func resolveRoot(root string) (string, string, bool) {
	if root == "" {
		return "", "", false
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = filepath.Clean(root)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", "", false
	}
	walkRoot, err := filepath.EvalSymlinks(abs)
	if err != nil {
		walkRoot = abs
	}
	return abs, walkRoot, true
}

func categoryPath(rel string) []string {
	dir := filepath.Dir(rel)
	out := []string{}
	if dir == "." {
		return out
	}
	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if part != "" && part != "." {
			out = append(out, part)
		}
	}
	return out
}
