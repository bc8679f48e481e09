// Package importer copies skill folders from fetched source repositories into
// the import directory, applying exclude filtering and MD5-based conflict
// resolution.
package importer

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/natefinch/atomic"

	"github.com/kamusis/skill-cortex/internal/skills"
)

// ConflictPair records a conflict found during import.
type ConflictPair struct {
	Original string // path of the file already in the import dir
	Conflict string // path where the incoming conflicting version was stored
	Source   string // source repository name
}

// SkillError records a skill folder that could not be copied.
type SkillError struct {
	Skill string
	Err   error
}

func (e SkillError) Error() string { return fmt.Sprintf("skill %s: %v", e.Skill, e.Err) }

// Result is returned by ImportRepo.
type Result struct {
	// Skills lists the slash-separated skill folders found, relative to the source.
	Skills    []string
	Conflicts []ConflictPair
	Imported  int // number of files copied (or that would be, on a dry run)
	Skipped   int // identical duplicates skipped
	Errors    []SkillError

	SkillsImported  int // skills with ≥1 newly copied file
	SkillsSkipped   int // skills whose every file was an identical duplicate
	SkillsConflicts int // skills with ≥1 conflict
}

// Options controls a single repository import.
type Options struct {
	Excludes []string
	DryRun   bool
}

// ImportRepo finds every folder under srcRoot holding a SKILL.md and copies
// it to the same relative location under dstRoot. Folders nested inside a
// skill folder travel with it. A failing skill is recorded in Result.Errors
// and the remaining skills are still imported.
func ImportRepo(srcRoot, dstRoot, source string, opts Options) (*Result, error) {
	info, err := os.Stat(srcRoot)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", source, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s: %s is not a directory", source, srcRoot)
	}

	dirs, err := findSkillDirs(srcRoot, opts.Excludes)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", source, err)
	}

	result := &Result{Skills: []string{}}
	skillImported := map[string]bool{}
	skillSkipped := map[string]bool{}
	skillConflict := map[string]bool{}

	for _, rel := range dirs {
		result.Skills = append(result.Skills, rel)
		c := &copier{
			src:      filepath.Join(srcRoot, filepath.FromSlash(rel)),
			dst:      filepath.Join(dstRoot, filepath.FromSlash(rel)),
			relBase:  rel,
			source:   source,
			excludes: opts.Excludes,
			dryRun:   opts.DryRun,
		}
		if err := c.run(); err != nil {
			result.Errors = append(result.Errors, SkillError{Skill: rel, Err: err})
		}
		result.Imported += c.imported
		result.Skipped += c.skipped
		result.Conflicts = append(result.Conflicts, c.conflicts...)
		if c.imported > len(c.conflicts) {
			skillImported[rel] = true
		}
		if len(c.conflicts) > 0 {
			skillConflict[rel] = true
		}
		if c.skipped > 0 {
			skillSkipped[rel] = true
		}
	}

	// Categories can overlap (new + conflict in same skill).
	result.SkillsImported = len(skillImported)
	result.SkillsConflicts = len(skillConflict)
	for s := range skillSkipped {
		if !skillImported[s] && !skillConflict[s] {
			result.SkillsSkipped++
		}
	}
	return result, nil
}

// findSkillDirs returns the slash-separated folders holding a SKILL.md,
// sorted, without folders nested inside another skill folder.
func findSkillDirs(root string, excludes []string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if matchesExclude(rel, d.IsDir(), excludes) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && d.Name() == skills.FileName {
			found = append(found, path.Dir(rel))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(found)
	out := []string{}
	for _, dir := range found {
		if len(out) > 0 && within(dir, out[len(out)-1]) {
			continue
		}
		out = append(out, dir)
	}
	return out, nil
}

func within(dir, parent string) bool {
	if parent == "." {
		return true
	}
	return dir == parent || strings.HasPrefix(dir, parent+"/")
}

type copier struct {
	src, dst  string
	relBase   string
	source    string
	excludes  []string
	dryRun    bool
	imported  int
	skipped   int
	conflicts []ConflictPair
}

func (c *copier) run() error {
	return filepath.WalkDir(c.src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(c.src, p)
		if err != nil {
			return err
		}
		if rel != "." && matchesExclude(path.Join(c.relBase, filepath.ToSlash(rel)), d.IsDir(), c.excludes) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		dst := filepath.Join(c.dst, rel)
		if d.IsDir() {
			if c.dryRun {
				return nil
			}
			return os.MkdirAll(dst, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if _, err := os.Stat(dst); err == nil {
			return c.merge(p, dst)
		}

		if !c.dryRun {
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return err
			}
			if err := copyFile(p, dst); err != nil {
				return fmt.Errorf("copy %s → %s: %w", p, dst, err)
			}
		}
		c.imported++
		return nil
	})
}

// merge handles an incoming file whose destination already exists: identical
// content is skipped, different content is stored beside the original.
func (c *copier) merge(src, dst string) error {
	same, err := sameContent(src, dst)
	if err != nil {
		return err
	}
	if same {
		c.skipped++
		return nil
	}
	side := conflictPath(dst, c.source)
	if !c.dryRun {
		if err := copyFile(src, side); err != nil {
			return fmt.Errorf("conflict copy %s → %s: %w", src, side, err)
		}
	}
	c.conflicts = append(c.conflicts, ConflictPair{Original: dst, Conflict: side, Source: c.source})
	c.imported++
	return nil
}

// conflictPath builds the conflict filename for an incoming file.
// Strategy: insert .conflict-<source> before the final extension.
//
//	SKILL.md             → SKILL.conflict-anthropics.md
//	scripts/run.sh       → scripts/run.conflict-anthropics.sh
func conflictPath(original, source string) string {
	ext := filepath.Ext(original)
	base := strings.TrimSuffix(original, ext)
	return base + ".conflict-" + source + ext
}

// matchesExclude reports whether the slash-separated relPath matches any of
// the doublestar patterns. Patterns without a slash also match the basename.
func matchesExclude(relPath string, isDir bool, patterns []string) bool {
	name := path.Base(relPath)
	for _, pattern := range patterns {
		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match(pattern, name); ok {
				return true
			}
			continue
		}
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
		if isDir {
			if ok, _ := doublestar.Match(pattern, relPath+"/"); ok {
				return true
			}
		}
	}
	return false
}

// sameContent compares the MD5 digests of two files.
func sameContent(a, b string) (bool, error) {
	da, err := digest(a)
	if err != nil {
		return false, err
	}
	db, err := digest(b)
	if err != nil {
		return false, err
	}
	return da == db, nil
}

func digest(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", fmt.Errorf("md5 %s: %w", p, err)
	}
	defer f.Close()
	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("md5 %s: %w", p, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyFile streams src into dst through a temp file and rename, then applies
// the source mode.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(dst, in); err != nil {
		return err
	}
	return os.Chmod(dst, info.Mode().Perm())
}

// FindConflicts walks dir and returns the relative paths of conflict copies
// left by earlier imports, sorted.
func FindConflicts(dir string) []string {
	found := []string{}
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if strings.Contains(d.Name(), ".conflict-") {
			rel, relErr := filepath.Rel(dir, p)
			if relErr != nil {
				rel = p
			}
			found = append(found, rel)
		}
		return nil
	})
	sort.Strings(found)
	return found
}
