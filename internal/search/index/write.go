package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/kamusis/skill-cortex/internal/skills"
)

// Save writes the records of res to path, replacing any previous file as a
// whole. Parent directories are created as needed.
func Save(path string, res *skills.ScanResult) error {
	f := File{Version: Version, Skills: []SkillEntry{}}
	if res != nil {
		for _, r := range res.Records {
			f.Skills = append(f.Skills, RecordToEntry(r))
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("cannot encode index: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create cache dir %s: %w", filepath.Dir(path), err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("cannot write index %s: %w", path, err)
	}
	return nil
}
