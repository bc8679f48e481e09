package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kamusis/skill-cortex/internal/skills"
)

// Load restores the index from the cache file at path. It returns nil when the
// cache is missing or unusable for any reason; the tree is rebuilt from the
// loaded records.
func Load(path string) *skills.ScanResult {
	res, err := Inspect(path)
	if err != nil {
		return nil
	}
	return res
}

// Inspect is Load with the reason for a miss. Every error wraps ErrCacheMiss.
func Inspect(path string) (*skills.ScanResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot stat %s: %w", ErrCacheMiss, path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrCacheMiss, path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read %s: %w", ErrCacheMiss, path, err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(b, &top); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON in %s: %w", ErrCacheMiss, path, err)
	}

	rawVersion, ok := top["version"]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no version", ErrCacheMiss, path)
	}
	version, err := decodeVersion(rawVersion)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid version in %s: %w", ErrCacheMiss, path, err)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: unsupported version %v in %s", ErrCacheMiss, version, path)
	}

	rawSkills, ok := top["skills"]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no skills list", ErrCacheMiss, path)
	}
	if bytes.Equal(bytes.TrimSpace(rawSkills), []byte("null")) {
		return nil, fmt.Errorf("%w: skills is null in %s", ErrCacheMiss, path)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(rawSkills, &items); err != nil {
		return nil, fmt.Errorf("%w: skills is not a list in %s: %w", ErrCacheMiss, path, err)
	}

	records := make([]skills.Record, 0, len(items))
	for _, item := range items {
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			continue
		}
		var e SkillEntry
		if err := json.Unmarshal(item, &e); err != nil {
			continue
		}
		records = append(records, EntryToRecord(e))
	}
	return skills.NewScanResult(records), nil
}

// decodeVersion accepts any JSON number, so 1 and 1.0 are the same version.
// Strings are rejected even when they hold a number.
func decodeVersion(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		return 0, fmt.Errorf("version is a string: %s", raw)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	return n.Float64()
}
