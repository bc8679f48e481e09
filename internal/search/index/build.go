package index

import (
	"fmt"
	"time"

	"github.com/kamusis/skill-cortex/internal/skills"
	"github.com/kamusis/skill-cortex/internal/tags"
)

// BuildOptions controls a full index rebuild.
type BuildOptions struct {
	Roots       []string
	Taxonomy    *tags.Taxonomy
	CachePath   string
	LockTimeout time.Duration
}

// Build scans every root and saves the result to the cache. The index is
// always rebuilt from scratch; the previous cache content is never reused.
//
// The save happens under the cache lock. A failed save still returns the
// scan result so callers can serve it from memory.
func Build(opts BuildOptions) (*skills.ScanResult, []skills.Skip, error) {
	if opts.CachePath == "" {
		return nil, nil, fmt.Errorf("cache path is required")
	}
	res, skipped := skills.Scan(opts.Roots, opts.Taxonomy)

	timeout := opts.LockTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	unlock, err := Lock(opts.CachePath, timeout)
	if err != nil {
		return res, skipped, err
	}
	defer unlock()

	if err := Save(opts.CachePath, res); err != nil {
		return res, skipped, err
	}
	return res, skipped, nil
}
