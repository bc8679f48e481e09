// Package catalog holds the process-wide skill index: the tag taxonomy and
// the current scan result, loaded lazily and replaced wholesale on rescan.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/kamusis/skill-cortex/internal/logger"
	"github.com/kamusis/skill-cortex/internal/search"
	"github.com/kamusis/skill-cortex/internal/search/index"
	"github.com/kamusis/skill-cortex/internal/skills"
	"github.com/kamusis/skill-cortex/internal/tags"
)

var (
	// ErrNotLoaded is returned by Snapshot before EnsureLoaded succeeded.
	ErrNotLoaded = errors.New("index not loaded")
	// ErrSkillNotFound indicates an unknown skill id.
	ErrSkillNotFound = errors.New("skill_not_found")
	// ErrPathNotFound indicates a category path absent from the tree.
	ErrPathNotFound = errors.New("path_not_found")
)

// Options locates the roots, cache and taxonomy.
type Options struct {
	Roots        []string
	CachePath    string
	TaxonomyPath string
	LockTimeout  time.Duration
}

// Catalog guards the shared index state. Readers get immutable snapshots;
// loads, rescans and tag rewrites run one at a time.
type Catalog struct {
	opts Options

	// writeMu serializes EnsureLoaded, Rescan and ApplyTags.
	writeMu sync.Mutex

	mu       sync.RWMutex
	taxonomy *tags.Taxonomy
	snap     *skills.ScanResult
	skipped  []skills.Skip
}

// New returns an unloaded catalog.
func New(opts Options) *Catalog {
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = 10 * time.Second
	}
	return &Catalog{opts: opts}
}

// Options returns the configuration the catalog was built with.
func (c *Catalog) Options() Options { return c.opts }

// EnsureLoaded loads the taxonomy and the index once. The cache is used when
// valid; otherwise the roots are scanned and the cache rewritten.
func (c *Catalog) EnsureLoaded(ctx context.Context) error {
	if c.loaded() {
		return nil
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.loaded() {
		return nil
	}

	start := time.Now()
	log := logger.G(ctx)
	tax := tags.LoadTaxonomy(c.opts.TaxonomyPath)

	res, err := index.Inspect(c.opts.CachePath)
	var skipped []skills.Skip
	if err != nil {
		log.WithError(err).Debug("index cache unusable, scanning roots")
		res, skipped, err = c.build(tax)
		if err != nil {
			if res == nil {
				return err
			}
			log.WithError(err).Warn("cannot persist index cache")
		}
		logSkipped(ctx, skipped)
	}

	c.replace(tax, res, skipped)
	log.WithField("skills", len(res.Records)).
		WithField("duration", time.Since(start).Round(time.Millisecond).String()).
		Info("index ready")
	return nil
}

// Snapshot returns the current scan result.
func (c *Catalog) Snapshot() (*skills.ScanResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return nil, ErrNotLoaded
	}
	return c.snap, nil
}

// Taxonomy returns the loaded taxonomy, or an empty one before loading.
func (c *Catalog) Taxonomy() *tags.Taxonomy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.taxonomy == nil {
		return tags.NewTaxonomy()
	}
	return c.taxonomy
}

// Skipped returns the documents left out by the last scan. It is empty when
// the index came from the cache.
func (c *Catalog) Skipped() []skills.Skip {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.skipped
}

// Replace swaps in a scan result built elsewhere. Readers holding the old
// one keep it. It waits for a running load, rescan or tag batch.
func (c *Catalog) Replace(res *skills.ScanResult) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	tax := c.Taxonomy()
	if !c.loaded() {
		tax = tags.LoadTaxonomy(c.opts.TaxonomyPath)
	}
	c.replace(tax, res, nil)
}

// Rescan rebuilds the index from the roots and rewrites the cache.
func (c *Catalog) Rescan(ctx context.Context) (*skills.ScanResult, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	tax := c.Taxonomy()
	if !c.loaded() {
		tax = tags.LoadTaxonomy(c.opts.TaxonomyPath)
	}
	res, skipped, err := c.build(tax)
	if res == nil {
		return nil, err
	}
	logSkipped(ctx, skipped)
	c.replace(tax, res, skipped)
	logger.G(ctx).WithField("skills", len(res.Records)).Info("index rebuilt")
	return res, err
}

// List returns the node at path (slash separated) of the current tree.
func (c *Catalog) List(path string) (*skills.Node, error) {
	snap, err := c.Snapshot()
	if err != nil {
		return nil, err
	}
	node, ok := skills.Find(snap.Tree, skills.ParsePath(path))
	if !ok {
		return nil, ErrPathNotFound
	}
	return node, nil
}

// Search runs a keyword and tag query over the current records.
func (c *Catalog) Search(q search.Query) ([]skills.Record, error) {
	snap, err := c.Snapshot()
	if err != nil {
		return nil, err
	}
	return search.KeywordSearch(snap.Records, q), nil
}

// Get returns the record with the given id.
func (c *Catalog) Get(id string) (skills.Record, error) {
	snap, err := c.Snapshot()
	if err != nil {
		return skills.Record{}, err
	}
	rec, ok := snap.Get(id)
	if !ok {
		return skills.Record{}, ErrSkillNotFound
	}
	return rec, nil
}

// Content returns the raw document of the skill with the given id.
func (c *Catalog) Content(id string) (string, error) {
	rec, err := c.Get(id)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(rec.DocumentPath)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", rec.DocumentPath, err)
	}
	return string(b), nil
}

func (c *Catalog) build(tax *tags.Taxonomy) (*skills.ScanResult, []skills.Skip, error) {
	return index.Build(index.BuildOptions{
		Roots:       c.opts.Roots,
		Taxonomy:    tax,
		CachePath:   c.opts.CachePath,
		LockTimeout: c.opts.LockTimeout,
	})
}

func (c *Catalog) loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap != nil && c.taxonomy != nil
}

// replace publishes a new state. Callers hold writeMu.
func (c *Catalog) replace(tax *tags.Taxonomy, res *skills.ScanResult, skipped []skills.Skip) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.taxonomy = tax
	c.snap = res
	c.skipped = skipped
}

func logSkipped(ctx context.Context, skipped []skills.Skip) {
	if len(skipped) == 0 {
		return
	}
	log := logger.G(ctx)
	for _, s := range skipped {
		log.WithField("path", s.Path).WithField("reason", s.Reason).Debug("skipped document")
	}
	log.WithField("count", len(skipped)).Warn("some documents were not indexed")
}
