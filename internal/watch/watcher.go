// Package watch triggers a debounced callback when anything under the skill
// roots changes.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/kamusis/skill-cortex/internal/logger"
)

// DefaultDebounce is the quiet period before the callback fires.
const DefaultDebounce = 500 * time.Millisecond

var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/__pycache__/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

// Config holds the parameters for a Watcher.
type Config struct {
	// Roots are the directories watched recursively. Missing roots are skipped.
	Roots []string
	// Ignore adds doublestar patterns, matched against slash paths relative
	// to the root, to the built-in ignores.
	Ignore   []string
	Debounce time.Duration
	// OnChange runs once per quiet period. Calls never overlap.
	OnChange func(ctx context.Context) error
}

// Watcher watches the roots and fires OnChange after bursts of events.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	roots    []string
	ignores  []string
	debounce time.Duration
	started  atomic.Bool
}

// New creates the watcher and registers every directory under every root.
func New(ctx context.Context, cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  append(append([]string{}, defaultIgnores...), cfg.Ignore...),
		debounce: debounce,
	}

	log := logger.G(ctx)
	for _, root := range cfg.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			log.WithField("root", root).Debug("watch: root missing, not watched")
			continue
		}
		if err := w.addTree(ctx, abs, abs); err != nil {
			fsw.Close()
			return nil, err
		}
		w.roots = append(w.roots, abs)
	}
	return w, nil
}

// Run blocks until ctx is cancelled, dispatching debounced callbacks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watch: Run called more than once")
	}
	log := logger.G(ctx)

	var (
		mu      sync.Mutex
		dirty   bool
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if !dirty {
			mu.Unlock()
			return
		}
		dirty = false
		mu.Unlock()

		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx); err != nil {
				log.WithError(err).Warn("watch: callback failed")
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			log.WithError(err).Debug("watch: close fsnotify")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watch: fsnotify event channel closed unexpectedly")
			}
			root := w.rootOf(evt.Name)
			if root == "" || w.isIgnored(root, evt.Name) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
					if err := w.addTree(ctx, root, evt.Name); err != nil {
						log.WithError(err).Warn("watch: cannot watch new directory")
					}
				}
			}
			log.WithField("path", evt.Name).WithField("op", evt.Op.String()).Debug("watch: change")

			mu.Lock()
			dirty = true
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: fsnotify error channel closed unexpectedly")
			}
			log.WithError(err).Warn("watch: fsnotify error")
		}
	}
}

// Roots returns the absolute roots actually being watched.
func (w *Watcher) Roots() []string { return w.roots }

func (w *Watcher) addTree(ctx context.Context, root, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.G(ctx).WithField("path", p).WithError(err).Debug("watch: skipping inaccessible path")
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && w.isIgnored(root, p) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) rootOf(p string) string {
	for _, root := range w.roots {
		if rel, err := filepath.Rel(root, p); err == nil && rel != ".." && !startsWithParent(rel) {
			return root
		}
	}
	return ""
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

func (w *Watcher) isIgnored(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pat := range w.ignores {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pat, rel+"/"); ok {
			return true
		}
	}
	return false
}
