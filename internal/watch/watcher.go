// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when files below a project folder change.
//
// Events are debounced: everything that changes within the quiet period is
// handed to a single OnChange call.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 500 * time.Millisecond

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watcher is already running")

var defaultIgnores = []string{
	"**/.git/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// BaseDir is watched recursively. Empty means the working directory.
		BaseDir string
		// Exclude lists folders that never trigger a run, typically the
		// target folder the callback itself writes to.
		Exclude []string
		// Ignore holds doublestar patterns matched against slash separated
		// paths relative to BaseDir, on top of the built-in ones.
		Ignore   []string
		Debounce time.Duration
		// OnChange receives the changed paths, relative to BaseDir and sorted.
		OnChange func(ctx context.Context, changed []string) error
		Logger   *log.Logger
	}

	// Watcher must be Run exactly once.
	Watcher struct {
		fsw      *fsnotify.Watcher
		baseDir  string
		exclude  []string
		ignores  []string
		debounce time.Duration
		onChange func(ctx context.Context, changed []string) error
		logger   *log.Logger
		started  atomic.Bool
	}
)

// New validates cfg and registers every folder below BaseDir that is neither
// ignored nor excluded.
func New(cfg Config) (*Watcher, error) {
	baseDir := cfg.BaseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		baseDir = wd
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}

	for _, pat := range cfg.Ignore {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid ignore pattern %q", pat)
		}
	}

	exclude := make([]string, 0, len(cfg.Exclude))
	for _, dir := range cfg.Exclude {
		abs, absErr := filepath.Abs(dir)
		if absErr != nil {
			return nil, fmt.Errorf("watch: resolve excluded folder %q: %w", dir, absErr)
		}
		exclude = append(exclude, abs)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		baseDir:  absBase,
		exclude:  exclude,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		debounce: debounce,
		onChange: cfg.OnChange,
		logger:   logger,
	}
	if err := w.addTree(absBase); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("Closing watcher failed", "err", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is done. Callback errors are logged and do
// not stop the watcher; a run that is still busy when the next batch is due
// postpones that batch.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		busy    atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !busy.CompareAndSwap(false, true) {
			w.logger.Debug("Previous run still in progress, postponing")
			mu.Lock()
			timer.Reset(w.debounce)
			mu.Unlock()
			return
		}
		defer busy.Store(false)

		mu.Lock()
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()
		if len(changed) == 0 || w.onChange == nil {
			return
		}
		if err := w.onChange(ctx, changed); err != nil {
			w.logger.Error("Run after change failed", "err", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("Closing watcher failed", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			rel, skip := w.filter(evt.Name)
			if skip {
				continue
			}
			if evt.Has(fsnotify.Create) {
				if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
					if err := w.addTree(evt.Name); err != nil {
						w.logger.Warn("Cannot watch new folder", "path", evt.Name, "err", err)
					}
				}
			}
			w.logger.Debug("Changed", "path", rel, "op", evt.Op.String())

			mu.Lock()
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if isFatal(err) {
				return fmt.Errorf("watch: %w", err)
			}
			w.logger.Warn("Watcher error", "err", err)
		}
	}
}

// addTree registers root and the folders below it. Unreadable folders are
// logged and skipped.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("Not watching", "path", path, "err", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if _, skip := w.filter(path); skip && path != w.baseDir {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
}

// filter returns path relative to the base folder and whether it is excluded
// or ignored.
func (w *Watcher) filter(path string) (string, bool) {
	for _, dir := range w.exclude {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return "", true
		}
	}
	rel, err := filepath.Rel(w.baseDir, path)
	if err != nil {
		return "", true
	}
	rel = filepath.ToSlash(rel)
	return rel, w.ignored(rel)
}

func (w *Watcher) ignored(rel string) bool {
	for _, pat := range w.ignores {
		if doublestar.MatchUnvalidated(pat, rel) || doublestar.MatchUnvalidated(pat, rel+"/") {
			return true
		}
	}
	return false
}
