package snapshot

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Event reports that a watched snapshot file changed in a way that
// invalidates its artifact. Diff holds one entry per changed field.
type Event struct {
	Path string
	Diff []string
}

// Watcher observes snapshot files under a directory and emits an Event
// whenever one of them changes meaningfully. The previous state of every
// file is kept in a Store, so a change is always explained relative to the
// last content actually seen, including across restarts.
type Watcher struct {
	dir     string
	pattern string
	store   *Store
	logger  *slog.Logger
	events  chan Event

	debounce *debouncer
}

// NewWatcher prepares a watcher for files under dir whose path relative to
// dir matches the doublestar pattern (e.g. "**/*.yml"). A nil logger
// falls back to slog.Default.
func NewWatcher(dir, pattern string, logger *slog.Logger) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cannot watch %s: not a directory", dir)
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q", pattern)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		dir:      dir,
		pattern:  pattern,
		store:    NewStore(dir),
		logger:   logger,
		events:   make(chan Event, 16),
		debounce: newDebouncer(50 * time.Millisecond),
	}, nil
}

// Events returns the channel change events are delivered on. It is closed
// when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run starts watching and blocks until ctx is cancelled or the underlying
// watcher fails. Matching files that already exist are recorded as
// baselines before any events are emitted; files remembered by the store
// from a previous run are diffed against on their next change.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)

	if err := w.store.Load(); err != nil {
		w.logger.Warn("could not load snapshot store", "error", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()
	defer w.debounce.stopAll()

	if err := w.addRecursive(watcher, w.dir); err != nil {
		return err
	}
	if err := w.prime(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleFsEvent(ctx, watcher, event)

		case werr, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("fsnotify error", "error", werr)
		}
	}
}

// addRecursive registers dir and every subdirectory with the watcher,
// skipping the store's own state directory.
func (w *Watcher) addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".cachediff" {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// prime records a baseline for every matching file that exists at startup,
// without emitting events. Files the store already remembers with the same
// mtime are left alone.
func (w *Watcher) prime() error {
	err := filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".cachediff" {
				return filepath.SkipDir
			}
			return nil
		}
		if !w.matches(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if _, ok := w.store.Get(path, info.ModTime()); ok {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		w.store.Set(path, info.ModTime(), data)
		w.logger.Debug("baseline recorded", "path", path)
		return nil
	})
	if err != nil {
		return err
	}
	if err := w.store.Save(); err != nil {
		w.logger.Warn("could not persist snapshot store", "error", err)
	}
	return nil
}

func (w *Watcher) matches(path string) bool {
	rel, err := filepath.Rel(w.dir, path)
	if err != nil {
		return false
	}
	ok, err := doublestar.Match(w.pattern, filepath.ToSlash(rel))
	return err == nil && ok
}

func (w *Watcher) handleFsEvent(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event) {
	w.logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if info.Name() != ".cachediff" {
				_ = w.addRecursive(watcher, event.Name)
			}
			return
		}
	}

	if !w.matches(event.Name) {
		return
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.store.Delete(event.Name)
		if err := w.store.Save(); err != nil {
			w.logger.Warn("could not persist snapshot store", "error", err)
		}
		return
	}

	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
		path := event.Name
		// Editors fire bursts of writes; collapse them per path.
		w.debounce.trigger(path, func() {
			w.handleChange(ctx, path)
		})
	}
}

// handleChange re-reads a changed file, diffs it against the last seen
// state, records the new state, and emits an event when fields differ.
func (w *Watcher) handleChange(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Gone between the event and the read.
		w.store.Delete(path)
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		return
	}

	now, err := Parse(data)
	if err != nil {
		w.logger.Warn("skipping unparseable snapshot", "path", path, "error", err)
		return
	}
	now.Path = path

	prev, hadPrev := w.store.Last(path)
	w.store.Set(path, info.ModTime(), data)
	if err := w.store.Save(); err != nil {
		w.logger.Warn("could not persist snapshot store", "error", err)
	}

	if !hadPrev {
		w.logger.Debug("baseline recorded", "path", path)
		return
	}

	diff, err := Changed(now, prev)
	if err != nil {
		w.logger.Error("diff failed", "path", path, "error", err)
		return
	}
	if len(diff) == 0 {
		return
	}
	w.emit(ctx, Event{Path: path, Diff: diff})
}

// emit delivers an event. Run only closes the events channel after
// debounce.stopAll has returned, so no send can race the close.
func (w *Watcher) emit(ctx context.Context, e Event) {
	select {
	case w.events <- e:
	case <-ctx.Done():
	}
}

// debouncer coalesces rapid triggers per key into one callback. After
// stopAll returns, no callback is running and none will run, so resources
// callbacks touch (like the events channel) can be torn down safely.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timers  map[string]*time.Timer
	wg      sync.WaitGroup
	stopped bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

func (d *debouncer) trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	// Stop returning true means the pending callback will never run, so
	// its wait-group slot must be released here.
	if t, ok := d.timers[key]; ok && t.Stop() {
		d.wg.Done()
	}
	d.wg.Add(1)
	d.timers[key] = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()
		if stopped {
			return
		}
		fn()
	})
}

// stopAll rejects further callbacks, cancels pending timers, and waits for
// callbacks already in flight to finish.
func (d *debouncer) stopAll() {
	d.mu.Lock()
	d.stopped = true
	for _, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
	}
	d.timers = make(map[string]*time.Timer)
	d.mu.Unlock()
	d.wg.Wait()
}
