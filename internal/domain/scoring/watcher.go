package scoring

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/okian/attrition/pkg/logger"
)

const defaultDebounce = 100 * time.Millisecond

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatcherLogger sets the logger.
func WithWatcherLogger(l logger.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// WithOnReload registers a callback invoked after every reload attempt.
func WithOnReload(fn func(m *Model, err error)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// Watcher reloads a model artifact into a holder when the file changes. A
// file that fails to load leaves the current model in place.
type Watcher struct {
	path     string
	holder   *ModelHolder
	debounce time.Duration
	log      logger.Logger
	onReload func(m *Model, err error)

	mu      sync.Mutex
	timer   *time.Timer
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for the artifact at path.
func NewWatcher(path string, holder *ModelHolder, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		holder:   holder,
		debounce: defaultDebounce,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Reload loads the artifact now and swaps it in when valid.
func (w *Watcher) Reload() error {
	m, err := LoadModelFile(w.path)
	if err == nil {
		err = w.holder.Swap(m)
	}
	if w.onReload != nil {
		w.onReload(m, err)
	}
	if err != nil {
		w.log.Warn(context.Background(), "model reload failed, keeping current model",
			logger.String("path", w.path), logger.Error(err))
		return err
	}
	w.log.Info(context.Background(), "model reloaded",
		logger.String("path", w.path),
		logger.String("name", m.Name),
		logger.String("version", m.Version))
	return nil
}

// Start begins watching. The directory is watched rather than the file so
// that editors replacing the file by rename are seen.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("model watcher already running")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		w.mu.Unlock()
		return fmt.Errorf("watch %q: %w", w.path, err)
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.loop(ctx, fsw)
	w.log.Info(ctx, "model watcher started", logger.String("path", w.path))
	return nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer close(w.doneCh)
	defer fsw.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			w.trigger()
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.log.Error(ctx, "model watcher error", logger.Error(err))
		}
	}
}

// trigger schedules a reload after the debounce interval, collapsing bursts.
func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		_ = w.Reload()
	})
}

// Stop stops watching and cancels a pending reload.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	done := w.doneCh
	w.mu.Unlock()
	<-done
}

// IsRunning reports whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
