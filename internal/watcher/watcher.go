package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blackwell-systems/shotprofile/internal/logging"
)

// DefaultDebounce is used when New is given a non-positive interval.
const DefaultDebounce = 2 * time.Second

// Watcher calls a function after the watched file settles.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(context.Context) error

	fsw    *fsnotify.Watcher
	stopCh chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
	runs   int
	start  sync.Once
	stop   sync.Once
}

// New creates a Watcher for path. The file's directory must exist.
func New(path string, debounce time.Duration, onChange func(context.Context) error) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("onChange cannot be nil")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	return &Watcher{
		path:     abs,
		debounce: debounce,
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. The callback receives ctx; cancelling ctx does
// not stop the watcher, use Stop or Run for that.
func (w *Watcher) Start(ctx context.Context) error {
	var err error
	started := false
	w.start.Do(func() {
		started = true

		var fsw *fsnotify.Watcher
		fsw, err = fsnotify.NewWatcher()
		if err != nil {
			err = fmt.Errorf("failed to create file watcher: %w", err)
			return
		}
		if err = fsw.Add(filepath.Dir(w.path)); err != nil {
			fsw.Close()
			err = fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
			return
		}
		w.fsw = fsw

		w.wg.Add(1)
		go w.loop(ctx)

		logging.Ctx(ctx, "watcher").Info().
			Str("path", w.path).
			Dur("debounce", w.debounce).
			Msg("Watching shot log")
	})
	if !started {
		return errors.New("watcher already started")
	}
	return err
}

// Stop halts the watcher and waits for a running callback to return.
// Calling Stop before Start is allowed.
func (w *Watcher) Stop() error {
	var err error
	w.stop.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		if w.fsw != nil {
			err = w.fsw.Close()
		}
	})
	return err
}

// Run starts the watcher and blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return w.Stop()
}

// Runs returns how many times the callback has been invoked.
func (w *Watcher) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	log := logging.Ctx(ctx, "watcher")

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.stopCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			log.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("Change detected")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("File watcher error")

		case <-fire:
			fire = nil
			w.mu.Lock()
			w.runs++
			w.mu.Unlock()

			if err := w.onChange(ctx); err != nil {
				log.Error().Err(err).Msg("Rerun after change failed")
			}
		}
	}
}

// relevant reports whether ev touches the watched file or its SQLite
// sidecar files.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Clean(ev.Name)
	if !filepath.IsAbs(name) {
		if abs, err := filepath.Abs(name); err == nil {
			name = abs
		}
	}
	switch name {
	case w.path, w.path + "-wal", w.path + "-journal":
		return true
	}
	return false
}
