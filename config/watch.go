package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the config file on change. A reloaded config is validated
// before it is handed to the callback; invalid edits are logged and ignored,
// the previous config stays in effect. The running engine is never mutated:
// the callback is expected to stage the config for the next run.
type Watcher struct {
	path     string
	cooldown time.Duration
	log      *zap.Logger

	fw       *fsnotify.Watcher
	mu       sync.Mutex
	lastLoad time.Time
	doneChan chan struct{}
}

// NewWatcher creates a watcher for path. cooldown suppresses reload storms
// from editors that write in bursts; zero means a 1s default.
func NewWatcher(path string, cooldown time.Duration, log *zap.Logger) (*Watcher, error) {
	if cooldown <= 0 {
		cooldown = time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		path:     path,
		cooldown: cooldown,
		log:      log,
		fw:       fw,
		doneChan: make(chan struct{}),
	}, nil
}

// Start begins watching and invokes onUpdate with each valid reloaded config.
// Returns immediately; the watch loop stops when ctx is cancelled.
func (w *Watcher) Start(ctx context.Context, onUpdate func(Config)) error {
	if err := w.fw.Add(w.path); err != nil {
		return fmt.Errorf("watch config file: %w", err)
	}
	go w.loop(ctx, onUpdate)
	return nil
}

// Close releases the underlying file watcher.
func (w *Watcher) Close() error { return w.fw.Close() }

// Done is closed when the watch loop has exited.
func (w *Watcher) Done() <-chan struct{} { return w.doneChan }

func (w *Watcher) loop(ctx context.Context, onUpdate func(Config)) {
	defer close(w.doneChan)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload(onUpdate)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload(onUpdate func(Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if time.Since(w.lastLoad) < w.cooldown {
		return
	}

	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn("config reload rejected", zap.Error(err))
		return
	}
	w.lastLoad = time.Now()
	w.log.Info("config reloaded", zap.String("path", w.path))
	if onUpdate != nil {
		onUpdate(cfg)
	}
}
