package config

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeHandler receives the freshly loaded config after an edit.
type ChangeHandler func(cfg *Config)

// Watcher reloads the config file when it changes on disk. It watches the
// parent directory so editors that save via rename are picked up. Bursts of
// events collapse into one reload after the debounce window.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu       sync.Mutex
	handlers []ChangeHandler
	stop     chan struct{}
	done     chan struct{}
}

// NewWatcher creates a watcher for configPath. Call Start to begin.
func NewWatcher(configPath string) (*Watcher, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		path:     abs,
		watcher:  w,
		debounce: 300 * time.Millisecond,
	}, nil
}

// OnChange registers h. Handlers run sequentially on the reload goroutine.
func (cw *Watcher) OnChange(h ChangeHandler) {
	cw.mu.Lock()
	cw.handlers = append(cw.handlers, h)
	cw.mu.Unlock()
}

// Start begins watching.
func (cw *Watcher) Start() error {
	if err := cw.watcher.Add(filepath.Dir(cw.path)); err != nil {
		return err
	}
	cw.stop = make(chan struct{})
	cw.done = make(chan struct{})
	go cw.loop()

	slog.Info("config.watch_started", "path", cw.path)
	return nil
}

// Stop halts the watcher and waits for the loop to exit.
func (cw *Watcher) Stop() {
	if cw.stop != nil {
		close(cw.stop)
		<-cw.done
	}
	cw.watcher.Close()
	slog.Info("config.watch_stopped", "path", cw.path)
}

func (cw *Watcher) loop() {
	defer close(cw.done)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-cw.stop:
			return

		case ev, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != cw.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(cw.debounce, cw.reload)

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("config.watch_error", "error", err)
		}
	}
}

func (cw *Watcher) reload() {
	cfg, err := Load(cw.path)
	if err != nil {
		// Keep running on the previous config.
		slog.Error("config.reload_failed", "path", cw.path, "error", err)
		return
	}

	cw.mu.Lock()
	handlers := append([]ChangeHandler(nil), cw.handlers...)
	cw.mu.Unlock()

	for _, h := range handlers {
		h(cfg)
	}
	slog.Info("config.reloaded", "path", cw.path, "server_url", cfg.Server.URL)
}
