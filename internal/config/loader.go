package config

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Loader reads a YAML catalog file and watches it for changes.
type Loader struct {
	path     string
	reloadMu sync.Mutex // serializes Reload from the watcher and callers
	mu       sync.RWMutex
	current  *CatalogConfig
	onChange []func(*CatalogConfig) error
	watcher  *fsnotify.Watcher
}

// NewLoader creates a Loader and performs the initial load.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = cfg
	return l, nil
}

// Path returns the catalog file being read.
func (l *Loader) Path() string { return l.path }

// Config returns the current (latest) configuration.
func (l *Loader) Config() *CatalogConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked whenever a new config has been read.
// A callback error rejects the new config.
func (l *Loader) OnChange(fn func(*CatalogConfig) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads the catalog on file changes.
// Call the returned stop function to clean up.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", l.path, err)
	}
	l.watcher = w

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if _, err := l.Reload(); err != nil {
						slog.Warn("catalog reload failed, keeping previous", "path", l.path, "err", err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("catalog watcher error", "path", l.path, "err", err)
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }, nil
}

// Reload forces an immediate re-read of the catalog file. The new config
// becomes current only if it parses, validates and every callback accepts it.
func (l *Loader) Reload() (*CatalogConfig, error) {
	l.reloadMu.Lock()
	defer l.reloadMu.Unlock()

	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.mu.RLock()
	callbacks := make([]func(*CatalogConfig) error, len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.RUnlock()
	for _, fn := range callbacks {
		if err := fn(cfg); err != nil {
			return nil, err
		}
	}
	l.mu.Lock()
	l.current = cfg
	l.mu.Unlock()
	return cfg, nil
}

func (l *Loader) load() (*CatalogConfig, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", l.path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document, applying defaults.
func Parse(data []byte) (*CatalogConfig, error) {
	var cfg CatalogConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *CatalogConfig) {
	if cfg.Engine.RequestWorkers == 0 {
		cfg.Engine.RequestWorkers = 32
	}
	if cfg.Engine.QueueDepth == 0 {
		cfg.Engine.QueueDepth = 1000
	}
	if cfg.Engine.RequestTimeoutMs == 0 {
		cfg.Engine.RequestTimeoutMs = 5000
	}
	if cfg.Engine.EvaluationConcurrency == 0 {
		cfg.Engine.EvaluationConcurrency = 8
	}
	if cfg.Engine.SelectionPolicy == "" {
		cfg.Engine.SelectionPolicy = "greatest_effect"
	}
	for i := range cfg.Promotions {
		if cfg.Promotions[i].Rule.ID == "" {
			cfg.Promotions[i].Rule.ID = cfg.Promotions[i].ID
		}
		if cfg.Promotions[i].Rule.Name == "" {
			cfg.Promotions[i].Rule.Name = cfg.Promotions[i].Name
		}
	}
}
