// Package meta loads hand-curated meta adjustments from a TOML file and
// applies them to pick scores. The file can be edited while the advisor is
// running; a watcher reloads it on change.
package meta

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
)

// adjustmentsFile mirrors the on-disk TOML layout:
//
//	[adjustments]
//	"10001" = 5.0          # by card id
//	"Spellboost" = 3.0     # by archetype name
//	"Runecraft" = -2.0     # by craft name
type adjustmentsFile struct {
	Adjustments map[string]float64 `toml:"adjustments"`
}

// Table holds the current meta adjustments, keyed by card id, archetype
// name, or craft name. Lookups are case-insensitive.
type Table struct {
	mu          sync.RWMutex
	adjustments map[string]float64

	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewTable returns an empty table. A nil-safe zero adjustment is returned
// for every key until Load or Watch populates it.
func NewTable() *Table {
	return &Table{adjustments: make(map[string]float64)}
}

// LoadTable reads adjustments from path. A missing file is not an error;
// it yields an empty table so the advisor can run without meta data.
func LoadTable(path string) (*Table, error) {
	t := NewTable()
	t.path = path
	if err := t.reload(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) reload() error {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			t.mu.Lock()
			t.adjustments = make(map[string]float64)
			t.mu.Unlock()
			return nil
		}
		return fmt.Errorf("failed to read meta file: %w", err)
	}

	var file adjustmentsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse meta file: %w", err)
	}

	normalized := make(map[string]float64, len(file.Adjustments))
	for key, value := range file.Adjustments {
		normalized[strings.ToLower(strings.TrimSpace(key))] = value
	}

	t.mu.Lock()
	t.adjustments = normalized
	t.mu.Unlock()
	return nil
}

// Adjustment sums the adjustments for all given keys. Unknown keys
// contribute zero, so callers can pass card id, archetype, and craft
// unconditionally.
func (t *Table) Adjustment(keys ...string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var total float64
	for _, key := range keys {
		if key == "" {
			continue
		}
		total += t.adjustments[strings.ToLower(strings.TrimSpace(key))]
	}
	return total
}

// Len reports the number of loaded adjustments.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.adjustments)
}

// Watch reloads the table whenever the underlying file changes. Editors
// often replace the file rather than write in place, so the parent
// directory is watched and events are filtered by name.
func (t *Table) Watch(logger *slog.Logger) error {
	if t.path == "" {
		return fmt.Errorf("meta table has no file path to watch")
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(t.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch meta directory: %w", err)
	}

	t.watcher = watcher
	t.done = make(chan struct{})

	go func() {
		base := filepath.Base(t.path)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if err := t.reload(); err != nil {
					logger.Warn("meta reload failed", "path", t.path, "error", err)
					continue
				}
				logger.Info("meta adjustments reloaded", "path", t.path, "entries", t.Len())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("meta watcher error", "error", err)
			case <-t.done:
				return
			}
		}
	}()

	return nil
}

// Close stops the watcher if one is running.
func (t *Table) Close() error {
	if t.watcher == nil {
		return nil
	}
	close(t.done)
	err := t.watcher.Close()
	t.watcher = nil
	return err
}
