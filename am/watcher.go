package am

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
)

// Watcher watches the config file and the manifest inputs, and triggers
// change callbacks once the file system has been quiet for the debounce
// period
type Watcher struct {
	configPath      string
	watcher         *fsnotify.Watcher
	callbacks       []ChangeCallback
	mu              sync.RWMutex
	debounceTimer   *time.Timer
	debouncePeriod  time.Duration
	pending         map[string]bool
	loadConfig      func() (*Config, error)
	isOwnWrite      bool // Flag to prevent reload loops
	isOwnWriteMutex sync.Mutex
}

// ChangeCallback is called after a debounced batch of changes.
// Receives the current config (reloaded if the config file changed) and the
// changed paths in sorted order.
type ChangeCallback func(cfg *Config, changed []string) error

// globalWatcher holds the watcher WriteConfig marks own writes on
var (
	globalWatcher   *Watcher
	globalWatcherMu sync.Mutex
)

// NewWatcher creates a watcher over configPath (may be empty) and the given
// manifest files or directories
func NewWatcher(configPath string, inputs []string, debounce time.Duration) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	paths := append([]string{}, inputs...)
	if configPath != "" {
		paths = append(paths, configPath)
	}
	for _, p := range paths {
		if err := watcher.Add(p); err != nil {
			watcher.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", p)
		}
	}

	w := &Watcher{
		configPath:     configPath,
		watcher:        watcher,
		callbacks:      make([]ChangeCallback, 0),
		debouncePeriod: debounce,
		pending:        make(map[string]bool),
		loadConfig:     Load,
	}
	if configPath != "" {
		w.loadConfig = func() (*Config, error) { return LoadFromFile(configPath) }
	}
	return w, nil
}

// OnChange registers a callback to be called after a batch of changes
func (w *Watcher) OnChange(callback ChangeCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// MarkOwnWrite marks the next write as coming from us (prevents reload loops)
func (w *Watcher) MarkOwnWrite() {
	w.isOwnWriteMutex.Lock()
	defer w.isOwnWriteMutex.Unlock()
	w.isOwnWrite = true
}

// checkOwnWrite checks and clears the own-write flag
func (w *Watcher) checkOwnWrite() bool {
	w.isOwnWriteMutex.Lock()
	defer w.isOwnWriteMutex.Unlock()

	if w.isOwnWrite {
		w.isOwnWrite = false
		return true
	}
	return false
}

// Start begins watching for changes
func (w *Watcher) Start() {
	go w.watchLoop()
}

// watchLoop monitors file system events
func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}

			if w.isConfig(event.Name) && w.checkOwnWrite() {
				logger.Debugw("Watcher ignoring own write",
					logger.FieldFile, event.Name)
				continue
			}

			logger.Debugw("Watcher detected change",
				logger.FieldFile, event.Name,
				logger.FieldOperation, event.Op.String())
			w.schedule(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnw("Watcher error",
				logger.FieldError, err)
		}
	}
}

// relevant keeps writes, creates, removes and renames of config or manifest
// files, ignoring backups and editor scratch files
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if isBackupFile(event.Name) {
		return false
	}
	return w.isConfig(event.Name) || IsManifestFile(event.Name)
}

func (w *Watcher) isConfig(path string) bool {
	return w.configPath != "" && filepath.Clean(path) == filepath.Clean(w.configPath)
}

// schedule debounces rapid file changes and triggers the callbacks
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = true
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, func() {
		if err := w.fire(); err != nil {
			logger.Errorw("Watcher reload failed",
				logger.FieldError, err)
		}
	})
}

// fire reloads the config if it changed and calls all callbacks
func (w *Watcher) fire() error {
	w.mu.Lock()
	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	w.pending = make(map[string]bool)
	callbacks := make([]ChangeCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()
	sort.Strings(changed)

	configChanged := false
	for _, p := range changed {
		if w.isConfig(p) {
			configChanged = true
		}
	}
	if configChanged {
		Reset()
	}
	cfg, err := w.loadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if configChanged {
		logger.Infow("Config reloaded",
			logger.FieldPath, w.configPath)
	}

	for _, callback := range callbacks {
		if err := callback(cfg, changed); err != nil {
			logger.Warnw("Watcher callback error",
				logger.FieldError, err)
			// Continue calling other callbacks even if one fails
		}
	}
	return nil
}

// Stop stops watching
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

// isBackupFile checks if the file is a config backup (.back1, .back2, .back3)
func isBackupFile(path string) bool {
	base := filepath.Base(path)
	for i := 1; i <= backupCount; i++ {
		if strings.HasSuffix(base, ".toml.back"+string(rune('0'+i))) {
			return true
		}
	}
	return false
}

// IsManifestFile reports whether path has a declaration manifest extension
func IsManifestFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// ExpandInputs resolves manifest files and directories to a sorted list of
// manifest files. Directories are scanned recursively.
func ExpandInputs(inputs []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, errors.Wrapf(err, "input %s", in)
		}
		if !info.IsDir() {
			add(in)
			continue
		}
		err = filepath.WalkDir(in, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && IsManifestFile(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to scan %s", in)
		}
	}
	sort.Strings(out)
	return out, nil
}

// SetGlobalWatcher sets the global watcher instance (used to prevent reload loops)
func SetGlobalWatcher(watcher *Watcher) {
	globalWatcherMu.Lock()
	defer globalWatcherMu.Unlock()
	globalWatcher = watcher
}

// GetGlobalWatcher returns the global watcher instance
func GetGlobalWatcher() *Watcher {
	globalWatcherMu.Lock()
	defer globalWatcherMu.Unlock()
	return globalWatcher
}
