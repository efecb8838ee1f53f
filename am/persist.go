package am

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/jsbind/errors"
)

// backupCount is the number of rotating backups kept next to a config file
const backupCount = 3

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	// .back3 is dropped, .back2 -> .back3, .back1 -> .back2, current -> .back1
	oldest := backupName(configPath, backupCount)
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete old backup %s", oldest)
	}
	for i := backupCount - 1; i >= 1; i-- {
		from := backupName(configPath, i)
		if _, err := os.Stat(from); err != nil {
			continue
		}
		if err := os.Rename(from, backupName(configPath, i+1)); err != nil {
			return errors.Wrapf(err, "failed to rotate %s", from)
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}
	if err := os.WriteFile(backupName(configPath, 1), content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}
	return nil
}

func backupName(configPath string, n int) string {
	return configPath + ".back" + string(rune('0'+n))
}

// DefaultConfig returns the configuration SetDefaults describes
func DefaultConfig() *Config {
	return &Config{
		Input:   InputConfig{Manifests: []string{}},
		Output:  OutputConfig{Format: DefaultFormat},
		Expand:  ExpandConfig{Workers: DefaultWorkers, MaxOverloads: DefaultMaxOverloads},
		Catalog: CatalogConfig{Path: DefaultCatalogPath},
		Watch:   WatchConfig{DebounceMS: DefaultDebounceMS, MaxRunsPerMinute: DefaultRunsPerMin},
	}
}

// WriteConfig marshals cfg as TOML to configPath, rotating backups of any
// existing file first
func WriteConfig(configPath string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), DefaultDirPermissions); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	// Mark this as our own write to prevent reload loops
	if w := GetGlobalWatcher(); w != nil {
		w.MarkOwnWrite()
	}

	if err := os.WriteFile(configPath, data, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", configPath)
	}
	return nil
}

// ReadConfigFile decodes a TOML config file without defaults or env overrides
func ReadConfigFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", configPath)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", configPath)
	}
	return &cfg, nil
}
