// Package am loads the jsbind configuration ("am" as in "I am configured
// as"): defaults, merged TOML files, JSBIND_* environment variables.
package am

// Config represents the jsbind configuration
type Config struct {
	Input   InputConfig   `mapstructure:"input" toml:"input"`
	Mapping MappingConfig `mapstructure:"mapping" toml:"mapping"`
	Output  OutputConfig  `mapstructure:"output" toml:"output"`
	Expand  ExpandConfig  `mapstructure:"expand" toml:"expand"`
	Catalog CatalogConfig `mapstructure:"catalog" toml:"catalog"`
	Watch   WatchConfig   `mapstructure:"watch" toml:"watch"`
	Log     LogConfig     `mapstructure:"log" toml:"log"`
}

// InputConfig lists the declaration manifests to process
type InputConfig struct {
	Manifests []string `mapstructure:"manifests" toml:"manifests"` // files or directories (scanned for .yaml/.yml/.json)
}

// MappingConfig points at the renderer's type mapping table
type MappingConfig struct {
	Path string `mapstructure:"path" toml:"path"` // empty = identity mapping
}

// OutputConfig configures rendering
type OutputConfig struct {
	Format string `mapstructure:"format" toml:"format"` // json, yaml or text
	Dir    string `mapstructure:"dir" toml:"dir"`       // empty = stdout, else one file per namespace path
}

// ExpandConfig configures the overload expansion stage
type ExpandConfig struct {
	Workers      int `mapstructure:"workers" toml:"workers"`             // files expanded in parallel (default: 4)
	MaxOverloads int `mapstructure:"max_overloads" toml:"max_overloads"` // per declaration, 0 = unbounded
}

// CatalogConfig configures the SQLite run catalog
type CatalogConfig struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
	Path    string `mapstructure:"path" toml:"path"`
}

// WatchConfig configures `jsbind watch`
type WatchConfig struct {
	DebounceMS       int `mapstructure:"debounce_ms" toml:"debounce_ms"`                 // quiet period before a re-run (default: 500)
	MaxRunsPerMinute int `mapstructure:"max_runs_per_minute" toml:"max_runs_per_minute"` // re-run rate cap, 0 = unlimited (default: 30)
}

// LogConfig configures logging
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json"`
}

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)

// ConfigFileName is the name searched for in system, user and project locations
const ConfigFileName = "jsbind.toml"
