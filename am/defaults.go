package am

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Default values shared by SetDefaults and the zero-value getters
const (
	DefaultFormat       = FormatJSON
	DefaultWorkers      = 4
	DefaultCatalogPath  = "jsbind.db"
	DefaultDebounceMS   = 500
	DefaultMaxOverloads = 0
	DefaultRunsPerMin   = 30
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input.manifests", []string{})
	v.SetDefault("mapping.path", "")

	v.SetDefault("output.format", DefaultFormat)
	v.SetDefault("output.dir", "")

	v.SetDefault("expand.workers", DefaultWorkers)
	v.SetDefault("expand.max_overloads", DefaultMaxOverloads) // unbounded

	v.SetDefault("catalog.enabled", false)
	v.SetDefault("catalog.path", DefaultCatalogPath)

	v.SetDefault("watch.debounce_ms", DefaultDebounceMS)
	v.SetDefault("watch.max_runs_per_minute", DefaultRunsPerMin)

	v.SetDefault("log.json", false)
}

// BindEnvVars binds keys whose env name differs from the automatic mapping
func BindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("catalog.path", "JSBIND_CATALOG_PATH", "JSBIND_DB")
	_ = v.BindEnv("mapping.path", "JSBIND_MAPPING_PATH", "JSBIND_MAPPING")
}

// GetWorkers returns the number of expansion workers (default: 4)
func (c *Config) GetWorkers() int {
	if c.Expand.Workers <= 0 {
		return DefaultWorkers
	}
	return c.Expand.Workers
}

// GetFormat returns the output format (default: json)
func (c *Config) GetFormat() string {
	if c.Output.Format == "" {
		return DefaultFormat
	}
	return c.Output.Format
}

// GetCatalogPath returns the catalog database path
func (c *Config) GetCatalogPath() string {
	if c.Catalog.Path == "" {
		return DefaultCatalogPath
	}
	return c.Catalog.Path
}

// GetDebounce returns the watch debounce period
func (c *Config) GetDebounce() time.Duration {
	if c.Watch.DebounceMS <= 0 {
		return DefaultDebounceMS * time.Millisecond
	}
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Manifests: %v, Format: %s, Workers: %d, MaxOverloads: %d, Catalog: %v}",
		c.Input.Manifests, c.GetFormat(), c.GetWorkers(), c.Expand.MaxOverloads, c.Catalog.Enabled)
}
