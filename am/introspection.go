package am

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teranos/jsbind/errors"
)

// ConfigSource represents where a configuration value came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceSystem      ConfigSource = "system"      // /etc/jsbind/jsbind.toml
	SourceUser        ConfigSource = "user"        // ~/.jsbind/jsbind.toml
	SourceProject     ConfigSource = "project"     // jsbind.toml found walking up from the working directory
	SourceFile        ConfigSource = "file"        // --config path
	SourceEnvironment ConfigSource = "environment" // JSBIND_* env vars
)

// SettingInfo contains metadata about a configuration setting
type SettingInfo struct {
	Key        string       `json:"key" yaml:"key"`
	Value      interface{}  `json:"value" yaml:"value"`
	Source     ConfigSource `json:"source" yaml:"source"`
	SourcePath string       `json:"source_path,omitempty" yaml:"source_path,omitempty"` // File path or env var name
}

// ConfigIntrospection provides metadata about the active configuration
type ConfigIntrospection struct {
	Settings []SettingInfo `json:"settings" yaml:"settings"`
}

// GetConfigIntrospection returns every effective setting with the source it
// was loaded from, sorted by key
func GetConfigIntrospection() (*ConfigIntrospection, error) {
	v := GetViper()
	if configSources == nil {
		return nil, errors.New("configuration sources were not recorded")
	}

	introspection := &ConfigIntrospection{Settings: make([]SettingInfo, 0)}
	flattenSettings(v.AllSettings(), "", introspection)
	sort.Slice(introspection.Settings, func(i, j int) bool {
		return introspection.Settings[i].Key < introspection.Settings[j].Key
	})
	return introspection, nil
}

func flattenSettings(settings map[string]interface{}, prefix string, introspection *ConfigIntrospection) {
	for key, value := range settings {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]interface{}); ok {
			flattenSettings(nested, full, introspection)
			continue
		}
		source, path := sourceOf(full)
		introspection.Settings = append(introspection.Settings, SettingInfo{
			Key:        full,
			Value:      value,
			Source:     source,
			SourcePath: path,
		})
	}
}

// sourceOf resolves the winning source of one key: env var, then the last
// file that set it, then the default
func sourceOf(key string) (ConfigSource, string) {
	envName := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if _, ok := os.LookupEnv(envName); ok {
		return SourceEnvironment, envName
	}
	path, ok := configSources[key]
	if !ok {
		return SourceDefault, ""
	}
	return classifyPath(path), path
}

func classifyPath(path string) ConfigSource {
	if strings.HasPrefix(path, "/etc/jsbind/") {
		return SourceSystem
	}
	if home, err := os.UserHomeDir(); err == nil && strings.HasPrefix(path, filepath.Join(home, ".jsbind")+string(filepath.Separator)) {
		return SourceUser
	}
	if filepath.Base(path) == ConfigFileName {
		return SourceProject
	}
	return SourceFile
}

// GetConfigSummary returns a flat key → value map for display
func GetConfigSummary() map[string]interface{} {
	summary := make(map[string]interface{})
	introspection, err := GetConfigIntrospection()
	if err != nil {
		return summary
	}
	for _, s := range introspection.Settings {
		summary[s.Key] = s.Value
	}
	return summary
}
