package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/jsbind/am"
	"github.com/teranos/jsbind/display"
	"github.com/teranos/jsbind/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage jsbind configuration",
	Long: `am - Manage jsbind configuration ("I am")

Display and manage jsbind configuration settings.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (JSBIND_* prefix, JSBIND_DB and JSBIND_MAPPING aliases)
3. --config file, which replaces 4-6 when given
4. Project config (./jsbind.toml, searched up directories)
5. User config (~/.jsbind/jsbind.toml)
6. System config (/etc/jsbind/jsbind.toml)
7. Default values

Examples:
  jsbind am show                    # Show current configuration
  jsbind am show --format json      # Show configuration in JSON format
  jsbind am show --format flat      # One key = value line per setting
  jsbind am get expand.workers      # Get specific config value
  jsbind am validate                # Validate current configuration
  jsbind am validate ci.toml        # Validate one file on its own
  jsbind am init                    # Write a default jsbind.toml`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current jsbind configuration from all sources",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., output.format, expand.max_overloads)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate current configuration",
	Long: `Validate that the current jsbind configuration is valid.

With a file argument, only that TOML file is checked, without defaults,
other config files or environment overrides.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Long: `Show the configuration cascade and which source set each value.

Lists all configuration sources in order of precedence, with the
settings each one contributed.`,
	RunE: runAmWhere,
}

var amInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Long: `Write the default configuration as TOML, to ./jsbind.toml unless a
path is given. An existing file is kept as a .back1 backup.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAmInit,
}

var (
	configFormat string
	initForce    bool
)

func init() {
	// Add flags
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml, flat")
	amInitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")

	// Add subcommands
	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
	AmCmd.AddCommand(amInitCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out := cmd.OutOrStdout()
	format := configFormat
	if display.ShouldOutputJSON(cmd) {
		format = "json"
	}

	// Marshal to requested format
	switch format {
	case "json":
		return display.OutputJSON(out, cfg)

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
		fmt.Fprintf(out, "# jsbind configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to TOML: %w", err)
		}
		fmt.Fprintf(out, "# jsbind configuration\n%s", string(data))

	case "flat":
		summary := am.GetConfigSummary()
		keys := make([]string, 0, len(summary))
		for k := range summary {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "%s = %v\n", k, summary[k])
		}

	default:
		return fmt.Errorf("unsupported format: %s (supported: toml, json, yaml, flat)", format)
	}

	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if _, err := loadConfig(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Check if key exists in configuration
	v := am.GetViper()
	if !v.IsSet(key) {
		return errors.WithHint(
			errors.NewNotFoundError("configuration key %q", key),
			"run 'jsbind am show' to list all keys")
	}

	// Get the value as interface{} to preserve type
	value := am.Get(key)
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), value)
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg, err := am.ReadConfigFile(args[0])
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return errors.Wrapf(err, "%s is invalid", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid\n", args[0])
		return nil
	}

	// Load configuration; Load validates as it unmarshals
	if _, err := loadConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Get the full introspection data
	intro, err := am.GetConfigIntrospection()
	if err != nil {
		return fmt.Errorf("failed to get config introspection: %w", err)
	}

	out := cmd.OutOrStdout()
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(out, intro)
	}

	// Show config cascade header
	fmt.Fprintln(out, "Configuration cascade (later overrides earlier):")
	fmt.Fprintln(out, "  1. [DEFAULT]  Built-in defaults")
	fmt.Fprintln(out, "  2. [SYSTEM]   /etc/jsbind/jsbind.toml")
	fmt.Fprintln(out, "  3. [USER]     ~/.jsbind/jsbind.toml")
	fmt.Fprintln(out, "  4. [PROJECT]  ./jsbind.toml (searches up directories)")
	fmt.Fprintln(out, "  5. [FILE]     --config path (replaces 2-4)")
	fmt.Fprintln(out, "  6. [ENV]      JSBIND_* environment variables")
	fmt.Fprintln(out)

	// Group settings by source file; defaults and env vars group by source
	type fileGroup struct {
		source   am.ConfigSource
		path     string
		settings []am.SettingInfo
	}
	groups := make(map[string]*fileGroup)
	for _, setting := range intro.Settings {
		key := string(setting.Source) + ":" + setting.SourcePath
		if setting.Source == am.SourceEnvironment || setting.Source == am.SourceDefault {
			key = string(setting.Source)
		}
		if g, ok := groups[key]; ok {
			g.settings = append(g.settings, setting)
			continue
		}
		path := setting.SourcePath
		if setting.Source == am.SourceEnvironment {
			path = ""
		}
		groups[key] = &fileGroup{source: setting.Source, path: path, settings: []am.SettingInfo{setting}}
	}

	// Define source order for consistent output
	sourceOrder := []am.ConfigSource{
		am.SourceDefault,
		am.SourceSystem,
		am.SourceUser,
		am.SourceProject,
		am.SourceFile,
		am.SourceEnvironment,
	}

	fmt.Fprintln(out, "Active configuration:")
	for _, source := range sourceOrder {
		var level []*fileGroup
		for _, g := range groups {
			if g.source == source {
				level = append(level, g)
			}
		}
		sort.Slice(level, func(i, j int) bool { return level[i].path < level[j].path })

		for _, g := range level {
			if g.path != "" {
				fmt.Fprintf(out, "\n%s: %d settings from %s\n", source, len(g.settings), g.path)
			} else if source == am.SourceEnvironment {
				fmt.Fprintf(out, "\n%s: %d settings from environment variables\n", source, len(g.settings))
			} else {
				fmt.Fprintf(out, "\n%s: %d settings\n", source, len(g.settings))
			}

			for _, setting := range g.settings {
				valueStr := fmt.Sprintf("%v", setting.Value)
				// Truncate long values
				if len(valueStr) > 50 {
					valueStr = valueStr[:47] + "..."
				}
				fmt.Fprintf(out, "  %s = %s\n", setting.Key, valueStr)
			}
		}
	}

	return nil
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path := am.ConfigFileName
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		return errors.WithHint(
			errors.Newf("%s already exists", path),
			"pass --force to overwrite it; the current file is kept as "+path+".back1")
	}

	if err := am.WriteConfig(path, am.DefaultConfig()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
	return nil
}
