package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/jsbind/cmd/jsbind/commands"
	"github.com/teranos/jsbind/logger"
)

var rootCmd = &cobra.Command{
	Use:   "jsbind",
	Short: "jsbind - JSDoc declarations to concrete overloads",
	Long: `jsbind - Compile JSDoc-annotated declarations into binding-ready overloads.

jsbind reads declaration manifests, parses their JSDoc type annotations,
groups inner classes under their owners and expands optional and
union-typed parameters into concrete overloads.

Available commands:
  parse   - Parse one type annotation and show its tree
  expand  - Expand declaration manifests into overloads
  watch   - Re-run expand whenever manifests or config change
  catalog - Inspect recorded expansion runs
  am      - Manage jsbind configuration ("I am")

Examples:
  jsbind parse '!Array.<(number|string)>='
  jsbind expand manifests/ --format text
  jsbind expand --out-dir gen/ --max-overloads 64
  jsbind catalog ls
  jsbind am show`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger.Debugw("Logger initialized",
			"verbosity", logger.LevelName(verbosity),
			"output", logger.EnabledCategories(verbosity))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines to stderr")
	rootCmd.PersistentFlags().StringVar(&commands.ConfigPath, "config", "", "Read configuration from this file only")

	// Add commands
	rootCmd.AddCommand(commands.ParseCmd)
	rootCmd.AddCommand(commands.ExpandCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.CatalogCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, commands.FormatError(err))
		os.Exit(commands.ExitCode(err))
	}
}
