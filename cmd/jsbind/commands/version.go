package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/jsbind/display"
	"github.com/teranos/jsbind/frontend"
	"github.com/teranos/jsbind/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show jsbind version information",
	Long:  `Display version, build time, commit hash, supported manifest schema and platform information for the jsbind binary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get(frontend.SchemaConstraint)

		if display.ShouldOutputJSON(cmd) {
			return display.OutputJSON(cmd.OutOrStdout(), info)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, info.String())
		fmt.Fprintf(out, "Schema: %s\n", info.SchemaVersion)
		fmt.Fprintf(out, "Platform: %s\n", info.Platform)
		fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
		return nil
	},
}

func init() {
	VersionCmd.Flags().BoolP("json", "j", false, "Output version info as JSON")
}
