package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/jsbind/annotation"
	"github.com/teranos/jsbind/display"
	"github.com/teranos/jsbind/logger"
	"github.com/teranos/jsbind/typenode"
)

// ParseCmd parses one annotation and shows the resulting type tree
var ParseCmd = &cobra.Command{
	Use:   "parse <annotation>",
	Short: "Parse a JSDoc type annotation",
	Long: `Parse one JSDoc type annotation and show the resulting type tree.

Modifiers (!, ?, ..., =), generic arguments (Array.<T>, Object.<K,V>) and
unions are shown per node. Use --json for the machine-readable form.

Examples:
  jsbind parse 'number|string'
  jsbind parse '!Array.<(ol.Coordinate|string)>='
  jsbind parse --json 'function(ol.Feature):ol.Style'`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

var parseOwner string

func init() {
	ParseCmd.Flags().StringVar(&parseOwner, "owner", "", "Declaration the annotation belongs to, for error messages")
}

type parseOutput struct {
	Annotation string              `json:"annotation"`
	Canonical  string              `json:"canonical"`
	Type       typenode.Descriptor `json:"type"`
}

func runParse(cmd *cobra.Command, args []string) error {
	t, err := annotation.ParseFor(args[0], parseOwner)
	if err != nil {
		return err
	}
	if logger.ShouldOutput(verbosityOf(cmd), logger.OutputParseTrees) {
		fmt.Fprint(cmd.ErrOrStderr(), typenode.Format(t))
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), parseOutput{
			Annotation: args[0],
			Canonical:  annotation.Print(t),
			Type:       typenode.Describe(t),
		})
	}

	tree, err := display.TypeTree(t)
	if err != nil {
		return fmt.Errorf("failed to render type tree: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), tree)
	fmt.Fprintf(cmd.OutOrStdout(), "\nCanonical: %s\n", annotation.Print(t))
	return nil
}
