package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/jsbind/am"
	"github.com/teranos/jsbind/catalog"
	"github.com/teranos/jsbind/decl"
	"github.com/teranos/jsbind/display"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/frontend"
	"github.com/teranos/jsbind/logger"
	"github.com/teranos/jsbind/mapping"
	"github.com/teranos/jsbind/pipeline"
	"github.com/teranos/jsbind/render"
)

// ExpandCmd runs the pipeline over manifests and renders the overloads
var ExpandCmd = &cobra.Command{
	Use:   "expand [manifest|dir]...",
	Short: "Expand declaration manifests into overloads",
	Long: `Expand declaration manifests into concrete overloads.

Every optional parameter becomes a shorter overload, every union-typed
parameter one overload per alternative and every union return type one
renamed overload per alternative. Inner classes are nested under their
owning file.

Manifests come from the arguments, or from input.manifests in the
configuration when no arguments are given. Directories are scanned for
.yaml, .yml and .json files.

Examples:
  jsbind expand ol.yaml
  jsbind expand manifests/ --format text
  jsbind expand --mapping java.toml --out-dir gen/
  jsbind expand --max-overloads 64 --manifest-out expanded.yaml`,
	RunE: runExpand,
}

var (
	expandFormat       string
	expandOutDir       string
	expandMapping      string
	expandWorkers      int
	expandMaxOverloads int
	expandManifestOut  string
	expandNoCatalog    bool
)

func init() {
	ExpandCmd.Flags().StringVarP(&expandFormat, "format", "f", "", "Output format: json, yaml, text (default from config)")
	ExpandCmd.Flags().StringVarP(&expandOutDir, "out-dir", "o", "", "Write one file per top-level class under this directory")
	ExpandCmd.Flags().StringVarP(&expandMapping, "mapping", "m", "", "Type mapping table (.json, .yaml or .toml)")
	ExpandCmd.Flags().IntVarP(&expandWorkers, "workers", "w", 0, "Files expanded in parallel")
	ExpandCmd.Flags().IntVar(&expandMaxOverloads, "max-overloads", 0, "Skip declarations expanding past this many overloads (0 = unbounded)")
	ExpandCmd.Flags().StringVar(&expandManifestOut, "manifest-out", "", "Also write the expanded declarations as a manifest")
	ExpandCmd.Flags().BoolVar(&expandNoCatalog, "no-catalog", false, "Do not record this run in the catalog")
}

func runExpand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	local := *cfg
	cfg = &local
	applyExpandFlags(cmd, cfg)

	inputs := args
	if len(inputs) == 0 {
		inputs = cfg.Input.Manifests
	}

	_, err = expandOnce(cmd.Context(), cfg, inputs, runOutput{
		stdout:    cmd.OutOrStdout(),
		stderr:    cmd.ErrOrStderr(),
		verbosity: verbosityOf(cmd),
	})
	return err
}

// runOutput is where one run writes and how much it reports
type runOutput struct {
	stdout    io.Writer // rendered declarations
	stderr    io.Writer // diagnostics and summaries
	verbosity int       // -v count
}

// verbosityOf returns the -v count, 0 when the flag is not defined
func verbosityOf(cmd *cobra.Command) int {
	if cmd.Flags().Lookup("verbose") == nil {
		return logger.Verbosity
	}
	v, _ := cmd.Flags().GetCount("verbose")
	return v
}

// applyExpandFlags lays explicitly set flags over the loaded config
func applyExpandFlags(cmd *cobra.Command, cfg *am.Config) {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = expandFormat
	} else if display.ShouldOutputJSON(cmd) {
		cfg.Output.Format = am.FormatJSON
	}
	if flags.Changed("out-dir") {
		cfg.Output.Dir = expandOutDir
	}
	if flags.Changed("mapping") {
		cfg.Mapping.Path = expandMapping
	}
	if flags.Changed("workers") {
		cfg.Expand.Workers = expandWorkers
	}
	if flags.Changed("max-overloads") {
		cfg.Expand.MaxOverloads = expandMaxOverloads
	}
	if expandNoCatalog {
		cfg.Catalog.Enabled = false
	}
}

// expandOnce runs load, expand, render and record for one set of inputs.
// Rendered output goes to out.stdout unless cfg.Output.Dir is set; skipped
// declarations and run summaries go to out.stderr as verbosity allows.
func expandOnce(ctx context.Context, cfg *am.Config, inputs []string, out runOutput) (*pipeline.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger.ShouldOutput(out.verbosity, logger.OutputConfig) {
		fmt.Fprintf(out.stderr, "config: %s\n", cfg)
	}

	paths, err := am.ExpandInputs(inputs)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.WithHint(
			errors.Wrap(errors.ErrValidation, "no manifests to expand"),
			"pass manifest files or directories, or set input.manifests in "+am.ConfigFileName)
	}

	var table *mapping.Table
	if cfg.Mapping.Path != "" {
		table, err = mapping.Load(cfg.Mapping.Path)
		if err != nil {
			return nil, err
		}
	}

	proc := pipeline.New(pipeline.Options{
		Workers:      cfg.GetWorkers(),
		MaxOverloads: cfg.Expand.MaxOverloads,
	})
	res, err := proc.Load(ctx, paths)
	if err != nil {
		return nil, err
	}
	report(out, res)

	docs := render.New(table).Documents(res.Files)
	format := cfg.GetFormat()
	if cfg.Output.Dir != "" {
		written, err := render.WriteDir(cfg.Output.Dir, docs, format)
		if err != nil {
			return nil, err
		}
		logger.Infow("Wrote rendered declarations",
			logger.FieldPath, cfg.Output.Dir,
			logger.FieldFiles, len(written),
			logger.FieldRunID, res.RunID)
	} else if err := render.Write(out.stdout, docs, format); err != nil {
		return nil, errors.Wrap(err, "failed to write output")
	}

	if expandManifestOut != "" {
		if err := writeManifest(expandManifestOut, res); err != nil {
			return nil, err
		}
	}

	if cfg.Catalog.Enabled {
		if err := recordRun(ctx, cfg.GetCatalogPath(), res, paths); err != nil {
			logger.Warnw("Failed to record run in catalog",
				logger.FieldRunID, res.RunID,
				logger.FieldError, err)
		}
	}
	return res, nil
}

// report writes the diagnostics and summary of res at out.verbosity: a skip
// count by default, each skipped declaration at -vv, the run summary at -v,
// its timing at -vv and every overload signature at -vvvv
func report(out runOutput, res *pipeline.Result) {
	if logger.ShouldOutput(out.verbosity, logger.OutputDiagnostics) {
		for _, d := range res.Diagnostics {
			if d.Declaration != "" {
				fmt.Fprintf(out.stderr, "skipped %s (%s): %s\n", d.Declaration, d.File, d.Message())
			} else {
				fmt.Fprintf(out.stderr, "skipped %s: %s\n", d.File, d.Message())
			}
		}
	} else if len(res.Diagnostics) > 0 && logger.ShouldOutput(out.verbosity, logger.OutputErrors) {
		fmt.Fprintf(out.stderr, "%d declaration(s) skipped (-vv lists them)\n", len(res.Diagnostics))
	}

	if logger.ShouldOutput(out.verbosity, logger.OutputRunSummary) {
		fmt.Fprintf(out.stderr, "run %s: %d files, %d declarations, %d overloads, %d skipped",
			res.RunID, len(res.Files), res.Declarations, res.Overloads, len(res.Diagnostics))
		if logger.ShouldOutput(out.verbosity, logger.OutputTiming) {
			fmt.Fprintf(out.stderr, " in %s", res.Duration.Round(time.Millisecond))
		}
		fmt.Fprintln(out.stderr)
	}

	if logger.ShouldOutput(out.verbosity, logger.OutputDataDump) {
		for _, top := range res.Files {
			top.Walk(func(f *decl.File) {
				for _, list := range [][]*decl.Declaration{f.Members, f.Fields} {
					for _, d := range list {
						fmt.Fprintf(out.stderr, "  %s %s\n", f.QualifiedName(), d.Signature())
					}
				}
			})
		}
	}
}

func writeManifest(path string, res *pipeline.Result) error {
	format, err := frontend.FormatFor(path)
	if err != nil {
		return err
	}
	data, err := frontend.Encode(frontend.FromFiles(res.Files), format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, am.DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write manifest %s", path)
	}
	return nil
}

func recordRun(ctx context.Context, dbPath string, res *pipeline.Result, inputs []string) error {
	db, err := catalog.OpenWithMigrations(dbPath, logger.ComponentLogger("catalog"))
	if err != nil {
		return err
	}
	defer db.Close()
	return catalog.NewStore(db).Record(ctx, res, inputs)
}
