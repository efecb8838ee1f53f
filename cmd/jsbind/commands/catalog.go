package commands

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/jsbind/catalog"
	"github.com/teranos/jsbind/display"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
)

// CatalogCmd inspects the run catalog
var CatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect recorded expansion runs",
	Long: `Inspect the SQLite catalog of expansion runs.

Runs are recorded by expand and watch when catalog.enabled is true.
The database lives at catalog.path (JSBIND_DB overrides it).

Examples:
  jsbind catalog ls
  jsbind catalog ls --limit 5 --json
  jsbind catalog show 3f2a9c`,
}

var catalogLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recent runs",
	RunE:  runCatalogLs,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its overloads and diagnostics",
	Long:  "Show one run. The run id may be any unique prefix.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogShow,
}

var catalogLimit int

func init() {
	catalogLsCmd.Flags().IntVarP(&catalogLimit, "limit", "n", 20, "Number of runs to list (0 = all)")

	CatalogCmd.AddCommand(catalogLsCmd)
	CatalogCmd.AddCommand(catalogShowCmd)
}

func openCatalog() (*sql.DB, *catalog.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load config")
	}
	db, err := catalog.OpenWithMigrations(cfg.GetCatalogPath(), logger.ComponentLogger("catalog"))
	if err != nil {
		return nil, nil, err
	}
	return db, catalog.NewStore(db), nil
}

func runCatalogLs(cmd *cobra.Command, args []string) error {
	db, store, err := openCatalog()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := store.ListRuns(cmd.Context(), catalogLimit)
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		if runs == nil {
			runs = []catalog.Run{}
		}
		return display.OutputJSON(cmd.OutOrStdout(), runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
		return nil
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			shortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			display.Itoa(r.Files),
			display.Itoa(r.Declarations),
			display.Itoa(r.Overloads),
			display.Itoa(r.Diagnostics),
			fmt.Sprintf("%dms", r.DurationMS),
		})
	}
	table, err := display.Table([]string{"RUN", "STARTED", "FILES", "DECLS", "OVERLOADS", "SKIPPED", "TOOK"}, rows)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), table)
	return nil
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	db, store, err := openCatalog()
	if err != nil {
		return err
	}
	defer db.Close()

	detail, err := store.GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), detail)
	}

	out := cmd.OutOrStdout()
	r := detail.Run
	fmt.Fprintf(out, "Run:          %s\n", r.ID)
	fmt.Fprintf(out, "Started:      %s\n", r.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Duration:     %dms\n", r.DurationMS)
	fmt.Fprintf(out, "Inputs:       %s\n", strings.Join(r.Inputs, ", "))
	fmt.Fprintf(out, "Files:        %d\n", r.Files)
	fmt.Fprintf(out, "Declarations: %d\n", r.Declarations)
	fmt.Fprintf(out, "Overloads:    %d\n", r.Overloads)

	if len(detail.Overloads) > 0 {
		fmt.Fprintln(out, "\nOverloads:")
		owner := ""
		for _, o := range detail.Overloads {
			if o.Owner != owner {
				owner = o.Owner
				fmt.Fprintf(out, "  %s\n", owner)
			}
			fmt.Fprintf(out, "    %s\n", o.Signature)
		}
	}

	if len(detail.Diagnostics) > 0 {
		fmt.Fprintln(out, "\nSkipped:")
		for _, d := range detail.Diagnostics {
			name := d.File
			if d.Declaration != "" {
				name = d.Declaration
			}
			fmt.Fprintf(out, "  %s: %s\n", name, d.Message)
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
