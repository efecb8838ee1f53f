package logger

// Output controls what categories of information are shown at each verbosity level.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information are displayed regardless of severity.
//
//	0 (default) - rendered overloads, errors with hints, final status
//	1 (-v)      - + per-file progress, run summaries
//	2 (-vv)     - + timing, config loaded, per-declaration diagnostics
//	3 (-vvv)    - + SQL statements, parse trees
//	4 (-vvvv)   - + full overload dumps

// OutputCategory defines a category of output that can be enabled/disabled
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults    OutputCategory = iota // Rendered overloads, catalog listings
	OutputErrors                           // Errors with hints
	OutputUserStatus                       // Final success/failure status

	// Level 1 (-v) - Informational
	OutputProgress   // Per-file progress
	OutputRunSummary // Files, overloads and skips per run

	// Level 2 (-vv) - Detailed
	OutputTiming      // Stage timing
	OutputConfig      // Config values loaded/applied
	OutputDiagnostics // Every skipped declaration with its reason

	// Level 3 (-vvv) - Debug
	OutputSQLQueries // Catalog SQL
	OutputParseTrees // Parsed annotation trees

	// Level 4 (-vvvv) - Full dump
	OutputDataDump // Full overload lists
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	OutputResults:    VerbosityUser,
	OutputErrors:     VerbosityUser,
	OutputUserStatus: VerbosityUser,

	OutputProgress:   VerbosityInfo,
	OutputRunSummary: VerbosityInfo,

	OutputTiming:      VerbosityDebug,
	OutputConfig:      VerbosityDebug,
	OutputDiagnostics: VerbosityDebug,

	OutputSQLQueries: VerbosityTrace,
	OutputParseTrees: VerbosityTrace,

	OutputDataDump: VerbosityAll,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}

var categoryNames = map[OutputCategory]string{
	OutputResults:     "results",
	OutputErrors:      "errors",
	OutputUserStatus:  "status",
	OutputProgress:    "progress",
	OutputRunSummary:  "run-summary",
	OutputTiming:      "timing",
	OutputConfig:      "config",
	OutputDiagnostics: "diagnostics",
	OutputSQLQueries:  "sql",
	OutputParseTrees:  "parse-trees",
	OutputDataDump:    "data-dump",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}

// EnabledCategories names the output categories shown at verbosity
func EnabledCategories(verbosity int) []string {
	var names []string
	for c := OutputResults; c <= OutputDataDump; c++ {
		if ShouldOutput(verbosity, c) {
			names = append(names, CategoryName(c))
		}
	}
	return names
}
