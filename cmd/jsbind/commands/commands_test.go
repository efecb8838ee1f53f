package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/jsbind/am"
	"github.com/teranos/jsbind/annotation"
	"github.com/teranos/jsbind/catalog"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/frontend"
	"github.com/teranos/jsbind/logger"
)

const fixture = "testdata/ol.yaml"

// newTestCmd returns a bare command with captured output and a context
func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{Use: "test"}
	cmd.PersistentFlags().Bool("json", false, "")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

// useConfig points the commands at path for the duration of the test
func useConfig(t *testing.T, path string) {
	t.Helper()
	am.Reset()
	ConfigPath = path
	t.Cleanup(func() {
		ConfigPath = ""
		am.Reset()
	})
}

func TestFormatError(t *testing.T) {
	_, err := annotation.Parse("Array.<number")
	require.Error(t, err)
	out := FormatError(errors.Wrap(err, "parse failed"))
	assert.Contains(t, out, "Annotation:")
	assert.Contains(t, out, "Array.<number")

	hinted := errors.WithHint(errors.New("no manifests"), "pass a file")
	assert.Equal(t, "Error: no manifests\nHint: pass a file", FormatError(hinted))
}

func TestParseJSON(t *testing.T) {
	cmd, out := newTestCmd()
	require.NoError(t, cmd.PersistentFlags().Set("json", "true"))

	require.NoError(t, runParse(cmd, []string{"number|string"}))

	var got parseOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "number|string", got.Annotation)
	assert.Equal(t, "union", got.Type.Kind)
	require.Len(t, got.Type.Alternatives, 2)
	assert.Equal(t, "number", got.Type.Alternatives[0].Name)
}

func TestParseTree(t *testing.T) {
	cmd, out := newTestCmd()
	require.NoError(t, runParse(cmd, []string{"!Array.<string>"}))
	assert.Contains(t, out.String(), "Array")
	assert.Contains(t, out.String(), "Canonical: !Array.<string>")
}

func TestParseTreeTrace(t *testing.T) {
	tests := []struct {
		name      string
		verbosity string
		wantDump  bool
	}{
		{"debug keeps stderr quiet", "2", false},
		{"trace dumps the parse tree", "3", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			cmd := &cobra.Command{Use: "test"}
			cmd.Flags().CountP("verbose", "v", "")
			require.NoError(t, cmd.Flags().Set("verbose", tt.verbosity))
			cmd.SetOut(&stdout)
			cmd.SetErr(&stderr)

			require.NoError(t, runParse(cmd, []string{"Array.<number>"}))
			assert.Contains(t, stdout.String(), "Canonical: Array.<number>")
			if tt.wantDump {
				assert.Contains(t, stderr.String(), `raw="Array.<number>"`)
			} else {
				assert.Empty(t, stderr.String())
			}
		})
	}
}

func TestParseError(t *testing.T) {
	cmd, _ := newTestCmd()
	err := runParse(cmd, []string{"Array.<number"})
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
}

// discard is a runOutput that drops everything
func discard() runOutput {
	return runOutput{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
}

func TestExpandOnceText(t *testing.T) {
	cfg := am.DefaultConfig()
	cfg.Output.Format = am.FormatText

	var stdout, stderr bytes.Buffer
	res, err := expandOnce(context.Background(), cfg, []string{fixture},
		runOutput{stdout: &stdout, stderr: &stderr, verbosity: logger.VerbosityDebug})
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "class ol.Map extends ol.Object")
	assert.Contains(t, stdout.String(), "setCenter(")
	assert.Contains(t, stderr.String(), "broken")
	assert.Contains(t, stderr.String(), "ol.Bad")
	assert.NotEmpty(t, res.RunID)
	assert.Positive(t, res.Overloads)
}

func TestExpandOnceVerbosity(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		contains  []string
		excludes  []string
	}{
		{
			name:      "user level shows the skip count only",
			verbosity: logger.VerbosityUser,
			contains:  []string{"declaration(s) skipped (-vv lists them)"},
			excludes:  []string{"skipped ol.Map#broken", "run ", "config: "},
		},
		{
			name:      "info adds the run summary",
			verbosity: logger.VerbosityInfo,
			contains:  []string{"declaration(s) skipped", "run ", "overloads"},
			excludes:  []string{"skipped ol.Map#broken", " in "},
		},
		{
			name:      "debug lists skips with timing and config",
			verbosity: logger.VerbosityDebug,
			contains:  []string{"broken", "ol.Bad", " in ", "config: "},
			excludes:  []string{"(-vv lists them)"},
		},
		{
			name:      "all dumps every overload",
			verbosity: logger.VerbosityAll,
			contains:  []string{"  ol.Map setCenter("},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			_, err := expandOnce(context.Background(), am.DefaultConfig(), []string{fixture},
				runOutput{stdout: &bytes.Buffer{}, stderr: &stderr, verbosity: tt.verbosity})
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, stderr.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, stderr.String(), s)
			}
		})
	}
}

func TestExpandOnceNoInputs(t *testing.T) {
	_, err := expandOnce(context.Background(), am.DefaultConfig(), nil, discard())
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestExpandOnceInvalidConfig(t *testing.T) {
	cfg := am.DefaultConfig()
	cfg.Output.Format = "xml"
	_, err := expandOnce(context.Background(), cfg, []string{fixture}, discard())
	assert.True(t, errors.IsValidationError(err))
}

func TestExpandOnceOutDirAndManifest(t *testing.T) {
	dir := t.TempDir()
	cfg := am.DefaultConfig()
	cfg.Output.Dir = filepath.Join(dir, "gen")

	expandManifestOut = filepath.Join(dir, "expanded.yaml")
	defer func() { expandManifestOut = "" }()

	var stdout bytes.Buffer
	_, err := expandOnce(context.Background(), cfg, []string{fixture}, runOutput{stdout: &stdout, stderr: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	_, err = os.Stat(filepath.Join(dir, "gen", "ol", "Map.json"))
	assert.NoError(t, err)

	m, err := frontend.LoadManifest(expandManifestOut)
	require.NoError(t, err)
	assert.Equal(t, frontend.SchemaVersion, m.SchemaVersion)
	assert.NotEmpty(t, m.Files)
}

func TestExpandRecordsAndCatalogShows(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, am.ConfigFileName)
	cfg := am.DefaultConfig()
	cfg.Catalog.Enabled = true
	cfg.Catalog.Path = filepath.Join(dir, "runs.db")
	cfg.Output.Format = am.FormatYAML
	require.NoError(t, am.WriteConfig(cfgPath, cfg))
	useConfig(t, cfgPath)

	loaded, err := loadConfig()
	require.NoError(t, err)
	res, err := expandOnce(context.Background(), loaded, []string{fixture}, discard())
	require.NoError(t, err)

	db, err := catalog.Open(cfg.Catalog.Path, logger.Logger)
	require.NoError(t, err)
	runs, err := catalog.NewStore(db).ListRuns(context.Background(), 0)
	db.Close()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].ID)

	cmd, out := newTestCmd()
	catalogLimit = 20
	require.NoError(t, runCatalogLs(cmd, nil))
	assert.Contains(t, out.String(), shortID(res.RunID))

	out.Reset()
	require.NoError(t, runCatalogShow(cmd, []string{res.RunID[:8]}))
	assert.Contains(t, out.String(), "Run:          "+res.RunID)
	assert.Contains(t, out.String(), "Overloads:\n  ol.Map")
	assert.Contains(t, out.String(), "Skipped:")

	err = runCatalogShow(cmd, []string{"zzzz"})
	assert.True(t, errors.IsNotFoundError(err))
}

func TestCatalogLsEmptyJSON(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, am.ConfigFileName)
	cfg := am.DefaultConfig()
	cfg.Catalog.Path = filepath.Join(dir, "empty.db")
	require.NoError(t, am.WriteConfig(cfgPath, cfg))
	useConfig(t, cfgPath)

	cmd, out := newTestCmd()
	require.NoError(t, cmd.PersistentFlags().Set("json", "true"))
	require.NoError(t, runCatalogLs(cmd, nil))
	assert.Equal(t, "[]\n", out.String())
}

func TestAmInitShowGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), am.ConfigFileName)
	cmd, out := newTestCmd()

	require.NoError(t, runAmInit(cmd, []string{path}))
	assert.Contains(t, out.String(), "Wrote "+path)

	err := runAmInit(cmd, []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	useConfig(t, path)

	out.Reset()
	configFormat = "json"
	defer func() { configFormat = "toml" }()
	require.NoError(t, runAmShow(cmd, nil))
	var shown am.Config
	require.NoError(t, json.Unmarshal(out.Bytes(), &shown))
	assert.Equal(t, am.DefaultWorkers, shown.Expand.Workers)
	assert.Equal(t, am.DefaultFormat, shown.Output.Format)

	out.Reset()
	configFormat = "flat"
	require.NoError(t, runAmShow(cmd, nil))
	assert.Contains(t, out.String(), "expand.workers = 4\n")
	assert.Contains(t, out.String(), "output.format = "+am.DefaultFormat+"\n")

	out.Reset()
	require.NoError(t, runAmGet(cmd, []string{"expand.workers"}))
	assert.Equal(t, "4\n", out.String())

	err = runAmGet(cmd, []string{"expand.nope"})
	assert.True(t, errors.IsNotFoundError(err))

	out.Reset()
	require.NoError(t, runAmValidate(cmd, nil))
	assert.Contains(t, out.String(), "Configuration is valid")

	out.Reset()
	require.NoError(t, runAmWhere(cmd, nil))
	assert.Contains(t, out.String(), "settings from "+path)
	assert.Contains(t, out.String(), "expand.workers = 4")
}

func TestAmValidateFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.toml")
	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(good, []byte("[expand]\nworkers = 2\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("[output]\nformat = \"xml\"\n"), 0o644))

	cmd, out := newTestCmd()
	require.NoError(t, runAmValidate(cmd, []string{good}))
	assert.Contains(t, out.String(), good+" is valid")

	err := runAmValidate(cmd, []string{bad})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, ExitValidation, ExitCode(err))

	err = runAmValidate(cmd, []string{filepath.Join(dir, "missing.toml")})
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	_, parseErr := annotation.Parse("Array.<number")
	require.Error(t, parseErr)
	_, noInputs := expandOnce(context.Background(), am.DefaultConfig(), nil, discard())
	require.Error(t, noInputs)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), ExitFailure},
		{"validation", noInputs, ExitValidation},
		{"parse", errors.Wrap(parseErr, "parse failed"), ExitParse},
		{"not found", errors.NewNotFoundError("run %s", "abc"), ExitNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestRerunner(t *testing.T) {
	var calls int32
	fn := func(cfg *am.Config) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}

	unlimited := newRerunner(0, fn)
	for i := 0; i < 5; i++ {
		require.NoError(t, unlimited.run(context.Background(), am.DefaultConfig()))
	}
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))

	limited := newRerunner(1, fn)
	require.NoError(t, limited.run(context.Background(), am.DefaultConfig()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := limited.run(ctx, am.DefaultConfig())
	require.Error(t, err)
	assert.Equal(t, int32(6), atomic.LoadInt32(&calls))
}

func TestVersionJSON(t *testing.T) {
	var out bytes.Buffer
	VersionCmd.SetOut(&out)
	defer VersionCmd.SetOut(nil)
	require.NoError(t, VersionCmd.Flags().Set("json", "true"))
	defer VersionCmd.Flags().Set("json", "false")

	require.NoError(t, VersionCmd.RunE(VersionCmd, nil))
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, frontend.SchemaConstraint, info["schema_version"])
}

func TestMain(m *testing.M) {
	_ = logger.Initialize(false, 0)
	os.Exit(m.Run())
}
