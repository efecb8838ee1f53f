package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		verbosity  int
	}{
		{name: "JSON output mode", jsonOutput: true, verbosity: VerbosityUser},
		{name: "Console output mode", jsonOutput: false, verbosity: VerbosityDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			JSONOutput = false

			require.NoError(t, Initialize(tt.jsonOutput, tt.verbosity))
			require.NotNil(t, Logger)
			assert.Equal(t, tt.jsonOutput, JSONOutput)
			assert.Equal(t, tt.verbosity, Verbosity)
			assert.True(t, Logger.Desugar().Core().Enabled(VerbosityToLevel(tt.verbosity)))

			Logger = zap.NewNop().Sugar()
		})
	}
}

func TestHelpersWithNilLogger(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved }()

	Logger = nil
	assert.NotPanics(t, func() {
		Infow("info")
		Warnw("warn")
		Errorw("error")
		Debugw("debug")
		Cleanup()
	})
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{-1, zapcore.WarnLevel},
		{VerbosityUser, zapcore.WarnLevel},
		{VerbosityInfo, zapcore.InfoLevel},
		{VerbosityDebug, zapcore.DebugLevel},
		{VerbosityTrace, zapcore.DebugLevel},
		{10, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VerbosityToLevel(tt.verbosity), "verbosity %d", tt.verbosity)
	}
	assert.Equal(t, "Debug (-vv)", LevelName(VerbosityDebug))
	assert.Equal(t, "All (-vvvv+)", LevelName(7))
}

func TestShouldOutput(t *testing.T) {
	assert.True(t, ShouldOutput(VerbosityUser, OutputResults))
	assert.False(t, ShouldOutput(VerbosityUser, OutputProgress))
	assert.True(t, ShouldOutput(VerbosityInfo, OutputRunSummary))
	assert.False(t, ShouldOutput(VerbosityInfo, OutputDiagnostics))
	assert.True(t, ShouldOutput(VerbosityTrace, OutputParseTrees))
	assert.True(t, ShouldOutput(VerbosityAll, OutputCategory(99)))
	assert.False(t, ShouldOutput(VerbosityTrace, OutputCategory(99)))
	assert.Equal(t, "parse-trees", CategoryName(OutputParseTrees))
	assert.Equal(t, "unknown", CategoryName(OutputCategory(99)))

	assert.Equal(t, []string{"results", "errors", "status"}, EnabledCategories(VerbosityUser))
	assert.Equal(t, []string{"results", "errors", "status", "progress", "run-summary"}, EnabledCategories(VerbosityInfo))
	assert.Len(t, EnabledCategories(VerbosityAll), len(categoryNames))
}

func TestLoggerFromContext(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved }()

	core, logs := observer.New(zapcore.DebugLevel)
	Logger = zap.New(core).Sugar()

	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithComponent(ctx, "pipeline")
	LoggerFromContext(ctx).Infow("expanded", FieldCount, 3)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "run-1", fields[FieldRunID])
	assert.Equal(t, "pipeline", fields[FieldComponent])
	assert.EqualValues(t, 3, fields[FieldCount])

	assert.Same(t, Logger, LoggerFromContext(context.Background()))
}

func TestComponentAndChildLogger(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved }()

	core, logs := observer.New(zapcore.DebugLevel)
	Logger = zap.New(core).Sugar()

	child := ChildLogger(ComponentLogger("catalog"), FieldRunID, "abc")
	child.Warnw("slow insert")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "catalog", entry.LoggerName)
	assert.Equal(t, "abc", entry.ContextMap()[FieldRunID])
}
