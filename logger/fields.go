package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for structured logging across jsbind.
// Use these constants instead of raw strings.
const (
	// Identity and context
	FieldRunID     = "run_id"
	FieldComponent = "component"

	// Inputs
	FieldFile        = "file"
	FieldManifest    = "manifest"
	FieldDeclaration = "declaration"
	FieldAnnotation  = "annotation"
	FieldNamespace   = "namespace"

	// Operations
	FieldOperation = "operation"
	FieldFormat    = "format"
	FieldPath      = "path"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts
	FieldCount       = "count"
	FieldFiles       = "files"
	FieldOverloads   = "overloads"
	FieldSkipped     = "skipped"
	FieldLimit       = "limit"
	FieldWorkers     = "workers"
	FieldDiagnostics = "diagnostics"
)

type contextKey string

const (
	runIDKey     contextKey = "logger_run_id"
	componentKey contextKey = "logger_component"
)

// WithRunID adds an expansion run ID to the context for logging
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if runID, ok := ctx.Value(runIDKey).(string); ok && runID != "" {
		fields = append(fields, FieldRunID, runID)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}

	return fields
}

// LoggerFromContext returns a logger with fields extracted from context.
func LoggerFromContext(ctx context.Context) *zap.SugaredLogger {
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return Logger
	}
	return Logger.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Processor struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func New() *Processor {
//	    return &Processor{logger: logger.ComponentLogger("pipeline")}
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
//	fileLogger := logger.ChildLogger(base, logger.FieldFile, f.Path)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
