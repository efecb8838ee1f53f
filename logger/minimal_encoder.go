package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// Gruvbox-derived palette
const (
	colorReset  = "\x1b[0m"
	colorBold   = "\x1b[1m"
	colorTime   = "\x1b[38;5;108m"
	colorName   = "\x1b[38;5;208m"
	colorKey    = "\x1b[38;5;109m"
	colorFg     = "\x1b[38;5;223m"
	colorWarn   = "\x1b[38;5;214m"
	colorWarnBg = "\x1b[48;5;58m"
	colorErr    = "\x1b[38;5;167m"
	colorErrBg  = "\x1b[48;5;88m"
)

var pool = buffer.NewPool()

// minimalEncoder implements a calm, compact console encoder.
// Format: "13:04:35  pipeline  expanded file  file=ol/map.js overloads=12"
//
// Fields added with With() are collected in the embedded map encoder and
// printed on every entry, before the entry's own fields.
type minimalEncoder struct {
	*zapcore.MapObjectEncoder
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{MapObjectEncoder: zapcore.NewMapObjectEncoder()}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	m := zapcore.NewMapObjectEncoder()
	for k, v := range enc.Fields {
		m.Fields[k] = v
	}
	return &minimalEncoder{MapObjectEncoder: m}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := pool.Get()

	final.AppendString(colorTime)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level: hidden for INFO
	if lvl := levelColorString(ent.Level); lvl != "" {
		final.AppendString("  ")
		final.AppendString(lvl)
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorName)
		final.AppendString(ent.LoggerName)
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(colorFg)
	final.AppendString(ent.Message)
	final.AppendString(colorReset)

	var parts []string
	parts = append(parts, formatMap(enc.Fields)...)
	parts = append(parts, formatFields(fields)...)
	if len(parts) > 0 {
		final.AppendString("  ")
		final.AppendString(strings.Join(parts, " "))
	}

	final.AppendString("\n")
	return final, nil
}

// levelColorString returns bold + colored + background for WARN/ERROR
func levelColorString(level zapcore.Level) string {
	switch {
	case level == zapcore.WarnLevel:
		return colorBold + colorWarnBg + colorWarn + "WARN" + colorReset
	case level >= zapcore.ErrorLevel:
		return colorBold + colorErrBg + colorErr + level.CapitalString() + colorReset
	case level == zapcore.DebugLevel:
		return "DEBUG"
	}
	return ""
}

// formatFields renders every field as key=value in field order. Fields are
// never dropped: anything zap can encode ends up in the output.
func formatFields(fields []zapcore.Field) []string {
	var parts []string
	for _, f := range fields {
		if f.Type == zapcore.SkipType {
			continue
		}
		m := zapcore.NewMapObjectEncoder()
		f.AddTo(m)
		parts = append(parts, formatMap(m.Fields)...)
	}
	return parts
}

func formatMap(fields map[string]interface{}) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, colorKey+k+colorReset+"="+formatValue(fields[k]))
	}
	return parts
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case []interface{}:
		s := make([]string, len(x))
		for i, e := range x {
			s[i] = formatValue(e)
		}
		return "[" + strings.Join(s, ",") + "]"
	}
	return fmt.Sprintf("%v", v)
}
