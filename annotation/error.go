package annotation

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/jsbind/errors"
)

// ErrorContext selects how an error is rendered.
type ErrorContext int

const (
	ErrorContextPlain    ErrorContext = iota // logs, JSON output, catalog rows
	ErrorContextTerminal                     // coloured CLI output
)

// ParseError reports malformed nesting in one raw annotation.
// It unwraps to errors.ErrParse.
type ParseError struct {
	Raw         string   // annotation as handed to the parser
	Owner       string   // owning declaration, e.g. "ol.Map#setCenter" (optional)
	Offset      int      // byte offset into Raw, -1 when unknown
	Message     string   // what went wrong
	Suggestions []string // possible fixes
}

// NewParseError creates a ParseError for raw with the given message.
func NewParseError(raw, message string) *ParseError {
	return &ParseError{Raw: raw, Message: message, Offset: -1}
}

// WithOwner names the declaration the annotation belongs to.
func (e *ParseError) WithOwner(owner string) *ParseError {
	e.Owner = owner
	return e
}

// WithOffset records where in Raw the problem was found.
func (e *ParseError) WithOffset(offset int) *ParseError {
	e.Offset = offset
	return e
}

// WithSuggestion adds a suggestion for fixing the annotation.
func (e *ParseError) WithSuggestion(suggestion string) *ParseError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// Error implements error with the plain rendering.
func (e *ParseError) Error() string {
	return e.FormatError(ErrorContextPlain)
}

// Unwrap for errors.Is(err, errors.ErrParse)
func (e *ParseError) Unwrap() error {
	return errors.ErrParse
}

// FormatError renders the error for the given context.
func (e *ParseError) FormatError(ctx ErrorContext) string {
	if ctx == ErrorContextTerminal {
		return e.formatTerminal()
	}
	msg := fmt.Sprintf("parse %q", e.Raw)
	if e.Owner != "" {
		msg += fmt.Sprintf(" (in %s)", e.Owner)
	}
	msg += ": " + e.Message
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" at offset %d", e.Offset)
	}
	if len(e.Suggestions) > 0 {
		msg += ". Suggestions: " + strings.Join(e.Suggestions, ", ")
	}
	return msg
}

func (e *ParseError) formatTerminal() string {
	var sb strings.Builder
	sb.WriteString(pterm.Red(e.Message))
	sb.WriteString("\n\n")
	sb.WriteString(pterm.LightCyan("Context:"))
	fmt.Fprintf(&sb, "\n  %s %s", pterm.Yellow("Annotation:"), e.Raw)
	if e.Owner != "" {
		fmt.Fprintf(&sb, "\n  %s %s", pterm.Yellow("Declaration:"), e.Owner)
	}
	if e.Offset >= 0 && e.Offset <= len(e.Raw) {
		// caret under the offending byte
		fmt.Fprintf(&sb, "\n  %s %s\n  %s %s^", pterm.Yellow("At:"), e.Raw,
			strings.Repeat(" ", len("At:")), strings.Repeat(" ", e.Offset))
	}
	if len(e.Suggestions) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(pterm.Green("Suggestions:"))
		for _, s := range e.Suggestions {
			fmt.Fprintf(&sb, "\n  • %s", s)
		}
	}
	return sb.String()
}

// ValidationError reports a well-formed annotation used where its shape is not
// allowed, such as a union in an extends clause. It unwraps to
// errors.ErrValidation.
type ValidationError struct {
	Raw     string
	Owner   string
	Role    string // "extends", "implements", ...
	Message string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s %q", e.Role, e.Raw)
	if e.Owner != "" {
		msg += fmt.Sprintf(" (in %s)", e.Owner)
	}
	return msg + ": " + e.Message
}

// Unwrap for errors.Is(err, errors.ErrValidation)
func (e *ValidationError) Unwrap() error {
	return errors.ErrValidation
}
