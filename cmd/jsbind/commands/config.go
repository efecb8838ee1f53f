// Package commands implements the jsbind subcommands.
package commands

import (
	"strings"

	"github.com/teranos/jsbind/am"
	"github.com/teranos/jsbind/annotation"
	"github.com/teranos/jsbind/errors"
)

// ConfigPath is set by the root --config flag. Empty means the normal
// system, user and project cascade.
var ConfigPath string

func loadConfig() (*am.Config, error) {
	if ConfigPath != "" {
		return am.LoadFromFile(ConfigPath)
	}
	return am.Load()
}

// FormatError renders err for the terminal: parse errors with context and
// caret, everything else with its hints.
func FormatError(err error) string {
	var pe *annotation.ParseError
	if errors.As(err, &pe) {
		return pe.FormatError(annotation.ErrorContextTerminal)
	}
	msg := "Error: " + err.Error()
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		msg += "\nHint: " + strings.Join(hints, "\nHint: ")
	}
	return msg
}

// Exit statuses beyond the generic failure
const (
	ExitFailure    = 1
	ExitValidation = 2
	ExitParse      = 3
	ExitNotFound   = 4
)

// ExitCode maps err to the process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IsValidationError(err):
		return ExitValidation
	case errors.IsParseError(err):
		return ExitParse
	case errors.IsNotFoundError(err):
		return ExitNotFound
	}
	return ExitFailure
}
