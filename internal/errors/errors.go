// Package errors provides error formatting utilities for the D
// pipeline. It formats diagnostics with source context, line/column
// information, and a caret pointing at the error location.
package errors

import (
	"fmt"
	"strings"
)

// ScriptError represents a single diagnostic with position and source
// context. Line and Col are 1-based; zero means the position is unknown
// and the source excerpt is omitted.
type ScriptError struct {
	Message string
	Source  string
	File    string
	Line    int
	Col     int
}

// NewScriptError creates a new diagnostic.
func NewScriptError(message, source, file string, line, col int) *ScriptError {
	return &ScriptError{
		Message: message,
		Source:  source,
		File:    file,
		Line:    line,
		Col:     col,
	}
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	return e.Format(false)
}

// Format renders the diagnostic with a source excerpt and caret. When
// color is true, ANSI codes highlight the caret and message.
func (e *ScriptError) Format(color bool) string {
	var sb strings.Builder

	if e.Line > 0 {
		if e.File != "" {
			sb.WriteString(fmt.Sprintf("Error in %s:%d:%d\n", e.File, e.Line, e.Col))
		} else {
			sb.WriteString(fmt.Sprintf("Error at line %d:%d\n", e.Line, e.Col))
		}

		if sourceLine := e.sourceLine(e.Line); sourceLine != "" {
			lineNum := fmt.Sprintf("%4d | ", e.Line)
			sb.WriteString(lineNum)
			sb.WriteString(sourceLine)
			sb.WriteString("\n")

			caretCol := e.Col
			if caretCol < 1 {
				caretCol = 1
			}
			sb.WriteString(strings.Repeat(" ", len(lineNum)+caretCol-1))
			if color {
				sb.WriteString("\033[1;31m")
			}
			sb.WriteString("^")
			if color {
				sb.WriteString("\033[0m")
			}
			sb.WriteString("\n")
		}
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

// sourceLine extracts a 1-based line from the source.
func (e *ScriptError) sourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatErrors formats multiple diagnostics, each with its own excerpt.
func FormatErrors(errs []*ScriptError, color bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(color)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Failed with %d error(s):\n\n", len(errs)))
	for i, err := range errs {
		sb.WriteString(fmt.Sprintf("[Error %d of %d]\n", i+1, len(errs)))
		sb.WriteString(err.Format(color))
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

// FromMessages converts plain diagnostic messages (as accumulated by
// the semantic checker) to ScriptErrors without positions.
func FromMessages(messages []string, source, file string) []*ScriptError {
	errs := make([]*ScriptError, 0, len(messages))
	for _, msg := range messages {
		errs = append(errs, NewScriptError(msg, source, file, 0, 0))
	}
	return errs
}
