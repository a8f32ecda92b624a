package changelog

import (
	"errors"
	"fmt"
	"strings"
)

// ParsingError reports a document that does not follow the expected format.
// Line and Column are 1-based; zero means the position is unknown.
type ParsingError struct {
	Message string
	Line    int
	Column  int
	// Err is the underlying cause, if any. Its text is already part of Message.
	Err error
}

func newParsingError(msg string, line, column int) *ParsingError {
	return &ParsingError{Message: msg, Line: line, Column: column}
}

// wrapParsingError embeds cause in the message as "<msg>; <cause>".
func wrapParsingError(cause error, msg string, line, column int) *ParsingError {
	return &ParsingError{
		Message: msg + "; " + cause.Error(),
		Line:    line,
		Column:  column,
		Err:     cause,
	}
}

func (e *ParsingError) Error() string {
	if e.Line <= 0 {
		return e.Message
	}
	var b strings.Builder
	b.WriteString(e.Message)
	fmt.Fprintf(&b, " (at line %d", e.Line)
	if e.Column > 0 {
		fmt.Fprintf(&b, ", column %d", e.Column)
	}
	b.WriteString(")")
	return b.String()
}

func (e *ParsingError) Unwrap() error { return e.Err }

// Position returns the line and column, zero when unknown.
func (e *ParsingError) Position() (line, column int) {
	return e.Line, e.Column
}

// IsParsingError returns true if err is or wraps a ParsingError.
func IsParsingError(err error) bool {
	var pe *ParsingError
	return errors.As(err, &pe)
}

// InputError is returned by the serializer when the caller hands it a
// structurally invalid changelog. It is a contract violation, not a format error.
type InputError struct {
	// Index is the 1-based entry position, zero when the changelog itself is invalid.
	Index   int
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// IsInputError returns true if err is or wraps an InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
