// Package errors provides structured error handling for the kacl CLI.
// Every failure the CLI reports is a CLIError: a category that decides the
// exit code, an optional location inside the changelog, and the steps that
// fix it.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies a CLIError.
type ErrorCategory int

const (
	// Argument errors come from invalid flags, arguments or versions.
	Argument ErrorCategory = iota
	// Configuration errors come from config files, KACL_* variables or values
	// such as an encoding that cannot be used.
	Configuration
	// Prerequisite errors mean a changelog, repository or remote is missing.
	Prerequisite
	// Format errors mean a changelog does not follow Keep a Changelog.
	Format
	// Runtime errors cover I/O and network failures.
	Runtime
)

var categoryNames = map[ErrorCategory]string{
	Argument:      "Argument Error",
	Configuration: "Configuration Error",
	Prerequisite:  "Prerequisite Error",
	Format:        "Format Error",
	Runtime:       "Runtime Error",
}

func (c ErrorCategory) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "Error"
}

// CLIError is a categorized error with remediation steps.
type CLIError struct {
	Category ErrorCategory
	Message  string
	// Location is "file", "file:line" or "file:line:column".
	Location    string
	Remediation []string
	// Usage is the command line syntax, shown for argument errors.
	Usage string
	Err   error
}

func (e *CLIError) Error() string {
	if e.Location != "" {
		return e.Location + ": " + e.Message
	}
	return e.Message
}

func (e *CLIError) Unwrap() error { return e.Err }

// WithUsage sets the usage line and returns e.
func (e *CLIError) WithUsage(usage string) *CLIError {
	e.Usage = usage
	return e
}

// At sets the location and returns e.
func (e *CLIError) At(location string) *CLIError {
	e.Location = location
	return e
}

// New returns a CLIError of the given category.
func New(category ErrorCategory, message string, remediation ...string) *CLIError {
	return &CLIError{Category: category, Message: message, Remediation: remediation}
}

// NewArgumentError returns an Argument error.
func NewArgumentError(message string, remediation ...string) *CLIError {
	return New(Argument, message, remediation...)
}

// NewConfigError returns a Configuration error.
func NewConfigError(message string, remediation ...string) *CLIError {
	return New(Configuration, message, remediation...)
}

// NewPrerequisiteError returns a Prerequisite error.
func NewPrerequisiteError(message string, remediation ...string) *CLIError {
	return New(Prerequisite, message, remediation...)
}

// Wrap turns err into a CLIError with err's own message. A nil err stays nil.
func Wrap(err error, category ErrorCategory, remediation ...string) *CLIError {
	if err == nil {
		return nil
	}
	cliErr := New(category, err.Error(), remediation...)
	cliErr.Err = err
	return cliErr
}

// WrapWithMessage is Wrap with the message "message: err".
func WrapWithMessage(err error, category ErrorCategory, message string, remediation ...string) *CLIError {
	if err == nil {
		return nil
	}
	cliErr := New(category, fmt.Sprintf("%s: %v", message, err), remediation...)
	cliErr.Err = err
	return cliErr
}

// AsCLIError returns the first CLIError in err's chain, or nil.
func AsCLIError(err error) *CLIError {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}
	return nil
}

// IsCLIError reports whether err's chain holds a CLIError.
func IsCLIError(err error) bool {
	return AsCLIError(err) != nil
}

// CategoryOf returns the category of the CLIError in err's chain. Errors
// without one count as Runtime.
func CategoryOf(err error) ErrorCategory {
	if cliErr := AsCLIError(err); cliErr != nil {
		return cliErr.Category
	}
	return Runtime
}
