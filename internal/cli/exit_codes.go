package cli

import (
	"errors"
	"fmt"

	clierrors "github.com/ariel-frischer/kacl/internal/errors"
)

// Exit codes for the kacl CLI
// These codes support programmatic composition and CI/CD integration
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitValidationFailed indicates a changelog is malformed or not canonical
	ExitValidationFailed = 1

	// ExitInvalidArguments indicates invalid command arguments or configuration
	ExitInvalidArguments = 3

	// ExitMissingDependencies indicates a required file, repository or remote is missing
	ExitMissingDependencies = 4
)

// ExitError ends a command with a specific exit code. When Err is nil the
// command has already reported the failure itself.
type ExitError struct {
	Code int
	Err  error
}

// NewExitError creates an ExitError that prints nothing.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch clierrors.CategoryOf(err) {
	case clierrors.Argument, clierrors.Configuration:
		return ExitInvalidArguments
	case clierrors.Prerequisite:
		return ExitMissingDependencies
	default:
		return ExitValidationFailed
	}
}
