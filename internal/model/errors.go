package model

import "fmt"

// ExitCode defines the CLI exit codes. These codes let scripts and CI
// systems determine the outcome of a command without parsing output.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the config file is missing or invalid.
	ExitConfigError ExitCode = 2

	// ExitValidationError indicates user input failed validation
	// (bad forest name, bad branch name, unknown repo, etc.).
	ExitValidationError ExitCode = 3

	// ExitForestNotFound indicates the named forest does not exist.
	ExitForestNotFound ExitCode = 4

	// ExitGitError indicates a git operation failed.
	ExitGitError ExitCode = 5

	// ExitConfirmRequired indicates a destructive command was invoked
	// without --confirm and printed a preview instead of executing.
	ExitConfirmRequired ExitCode = 6
)

// CLIError is an error that carries an exit code. The CLI layer
// translates it into the process exit status.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// NewCLIErrorf creates a new CLIError with a formatted message.
func NewCLIErrorf(code ExitCode, format string, args ...interface{}) *CLIError {
	return &CLIError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
