// Package exitcodes provides centralized exit code definitions and error
// handling for the vup tool. Exit codes are organized in ranges to categorize
// different types of failures:
//
//	0:     Success
//	1-9:   Input/Configuration Errors (e.g., missing config file, bad flags)
//	10-19: Discovery Errors (e.g., unreadable repository tree)
//	20-29: Runtime Errors (e.g., I/O failures outside single-artifact scope)
//
// A single artifact failing to resolve or patch is never fatal and never maps
// to an exit code; the run reports it and exits zero.
package exitcodes

import (
	"errors"
	"fmt"
)

// Exit code constants organized by category.
const (
	// Success (0)
	ExitSuccess = 0

	// Input/Configuration Errors (1-9)
	ExitMissingConfig     = 1 // Update config file not found
	ExitInvalidConfig     = 2 // Config file present but unparseable
	ExitInvalidFlag       = 3 // Invalid command-line flag value
	ExitInvalidLogLevel   = 4 // Unparseable log level
	ExitConfigWriteFailed = 5 // Could not write updated config

	// Discovery Errors (10-19)
	ExitDiscoveryFailed = 10 // Repository tree walk failed

	// Runtime Errors (20-29)
	ExitGeneralRuntimeError = 20 // General runtime/system error
	ExitReportWriteFailed   = 21 // Could not write the run report
)

// ExitCodeError wraps an error with an exit code for consistent error
// handling. It propagates both error detail and the appropriate exit code up
// to main.
type ExitCodeError struct {
	Code int   // Exit code to return
	Err  error // Underlying error
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d: %v", e.Code, e.Err)
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// IsExitCodeError checks if an error is an ExitCodeError and returns its
// code. Returns false and 0 if the error is not an ExitCodeError.
func IsExitCodeError(err error) (int, bool) {
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
