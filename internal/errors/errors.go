package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/crewplan/internal/logger"
)

var (
	// ErrNotFound is returned when an employee, task or event does not exist
	ErrNotFound = stderrors.New("not found")
	// ErrUnschedulable marks a request that cannot be placed (weather gate, no employee)
	ErrUnschedulable = stderrors.New("unschedulable")
	// ErrOracleUnavailable wraps calendar and weather provider failures
	ErrOracleUnavailable = stderrors.New("oracle unavailable")
	// ErrConflict is returned when an employee's task set changed between read and commit
	ErrConflict = stderrors.New("concurrent modification")
	// ErrInvalidInput is returned for requests that violate model invariants
	ErrInvalidInput = stderrors.New("invalid input")
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// NotFoundf wraps ErrNotFound with a formatted description.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// Invalidf wraps ErrInvalidInput with a formatted description.
func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}

// Conflictf wraps ErrConflict with a formatted description.
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}

// Oracle wraps a provider failure so callers can degrade on ErrOracleUnavailable.
func Oracle(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %v", name, ErrOracleUnavailable, err)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
