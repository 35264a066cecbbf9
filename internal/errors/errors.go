// Package errors provides standardized error types for the projctl CLI tool.
//
// The errors package defines domain-specific error types that enable
// structured error handling and consistent error messages throughout
// the application. Underlying causes are wrapped with a stack trace via
// cockroachdb/errors so that verbose mode can print where a failure started.
//
// # Error Types
//
// Error is the primary error type, containing:
//   - Code: Categorizes the error (USAGE, VALIDATION, EXTERNAL_TOOL, etc.)
//   - Message: Human-readable error description
//   - Subject: The project or service involved (if applicable)
//   - Err: The underlying wrapped error (if any)
//
// # Sentinel Errors
//
// Common error scenarios have pre-defined sentinel errors:
//
//	errors.ErrUsage           // missing or malformed CLI arguments
//	errors.ErrInvalidSpec     // project/service spec failed validation
//	errors.ErrExternalTool    // docker, nginx or another tool exited non-zero
//	errors.ErrProjectNotFound // project directory has no project.yaml
//
// # Usage
//
//	// Validation error
//	return errors.InvalidSpec("port must be between 1 and 65535")
//
//	// External command failed
//	return errors.ExternalTool("docker stack deploy", output, err)
//
// # Error Checking
//
// Use errors.Is for sentinel error comparison (matched by code):
//
//	if errors.Is(err, errors.ErrInvalidSpec) {
//	    // Handle validation failure
//	}
package errors

import (
	"fmt"
	"strings"

	cerr "github.com/cockroachdb/errors"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeUsage         ErrorCode = "USAGE"          // Missing/invalid CLI arguments
	ErrCodeValidation    ErrorCode = "VALIDATION"     // Spec validation failed (InvalidSpec)
	ErrCodeExternalTool  ErrorCode = "EXTERNAL_TOOL"  // Wrapped command exited non-zero
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"      // Project or service not found
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS" // Project already exists
	ErrCodeConfig        ErrorCode = "CONFIG"         // Configuration error
	ErrCodeStorage       ErrorCode = "STORAGE"        // Filesystem read/write failed
	ErrCodeInternal      ErrorCode = "INTERNAL"       // Internal/unexpected error
)

// Error represents a structured error with context about the operation.
type Error struct {
	Code    ErrorCode // Error category
	Message string    // Human-readable message
	Subject string    // Project or service name (if applicable)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Subject != "" {
		if msg == "" {
			msg = e.Subject
		} else {
			msg = fmt.Sprintf("%s: %s", e.Subject, msg)
		}
	}
	if e.Err != nil {
		if msg == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors for common error scenarios.
// Use these with errors.Is() for error checking.
var (
	// ErrUsage indicates missing or malformed command-line arguments.
	ErrUsage = &Error{Code: ErrCodeUsage, Message: "usage error"}

	// ErrInvalidSpec indicates a project or service spec failed validation.
	ErrInvalidSpec = &Error{Code: ErrCodeValidation, Message: "invalid spec"}

	// ErrExternalTool indicates a wrapped system command exited non-zero.
	ErrExternalTool = &Error{Code: ErrCodeExternalTool, Message: "external tool failed"}

	// ErrProjectNotFound indicates the requested project does not exist.
	ErrProjectNotFound = &Error{Code: ErrCodeNotFound, Message: "project not found"}

	// ErrProjectExists indicates a project with the same name already exists.
	ErrProjectExists = &Error{Code: ErrCodeAlreadyExists, Message: "project already exists"}

	// ErrConfigInvalid indicates the configuration is invalid or unreadable.
	ErrConfigInvalid = &Error{Code: ErrCodeConfig, Message: "invalid configuration"}

	// ErrStorage indicates a filesystem operation failed.
	ErrStorage = &Error{Code: ErrCodeStorage, Message: "storage error"}
)

// Usage creates a usage error with a custom message.
func Usage(msg string) error {
	return cerr.WithHint(&Error{
		Code:    ErrCodeUsage,
		Message: msg,
	}, "run with --help to see the expected arguments")
}

// InvalidSpec creates a validation error with a custom message.
func InvalidSpec(msg string) error {
	return &Error{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// InvalidSpecf creates a validation error with a formatted message.
func InvalidSpecf(format string, args ...interface{}) error {
	return InvalidSpec(fmt.Sprintf(format, args...))
}

// ExternalTool creates an error for a command that exited non-zero.
// The last non-empty line of the command output is kept as the message
// detail; the full output is attached as a hint.
func ExternalTool(command string, output []byte, err error) error {
	e := &Error{
		Code:    ErrCodeExternalTool,
		Message: fmt.Sprintf("%s failed", command),
		Err:     cerr.WithStack(err),
	}
	if summary := lastLine(string(output)); summary != "" {
		e.Message = fmt.Sprintf("%s failed (%s)", command, summary)
		return cerr.WithHint(e, strings.TrimSpace(string(output)))
	}
	return e
}

// ProjectNotFound creates an error for a project that doesn't exist.
func ProjectNotFound(name string) error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: "project not found",
		Subject: name,
	}
}

// ServiceNotFound creates an error for a service missing from a project.
func ServiceNotFound(project, service string) error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("service %s not found", service),
		Subject: project,
	}
}

// ProjectExists creates an error for a project that already exists.
func ProjectExists(name string) error {
	return &Error{
		Code:    ErrCodeAlreadyExists,
		Message: "project already exists",
		Subject: name,
	}
}

// ServiceNameTaken creates an error for a service name already used by
// another project. Swarm registers every service under its short name on
// the shared network, so the name must be unique across projects.
func ServiceNameTaken(service, owner string) error {
	return cerr.WithHint(&Error{
		Code:    ErrCodeAlreadyExists,
		Message: fmt.Sprintf("service name already used by project %s", owner),
		Subject: service,
	}, "service names resolve across all stacks on the proxy network; choose another name")
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &Error{
		Code:    code,
		Message: msg,
		Err:     cerr.WithStack(err),
	}
}

// WrapSubject creates an error with subject context and underlying error.
func WrapSubject(code ErrorCode, subject string, err error) error {
	return &Error{
		Code:    code,
		Subject: subject,
		Err:     cerr.WithStack(err),
	}
}

// Hints returns the user-facing hints attached anywhere in err's chain.
func Hints(err error) []string {
	return cerr.GetAllHints(err)
}

// CodeOf returns the code of the first *Error in err's chain, or
// ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of cockroachdb/errors.Is for convenience.
var Is = cerr.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of cockroachdb/errors.As for convenience.
var As = cerr.As
