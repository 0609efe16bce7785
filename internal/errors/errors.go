package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error codes
const (
	// Spec errors (SPEC-001 to SPEC-099)
	ErrCodeSpecNotFound  ErrorCode = "SPEC-001"
	ErrCodeSpecInvalid   ErrorCode = "SPEC-002"
	ErrCodeSpecUnmarshal ErrorCode = "SPEC-003"
	ErrCodeSpecMarshal   ErrorCode = "SPEC-004"
	ErrCodeSpecParse     ErrorCode = "SPEC-005"

	// Config errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigMissing ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid ErrorCode = "CONFIG-002"
	ErrCodeConfigLoad    ErrorCode = "CONFIG-003"

	// Plan errors (PLAN-001 to PLAN-099)
	ErrCodePlanNotFound      ErrorCode = "PLAN-001"
	ErrCodePlanInvalid       ErrorCode = "PLAN-002"
	ErrCodePlanDriftDetected ErrorCode = "PLAN-003"
	ErrCodePlanUnknownNode   ErrorCode = "PLAN-004"
	ErrCodePlanCyclicDep     ErrorCode = "PLAN-005"

	// Execution errors (EXEC-001 to EXEC-099)
	ErrCodeTaskFailed       ErrorCode = "EXEC-001"
	ErrCodeValidationFailed ErrorCode = "EXEC-002"
	ErrCodePhaseFailed      ErrorCode = "EXEC-003"
	ErrCodeRunAborted       ErrorCode = "EXEC-004"
	ErrCodeTaskSkipped      ErrorCode = "EXEC-005"

	// Rollback errors (ROLLBACK-001 to ROLLBACK-099)
	ErrCodeRollbackFailed  ErrorCode = "ROLLBACK-001"
	ErrCodeContextNotFound ErrorCode = "ROLLBACK-002"
	ErrCodeContextExists   ErrorCode = "ROLLBACK-003"
	ErrCodeBackupFailed    ErrorCode = "ROLLBACK-004"
	ErrCodeCommitFailed    ErrorCode = "ROLLBACK-005"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"
	ErrCodeFileMarshal     ErrorCode = "IO-006"
)

// Category groups error codes by how the caller is expected to react.
type Category string

const (
	CategoryParse         Category = "ParseError"
	CategoryConfiguration Category = "ConfigurationError"
	CategoryCycle         Category = "DependencyCycle"
	CategoryTask          Category = "TaskExecutionError"
	CategoryValidation    Category = "ValidationFailure"
	CategoryRollback      Category = "RollbackFailure"
	CategoryIO            Category = "IOError"
	CategoryInternal      Category = "InternalError"
)

// Severity ranks how much an error matters to the outcome of a run.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities, higher is worse.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// AtLeast reports whether s is as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// Error represents an enhanced error with code, category, severity and suggestions
type Error struct {
	Code        ErrorCode
	Category    Category
	Severity    Severity
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by code, so sentinel-style comparisons work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// New creates a new Error. Category and severity are derived from the code.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Category: categoryFor(code),
		Severity: severityFor(code),
		Message:  message,
	}
}

// Newf creates a new Error with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new Error wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *Error {
	err := New(code, message)
	err.Cause = cause
	return err
}

// WithSuggestion adds a suggestion to the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *Error) WithSuggestions(suggestions ...string) *Error {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithSeverity overrides the severity derived from the code.
func (e *Error) WithSeverity(s Severity) *Error {
	e.Severity = s
	return e
}

// As is a re-export of the standard library helper so callers need only one import.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Is is a re-export of the standard library helper.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Join is a re-export of the standard library helper.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// CategoryOf returns the category of the first *Error in err's chain.
// Errors that carry no category are reported as internal.
func CategoryOf(err error) Category {
	var e *Error
	if stderrors.As(err, &e) && e.Category != "" {
		return e.Category
	}
	return CategoryInternal
}

// SeverityOf returns the severity of the first *Error in err's chain.
func SeverityOf(err error) Severity {
	var e *Error
	if stderrors.As(err, &e) && e.Severity != "" {
		return e.Severity
	}
	return SeverityHigh
}

func categoryFor(code ErrorCode) Category {
	switch code {
	case ErrCodeSpecParse, ErrCodeSpecInvalid, ErrCodeSpecUnmarshal:
		return CategoryParse
	case ErrCodeConfigMissing, ErrCodeConfigInvalid, ErrCodeConfigLoad:
		return CategoryConfiguration
	case ErrCodePlanCyclicDep, ErrCodePlanUnknownNode:
		return CategoryCycle
	case ErrCodeTaskFailed, ErrCodePhaseFailed, ErrCodeRunAborted, ErrCodeTaskSkipped:
		return CategoryTask
	case ErrCodeValidationFailed, ErrCodePlanDriftDetected:
		return CategoryValidation
	case ErrCodeRollbackFailed, ErrCodeContextNotFound, ErrCodeContextExists,
		ErrCodeBackupFailed, ErrCodeCommitFailed:
		return CategoryRollback
	}
	if strings.HasPrefix(string(code), "IO-") {
		return CategoryIO
	}
	return CategoryInternal
}

func severityFor(code ErrorCode) Severity {
	switch code {
	case ErrCodeSpecParse, ErrCodeConfigMissing, ErrCodeTaskSkipped:
		return SeverityLow
	case ErrCodeValidationFailed, ErrCodePlanDriftDetected, ErrCodeConfigInvalid, ErrCodeConfigLoad:
		return SeverityMedium
	case ErrCodeRollbackFailed, ErrCodeRunAborted:
		return SeverityCritical
	default:
		return SeverityHigh
	}
}

// Common error constructors for frequently used errors

// NewSpecNotFoundError creates a spec file not found error
func NewSpecNotFoundError(path string) *Error {
	return New(ErrCodeSpecNotFound, fmt.Sprintf("specification file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Pass a YAML, JSON or plain-text specification")
}

// NewParseError creates a recoverable text parsing error.
func NewParseError(details string) *Error {
	return New(ErrCodeSpecParse, fmt.Sprintf("specification text parsed with fallbacks: %s", details)).
		WithSuggestion("Label sections with 'requirements:' and list one requirement per bullet")
}

// NewConfigurationError creates a configuration error for a missing or invalid setting.
func NewConfigurationError(setting, details string) *Error {
	return New(ErrCodeConfigMissing, fmt.Sprintf("configuration %s: %s", setting, details)).
		WithSuggestion("Continuing with defaults; results may be unvalidated")
}

// NewCycleError creates a dependency cycle error naming one node on the cycle.
func NewCycleError(node string, path []string) *Error {
	msg := fmt.Sprintf("dependency cycle detected at %q", node)
	if len(path) > 0 {
		msg += fmt.Sprintf(": %s", strings.Join(path, " -> "))
	}
	return New(ErrCodePlanCyclicDep, msg).
		WithSuggestion("Remove one of the edges on the cycle so the phase graph is acyclic")
}

// NewTaskExecutionError wraps a collaborator failure for a task.
func NewTaskExecutionError(taskID string, cause error) *Error {
	return Wrap(ErrCodeTaskFailed, fmt.Sprintf("task %s failed", taskID), cause)
}

// NewValidationFailure records an artifact that did not pass a criterion.
func NewValidationFailure(taskID, criterion, details string) *Error {
	msg := fmt.Sprintf("task %s failed %s validation", taskID, criterion)
	if details != "" {
		msg += ": " + details
	}
	return New(ErrCodeValidationFailed, msg)
}

// NewRollbackFailure records a best-effort rollback that did not fully restore the workspace.
func NewRollbackFailure(operationID string, cause error) *Error {
	return Wrap(ErrCodeRollbackFailed, fmt.Sprintf("rollback of operation %s incomplete", operationID), cause).
		WithSuggestion("Inspect the listed artifacts and restore them manually")
}

// NewPlanDriftError creates a plan drift detection error
func NewPlanDriftError(expectedHash string, actualHash string) *Error {
	return New(ErrCodePlanDriftDetected, "plan was built from a different specification").
		WithSuggestion("Rebuild the plan with 'blueprint plan create'").
		WithSuggestion(fmt.Sprintf("Expected hash: %s, got: %s", expectedHash, actualHash))
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *Error {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *Error {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
