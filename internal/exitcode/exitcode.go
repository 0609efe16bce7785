package exitcode

import (
	"os"
	"strings"

	"github.com/felixgeelhaar/blueprint/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// InvalidInput indicates a specification or plan file that could not be
	// read or parsed
	InvalidInput = 3

	// DriftDetected indicates the plan was built from a different specification
	DriftDetected = 4

	// PlanInvalid indicates a structurally invalid plan, including dependency cycles
	PlanInvalid = 5

	// ConfigError indicates configuration that could not be applied
	ConfigError = 6

	// RunFailed indicates an execution that failed or was rolled back
	RunFailed = 7

	// Interrupted indicates the process was cancelled by a signal
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	code := DetermineExitCode(err)
	Exit(code)
}

// DetermineExitCode maps an error to an exit code. Coded errors are mapped
// by code and category; anything else falls back to message matching for
// the usage errors cobra produces.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	switch errors.CodeOf(err) {
	case errors.ErrCodePlanDriftDetected:
		return DriftDetected
	case errors.ErrCodePlanInvalid:
		return PlanInvalid
	case errors.ErrCodePlanNotFound, errors.ErrCodeSpecNotFound:
		return InvalidInput
	}

	switch errors.CategoryOf(err) {
	case errors.CategoryParse, errors.CategoryIO:
		return InvalidInput
	case errors.CategoryCycle:
		return PlanInvalid
	case errors.CategoryConfiguration:
		return ConfigError
	case errors.CategoryTask, errors.CategoryValidation, errors.CategoryRollback:
		return RunFailed
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown command") ||
		strings.Contains(errMsg, "unknown shorthand flag") || strings.Contains(errMsg, "invalid argument") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "accepts ") ||
		strings.Contains(errMsg, "requires at least") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case InvalidInput:
		return "Specification or plan could not be read"
	case DriftDetected:
		return "Plan drift detected"
	case PlanInvalid:
		return "Invalid plan"
	case ConfigError:
		return "Configuration error"
	case RunFailed:
		return "Execution failed"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
