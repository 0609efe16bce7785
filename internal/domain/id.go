package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// idPattern allows lowercase letters, digits and single hyphens, starting with a letter
	idPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

	maxIDLength = 100
)

// TaskID identifies a task within a plan.
type TaskID string

// PhaseID identifies a phase within a plan.
type PhaseID string

// NewTaskID creates a new TaskID value object with validation
func NewTaskID(value string) (TaskID, error) {
	id := TaskID(value)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate checks if the task ID is valid
func (t TaskID) Validate() error {
	return validateID("task", string(t))
}

// String returns the string representation
func (t TaskID) String() string {
	return string(t)
}

// Equals checks if this task ID equals another
func (t TaskID) Equals(other TaskID) bool {
	return t == other
}

// NewPhaseID creates a new PhaseID value object with validation
func NewPhaseID(value string) (PhaseID, error) {
	id := PhaseID(value)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate checks if the phase ID is valid
func (p PhaseID) Validate() error {
	return validateID("phase", string(p))
}

// String returns the string representation
func (p PhaseID) String() string {
	return string(p)
}

func validateID(kind, s string) error {
	if s == "" {
		return fmt.Errorf("%s ID cannot be empty", kind)
	}

	if len(s) > maxIDLength {
		return fmt.Errorf("%s ID %q exceeds maximum length of %d characters", kind, s, maxIDLength)
	}

	if !idPattern.MatchString(s) {
		return fmt.Errorf("%s ID %q must start with a letter and contain only lowercase letters, numbers, and hyphens", kind, s)
	}

	if strings.Contains(s, "--") {
		return fmt.Errorf("%s ID %q cannot contain consecutive hyphens", kind, s)
	}

	if strings.HasSuffix(s, "-") {
		return fmt.Errorf("%s ID %q cannot end with a hyphen", kind, s)
	}

	return nil
}
