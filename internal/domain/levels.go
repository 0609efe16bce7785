package domain

import "fmt"

// RiskLevel is the qualitative risk attached to phases, risks and plans.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Validate checks if the risk level is one of the known values
func (r RiskLevel) Validate() error {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return nil
	default:
		return fmt.Errorf("invalid risk level %q: must be low, medium, or high", string(r))
	}
}

// String returns the string representation
func (r RiskLevel) String() string {
	return string(r)
}

// Rank returns 1 for low through 3 for high, 0 for unknown values.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	default:
		return 0
	}
}

// Complexity buckets a specification's complexity score.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Validate checks if the complexity is one of the known buckets
func (c Complexity) Validate() error {
	switch c {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex:
		return nil
	default:
		return fmt.Errorf("invalid complexity %q: must be simple, moderate, or complex", string(c))
	}
}

// String returns the string representation
func (c Complexity) String() string {
	return string(c)
}

// ComplexityFromScore buckets a score in [0,1]: simple below 0.3,
// moderate below 0.7, complex otherwise.
func ComplexityFromScore(score float64) Complexity {
	switch {
	case score < 0.3:
		return ComplexitySimple
	case score < 0.7:
		return ComplexityModerate
	default:
		return ComplexityComplex
	}
}

// TaskType determines which collaborator executes a task.
type TaskType string

const (
	TaskAnalysis       TaskType = "analysis"
	TaskDesign         TaskType = "design"
	TaskImplementation TaskType = "implementation"
	TaskTesting        TaskType = "testing"
	TaskDocumentation  TaskType = "documentation"
)

// Validate checks if the task type is one of the known values
func (t TaskType) Validate() error {
	switch t {
	case TaskAnalysis, TaskDesign, TaskImplementation, TaskTesting, TaskDocumentation:
		return nil
	default:
		return fmt.Errorf("invalid task type %q", string(t))
	}
}

// String returns the string representation
func (t TaskType) String() string {
	return string(t)
}

// Mutates reports whether tasks of this type write to the workspace.
func (t TaskType) Mutates() bool {
	return t == TaskImplementation || t == TaskTesting
}
