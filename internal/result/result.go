// Package result holds the outcome records of a plan execution.
package result

import (
	"time"

	"github.com/felixgeelhaar/blueprint/internal/domain"
	"github.com/felixgeelhaar/blueprint/internal/errors"
)

// TaskStatus is the outcome of a single task.
type TaskStatus string

const (
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskSkipped   TaskStatus = "skipped"
)

// PhaseStatus is the outcome of a phase.
type PhaseStatus string

const (
	PhaseCompleted PhaseStatus = "completed"
	PhasePartial   PhaseStatus = "partial"
	PhaseFailed    PhaseStatus = "failed"
)

// DetailsUnvalidated marks results recorded without a validator.
const DetailsUnvalidated = "unvalidated"

// ValidationResult is the verdict for one criterion of one task.
type ValidationResult struct {
	Criterion string  `json:"criterion"`
	Passed    bool    `json:"passed"`
	Score     float64 `json:"score,omitempty"`
	Details   string  `json:"details,omitempty"`
	Artifact  string  `json:"artifact,omitempty"`
}

// Measured reports whether the score came from a real validation.
func (v ValidationResult) Measured() bool {
	return v.Details != DetailsUnvalidated
}

// Issue is a typed error record collected during a run.
type Issue struct {
	Code     errors.ErrorCode `json:"code"`
	Category errors.Category  `json:"category"`
	Severity errors.Severity  `json:"severity"`
	Message  string           `json:"message"`
	PhaseID  string           `json:"phase_id,omitempty"`
	TaskID   string           `json:"task_id,omitempty"`
}

// NewIssue converts an error into an Issue, taking code, category and
// severity from the first coded error in its chain.
func NewIssue(err error, phaseID, taskID string) Issue {
	issue := Issue{
		Code:     errors.CodeOf(err),
		Category: errors.CategoryOf(err),
		Severity: errors.SeverityOf(err),
		Message:  err.Error(),
		PhaseID:  phaseID,
		TaskID:   taskID,
	}
	var coded *errors.Error
	if errors.As(err, &coded) {
		issue.Message = coded.Message
		if coded.Cause != nil {
			issue.Message += ": " + coded.Cause.Error()
		}
	}
	return issue
}

// TaskResult records the outcome of one task.
type TaskResult struct {
	TaskID      string             `json:"task_id"`
	PhaseID     string             `json:"phase_id"`
	Type        domain.TaskType    `json:"type"`
	Status      TaskStatus         `json:"status"`
	Validations []ValidationResult `json:"validations,omitempty"`
	Artifacts   []string           `json:"artifacts,omitempty"`
	Issues      []Issue            `json:"issues,omitempty"`
	StartedAt   time.Time          `json:"started_at"`
	Duration    time.Duration      `json:"duration"`
}

// PhaseResult records the outcome of one attempted phase.
type PhaseResult struct {
	PhaseID         string           `json:"phase_id"`
	Status          PhaseStatus      `json:"status"`
	RiskLevel       domain.RiskLevel `json:"risk_level"`
	Tasks           []TaskResult     `json:"tasks"`
	CompletionRatio float64          `json:"completion_ratio"`
	Duration        time.Duration    `json:"duration"`
}

// Counts returns the number of completed, failed and skipped tasks.
func (p PhaseResult) Counts() (completed, failed, skipped int) {
	for _, t := range p.Tasks {
		switch t.Status {
		case TaskCompleted:
			completed++
		case TaskFailed:
			failed++
		case TaskSkipped:
			skipped++
		}
	}
	return completed, failed, skipped
}

// Metrics summarizes a run.
type Metrics struct {
	TotalTasks       int     `json:"total_tasks"`
	CompletedTasks   int     `json:"completed_tasks"`
	FailedTasks      int     `json:"failed_tasks"`
	SkippedTasks     int     `json:"skipped_tasks"`
	PhasesAttempted  int     `json:"phases_attempted"`
	PhasesCompleted  int     `json:"phases_completed"`
	SuccessRate      float64 `json:"success_rate"`
	AverageCoverage  float64 `json:"average_coverage,omitempty"`
	AverageQuality   float64 `json:"average_quality,omitempty"`
	CoverageMeasured bool    `json:"coverage_measured"`
	QualityMeasured  bool    `json:"quality_measured"`
	ArtifactCount    int     `json:"artifact_count"`
}

// RunResult is the final record of one plan execution.
type RunResult struct {
	OperationID     string        `json:"operation_id"`
	PlanID          string        `json:"plan_id"`
	Success         bool          `json:"success"`
	Aborted         bool          `json:"aborted"`
	AbortedAfter    string        `json:"aborted_after,omitempty"`
	RolledBack      bool          `json:"rolled_back"`
	Unvalidated     bool          `json:"unvalidated,omitempty"`
	Phases          []PhaseResult `json:"phases"`
	Metrics         Metrics       `json:"metrics"`
	Artifacts       []string      `json:"artifacts"`
	Issues          []Issue       `json:"issues"`
	Recommendations []string      `json:"recommendations"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration"`
}

// AddIssue appends an issue converted from err.
func (r *RunResult) AddIssue(err error, phaseID, taskID string) {
	r.Issues = append(r.Issues, NewIssue(err, phaseID, taskID))
}

// ProducedArtifacts returns every artifact of every attempted task in
// execution order, without duplicates. The slice is empty, not nil, when
// nothing was produced.
func (r *RunResult) ProducedArtifacts() []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, ph := range r.Phases {
		for _, t := range ph.Tasks {
			for _, a := range t.Artifacts {
				if !seen[a] {
					seen[a] = true
					out = append(out, a)
				}
			}
		}
	}
	return out
}

// CountSeverity returns how many issues of the run are at least as severe as s.
func (r *RunResult) CountSeverity(s errors.Severity) int {
	return CountSeverity(r.Issues, s)
}

// CountSeverity returns how many of issues are at least as severe as s.
func CountSeverity(issues []Issue, s errors.Severity) int {
	n := 0
	for _, issue := range issues {
		if issue.Severity.AtLeast(s) {
			n++
		}
	}
	return n
}
