package plan

import (
	"time"

	"github.com/felixgeelhaar/blueprint/internal/domain"
)

// Fixed phase ids of the three-phase skeleton.
const (
	PhaseAnalysis       = "analysis"
	PhaseImplementation = "core-impl"
	PhaseIntegration    = "integration"
)

// Plan is the dependency-ordered implementation plan for one specification.
// It is read-only once built.
type Plan struct {
	ID           string            `json:"id" yaml:"id"`
	SpecHash     string            `json:"spec_hash" yaml:"spec_hash"` // blake3 fingerprint of the enriched spec
	Title        string            `json:"title" yaml:"title"`
	CreatedAt    time.Time         `json:"created_at" yaml:"created_at"`
	Phases       []Phase           `json:"phases" yaml:"phases"`
	Dependencies []PhaseDependency `json:"dependencies" yaml:"dependencies"`
	Risk         RiskAssessment    `json:"risk" yaml:"risk"`
	Timeline     Timeline          `json:"timeline" yaml:"timeline"`
	Resources    ResourceEstimate  `json:"resources" yaml:"resources"`
}

// Phase is a named stage containing ordered tasks.
type Phase struct {
	ID           string           `json:"id" yaml:"id"`
	Name         string           `json:"name" yaml:"name"`
	Description  string           `json:"description,omitempty" yaml:"description,omitempty"`
	Tasks        []Task           `json:"tasks" yaml:"tasks"`
	Deliverables []string         `json:"deliverables,omitempty" yaml:"deliverables,omitempty"`
	Duration     time.Duration    `json:"duration" yaml:"duration"`
	DependsOn    []string         `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	RiskLevel    domain.RiskLevel `json:"risk_level" yaml:"risk_level"` // high aborts the run on failure
}

// Task is an atomic unit of work within a phase.
type Task struct {
	ID           string             `json:"id" yaml:"id"`
	Name         string             `json:"name" yaml:"name"`
	Type         domain.TaskType    `json:"type" yaml:"type"`
	Requirement  string             `json:"requirement,omitempty" yaml:"requirement,omitempty"`
	Dependencies []string           `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Criteria     ValidationCriteria `json:"criteria" yaml:"criteria"`
}

// DependencyType describes how strictly a phase edge is enforced.
type DependencyType string

const (
	DependencyBlocking DependencyType = "blocking"
	DependencyParallel DependencyType = "parallel"
	DependencyOptional DependencyType = "optional"
)

// PhaseDependency states that phase From completes before phase To.
type PhaseDependency struct {
	From string         `json:"from" yaml:"from"`
	To   string         `json:"to" yaml:"to"`
	Type DependencyType `json:"type" yaml:"type"`
}

// Criterion names one check a task's artifacts must pass.
type Criterion struct {
	Name      string  `json:"name" yaml:"name"`
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

// Criterion names
const (
	CriterionCompile  = "compile"
	CriterionCoverage = "coverage"
	CriterionQuality  = "quality"
)

// ValidationCriteria declares which checks a task's artifacts must pass.
// Zero values disable a check.
type ValidationCriteria struct {
	Compile     bool    `json:"compile,omitempty" yaml:"compile,omitempty"`
	MinCoverage float64 `json:"min_coverage,omitempty" yaml:"min_coverage,omitempty"`
	MinQuality  float64 `json:"min_quality,omitempty" yaml:"min_quality,omitempty"`
}

// Criteria lists the active checks in a fixed order.
func (v ValidationCriteria) Criteria() []Criterion {
	var out []Criterion
	if v.Compile {
		out = append(out, Criterion{Name: CriterionCompile})
	}
	if v.MinCoverage > 0 {
		out = append(out, Criterion{Name: CriterionCoverage, Threshold: v.MinCoverage})
	}
	if v.MinQuality > 0 {
		out = append(out, Criterion{Name: CriterionQuality, Threshold: v.MinQuality})
	}
	return out
}

// Risk is a single plan-level risk entry.
type Risk struct {
	ID          string           `json:"id" yaml:"id"`
	Description string           `json:"description" yaml:"description"`
	Probability float64          `json:"probability" yaml:"probability"`
	Impact      domain.RiskLevel `json:"impact" yaml:"impact"`
	Category    string           `json:"category" yaml:"category"`
	Mitigation  string           `json:"mitigation" yaml:"mitigation"`
}

// RiskAssessment holds the overall level and the risks it was derived from.
type RiskAssessment struct {
	Level domain.RiskLevel `json:"level" yaml:"level"`
	Risks []Risk           `json:"risks" yaml:"risks"`
}

// Timeline places phases on the calendar.
type Timeline struct {
	Start      time.Time   `json:"start" yaml:"start"`
	End        time.Time   `json:"end" yaml:"end"`
	Milestones []Milestone `json:"milestones" yaml:"milestones"`
}

// Milestone marks the end of one phase.
type Milestone struct {
	PhaseID string    `json:"phase_id" yaml:"phase_id"`
	Name    string    `json:"name" yaml:"name"`
	Date    time.Time `json:"date" yaml:"date"`
}

// ResourceEstimate sizes the team needed for the plan.
type ResourceEstimate struct {
	Developers int      `json:"developers" yaml:"developers"`
	TotalHours float64  `json:"total_hours" yaml:"total_hours"`
	Skills     []string `json:"skills" yaml:"skills"`
}

// Smell is one finding of an external architecture analyzer.
type Smell struct {
	Kind     string `json:"kind" yaml:"kind"`
	File     string `json:"file,omitempty" yaml:"file,omitempty"`
	Line     int    `json:"line,omitempty" yaml:"line,omitempty"`
	Message  string `json:"message,omitempty" yaml:"message,omitempty"`
	Severity string `json:"severity,omitempty" yaml:"severity,omitempty"`
}

// ArchitecturalSnapshot is the analyzer output consumed by the builder.
// Only the number of smells affects the plan.
type ArchitecturalSnapshot struct {
	CodeSmells []Smell `json:"code_smells" yaml:"code_smells"`
}

// Phase returns the phase with the given id.
func (p *Plan) Phase(id string) (*Phase, bool) {
	for i := range p.Phases {
		if p.Phases[i].ID == id {
			return &p.Phases[i], true
		}
	}
	return nil, false
}

// TaskCount returns the number of tasks across all phases.
func (p *Plan) TaskCount() int {
	n := 0
	for _, ph := range p.Phases {
		n += len(ph.Tasks)
	}
	return n
}
