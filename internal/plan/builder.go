package plan

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/blueprint/internal/config"
	"github.com/felixgeelhaar/blueprint/internal/domain"
	"github.com/felixgeelhaar/blueprint/internal/errors"
	"github.com/felixgeelhaar/blueprint/internal/log"
	"github.com/felixgeelhaar/blueprint/internal/spec"
)

// Risk probabilities and the mean-probability buckets for the overall level.
const (
	highComplexityProbability  = 0.7
	integrationRiskProbability = 0.6

	overallHighThreshold   = 0.7
	overallMediumThreshold = 0.4
)

// Builder expands an enriched specification into a three-phase plan.
type Builder struct {
	cfg    config.PlannerConfig
	now    func() time.Time
	newID  func() string
	logger *log.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock sets the clock used for CreatedAt and the timeline.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithIDGenerator sets the plan id generator.
func WithIDGenerator(newID func() string) Option {
	return func(b *Builder) { b.newID = newID }
}

// WithLogger sets the builder's logger.
func WithLogger(l *log.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder creates a Builder.
func NewBuilder(cfg config.PlannerConfig, opts ...Option) *Builder {
	b := &Builder{
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = log.OrDefault(b.logger)
	return b
}

// Build creates the plan for s. The same specification and snapshot always
// produce the same phases and tasks. The returned plan has been validated
// and its phase order resolved; a dependency cycle is returned as an error.
func (b *Builder) Build(ctx context.Context, s *spec.Specification, snapshot ArchitecturalSnapshot) (*Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New(errors.ErrCodeSpecInvalid, "specification is required")
	}
	if err := s.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSpecInvalid, "invalid specification", err)
	}

	hash, err := spec.Fingerprint(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSpecMarshal, "fingerprint specification", err)
	}

	phases := []Phase{
		b.analysisPhase(s),
		b.implementationPhase(s),
		b.integrationPhase(s),
	}

	p := &Plan{
		ID:        b.newID(),
		SpecHash:  hash,
		Title:     s.Title,
		CreatedAt: b.now().UTC(),
		Phases:    phases,
		Dependencies: []PhaseDependency{
			{From: PhaseAnalysis, To: PhaseImplementation, Type: DependencyBlocking},
			{From: PhaseImplementation, To: PhaseIntegration, Type: DependencyBlocking},
		},
		Risk: b.assessRisk(s, snapshot),
	}
	p.Timeline = buildTimeline(p.CreatedAt, p.Phases)
	p.Resources = b.estimateResources(p.Phases)

	if err := p.Validate(); err != nil {
		return nil, err
	}

	b.logger.DebugContext(ctx, "plan built",
		"plan_id", p.ID,
		"phases", len(p.Phases),
		"tasks", p.TaskCount(),
		"risk", p.Risk.Level,
	)

	return p, nil
}

func (b *Builder) analysisPhase(s *spec.Specification) Phase {
	return Phase{
		ID:          PhaseAnalysis,
		Name:        "Analysis & Design",
		Description: fmt.Sprintf("Analyze the requirements of %q and design the architecture", s.Title),
		Tasks: []Task{
			{
				ID:   "requirements-analysis",
				Name: "Requirements Analysis",
				Type: domain.TaskAnalysis,
			},
			{
				ID:           "architecture-design",
				Name:         "Architecture Design",
				Type:         domain.TaskDesign,
				Dependencies: []string{"requirements-analysis"},
			},
		},
		Deliverables: []string{"requirements analysis", "architecture design"},
		Duration:     b.phaseDuration(s, b.cfg.AnalysisShare),
		RiskLevel:    domain.RiskLow,
	}
}

func (b *Builder) implementationPhase(s *spec.Specification) Phase {
	tasks := make([]Task, len(s.Requirements))
	for i, req := range s.Requirements {
		task := Task{
			ID:          fmt.Sprintf("impl-%d", i),
			Name:        "Implement " + summarize(req),
			Type:        domain.TaskImplementation,
			Requirement: req,
			Criteria: ValidationCriteria{
				Compile:     true,
				MinCoverage: b.cfg.ImplCoverage,
				MinQuality:  b.cfg.ImplQuality,
			},
		}
		if i > 0 {
			task.Dependencies = []string{fmt.Sprintf("impl-%d", i-1)}
		}
		tasks[i] = task
	}

	risk := domain.RiskMedium
	if s.Complexity == domain.ComplexityComplex {
		risk = domain.RiskHigh
	}

	return Phase{
		ID:           PhaseImplementation,
		Name:         "Core Implementation",
		Description:  fmt.Sprintf("Implement %d requirement(s)", len(s.Requirements)),
		Tasks:        tasks,
		Deliverables: []string{"source code"},
		Duration:     b.phaseDuration(s, b.cfg.ImplementationShare),
		DependsOn:    []string{PhaseAnalysis},
		RiskLevel:    risk,
	}
}

func (b *Builder) integrationPhase(s *spec.Specification) Phase {
	return Phase{
		ID:          PhaseIntegration,
		Name:        "Integration & Testing",
		Description: "Integrate components and verify behavior end to end",
		Tasks: []Task{
			{
				ID:       "system-integration",
				Name:     "System Integration",
				Type:     domain.TaskTesting,
				Criteria: ValidationCriteria{MinCoverage: b.cfg.IntegrationCoverage},
			},
			{
				ID:           "comprehensive-testing",
				Name:         "Comprehensive Testing",
				Type:         domain.TaskTesting,
				Dependencies: []string{"system-integration"},
				Criteria:     ValidationCriteria{MinCoverage: b.cfg.TestingCoverage},
			},
		},
		Deliverables: []string{"integration tests", "test report"},
		Duration:     b.phaseDuration(s, b.cfg.IntegrationShare),
		DependsOn:    []string{PhaseImplementation},
		RiskLevel:    domain.RiskMedium,
	}
}

func (b *Builder) phaseDuration(s *spec.Specification, share float64) time.Duration {
	hours := math.Max(s.EstimatedHours*share, b.cfg.MinPhaseHours)
	return time.Duration(math.Round(hours*3600)) * time.Second
}

func (b *Builder) assessRisk(s *spec.Specification, snapshot ArchitecturalSnapshot) RiskAssessment {
	risks := []Risk{}

	if s.Complexity == domain.ComplexityComplex {
		risks = append(risks, Risk{
			ID:          "high-complexity",
			Description: "Specification is rated complex",
			Probability: highComplexityProbability,
			Impact:      domain.RiskHigh,
			Category:    "technical",
			Mitigation:  "Split requirements into smaller increments and review the design before implementing",
		})
	}

	if smells := len(snapshot.CodeSmells); smells > b.cfg.CodeSmellThreshold {
		risks = append(risks, Risk{
			ID:          "integration-risk",
			Description: fmt.Sprintf("%d code smells detected in the existing architecture", smells),
			Probability: integrationRiskProbability,
			Impact:      domain.RiskMedium,
			Category:    "integration",
			Mitigation:  "Refactor the affected modules before integrating new code",
		})
	}

	return RiskAssessment{Level: overallRisk(risks), Risks: risks}
}

// overallRisk buckets the mean probability of risks. Impact is not weighed.
func overallRisk(risks []Risk) domain.RiskLevel {
	if len(risks) == 0 {
		return domain.RiskLow
	}
	sum := 0.0
	for _, r := range risks {
		sum += r.Probability
	}
	mean := sum / float64(len(risks))

	switch {
	case mean >= overallHighThreshold:
		return domain.RiskHigh
	case mean >= overallMediumThreshold:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

func buildTimeline(start time.Time, phases []Phase) Timeline {
	clock := start
	milestones := make([]Milestone, 0, len(phases))
	for _, ph := range phases {
		clock = clock.Add(ph.Duration)
		milestones = append(milestones, Milestone{
			PhaseID: ph.ID,
			Name:    ph.Name + " complete",
			Date:    clock,
		})
	}
	return Timeline{Start: start, End: clock, Milestones: milestones}
}

func (b *Builder) estimateResources(phases []Phase) ResourceEstimate {
	tasks := 0
	var total time.Duration
	skills := make(map[string]bool)

	for _, ph := range phases {
		tasks += len(ph.Tasks)
		total += ph.Duration
		for _, task := range ph.Tasks {
			skills[skillFor(task)] = true
		}
	}

	perDev := b.cfg.TasksPerDeveloper
	if perDev < 1 {
		perDev = 1
	}
	developers := int(math.Ceil(float64(tasks) / float64(perDev)))
	if developers < 1 {
		developers = 1
	}

	list := make([]string, 0, len(skills))
	for s := range skills {
		list = append(list, s)
	}
	sort.Strings(list)

	return ResourceEstimate{
		Developers: developers,
		TotalHours: math.Round(total.Hours()*10) / 10,
		Skills:     list,
	}
}

// skillFor assigns a skill tag based on the task type and requirement text.
func skillFor(task Task) string {
	switch task.Type {
	case domain.TaskAnalysis:
		return "analysis"
	case domain.TaskDesign:
		return "architecture"
	case domain.TaskTesting:
		return "testing"
	case domain.TaskDocumentation:
		return "documentation"
	}

	text := strings.ToLower(task.Requirement)
	switch {
	case containsAny(text, "ui", "interface", "component", "page", "screen"):
		return "frontend"
	case containsAny(text, "docker", "deploy", "infrastructure"):
		return "infra"
	case containsAny(text, "database", "schema", "migration"):
		return "database"
	default:
		return "backend"
	}
}

func containsAny(text string, words ...string) bool {
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, ".,;:()")
		for _, k := range words {
			if w == k {
				return true
			}
		}
	}
	return false
}

func summarize(req string) string {
	const limit = 60
	runes := []rune(strings.TrimSpace(req))
	if len(runes) <= limit {
		return string(runes)
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
