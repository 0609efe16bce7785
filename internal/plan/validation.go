package plan

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/blueprint/internal/dag"
	"github.com/felixgeelhaar/blueprint/internal/domain"
	"github.com/felixgeelhaar/blueprint/internal/errors"
)

// Validate checks if the Task is valid according to domain rules
func (t *Task) Validate() error {
	if _, err := domain.NewTaskID(t.ID); err != nil {
		return fmt.Errorf("invalid task ID: %w", err)
	}

	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("task %s name cannot be empty", t.ID)
	}

	if err := t.Type.Validate(); err != nil {
		return fmt.Errorf("task %s: %w", t.ID, err)
	}

	for i, depID := range t.Dependencies {
		if _, err := domain.NewTaskID(depID); err != nil {
			return fmt.Errorf("task %s dependency at index %d has invalid task ID: %w", t.ID, i, err)
		}
	}

	if t.Criteria.MinCoverage < 0 || t.Criteria.MinCoverage > 1 {
		return fmt.Errorf("task %s coverage threshold must be within [0,1], got %.2f", t.ID, t.Criteria.MinCoverage)
	}
	if t.Criteria.MinQuality < 0 || t.Criteria.MinQuality > 1 {
		return fmt.Errorf("task %s quality threshold must be within [0,1], got %.2f", t.ID, t.Criteria.MinQuality)
	}

	return nil
}

// Validate checks if the Phase is valid according to domain rules
func (ph *Phase) Validate() error {
	if _, err := domain.NewPhaseID(ph.ID); err != nil {
		return fmt.Errorf("invalid phase ID: %w", err)
	}

	if err := ph.RiskLevel.Validate(); err != nil {
		return fmt.Errorf("phase %s: %w", ph.ID, err)
	}

	if ph.Duration < 0 {
		return fmt.Errorf("phase %s duration cannot be negative", ph.ID)
	}

	for i := range ph.Tasks {
		if err := ph.Tasks[i].Validate(); err != nil {
			return fmt.Errorf("phase %s task at index %d is invalid: %w", ph.ID, i, err)
		}
	}

	return nil
}

// Validate checks the plan's structural invariants: valid phases, task ids
// unique across the plan, task dependencies that stay inside their phase,
// and acyclic phase and task graphs.
func (p *Plan) Validate() error {
	if len(p.Phases) == 0 {
		return errors.New(errors.ErrCodePlanInvalid, "plan must have at least one phase")
	}

	phaseIDs := make(map[string]bool, len(p.Phases))
	taskPhase := make(map[string]string)

	for i := range p.Phases {
		ph := &p.Phases[i]
		if err := ph.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodePlanInvalid, fmt.Sprintf("phase at index %d is invalid", i), err)
		}
		if phaseIDs[ph.ID] {
			return errors.Newf(errors.ErrCodePlanInvalid, "duplicate phase ID: %s", ph.ID)
		}
		phaseIDs[ph.ID] = true

		for _, task := range ph.Tasks {
			if owner, ok := taskPhase[task.ID]; ok {
				return errors.Newf(errors.ErrCodePlanInvalid, "task %s appears in phases %s and %s", task.ID, owner, ph.ID)
			}
			taskPhase[task.ID] = ph.ID
		}
	}

	for _, d := range p.Dependencies {
		switch d.Type {
		case DependencyBlocking, DependencyParallel, DependencyOptional, "":
		default:
			return errors.Newf(errors.ErrCodePlanInvalid, "dependency %s -> %s has unknown type %q", d.From, d.To, d.Type)
		}
	}

	for _, ph := range p.Phases {
		if err := checkTaskDependencies(ph, taskPhase); err != nil {
			return err
		}
	}

	if _, err := p.ExecutionOrder(); err != nil {
		return err
	}

	return nil
}

func checkTaskDependencies(ph Phase, taskPhase map[string]string) error {
	ids := make([]string, len(ph.Tasks))
	var edges []dag.Edge

	for i, task := range ph.Tasks {
		ids[i] = task.ID
		for _, dep := range task.Dependencies {
			owner, ok := taskPhase[dep]
			if !ok {
				return errors.Newf(errors.ErrCodePlanUnknownNode, "task %s depends on non-existent task %s", task.ID, dep)
			}
			if owner != ph.ID {
				// cross-phase ordering is already given by the phase graph
				continue
			}
			edges = append(edges, dag.Edge{From: dep, To: task.ID})
		}
	}

	if _, err := dag.Resolve(ids, edges); err != nil {
		return fmt.Errorf("phase %s tasks: %w", ph.ID, err)
	}
	return nil
}

// ExecutionOrder resolves the phase order from Dependencies and each
// phase's DependsOn.
func (p *Plan) ExecutionOrder() ([]string, error) {
	ids := make([]string, len(p.Phases))
	for i, ph := range p.Phases {
		ids[i] = ph.ID
	}

	seen := make(map[dag.Edge]bool)
	var edges []dag.Edge
	add := func(e dag.Edge) {
		if !seen[e] {
			seen[e] = true
			edges = append(edges, e)
		}
	}
	for _, d := range p.Dependencies {
		add(dag.Edge{From: d.From, To: d.To})
	}
	for _, ph := range p.Phases {
		for _, dep := range ph.DependsOn {
			add(dag.Edge{From: dep, To: ph.ID})
		}
	}

	return dag.Resolve(ids, edges)
}
