package plan

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/felixgeelhaar/blueprint/internal/dag"
	"github.com/felixgeelhaar/blueprint/internal/domain"
	"github.com/felixgeelhaar/blueprint/internal/errors"
)

func validPlan() *Plan {
	return &Plan{
		ID: "p",
		Phases: []Phase{
			{ID: "a", RiskLevel: domain.RiskLow, Tasks: []Task{{ID: "t1", Name: "T1", Type: domain.TaskAnalysis}}},
			{ID: "b", RiskLevel: domain.RiskMedium, Tasks: []Task{
				{ID: "t2", Name: "T2", Type: domain.TaskImplementation},
				{ID: "t3", Name: "T3", Type: domain.TaskImplementation, Dependencies: []string{"t2", "t1"}},
			}},
		},
		Dependencies: []PhaseDependency{{From: "a", To: "b", Type: DependencyBlocking}},
	}
}

func TestPlanValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Plan)
		wantCode errors.ErrorCode
	}{
		{"valid", func(*Plan) {}, ""},
		{"no phases", func(p *Plan) { p.Phases = nil }, errors.ErrCodePlanInvalid},
		{"duplicate phase", func(p *Plan) { p.Phases[1].ID = "a" }, errors.ErrCodePlanInvalid},
		{"duplicate task across phases", func(p *Plan) { p.Phases[1].Tasks[0].ID = "t1" }, errors.ErrCodePlanInvalid},
		{"bad task type", func(p *Plan) { p.Phases[0].Tasks[0].Type = "deploy" }, errors.ErrCodePlanInvalid},
		{"bad risk level", func(p *Plan) { p.Phases[0].RiskLevel = "extreme" }, errors.ErrCodePlanInvalid},
		{"bad coverage", func(p *Plan) { p.Phases[1].Tasks[0].Criteria.MinCoverage = 1.5 }, errors.ErrCodePlanInvalid},
		{"unknown dependency type", func(p *Plan) { p.Dependencies[0].Type = "eventual" }, errors.ErrCodePlanInvalid},
		{"unknown task dependency", func(p *Plan) { p.Phases[1].Tasks[1].Dependencies = []string{"t9"} }, errors.ErrCodePlanUnknownNode},
		{"unknown phase in dependency", func(p *Plan) { p.Dependencies[0].From = "z" }, errors.ErrCodePlanUnknownNode},
		{"task cycle", func(p *Plan) { p.Phases[1].Tasks[0].Dependencies = []string{"t3"} }, errors.ErrCodePlanCyclicDep},
		{"phase cycle", func(p *Plan) { p.Phases[0].DependsOn = []string{"b"} }, errors.ErrCodePlanCyclicDep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPlan()
			tt.mutate(p)
			err := p.Validate()
			if got := errors.CodeOf(err); got != tt.wantCode {
				t.Errorf("Validate() error = %v, want code %q", err, tt.wantCode)
			}
			if tt.wantCode == "" && err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestExecutionOrderMergesDependsOn(t *testing.T) {
	p := &Plan{Phases: []Phase{
		{ID: "c", DependsOn: []string{"b"}},
		{ID: "b"},
		{ID: "a"},
	}, Dependencies: []PhaseDependency{{From: "a", To: "b"}}}

	order, err := p.ExecutionOrder()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(order, want) {
		t.Errorf("ExecutionOrder() = %v, want %v", order, want)
	}
}

func TestExecutionOrderCycle(t *testing.T) {
	p := &Plan{
		Phases: []Phase{{ID: "A"}, {ID: "B"}},
		Dependencies: []PhaseDependency{
			{From: "B", To: "A", Type: DependencyBlocking},
			{From: "A", To: "B", Type: DependencyBlocking},
		},
	}

	order, err := p.ExecutionOrder()
	if order != nil {
		t.Errorf("ExecutionOrder() returned %v for a cyclic plan", order)
	}
	var cycle *dag.CycleError
	if !stderrors.As(err, &cycle) {
		t.Fatalf("ExecutionOrder() error = %v, want cycle", err)
	}
}

func TestCriteria(t *testing.T) {
	if got := (ValidationCriteria{}).Criteria(); len(got) != 0 {
		t.Errorf("empty criteria = %v", got)
	}
	got := ValidationCriteria{MinCoverage: 0.9}.Criteria()
	if len(got) != 1 || got[0].Name != CriterionCoverage || got[0].Threshold != 0.9 {
		t.Errorf("coverage-only criteria = %v", got)
	}
}
