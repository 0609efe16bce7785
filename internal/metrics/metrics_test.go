package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/felixgeelhaar/blueprint/internal/domain"
	"github.com/felixgeelhaar/blueprint/internal/errors"
	"github.com/felixgeelhaar/blueprint/internal/result"
	"github.com/felixgeelhaar/blueprint/internal/rollback"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordPlan("low", 3)
	m.RecordTask(result.TaskResult{})
	m.RecordPhase(result.PhaseResult{})
	m.RecordRun(&result.RunResult{})
	m.RecordRollback(nil, nil)
	m.RecordError(fmt.Errorf("x"))
}

func TestRecordTask(t *testing.T) {
	_, m := NewRegistry()

	m.RecordTask(result.TaskResult{
		Type:     domain.TaskImplementation,
		Status:   result.TaskFailed,
		Duration: 2 * time.Second,
		Validations: []result.ValidationResult{
			{Criterion: "compile", Passed: true},
			{Criterion: "coverage", Passed: false},
		},
	})
	m.RecordTask(result.TaskResult{Type: domain.TaskTesting, Status: result.TaskSkipped})

	if got := testutil.ToFloat64(m.Tasks.WithLabelValues("implementation", "failed")); got != 1 {
		t.Errorf("failed implementation tasks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Validations.WithLabelValues("coverage", "false")); got != 1 {
		t.Errorf("failed coverage checks = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.TaskDuration); got != 1 {
		t.Errorf("task duration series = %d, want 1 (skipped tasks are not timed)", got)
	}
}

func TestRecordRunAndRollback(t *testing.T) {
	_, m := NewRegistry()

	run := &result.RunResult{
		Aborted: true,
		Metrics: result.Metrics{SuccessRate: 0.25},
		Issues: []result.Issue{
			result.NewIssue(errors.NewRollbackFailure("op", fmt.Errorf("x")), "", ""),
		},
	}
	m.RecordRun(run)
	m.RecordRollback(&rollback.Report{Files: []rollback.FileReport{
		{Action: rollback.ActionRemoved}, {Action: rollback.ActionRemoved}, {Action: rollback.ActionFailed},
	}}, fmt.Errorf("partial"))

	if got := testutil.ToFloat64(m.Runs.WithLabelValues("aborted")); got != 1 {
		t.Errorf("aborted runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RunSuccessRate); got != 0.25 {
		t.Errorf("success rate gauge = %v, want 0.25", got)
	}
	if got := testutil.ToFloat64(m.Errors.WithLabelValues("ROLLBACK-001", "critical")); got != 1 {
		t.Errorf("rollback errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Rollbacks.WithLabelValues("failed")); got != 1 {
		t.Errorf("failed rollbacks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RollbackFiles.WithLabelValues("removed")); got != 2 {
		t.Errorf("removed files = %v, want 2", got)
	}
}

func TestRunOutcome(t *testing.T) {
	tests := map[string]*result.RunResult{
		"success": {Success: true},
		"aborted": {Aborted: true},
		"failed":  {},
	}
	for want, run := range tests {
		if got := RunOutcome(run); got != want {
			t.Errorf("RunOutcome() = %s, want %s", got, want)
		}
	}
}

func TestWriteTextfile(t *testing.T) {
	reg, m := NewRegistry()
	m.RecordPlan("medium", 7)

	path := filepath.Join(t.TempDir(), "blueprint.prom")
	if err := WriteTextfile(reg, path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `blueprint_plans_built_total{risk="medium"} 1`) {
		t.Errorf("textfile missing plan counter:\n%s", data)
	}
}
