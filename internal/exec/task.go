package exec

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/felixgeelhaar/blueprint/internal/checkpoint"
	"github.com/felixgeelhaar/blueprint/internal/domain"
	"github.com/felixgeelhaar/blueprint/internal/errors"
	"github.com/felixgeelhaar/blueprint/internal/plan"
	"github.com/felixgeelhaar/blueprint/internal/result"
	"github.com/felixgeelhaar/blueprint/internal/telemetry"
)

const (
	detailsMissing        = "validator returned no result for this criterion"
	detailsValidatorError = "validator failed"
)

// runTask dispatches t to its collaborator, validates the artifacts and
// records the outcome.
func (e *Engine) runTask(ctx context.Context, r *run, phaseID string, t plan.Task) result.TaskResult {
	tr := result.TaskResult{
		TaskID:    t.ID,
		PhaseID:   phaseID,
		Type:      t.Type,
		StartedAt: e.now(),
	}
	ctx, span := telemetry.StartTaskSpan(ctx, e.tracer, t.ID, t.Type)
	logger := r.log.With("phase_id", phaseID, "task_id", t.ID)

	if r.journal != nil {
		r.journal.UpdateTask(t.ID, phaseID, checkpoint.StatusRunning, nil)
	}

	artifacts, err := e.dispatch(ctx, r, t)
	if err != nil {
		err = errors.NewTaskExecutionError(t.ID, err)
		telemetry.RecordError(span, err)
		logger.WithError(err).WarnContext(ctx, "task failed")
		tr.Issues = append(tr.Issues, result.NewIssue(err, phaseID, t.ID))
	}

	tr.Artifacts = artifacts
	for _, a := range artifacts {
		if !r.ws.Tracked(a) {
			untracked := errors.Newf(errors.ErrCodeFileWriteFailed,
				"artifact %s was not written through the workspace; rollback cannot restore it", a).
				WithSeverity(errors.SeverityMedium)
			tr.Issues = append(tr.Issues, result.NewIssue(untracked, phaseID, t.ID))
		}
	}
	r.outputs.add(artifacts...)

	passed := err == nil
	if err == nil {
		var vErr error
		tr.Validations, vErr = e.validate(ctx, r, phaseID, t, artifacts)
		if vErr != nil {
			vErr = errors.NewTaskExecutionError(t.ID, vErr)
			telemetry.RecordError(span, vErr)
			tr.Issues = append(tr.Issues, result.NewIssue(vErr, phaseID, t.ID))
		}
		for _, v := range tr.Validations {
			if v.Passed {
				continue
			}
			passed = false
			failure := errors.NewValidationFailure(t.ID, v.Criterion, v.Details)
			tr.Issues = append(tr.Issues, result.NewIssue(failure, phaseID, t.ID))
		}
	}

	tr.Status = result.TaskFailed
	if passed {
		tr.Status = result.TaskCompleted
	}
	tr.Duration = e.now().Sub(tr.StartedAt)

	e.recordTask(r, tr, err)
	telemetry.EndTaskSpan(span, tr)
	e.emitTask(ctx, r, tr)
	logger.DebugContext(ctx, "task finished",
		"status", tr.Status,
		"artifacts", len(tr.Artifacts),
		"duration", tr.Duration,
	)
	return tr
}

// skipTask records a task that was never started.
func (e *Engine) skipTask(ctx context.Context, r *run, phaseID string, t plan.Task, reason string) result.TaskResult {
	err := errors.Newf(errors.ErrCodeTaskSkipped, "task %s skipped: %s", t.ID, reason)
	tr := result.TaskResult{
		TaskID:    t.ID,
		PhaseID:   phaseID,
		Type:      t.Type,
		Status:    result.TaskSkipped,
		Issues:    []result.Issue{result.NewIssue(err, phaseID, t.ID)},
		StartedAt: e.now(),
	}
	r.log.Debug("task skipped", "phase_id", phaseID, "task_id", t.ID, "reason", reason)
	e.recordTask(r, tr, err)
	e.emitTask(ctx, r, tr)
	return tr
}

func (e *Engine) recordTask(r *run, tr result.TaskResult, err error) {
	e.metrics.RecordTask(tr)
	if r.journal == nil {
		return
	}
	for _, a := range tr.Artifacts {
		r.journal.AddArtifact(tr.TaskID, a)
	}
	r.journal.UpdateTask(tr.TaskID, tr.PhaseID, string(tr.Status), err)
	e.saveJournal(r)
}

// dispatch routes t to the collaborator for its type. Collaborator panics
// are recovered into errors.
func (e *Engine) dispatch(ctx context.Context, r *run, t plan.Task) (artifacts []string, err error) {
	defer e.recoverPanic(&err, t.ID)

	switch t.Type {
	case domain.TaskImplementation:
		if e.codeGen == nil {
			return nil, errors.NewConfigurationError("execution.code_generator", "not configured")
		}
		return e.codeGen.Generate(ctx, t, r.spec, r.ws)

	case domain.TaskTesting:
		if e.testGen == nil {
			return nil, errors.NewConfigurationError("execution.test_generator", "not configured")
		}
		opts := TestSuiteOptions{
			Framework: e.cfg.TestFramework,
			TestTypes: testTypesFor(t),
			Coverage:  t.Criteria.MinCoverage,
		}
		suite, err := e.testGen.GenerateTestSuite(ctx, r.outputs.list(), opts, r.ws)
		if err != nil || suite == nil {
			return nil, err
		}
		for _, test := range suite.Tests {
			if test.TestFile != "" {
				artifacts = append(artifacts, test.TestFile)
			}
		}
		return artifacts, nil

	default:
		// analysis, design and documentation tasks do not touch the workspace
		return nil, nil
	}
}

func testTypesFor(t plan.Task) []string {
	if t.ID == "system-integration" {
		return []string{"integration"}
	}
	return []string{"unit", "integration"}
}

// validate records exactly one result per criterion of t, in criteria order.
func (e *Engine) validate(ctx context.Context, r *run, phaseID string, t plan.Task, artifacts []string) (out []result.ValidationResult, err error) {
	criteria := t.Criteria.Criteria()
	if len(criteria) == 0 {
		return nil, nil
	}

	if e.validator == nil {
		for _, c := range criteria {
			out = append(out, result.ValidationResult{
				Criterion: c.Name,
				Passed:    true,
				Details:   result.DetailsUnvalidated,
			})
		}
		return out, nil
	}

	got, err := func() (res []result.ValidationResult, err error) {
		defer e.recoverPanic(&err, t.ID)
		return e.validator.Validate(ctx, criteria, artifacts, ValidationContext{
			OperationID: r.opID,
			PhaseID:     phaseID,
			Task:        t,
			Root:        r.ws.Root(),
		})
	}()

	byName := make(map[string]result.ValidationResult, len(got))
	for _, v := range got {
		if _, dup := byName[v.Criterion]; !dup {
			byName[v.Criterion] = v
		}
	}

	for _, c := range criteria {
		v, ok := byName[c.Name]
		switch {
		case err != nil:
			v = result.ValidationResult{Criterion: c.Name, Details: detailsValidatorError}
		case !ok:
			v = result.ValidationResult{Criterion: c.Name, Details: detailsMissing}
		}
		out = append(out, v)
	}
	return out, err
}

// recoverPanic turns a collaborator panic into an error. It must be
// deferred directly.
func (e *Engine) recoverPanic(err *error, taskID string) {
	if rec := recover(); rec != nil {
		e.logger.Error("collaborator panicked", "task_id", taskID, "panic", rec, "stack", string(debug.Stack()))
		*err = fmt.Errorf("collaborator panicked: %v", rec)
	}
}
