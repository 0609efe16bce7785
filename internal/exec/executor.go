// Package exec runs a plan phase by phase against external generator and
// validator collaborators, and rolls the workspace back when the run fails.
package exec

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/blueprint/internal/checkpoint"
	"github.com/felixgeelhaar/blueprint/internal/config"
	"github.com/felixgeelhaar/blueprint/internal/domain"
	"github.com/felixgeelhaar/blueprint/internal/errors"
	"github.com/felixgeelhaar/blueprint/internal/hooks"
	"github.com/felixgeelhaar/blueprint/internal/log"
	"github.com/felixgeelhaar/blueprint/internal/metrics"
	"github.com/felixgeelhaar/blueprint/internal/plan"
	"github.com/felixgeelhaar/blueprint/internal/result"
	"github.com/felixgeelhaar/blueprint/internal/rollback"
	"github.com/felixgeelhaar/blueprint/internal/spec"
	"github.com/felixgeelhaar/blueprint/internal/telemetry"
)

// Options configures an Engine. Zero-valued fields get defaults.
type Options struct {
	Coordinator   *rollback.Coordinator
	CodeGenerator CodeGenerator
	TestGenerator TestGenerator
	Validator     Validator
	Aggregator    *metrics.Aggregator
	Journal       *checkpoint.Manager
	Hooks         *hooks.Registry
	Metrics       *metrics.Metrics
	Tracer        trace.Tracer
	Logger        *log.Logger
	Config        config.ExecutionConfig

	NewOperationID func() string
	Now            func() time.Time
}

// Engine executes plans. It holds no per-run state, so one Engine may run
// several plans concurrently as long as operation ids stay unique.
type Engine struct {
	coord      *rollback.Coordinator
	codeGen    CodeGenerator
	testGen    TestGenerator
	validator  Validator
	aggregator *metrics.Aggregator
	journal    *checkpoint.Manager
	hooks      *hooks.Registry
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	logger     *log.Logger
	cfg        config.ExecutionConfig
	newID      func() string
	now        func() time.Time

	// configIssues are recovered configuration errors reported on every run.
	configIssues []error
}

// New creates an Engine. Missing collaborators are configuration errors
// that do not prevent construction: without a validator criteria are
// recorded as unvalidated, and without a generator tasks of that type fail.
func New(opts Options) *Engine {
	e := &Engine{
		coord:      opts.Coordinator,
		codeGen:    opts.CodeGenerator,
		testGen:    opts.TestGenerator,
		validator:  opts.Validator,
		aggregator: opts.Aggregator,
		journal:    opts.Journal,
		hooks:      opts.Hooks,
		metrics:    opts.Metrics,
		tracer:     opts.Tracer,
		logger:     log.OrDefault(opts.Logger),
		cfg:        opts.Config,
		newID:      opts.NewOperationID,
		now:        opts.Now,
	}

	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.tracer == nil {
		e.tracer = telemetry.Tracer()
	}
	e.cfg = withExecutionDefaults(e.cfg)
	if e.coord == nil {
		e.coord = rollback.NewCoordinator(rollback.WithLogger(e.logger))
	}
	if e.aggregator == nil {
		e.aggregator = metrics.NewAggregator(e.cfg)
	}

	if e.validator == nil {
		e.configIssues = append(e.configIssues, errors.NewConfigurationError("execution.validator",
			"no validator configured; criteria are recorded as unvalidated"))
	}
	if e.codeGen == nil {
		e.configIssues = append(e.configIssues, errors.NewConfigurationError("execution.code_generator",
			"no code generator configured; implementation tasks will fail"))
	}
	if e.testGen == nil {
		e.configIssues = append(e.configIssues, errors.NewConfigurationError("execution.test_generator",
			"no test generator configured; testing tasks will fail"))
	}
	for _, err := range e.configIssues {
		e.logger.WithError(err).Warn("execution engine running degraded")
	}

	return e
}

// withExecutionDefaults fills unset fields of cfg from config.Default.
func withExecutionDefaults(cfg config.ExecutionConfig) config.ExecutionConfig {
	def := config.Default().Execution
	if cfg.MinSuccessRate <= 0 {
		cfg.MinSuccessRate = def.MinSuccessRate
	}
	if cfg.MinCoverage <= 0 {
		cfg.MinCoverage = def.MinCoverage
	}
	if cfg.MaxHighSeverityIssues <= 0 {
		cfg.MaxHighSeverityIssues = def.MaxHighSeverityIssues
	}
	if cfg.PartialThreshold <= 0 {
		cfg.PartialThreshold = def.PartialThreshold
	}
	if cfg.TestFramework == "" {
		cfg.TestFramework = def.TestFramework
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = "."
	}
	return cfg
}

// Coordinator returns the rollback coordinator used by the engine.
func (e *Engine) Coordinator() *rollback.Coordinator {
	return e.coord
}

// run carries the state of one Execute call.
type run struct {
	opID    string
	plan    *plan.Plan
	spec    *spec.Specification
	ws      *rollback.Workspace
	journal *checkpoint.State
	log     *log.Logger
	outputs *artifactLog
}

// Execute runs p. Only structural failures are returned as errors: a nil
// or invalid plan, a dependency cycle, or a rollback context that cannot
// be opened. Everything that happens while running tasks is recorded in the
// returned RunResult.
func (e *Engine) Execute(ctx context.Context, p *plan.Plan, s *spec.Specification) (*result.RunResult, error) {
	if p == nil {
		return nil, errors.New(errors.ErrCodePlanInvalid, "plan cannot be nil")
	}

	opID := e.newID()
	if err := e.coord.Start(opID, fmt.Sprintf("execute plan %s", p.ID)); err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		_ = e.coord.Commit(opID) // nothing was mutated
		e.metrics.RecordError(err)
		return nil, err
	}
	order, err := p.ExecutionOrder()
	if err != nil {
		_ = e.coord.Commit(opID)
		e.metrics.RecordError(err)
		return nil, err
	}

	ws, err := e.coord.Workspace(opID, e.cfg.WorkDir)
	if err != nil {
		_ = e.coord.Commit(opID)
		return nil, err
	}

	r := &run{
		opID:    opID,
		plan:    p,
		spec:    s,
		ws:      ws,
		log:     e.logger.With("operation_id", opID, "plan_id", p.ID),
		outputs: &artifactLog{},
	}
	res := &result.RunResult{
		OperationID:     opID,
		PlanID:          p.ID,
		Unvalidated:     e.validator == nil,
		Phases:          []result.PhaseResult{},
		Artifacts:       []string{},
		Issues:          []result.Issue{},
		Recommendations: []string{},
		StartedAt:       e.now(),
	}
	for _, err := range e.configIssues {
		res.AddIssue(err, "", "")
	}

	ctx, span := telemetry.StartRunSpan(ctx, e.tracer, opID, p.ID, len(order))
	defer telemetry.EndRunSpan(span, res)

	r.log.InfoContext(ctx, "execution started", "phases", len(order), "tasks", p.TaskCount())

	if err := e.checkDrift(p, s); err != nil {
		r.log.WithError(err).Warn("plan drift detected")
		res.AddIssue(err, "", "")
		ev := e.event(r, hooks.EventDriftDetected)
		ev.Data["error"] = err.Error()
		e.emit(ctx, r, ev)
	}

	e.openJournal(r, order)
	e.emit(ctx, r, e.event(r, hooks.EventRunStarted))

	for _, phaseID := range order {
		ph, _ := p.Phase(phaseID)

		pr := e.runPhase(ctx, r, ph)
		res.Phases = append(res.Phases, pr)
		for _, tr := range pr.Tasks {
			res.Issues = append(res.Issues, tr.Issues...)
		}
		e.metrics.RecordPhase(pr)
		e.emitPhase(ctx, r, pr)

		if ph.RiskLevel == domain.RiskHigh && pr.Status == result.PhaseFailed {
			err := errors.Newf(errors.ErrCodeRunAborted,
				"high-risk phase %s failed (%.0f%% of tasks completed); remaining phases skipped",
				ph.ID, pr.CompletionRatio*100)
			r.log.WithError(err).WarnContext(ctx, "execution aborted")
			res.Aborted = true
			res.AbortedAfter = ph.ID
			res.AddIssue(err, ph.ID, "")
			ev := e.event(r, hooks.EventRunAborted)
			ev.PhaseID = ph.ID
			ev.Status = string(pr.Status)
			e.emit(ctx, r, ev)
			break
		}
	}

	if e.aggregator.Finalize(res) {
		if err := e.coord.Commit(opID); err != nil {
			res.AddIssue(err, "", "")
		}
		res.Artifacts = res.ProducedArtifacts()
	} else {
		e.rollback(ctx, r, res)
	}

	e.aggregator.Recommend(res)
	res.Duration = e.now().Sub(res.StartedAt)

	e.closeJournal(r, res)
	e.metrics.RecordRun(res)
	e.emitRun(ctx, r, res)

	r.log.InfoContext(ctx, "execution finished",
		"success", res.Success,
		"aborted", res.Aborted,
		"rolled_back", res.RolledBack,
		"success_rate", res.Metrics.SuccessRate,
		"issues", len(res.Issues),
		"duration", res.Duration,
	)

	return res, nil
}

// checkDrift compares the fingerprint of s with the one the plan was built from.
func (e *Engine) checkDrift(p *plan.Plan, s *spec.Specification) error {
	if s == nil || p.SpecHash == "" {
		return nil
	}
	actual, err := spec.Fingerprint(s)
	if err != nil {
		return err
	}
	if actual != p.SpecHash {
		return errors.NewPlanDriftError(p.SpecHash, actual)
	}
	return nil
}

// rollback reverts the workspace. A failed rollback is recorded as a
// critical issue and the artifacts still on disk are reported as-is.
func (e *Engine) rollback(ctx context.Context, r *run, res *result.RunResult) {
	produced := res.ProducedArtifacts()

	report, err := e.coord.Rollback(r.opID)
	e.metrics.RecordRollback(report, err)
	res.RolledBack = true

	ev := e.event(r, hooks.EventRolledBack)
	ev.Status = "restored"
	if err != nil {
		ev.Status = "incomplete"
	}
	if report != nil {
		ev.Data["files"] = len(report.Files)
	}
	e.emit(ctx, r, ev)

	if err == nil {
		r.log.InfoContext(ctx, "workspace restored", "files", len(report.Files))
		res.Artifacts = []string{}
		return
	}

	telemetry.RecordError(trace.SpanFromContext(ctx), err)
	r.log.LogError(ctx, "rollback incomplete", err)
	res.AddIssue(err, "", "")

	res.Artifacts = []string{}
	for _, a := range produced {
		abs, perr := r.ws.Path(a)
		if perr != nil {
			abs = a
		}
		if _, serr := os.Lstat(abs); serr == nil {
			res.Artifacts = append(res.Artifacts, a)
		}
	}
}

func (e *Engine) openJournal(r *run, order []string) {
	if e.journal == nil {
		return
	}
	state := checkpoint.NewState(r.opID)
	state.PlanID = r.plan.ID
	state.SetMetadata("spec_hash", r.plan.SpecHash)
	state.SetMetadata("work_dir", r.ws.Root())
	for _, phaseID := range order {
		ph, _ := r.plan.Phase(phaseID)
		for _, t := range ph.Tasks {
			state.UpdateTask(t.ID, ph.ID, checkpoint.StatusPending, nil)
		}
	}
	r.journal = state
	e.saveJournal(r)
}

func (e *Engine) saveJournal(r *run) {
	if r.journal == nil {
		return
	}
	if err := e.journal.Save(r.journal); err != nil {
		r.log.WithError(err).Warn("failed to save run journal")
	}
}

func (e *Engine) closeJournal(r *run, res *result.RunResult) {
	if r.journal == nil {
		return
	}
	status := checkpoint.StatusCompleted
	switch {
	case res.RolledBack:
		status = checkpoint.StatusRolledBack
	case !res.Success:
		status = checkpoint.StatusFailed
	}
	r.journal.Finish(status)
	e.saveJournal(r)
}
