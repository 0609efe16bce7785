package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/felixgeelhaar/blueprint/internal/errors"
	"github.com/felixgeelhaar/blueprint/internal/result"
	"github.com/felixgeelhaar/blueprint/internal/rollback"
)

// Metrics holds all Prometheus metrics for blueprint. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// Plan metrics
	PlansBuilt *prometheus.CounterVec
	PlanTasks  prometheus.Histogram

	// Run metrics
	Runs           *prometheus.CounterVec
	RunDuration    prometheus.Histogram
	RunSuccessRate prometheus.Gauge

	// Phase and task metrics
	Phases       *prometheus.CounterVec
	Tasks        *prometheus.CounterVec
	TaskDuration *prometheus.HistogramVec
	Validations  *prometheus.CounterVec

	// Rollback metrics
	Rollbacks     *prometheus.CounterVec
	RollbackFiles *prometheus.CounterVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		PlansBuilt: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blueprint_plans_built_total",
				Help: "Total number of plans built, by overall risk level",
			},
			[]string{"risk"},
		),
		PlanTasks: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "blueprint_plan_tasks",
				Help:    "Number of tasks per built plan",
				Buckets: []float64{3, 5, 10, 20, 50, 100},
			},
		),

		Runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blueprint_runs_total",
				Help: "Total number of plan executions, by outcome",
			},
			[]string{"outcome"},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "blueprint_run_duration_seconds",
				Help:    "Plan execution duration in seconds",
				Buckets: []float64{1, 10, 30, 60, 300, 900, 1800, 3600},
			},
		),
		RunSuccessRate: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "blueprint_run_success_rate",
				Help: "Task success rate of the most recent run",
			},
		),

		Phases: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blueprint_phases_total",
				Help: "Total number of attempted phases, by phase and status",
			},
			[]string{"phase", "status"},
		),
		Tasks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blueprint_tasks_total",
				Help: "Total number of tasks, by type and status",
			},
			[]string{"type", "status"},
		),
		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blueprint_task_duration_seconds",
				Help:    "Task execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		Validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blueprint_validations_total",
				Help: "Total number of criterion checks, by criterion and verdict",
			},
			[]string{"criterion", "passed"},
		),

		Rollbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blueprint_rollbacks_total",
				Help: "Total number of rollbacks, by result",
			},
			[]string{"result"},
		),
		RollbackFiles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blueprint_rollback_files_total",
				Help: "Total number of files handled by rollbacks, by action",
			},
			[]string{"action"},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blueprint_errors_total",
				Help: "Total number of recorded issues, by error code and severity",
			},
			[]string{"error_code", "severity"},
		),
	}
}

// RecordPlan records a built plan.
func (m *Metrics) RecordPlan(risk string, tasks int) {
	if m == nil {
		return
	}
	m.PlansBuilt.WithLabelValues(risk).Inc()
	m.PlanTasks.Observe(float64(tasks))
}

// RecordTask records one task outcome and its validations.
func (m *Metrics) RecordTask(t result.TaskResult) {
	if m == nil {
		return
	}
	m.Tasks.WithLabelValues(string(t.Type), string(t.Status)).Inc()
	if t.Status != result.TaskSkipped {
		m.TaskDuration.WithLabelValues(string(t.Type)).Observe(t.Duration.Seconds())
	}
	for _, v := range t.Validations {
		m.Validations.WithLabelValues(v.Criterion, strconv.FormatBool(v.Passed)).Inc()
	}
}

// RecordPhase records one phase outcome.
func (m *Metrics) RecordPhase(p result.PhaseResult) {
	if m == nil {
		return
	}
	m.Phases.WithLabelValues(p.PhaseID, string(p.Status)).Inc()
}

// RecordRun records the final outcome of a run and its issues.
func (m *Metrics) RecordRun(r *result.RunResult) {
	if m == nil || r == nil {
		return
	}
	m.Runs.WithLabelValues(RunOutcome(r)).Inc()
	m.RunDuration.Observe(r.Duration.Seconds())
	m.RunSuccessRate.Set(r.Metrics.SuccessRate)
	for _, issue := range r.Issues {
		m.Errors.WithLabelValues(string(issue.Code), string(issue.Severity)).Inc()
	}
}

// RecordRollback records a rollback report and its error, if any.
func (m *Metrics) RecordRollback(report *rollback.Report, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	m.Rollbacks.WithLabelValues(outcome).Inc()
	if report == nil {
		return
	}
	for _, f := range report.Files {
		m.RollbackFiles.WithLabelValues(string(f.Action)).Inc()
	}
}

// RecordError records an error outside of a run, such as a failed plan build.
func (m *Metrics) RecordError(err error) {
	if m == nil || err == nil {
		return
	}
	code := string(errors.CodeOf(err))
	if code == "" {
		code = "unknown"
	}
	m.Errors.WithLabelValues(code, string(errors.SeverityOf(err))).Inc()
}

// RunOutcome labels a run as success, aborted or failed.
func RunOutcome(r *result.RunResult) string {
	switch {
	case r.Success:
		return "success"
	case r.Aborted:
		return "aborted"
	default:
		return "failed"
	}
}
