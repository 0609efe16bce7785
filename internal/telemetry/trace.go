package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/blueprint/internal/domain"
	"github.com/felixgeelhaar/blueprint/internal/errors"
	"github.com/felixgeelhaar/blueprint/internal/result"
)

// InstrumentationName identifies spans emitted by the execution engine.
const InstrumentationName = "github.com/felixgeelhaar/blueprint/internal/exec"

// Tracer returns the engine tracer from the current global provider.
func Tracer() trace.Tracer {
	return GetTracerProvider().Tracer(InstrumentationName)
}

// StartCommandSpan creates a span for a CLI command.
//
//	ctx, span := telemetry.StartCommandSpan(cmd.Context(), "plan.create")
//	defer span.End()
func StartCommandSpan(ctx context.Context, cmdName string) (context.Context, trace.Span) {
	ctx, span := GetTracerProvider().Tracer("commands").Start(ctx, "command."+cmdName)
	span.SetAttributes(
		attribute.String("command", cmdName),
		attribute.String("component", "cli"),
	)
	return ctx, span
}

// StartRunSpan creates the root span of a plan execution.
//
//	ctx, span := telemetry.StartRunSpan(ctx, tracer, opID, p.ID, len(p.Phases))
//	defer telemetry.EndRunSpan(span, run)
func StartRunSpan(ctx context.Context, tracer trace.Tracer, operationID, planID string, phases int) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "run")
	span.SetAttributes(
		attribute.String("operation.id", operationID),
		attribute.String("plan.id", planID),
		attribute.Int("plan.phases", phases),
	)
	return ctx, span
}

// StartPhaseSpan creates a span for one phase.
func StartPhaseSpan(ctx context.Context, tracer trace.Tracer, phaseID string, risk domain.RiskLevel, tasks int) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "phase."+phaseID)
	span.SetAttributes(
		attribute.String("phase.id", phaseID),
		attribute.String("phase.risk", string(risk)),
		attribute.Int("phase.tasks", tasks),
	)
	return ctx, span
}

// StartTaskSpan creates a span for one task.
func StartTaskSpan(ctx context.Context, tracer trace.Tracer, taskID string, taskType domain.TaskType) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "task."+taskID)
	span.SetAttributes(
		attribute.String("task.id", taskID),
		attribute.String("task.type", string(taskType)),
	)
	return ctx, span
}

// EndTaskSpan records the task outcome and ends the span.
func EndTaskSpan(span trace.Span, t result.TaskResult) {
	span.SetAttributes(
		attribute.String("task.status", string(t.Status)),
		attribute.Int("task.artifacts", len(t.Artifacts)),
	)
	if t.Status == result.TaskFailed {
		span.SetStatus(codes.Error, "task failed")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// EndPhaseSpan records the phase outcome and ends the span.
func EndPhaseSpan(span trace.Span, p result.PhaseResult) {
	span.SetAttributes(
		attribute.String("phase.status", string(p.Status)),
		attribute.Float64("phase.completion_ratio", p.CompletionRatio),
	)
	if p.Status == result.PhaseCompleted {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, "phase "+string(p.Status))
	}
	span.End()
}

// EndRunSpan records the run verdict and ends the span.
func EndRunSpan(span trace.Span, run *result.RunResult) {
	if run != nil {
		span.SetAttributes(
			attribute.Bool("run.success", run.Success),
			attribute.Bool("run.aborted", run.Aborted),
			attribute.Bool("run.rolled_back", run.RolledBack),
			attribute.Float64("run.success_rate", run.Metrics.SuccessRate),
			attribute.Int("run.issues", len(run.Issues)),
		)
		if run.Success {
			span.SetStatus(codes.Ok, "")
		} else {
			span.SetStatus(codes.Error, "run failed")
		}
	}
	span.End()
}

// RecordError records an error in a span and sets error status.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err, trace.WithAttributes(
		attribute.String("error.code", string(errors.CodeOf(err))),
		attribute.String("error.severity", string(errors.SeverityOf(err))),
	))
	span.SetStatus(codes.Error, err.Error())
}
