package exec

import (
	"context"

	"github.com/felixgeelhaar/blueprint/internal/hooks"
	"github.com/felixgeelhaar/blueprint/internal/metrics"
	"github.com/felixgeelhaar/blueprint/internal/result"
)

// emit triggers the hooks registered for ev. Hook failures are logged and
// never change the run. Hooks still see events after the run's context is
// cancelled.
func (e *Engine) emit(ctx context.Context, r *run, ev *hooks.Event) {
	if !e.hooks.HasHooksFor(ev.Type) {
		return
	}
	for _, f := range hooks.Failures(e.hooks.Trigger(context.WithoutCancel(ctx), ev)) {
		r.log.Warn("hook failed", "hook", f.HookName, "event", string(f.EventType), "error", f.Error)
	}
}

func (e *Engine) event(r *run, t hooks.EventType) *hooks.Event {
	ev := hooks.NewEvent(t, r.opID, r.plan.ID)
	ev.Timestamp = e.now()
	return ev
}

func (e *Engine) emitTask(ctx context.Context, r *run, tr result.TaskResult) {
	t := hooks.EventTaskCompleted
	switch tr.Status {
	case result.TaskFailed:
		t = hooks.EventTaskFailed
	case result.TaskSkipped:
		t = hooks.EventTaskSkipped
	}
	ev := e.event(r, t)
	ev.PhaseID = tr.PhaseID
	ev.TaskID = tr.TaskID
	ev.Status = string(tr.Status)
	ev.Data["artifacts"] = len(tr.Artifacts)
	ev.Data["issues"] = len(tr.Issues)
	e.emit(ctx, r, ev)
}

func (e *Engine) emitPhase(ctx context.Context, r *run, pr result.PhaseResult) {
	ev := e.event(r, hooks.EventPhaseFinished)
	ev.PhaseID = pr.PhaseID
	ev.Status = string(pr.Status)
	ev.Data["completion_ratio"] = pr.CompletionRatio
	e.emit(ctx, r, ev)
}

func (e *Engine) emitRun(ctx context.Context, r *run, res *result.RunResult) {
	ev := e.event(r, hooks.EventRunFinished)
	ev.Status = metrics.RunOutcome(res)
	ev.Data["success_rate"] = res.Metrics.SuccessRate
	ev.Data["artifacts"] = len(res.Artifacts)
	ev.Data["issues"] = len(res.Issues)
	e.emit(ctx, r, ev)
}
