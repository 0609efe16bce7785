package exec

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/blueprint/internal/dag"
	"github.com/felixgeelhaar/blueprint/internal/plan"
	"github.com/felixgeelhaar/blueprint/internal/result"
	"github.com/felixgeelhaar/blueprint/internal/telemetry"
)

// runPhase runs the tasks of ph and derives the phase outcome.
func (e *Engine) runPhase(ctx context.Context, r *run, ph *plan.Phase) result.PhaseResult {
	start := e.now()
	ctx, span := telemetry.StartPhaseSpan(ctx, e.tracer, ph.ID, ph.RiskLevel, len(ph.Tasks))

	r.log.DebugContext(ctx, "phase started", "phase_id", ph.ID, "tasks", len(ph.Tasks), "risk", ph.RiskLevel)

	var tasks []result.TaskResult
	if e.cfg.Concurrency > 1 && len(ph.Tasks) > 1 {
		tasks = e.runConcurrent(ctx, r, ph)
	} else {
		tasks = e.runSequential(ctx, r, ph)
	}

	pr := result.PhaseResult{
		PhaseID:   ph.ID,
		RiskLevel: ph.RiskLevel,
		Tasks:     tasks,
	}
	completed, _, _ := pr.Counts()
	pr.Status, pr.CompletionRatio = phaseOutcome(completed, len(tasks), e.cfg.PartialThreshold)
	pr.Duration = e.now().Sub(start)

	telemetry.EndPhaseSpan(span, pr)
	r.log.InfoContext(ctx, "phase finished",
		"phase_id", ph.ID,
		"status", pr.Status,
		"completion_ratio", pr.CompletionRatio,
	)
	return pr
}

// phaseOutcome maps a completion count to a phase status. A phase without
// tasks is vacuously completed.
func phaseOutcome(completed, total int, partialThreshold float64) (result.PhaseStatus, float64) {
	if total == 0 {
		return result.PhaseCompleted, 1
	}
	ratio := float64(completed) / float64(total)
	switch {
	case completed == total:
		return result.PhaseCompleted, ratio
	case ratio > partialThreshold:
		return result.PhasePartial, ratio
	default:
		return result.PhaseFailed, ratio
	}
}

// runSequential runs tasks one at a time in declaration order. Once ctx is
// done the remaining tasks are skipped.
func (e *Engine) runSequential(ctx context.Context, r *run, ph *plan.Phase) []result.TaskResult {
	out := make([]result.TaskResult, 0, len(ph.Tasks))
	for _, t := range ph.Tasks {
		if err := ctx.Err(); err != nil {
			out = append(out, e.skipTask(ctx, r, ph.ID, t, "run cancelled: "+err.Error()))
			continue
		}
		out = append(out, e.runTask(ctx, r, ph.ID, t))
	}
	return out
}

// runConcurrent runs independent tasks of a phase in parallel, at most
// Concurrency at a time. A task starts once all its in-phase dependencies
// have finished and is skipped if any of them did not complete.
func (e *Engine) runConcurrent(ctx context.Context, r *run, ph *plan.Phase) []result.TaskResult {
	index := make(map[string]int, len(ph.Tasks))
	ids := make([]string, len(ph.Tasks))
	for i, t := range ph.Tasks {
		index[t.ID] = i
		ids[i] = t.ID
	}

	var edges []dag.Edge
	for _, t := range ph.Tasks {
		for _, dep := range t.Dependencies {
			if _, ok := index[dep]; ok {
				edges = append(edges, dag.Edge{From: dep, To: t.ID})
			}
		}
	}
	// Launching in dependency order guarantees every waiting task's
	// dependencies already hold a slot or have finished.
	order, err := dag.Resolve(ids, edges)
	if err != nil {
		// Plan.Validate rejects in-phase cycles before execution starts.
		return e.runSequential(ctx, r, ph)
	}

	var (
		mu   sync.Mutex
		out  = make([]result.TaskResult, len(ph.Tasks))
		done = make([]chan struct{}, len(ph.Tasks))
	)
	for i := range done {
		done[i] = make(chan struct{})
	}

	var g errgroup.Group
	g.SetLimit(e.cfg.Concurrency)

	for _, id := range order {
		i := index[id]
		t := ph.Tasks[i]
		g.Go(func() error {
			defer close(done[i])

			blocked := ""
			for _, dep := range t.Dependencies {
				j, ok := index[dep]
				if !ok {
					continue
				}
				<-done[j]
				mu.Lock()
				status := out[j].Status
				mu.Unlock()
				if status != result.TaskCompleted && blocked == "" {
					blocked = dep
				}
			}

			var tr result.TaskResult
			switch {
			case blocked != "":
				tr = e.skipTask(ctx, r, ph.ID, t, "dependency "+blocked+" did not complete")
			case ctx.Err() != nil:
				tr = e.skipTask(ctx, r, ph.ID, t, "run cancelled: "+ctx.Err().Error())
			default:
				tr = e.runTask(ctx, r, ph.ID, t)
			}

			mu.Lock()
			out[i] = tr
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // tasks record failures in their results

	return out
}

// artifactLog collects artifacts in the order tasks produced them.
type artifactLog struct {
	mu    sync.Mutex
	paths []string
	seen  map[string]bool
}

func (a *artifactLog) add(paths ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.seen == nil {
		a.seen = make(map[string]bool)
	}
	for _, p := range paths {
		if !a.seen[p] {
			a.seen[p] = true
			a.paths = append(a.paths, p)
		}
	}
}

func (a *artifactLog) list() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.paths...)
}
