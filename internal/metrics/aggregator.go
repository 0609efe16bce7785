// Package metrics summarizes run outcomes and exports them to Prometheus.
package metrics

import (
	"fmt"

	"github.com/felixgeelhaar/blueprint/internal/config"
	"github.com/felixgeelhaar/blueprint/internal/errors"
	"github.com/felixgeelhaar/blueprint/internal/plan"
	"github.com/felixgeelhaar/blueprint/internal/result"
)

// Aggregator turns phase results into run metrics, recommendations and
// the run's success verdict.
type Aggregator struct {
	cfg config.ExecutionConfig
}

// NewAggregator creates an Aggregator.
func NewAggregator(cfg config.ExecutionConfig) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Summarize computes metrics over attempted phases only. Phases never
// reached because of an abort are not part of phases and do not count.
// SuccessRate is completed/total, or 1 when no task was attempted.
func (a *Aggregator) Summarize(phases []result.PhaseResult) result.Metrics {
	var (
		m                 result.Metrics
		coverage, quality float64
		nCov, nQual       int
		artifacts         = make(map[string]bool)
	)

	for _, ph := range phases {
		m.PhasesAttempted++
		if ph.Status == result.PhaseCompleted {
			m.PhasesCompleted++
		}

		for _, t := range ph.Tasks {
			m.TotalTasks++
			switch t.Status {
			case result.TaskCompleted:
				m.CompletedTasks++
			case result.TaskFailed:
				m.FailedTasks++
			case result.TaskSkipped:
				m.SkippedTasks++
			}

			for _, path := range t.Artifacts {
				artifacts[path] = true
			}

			for _, v := range t.Validations {
				if !v.Measured() {
					continue
				}
				switch v.Criterion {
				case plan.CriterionCoverage:
					coverage += v.Score
					nCov++
				case plan.CriterionQuality:
					quality += v.Score
					nQual++
				}
			}
		}
	}

	m.SuccessRate = 1
	if m.TotalTasks > 0 {
		m.SuccessRate = float64(m.CompletedTasks) / float64(m.TotalTasks)
	}
	if nCov > 0 {
		m.CoverageMeasured = true
		m.AverageCoverage = coverage / float64(nCov)
	}
	if nQual > 0 {
		m.QualityMeasured = true
		m.AverageQuality = quality / float64(nQual)
	}
	m.ArtifactCount = len(artifacts)

	return m
}

// Recommendations derives advice from fixed thresholds.
func (a *Aggregator) Recommendations(m result.Metrics, issues []result.Issue) []string {
	recs := []string{}

	if m.SuccessRate < a.cfg.MinSuccessRate {
		recs = append(recs, fmt.Sprintf(
			"Success rate %.0f%% is below the %.0f%% minimum; decompose tasks into smaller units",
			m.SuccessRate*100, a.cfg.MinSuccessRate*100))
	}

	if m.CoverageMeasured && m.AverageCoverage < a.cfg.MinCoverage {
		recs = append(recs, fmt.Sprintf(
			"Average coverage %.0f%% is below the %.0f%% target; add tests for the uncovered paths",
			m.AverageCoverage*100, a.cfg.MinCoverage*100))
	}

	severe := result.CountSeverity(issues, errors.SeverityHigh)
	if severe > a.cfg.MaxHighSeverityIssues {
		recs = append(recs, fmt.Sprintf(
			"%d high-severity issues exceed the limit of %d; block deployment until they are resolved",
			severe, a.cfg.MaxHighSeverityIssues))
	}

	return recs
}

// Succeeded reports whether every attempted phase completed, no abort
// occurred and the success rate meets the configured minimum.
func (a *Aggregator) Succeeded(run *result.RunResult) bool {
	if run.Aborted {
		return false
	}
	for _, ph := range run.Phases {
		if ph.Status != result.PhaseCompleted {
			return false
		}
	}
	return run.Metrics.SuccessRate >= a.cfg.MinSuccessRate
}

// Finalize fills in metrics and the success flag. Recommendations are
// derived separately once rollback issues are known.
func (a *Aggregator) Finalize(run *result.RunResult) bool {
	run.Metrics = a.Summarize(run.Phases)
	run.Success = a.Succeeded(run)
	return run.Success
}

// Recommend sets the run's recommendations from its metrics and issues.
func (a *Aggregator) Recommend(run *result.RunResult) {
	run.Recommendations = a.Recommendations(run.Metrics, run.Issues)
}
