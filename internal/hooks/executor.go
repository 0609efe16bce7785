package hooks

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Executor executes hooks
type Executor struct {
	maxConcurrency int
	defaultTimeout time.Duration
}

// NewExecutor creates a new hook executor
func NewExecutor() *Executor {
	return &Executor{
		maxConcurrency: 10,
		defaultTimeout: DefaultTimeout,
	}
}

// ExecuteAll runs hooks concurrently and returns their results in the
// order of hooks.
func (e *Executor) ExecuteAll(ctx context.Context, hooks []Hook, event *Event) []ExecutionResult {
	if len(hooks) == 0 {
		return nil
	}

	results := make([]ExecutionResult, len(hooks))

	var g errgroup.Group
	g.SetLimit(e.maxConcurrency)
	for i, hook := range hooks {
		g.Go(func() error {
			results[i] = e.Execute(ctx, hook, event)
			return nil
		})
	}
	_ = g.Wait() // failures are reported per result

	return results
}

// Execute executes a single hook with the default timeout. A panicking hook
// is reported as failed.
func (e *Executor) Execute(ctx context.Context, hook Hook, event *Event) (result ExecutionResult) {
	result = ExecutionResult{
		HookName:  hook.Name(),
		EventType: event.Type,
	}

	hookCtx, cancel := context.WithTimeout(ctx, e.defaultTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			result.Success = false
			result.Error = fmt.Sprintf("hook panicked: %v", rec)
		}
		result.Duration = time.Since(start)
	}()

	err := hook.Execute(hookCtx, event)
	if err == nil && hookCtx.Err() != nil {
		err = hookCtx.Err()
	}
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Success = true
	return result
}

// SetMaxConcurrency sets the maximum number of concurrent hook executions
func (e *Executor) SetMaxConcurrency(max int) {
	if max < 1 {
		max = 1
	}
	e.maxConcurrency = max
}

// SetDefaultTimeout sets the default timeout for hook execution
func (e *Executor) SetDefaultTimeout(timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	e.defaultTimeout = timeout
}

// Failures returns the results that did not succeed.
func Failures(results []ExecutionResult) []ExecutionResult {
	var failed []ExecutionResult
	for _, r := range results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}
