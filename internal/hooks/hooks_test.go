package hooks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// MockHook for testing
type MockHook struct {
	name       string
	eventTypes []EventType
	shouldFail bool

	mu     sync.Mutex
	events []*Event
}

func (m *MockHook) Name() string            { return m.name }
func (m *MockHook) EventTypes() []EventType { return m.eventTypes }
func (m *MockHook) Execute(ctx context.Context, event *Event) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	if m.shouldFail {
		return errors.New("hook failed")
	}
	return nil
}

func (m *MockHook) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func TestNewEvent(t *testing.T) {
	event := NewEvent(EventRunStarted, "op-1", "plan-1")

	if event.Type != EventRunStarted || event.OperationID != "op-1" || event.PlanID != "plan-1" {
		t.Errorf("unexpected event: %+v", event)
	}
	if event.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
	if event.Data == nil {
		t.Error("data should be initialized")
	}
}

func TestRegistryRegister(t *testing.T) {
	registry := NewRegistry()

	hook := &MockHook{name: "observer", eventTypes: []EventType{EventRunStarted, EventRunFinished}}
	if err := registry.Register(hook); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if !registry.HasHooksFor(EventRunStarted) || !registry.HasHooksFor(EventRunFinished) {
		t.Error("hook should be registered for both events")
	}
	if registry.HasHooksFor(EventTaskFailed) {
		t.Error("hook should not be registered for other events")
	}
	if registry.Count() != 1 {
		t.Errorf("Count mismatch: got %d, want 1", registry.Count())
	}
}

func TestRegistryRegisterInvalid(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(nil); err == nil {
		t.Error("expected error for nil hook")
	}
	if err := registry.Register(&MockHook{eventTypes: []EventType{EventRunStarted}}); err == nil {
		t.Error("expected error for unnamed hook")
	}
}

func TestRegistryUnregister(t *testing.T) {
	registry := NewRegistry()
	_ = registry.Register(&MockHook{name: "a", eventTypes: []EventType{EventRunStarted}})
	_ = registry.Register(&MockHook{name: "b", eventTypes: []EventType{EventRunStarted}})

	registry.Unregister("a")

	if registry.Count() != 1 {
		t.Errorf("Count after unregister = %d, want 1", registry.Count())
	}
	results := registry.Trigger(context.Background(), NewEvent(EventRunStarted, "op", "plan"))
	if len(results) != 1 || results[0].HookName != "b" {
		t.Errorf("unexpected results after unregister: %+v", results)
	}
}

func TestRegistryTrigger(t *testing.T) {
	registry := NewRegistry()
	ok := &MockHook{name: "ok", eventTypes: []EventType{EventTaskFailed}}
	bad := &MockHook{name: "bad", eventTypes: []EventType{EventTaskFailed}, shouldFail: true}
	other := &MockHook{name: "other", eventTypes: []EventType{EventRunStarted}}
	for _, h := range []Hook{ok, bad, other} {
		if err := registry.Register(h); err != nil {
			t.Fatal(err)
		}
	}

	event := NewEvent(EventTaskFailed, "op-1", "plan-1")
	event.TaskID = "impl-0"
	results := registry.Trigger(context.Background(), event)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Success || results[0].HookName != "ok" {
		t.Errorf("first result = %+v", results[0])
	}
	if results[1].Success || results[1].Error != "hook failed" {
		t.Errorf("second result = %+v", results[1])
	}
	if other.calls() != 0 {
		t.Error("hook for another event should not run")
	}
	if got := ok.events[0].TaskID; got != "impl-0" {
		t.Errorf("hook saw task %q", got)
	}

	failed := Failures(results)
	if len(failed) != 1 || failed[0].HookName != "bad" {
		t.Errorf("Failures() = %+v", failed)
	}
}

func TestNilRegistryIsSafe(t *testing.T) {
	var registry *Registry

	if results := registry.Trigger(context.Background(), NewEvent(EventRunStarted, "op", "plan")); results != nil {
		t.Errorf("nil registry returned %v", results)
	}
	if registry.HasHooksFor(EventRunStarted) {
		t.Error("nil registry has no hooks")
	}
}

func TestExecutorTimeout(t *testing.T) {
	executor := NewExecutor()
	executor.SetDefaultTimeout(20 * time.Millisecond)

	slow := Func("slow", func(ctx context.Context, _ *Event) error {
		<-ctx.Done()
		return ctx.Err()
	}, EventRunStarted)

	result := executor.Execute(context.Background(), slow, NewEvent(EventRunStarted, "op", "plan"))
	if result.Success {
		t.Fatal("expected timeout failure")
	}
	if result.Error != context.DeadlineExceeded.Error() {
		t.Errorf("error = %q", result.Error)
	}
}

func TestExecutorRecoversPanics(t *testing.T) {
	executor := NewExecutor()
	boom := Func("boom", func(context.Context, *Event) error { panic("kaboom") }, EventRunStarted)

	result := executor.Execute(context.Background(), boom, NewEvent(EventRunStarted, "op", "plan"))
	if result.Success || result.Error != "hook panicked: kaboom" {
		t.Errorf("result = %+v", result)
	}
}

func TestExecutorConcurrencyLimit(t *testing.T) {
	executor := NewExecutor()
	executor.SetMaxConcurrency(2)

	var running, peak atomic.Int32
	hooks := make([]Hook, 6)
	for i := range hooks {
		hooks[i] = Func("h", func(context.Context, *Event) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return nil
		}, EventRunStarted)
	}

	results := executor.ExecuteAll(context.Background(), hooks, NewEvent(EventRunStarted, "op", "plan"))
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	if peak.Load() > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak.Load())
	}
}

func TestExecutorSettersClamp(t *testing.T) {
	executor := NewExecutor()
	executor.SetMaxConcurrency(0)
	executor.SetDefaultTimeout(-time.Second)

	if executor.maxConcurrency != 1 {
		t.Errorf("maxConcurrency = %d, want 1", executor.maxConcurrency)
	}
	if executor.defaultTimeout != DefaultTimeout {
		t.Errorf("defaultTimeout = %v, want %v", executor.defaultTimeout, DefaultTimeout)
	}
}
