package hooks

import (
	"context"
	"fmt"
	"sync"
)

// Registry manages hooks and their lifecycle. A nil *Registry triggers
// nothing.
type Registry struct {
	mu       sync.RWMutex
	hooks    map[EventType][]Hook
	executor *Executor
}

// NewRegistry creates a new hook registry
func NewRegistry() *Registry {
	return &Registry{
		hooks:    make(map[EventType][]Hook),
		executor: NewExecutor(),
	}
}

// Executor returns the executor used by Trigger, for tuning.
func (r *Registry) Executor() *Executor {
	return r.executor
}

// Register adds a hook to the registry
func (r *Registry) Register(hook Hook) error {
	if hook == nil {
		return fmt.Errorf("hook cannot be nil")
	}
	if hook.Name() == "" {
		return fmt.Errorf("hook name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, eventType := range hook.EventTypes() {
		r.hooks[eventType] = append(r.hooks[eventType], hook)
	}
	return nil
}

// Unregister removes a hook from the registry
func (r *Registry) Unregister(hookName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for eventType, hooks := range r.hooks {
		filtered := make([]Hook, 0, len(hooks))
		for _, hook := range hooks {
			if hook.Name() != hookName {
				filtered = append(filtered, hook)
			}
		}
		r.hooks[eventType] = filtered
	}
}

// Trigger executes all hooks registered for the event's type and waits for
// them to finish.
func (r *Registry) Trigger(ctx context.Context, event *Event) []ExecutionResult {
	if r == nil || event == nil {
		return nil
	}

	r.mu.RLock()
	hooks := append([]Hook(nil), r.hooks[event.Type]...)
	r.mu.RUnlock()

	if len(hooks) == 0 {
		return nil
	}
	return r.executor.ExecuteAll(ctx, hooks, event)
}

// Count returns the number of distinct registered hooks
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, hooks := range r.hooks {
		for _, hook := range hooks {
			seen[hook.Name()] = true
		}
	}
	return len(seen)
}

// HasHooksFor checks if there are any hooks registered for an event type
func (r *Registry) HasHooksFor(eventType EventType) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.hooks[eventType]) > 0
}
