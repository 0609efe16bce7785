// Package hooks notifies in-process observers about the lifecycle of a run.
// Hooks observe; they cannot change the outcome of the run that emitted the
// event.
package hooks

import (
	"context"
	"time"
)

// EventType represents the type of lifecycle event
type EventType string

const (
	// Run-level events
	EventRunStarted  EventType = "on_run_start"
	EventRunFinished EventType = "on_run_finish"
	EventRunAborted  EventType = "on_run_aborted"
	EventRolledBack  EventType = "on_rollback"

	// Phase and task events
	EventPhaseFinished EventType = "on_phase_finish"
	EventTaskCompleted EventType = "on_task_complete"
	EventTaskFailed    EventType = "on_task_failed"
	EventTaskSkipped   EventType = "on_task_skipped"

	// Drift events
	EventDriftDetected EventType = "on_drift_detected"
)

// Event represents a lifecycle event that can trigger hooks
type Event struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	OperationID string    `json:"operation_id"`
	PlanID      string    `json:"plan_id"`
	PhaseID     string    `json:"phase_id,omitempty"`
	TaskID      string    `json:"task_id,omitempty"`

	// Status is the task, phase or run status the event reports.
	Status string `json:"status,omitempty"`

	// Data carries event-specific values such as artifact counts.
	Data map[string]any `json:"data,omitempty"`
}

// Hook is the interface that all hooks must implement
type Hook interface {
	// Name returns the hook name
	Name() string

	// EventTypes returns the events this hook handles
	EventTypes() []EventType

	// Execute runs the hook for an event
	Execute(ctx context.Context, event *Event) error
}

// ExecutionResult contains the result of hook execution
type ExecutionResult struct {
	HookName  string        `json:"hook_name"`
	EventType EventType     `json:"event_type"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// DefaultTimeout is the default hook execution timeout
const DefaultTimeout = 30 * time.Second

// NewEvent creates a new event for an operation.
func NewEvent(eventType EventType, operationID, planID string) *Event {
	return &Event{
		Type:        eventType,
		Timestamp:   time.Now(),
		OperationID: operationID,
		PlanID:      planID,
		Data:        map[string]any{},
	}
}

type funcHook struct {
	name   string
	events []EventType
	fn     func(context.Context, *Event) error
}

// Func adapts fn into a Hook for the given events.
func Func(name string, fn func(ctx context.Context, event *Event) error, events ...EventType) Hook {
	return &funcHook{name: name, events: events, fn: fn}
}

func (h *funcHook) Name() string            { return h.name }
func (h *funcHook) EventTypes() []EventType { return h.events }
func (h *funcHook) Execute(ctx context.Context, event *Event) error {
	return h.fn(ctx, event)
}
