// Package checkpoint journals the task states of a run so an interrupted
// or failed operation can be inspected after the fact.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/blueprint/internal/errors"
)

// Version of the journal file format.
const Version = "1.0"

// Task and run statuses.
const (
	StatusPending    = "pending"
	StatusRunning    = "running"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusSkipped    = "skipped"
	StatusRolledBack = "rolled_back"
)

// State represents the journal of one run. Its methods are safe for
// concurrent use by tasks running in parallel.
type State struct {
	mu sync.Mutex

	Version     string            `json:"version"`
	OperationID string            `json:"operation_id"`
	PlanID      string            `json:"plan_id,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Status      string            `json:"status"` // running, completed, failed, rolled_back
	Tasks       map[string]Task   `json:"tasks"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Task represents the state of an individual task
type Task struct {
	ID          string    `json:"id"`
	PhaseID     string    `json:"phase_id,omitempty"`
	Status      string    `json:"status"`
	StartedAt   time.Time `json:"started_at,omitempty"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
	Error       string    `json:"error,omitempty"`
	Attempts    int       `json:"attempts"`
	Artifacts   []string  `json:"artifacts,omitempty"`
}

// Manager handles journal persistence. Saves through one Manager are
// serialized, so the file on disk always holds the latest saved snapshot.
type Manager struct {
	mu  sync.Mutex
	dir string
}

// NewManager creates a Manager that keeps one JSON file per operation in dir.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Dir returns the journal directory.
func (m *Manager) Dir() string {
	return m.dir
}

// NewState creates a new running journal.
func NewState(operationID string) *State {
	now := time.Now()
	return &State{
		Version:     Version,
		OperationID: operationID,
		StartedAt:   now,
		UpdatedAt:   now,
		Status:      StatusRunning,
		Tasks:       make(map[string]Task),
		Metadata:    make(map[string]string),
	}
}

func (m *Manager) path(operationID string) string {
	return filepath.Join(m.dir, operationID+".json")
}

// Save persists the state. The file is written to a temporary name and
// renamed so a reader never sees a partial journal.
func (m *Manager) Save(state *State) error {
	if state == nil {
		return fmt.Errorf("checkpoint state is nil")
	}
	if state.OperationID == "" || strings.ContainsAny(state.OperationID, `/\`) {
		return errors.Newf(errors.ErrCodeFileWriteFailed, "invalid operation id %q", state.OperationID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	state.mu.Lock()
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	state.mu.Unlock()
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "failed to marshal checkpoint state", err)
	}

	if err := os.MkdirAll(m.dir, 0750); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to create checkpoint directory", err)
	}

	tmp, err := os.CreateTemp(m.dir, "."+state.OperationID+"-*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write checkpoint file", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write checkpoint file", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write checkpoint file", err)
	}
	if err := os.Rename(tmp.Name(), m.path(state.OperationID)); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write checkpoint file", err)
	}
	return nil
}

// Load reads the journal of an operation.
func (m *Manager) Load(operationID string) (*State, error) {
	path := m.path(operationID)
	data, err := os.ReadFile(path) // #nosec G304 -- path is built from the journal directory
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFoundError(path).
				WithSuggestion("Run 'blueprint journal list' to see recorded operations")
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read checkpoint file", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.NewFileUnmarshalError(path, "JSON", err)
	}
	if state.Tasks == nil {
		state.Tasks = make(map[string]Task)
	}

	return &state, nil
}

// Exists checks if a journal exists for the given operation ID
func (m *Manager) Exists(operationID string) bool {
	_, err := os.Stat(m.path(operationID))
	return err == nil
}

// Delete removes a journal file
func (m *Manager) Delete(operationID string) error {
	if err := os.Remove(m.path(operationID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// List returns all journaled operation IDs, sorted.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read checkpoint directory: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)

	return ids, nil
}

// UpdateTask updates or creates a task in the journal.
func (s *State) UpdateTask(taskID, phaseID, status string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.Tasks[taskID]
	if !exists {
		task = Task{ID: taskID, Status: StatusPending}
	}
	if phaseID != "" {
		task.PhaseID = phaseID
	}

	now := time.Now()
	if status == StatusRunning && task.Status != StatusRunning {
		task.StartedAt = now
		task.Attempts++
	}
	switch status {
	case StatusCompleted, StatusFailed, StatusSkipped:
		task.CompletedAt = now
	}
	task.Status = status

	if err != nil {
		task.Error = err.Error()
	}

	s.Tasks[taskID] = task
	s.UpdatedAt = now
}

// AddArtifact adds an artifact path to a task
func (s *State) AddArtifact(taskID, artifactPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.Tasks[taskID]
	if !exists {
		return
	}
	task.Artifacts = append(task.Artifacts, artifactPath)
	s.Tasks[taskID] = task
	s.UpdatedAt = time.Now()
}

// Finish records the final run status.
func (s *State) Finish(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = status
	s.UpdatedAt = time.Now()
}

// Task returns a copy of one task's state.
func (s *State) Task(taskID string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.Tasks[taskID]
	return t, ok
}

// TasksWithStatus returns the sorted ids of tasks in any of the given statuses.
func (s *State) TasksWithStatus(statuses ...string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, task := range s.Tasks {
		for _, st := range statuses {
			if task.Status == st {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// Pending returns tasks that never reached a final status.
func (s *State) Pending() []string {
	return s.TasksWithStatus(StatusPending, StatusRunning)
}

// Completed returns successfully completed tasks.
func (s *State) Completed() []string {
	return s.TasksWithStatus(StatusCompleted)
}

// Failed returns failed tasks.
func (s *State) Failed() []string {
	return s.TasksWithStatus(StatusFailed)
}

// Progress returns the share of tasks that reached a final status (0.0 to 1.0).
func (s *State) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.Tasks) == 0 {
		return 0.0
	}

	done := 0
	for _, task := range s.Tasks {
		switch task.Status {
		case StatusCompleted, StatusFailed, StatusSkipped:
			done++
		}
	}

	return float64(done) / float64(len(s.Tasks))
}

// SetMetadata sets a metadata key-value pair
func (s *State) SetMetadata(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Metadata == nil {
		s.Metadata = make(map[string]string)
	}
	s.Metadata[key] = value
	s.UpdatedAt = time.Now()
}

// GetMetadata retrieves a metadata value
func (s *State) GetMetadata(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.Metadata[key]
	return value, ok
}
