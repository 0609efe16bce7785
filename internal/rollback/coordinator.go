// Package rollback records the pre-mutation state of files touched by an
// operation so the workspace can be restored when the operation fails.
package rollback

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/felixgeelhaar/blueprint/internal/errors"
	"github.com/felixgeelhaar/blueprint/internal/log"
)

// Coordinator holds one backup context per operation id. Contexts are
// independent, so concurrent operations only contend on shared paths.
type Coordinator struct {
	mu     sync.Mutex
	txns   map[string]*txn
	locks  *pathLocks
	logger *log.Logger
	now    func() time.Time
}

type txn struct {
	id      string
	label   string
	started time.Time

	mu        sync.Mutex
	snapshots map[string]*Snapshot
	order     []string
	dirs      []string // directories created for the operation, parents first
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the coordinator's logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithClock sets the clock used for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator creates an empty Coordinator.
func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		txns:  make(map[string]*txn),
		locks: newPathLocks(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = log.OrDefault(c.logger)
	return c
}

// Start opens a backup context for operationID.
func (c *Coordinator) Start(operationID, label string) error {
	if operationID == "" {
		return errors.New(errors.ErrCodeContextNotFound, "operation id cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.txns[operationID]; ok {
		return errors.Newf(errors.ErrCodeContextExists, "backup context %s already open", operationID).
			WithSuggestion("Generate a fresh operation id per run")
	}
	c.txns[operationID] = &txn{
		id:        operationID,
		label:     label,
		started:   c.now(),
		snapshots: make(map[string]*Snapshot),
	}
	c.logger.Debug("backup context opened", "operation_id", operationID, "label", label)
	return nil
}

// Backup records the current state of path unless the operation already
// holds a snapshot of it. Only the first call per path has an effect.
func (c *Coordinator) Backup(operationID, path string) error {
	t, abs, err := c.resolve(operationID, path)
	if err != nil {
		return err
	}
	unlock := c.locks.lock(abs)
	defer unlock()
	return c.backupLocked(t, abs)
}

// Mutate backs up path and runs fn while holding the path's lock, so no
// other task can snapshot or write the same path in between.
func (c *Coordinator) Mutate(operationID, path string, fn func(abs string) error) error {
	t, abs, err := c.resolve(operationID, path)
	if err != nil {
		return err
	}
	unlock := c.locks.lock(abs)
	defer unlock()

	if err := c.backupLocked(t, abs); err != nil {
		return err
	}
	return fn(abs)
}

func (c *Coordinator) backupLocked(t *txn, abs string) error {
	t.mu.Lock()
	_, seen := t.snapshots[abs]
	t.mu.Unlock()
	if seen {
		return nil
	}

	snap, err := takeSnapshot(abs, c.now())
	if err != nil {
		return errors.Wrap(errors.ErrCodeBackupFailed, fmt.Sprintf("backup %s", abs), err)
	}

	t.mu.Lock()
	t.snapshots[abs] = snap
	t.order = append(t.order, abs)
	t.mu.Unlock()
	return nil
}

// trackDirs records directories the operation is about to create.
func (c *Coordinator) trackDirs(operationID string, dirs []string) {
	t, err := c.lookup(operationID)
	if err != nil || len(dirs) == 0 {
		return
	}
	t.mu.Lock()
	t.dirs = append(t.dirs, dirs...)
	t.mu.Unlock()
}

// Rollback restores every recorded path to its snapshot, newest backup
// first, then discards the context. Every path is attempted; failures are
// joined into a RollbackFailure alongside the report.
func (c *Coordinator) Rollback(operationID string) (*Report, error) {
	t, err := c.take(operationID)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	order := append([]string(nil), t.order...)
	dirs := append([]string(nil), t.dirs...)
	t.mu.Unlock()

	report := &Report{OperationID: t.id, Label: t.label}
	var failures []error

	for i := len(order) - 1; i >= 0; i-- {
		path := order[i]
		unlock := c.locks.lock(path)
		fr, err := restore(t.snapshots[path])
		unlock()

		if err != nil {
			failures = append(failures, err)
			c.logger.Warn("rollback could not restore path", "operation_id", t.id, "path", path, "error", err)
		}
		report.Files = append(report.Files, fr)
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		// non-empty directories hold files the operation did not create
		_ = os.Remove(dirs[i])
	}

	c.logger.Info("operation rolled back",
		"operation_id", t.id,
		"restored", report.Count(ActionRestored),
		"removed", report.Count(ActionRemoved),
		"failed", report.Count(ActionFailed),
	)

	if len(failures) > 0 {
		return report, errors.NewRollbackFailure(t.id, errors.Join(failures...))
	}
	return report, nil
}

// Commit discards the context, keeping the workspace as it is.
func (c *Coordinator) Commit(operationID string) error {
	t, err := c.take(operationID)
	if err != nil {
		return err
	}
	c.logger.Debug("operation committed", "operation_id", t.id, "paths", len(t.order))
	return nil
}

// Paths returns the backed up paths in backup order.
func (c *Coordinator) Paths(operationID string) []string {
	t, err := c.lookup(operationID)
	if err != nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.order...)
}

// Snapshot returns the recorded snapshot of path, if any.
func (c *Coordinator) Snapshot(operationID, path string) (*Snapshot, bool) {
	t, abs, err := c.resolve(operationID, path)
	if err != nil {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	snap, ok := t.snapshots[abs]
	return snap, ok
}

// Active returns the ids of open contexts, sorted.
func (c *Coordinator) Active() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.txns))
	for id := range c.txns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *Coordinator) lookup(operationID string) (*txn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.txns[operationID]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeContextNotFound, "no backup context for operation %s", operationID)
	}
	return t, nil
}

func (c *Coordinator) take(operationID string) (*txn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.txns[operationID]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeContextNotFound, "no backup context for operation %s", operationID)
	}
	delete(c.txns, operationID)
	return t, nil
}

func (c *Coordinator) resolve(operationID, path string) (*txn, string, error) {
	t, err := c.lookup(operationID)
	if err != nil {
		return nil, "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeBackupFailed, fmt.Sprintf("resolve %s", path), err)
	}
	return t, abs, nil
}
