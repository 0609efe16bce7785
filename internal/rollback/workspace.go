package rollback

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/blueprint/internal/errors"
)

// Workspace is the file system view handed to collaborators. Every
// mutation goes through the coordinator first, so the operation can be
// rolled back.
type Workspace struct {
	coord       *Coordinator
	operationID string
	root        string
}

// Workspace returns a Workspace rooted at root for operationID.
func (c *Coordinator) Workspace(operationID, root string) (*Workspace, error) {
	if _, err := c.lookup(operationID); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("resolve workspace root %s", root), err)
	}
	return &Workspace{coord: c, operationID: operationID, root: abs}, nil
}

// Root returns the absolute workspace root.
func (w *Workspace) Root() string {
	return w.root
}

// OperationID returns the operation the workspace belongs to.
func (w *Workspace) OperationID() string {
	return w.operationID
}

// Path resolves p against the root. Paths outside the root are rejected.
func (w *Workspace) Path(p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(w.root, p)
	}
	p = filepath.Clean(p)

	rel, err := filepath.Rel(w.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrCodeFileWriteFailed, "path %s is outside the workspace %s", p, w.root)
	}
	return p, nil
}

// Prepare backs up p and creates its parent directories, returning the
// absolute path. Use it before writing p by other means.
func (w *Workspace) Prepare(p string) (string, error) {
	abs, err := w.Path(p)
	if err != nil {
		return "", err
	}
	err = w.coord.Mutate(w.operationID, abs, func(abs string) error {
		return w.mkdirParents(abs)
	})
	return abs, err
}

// WriteFile backs up p, then writes data to it.
func (w *Workspace) WriteFile(p string, data []byte, perm fs.FileMode) (string, error) {
	abs, err := w.Path(p)
	if err != nil {
		return "", err
	}
	err = w.coord.Mutate(w.operationID, abs, func(abs string) error {
		if err := w.mkdirParents(abs); err != nil {
			return err
		}
		if err := os.WriteFile(abs, data, perm); err != nil {
			return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("write %s", abs), err)
		}
		return nil
	})
	return abs, err
}

// Remove backs up p, then deletes it.
func (w *Workspace) Remove(p string) error {
	abs, err := w.Path(p)
	if err != nil {
		return err
	}
	return w.coord.Mutate(w.operationID, abs, func(abs string) error {
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("remove %s", abs), err)
		}
		return nil
	})
}

// ReadFile reads p from the workspace.
func (w *Workspace) ReadFile(p string) ([]byte, error) {
	abs, err := w.Path(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs) // #nosec G304 -- confined to the workspace root
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read %s", abs), err)
	}
	return data, nil
}

// Tracked reports whether p has been backed up in this operation.
func (w *Workspace) Tracked(p string) bool {
	abs, err := w.Path(p)
	if err != nil {
		return false
	}
	_, ok := w.coord.Snapshot(w.operationID, abs)
	return ok
}

func (w *Workspace) mkdirParents(abs string) error {
	var missing []string
	for dir := filepath.Dir(abs); dir != w.root && dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		if _, err := os.Stat(dir); err == nil {
			break
		}
		missing = append([]string{dir}, missing...)
	}
	if len(missing) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0750); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("create directory for %s", abs), err)
	}
	w.coord.trackDirs(w.operationID, missing)
	return nil
}
