package rollback

import (
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/zeebo/blake3"
)

// Snapshot is the state of one path before the operation first touched it.
type Snapshot struct {
	Path    string      `json:"path"`
	Existed bool        `json:"existed"`
	Content []byte      `json:"-"`
	Mode    fs.FileMode `json:"mode,omitempty"`
	Hash    string      `json:"hash,omitempty"`
	TakenAt time.Time   `json:"taken_at"`
}

func takeSnapshot(path string, now time.Time) (*Snapshot, error) {
	snap := &Snapshot{Path: path, TakenAt: now}

	// Content is read through symlinks, so the mode must come from the
	// same file.
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return snap, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	content, err := os.ReadFile(path) // #nosec G304 -- path resolved by the workspace
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	snap.Existed = true
	snap.Content = content
	snap.Mode = info.Mode().Perm()
	snap.Hash = hashContent(content)
	return snap, nil
}

func hashContent(content []byte) string {
	sum := blake3.Sum256(content)
	return fmt.Sprintf("%x", sum[:])
}
