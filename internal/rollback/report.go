package rollback

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Action is what rollback did to one path.
type Action string

const (
	ActionRestored  Action = "restored"
	ActionRemoved   Action = "removed"
	ActionUnchanged Action = "unchanged"
	ActionFailed    Action = "failed"
)

// FileReport describes the rollback of one path. Insertions and Deletions
// count the lines the rollback put back and took away.
type FileReport struct {
	Path       string `json:"path"`
	Action     Action `json:"action"`
	Insertions int    `json:"insertions"`
	Deletions  int    `json:"deletions"`
	Err        string `json:"error,omitempty"`
}

// Report summarizes a rollback.
type Report struct {
	OperationID string       `json:"operation_id"`
	Label       string       `json:"label,omitempty"`
	Files       []FileReport `json:"files"`
}

// Count returns how many paths ended with action a.
func (r *Report) Count(a Action) int {
	n := 0
	for _, f := range r.Files {
		if f.Action == a {
			n++
		}
	}
	return n
}

// Remaining lists paths rollback could not restore.
func (r *Report) Remaining() []string {
	var out []string
	for _, f := range r.Files {
		if f.Action == ActionFailed {
			out = append(out, f.Path)
		}
	}
	return out
}

func restore(snap *Snapshot) (FileReport, error) {
	fr := FileReport{Path: snap.Path}

	current, readErr := os.ReadFile(snap.Path) // #nosec G304 -- path recorded by the coordinator
	exists := readErr == nil
	if readErr != nil && !os.IsNotExist(readErr) {
		return fail(fr, fmt.Errorf("read %s: %w", snap.Path, readErr))
	}

	if !snap.Existed {
		if !exists {
			fr.Action = ActionUnchanged
			return fr, nil
		}
		if err := os.Remove(snap.Path); err != nil && !os.IsNotExist(err) {
			return fail(fr, fmt.Errorf("remove %s: %w", snap.Path, err))
		}
		fr.Action = ActionRemoved
		fr.Deletions = countLines(string(current))
		return fr, nil
	}

	if exists && hashContent(current) == snap.Hash {
		if err := restoreMode(snap); err != nil {
			return fail(fr, err)
		}
		fr.Action = ActionUnchanged
		return fr, nil
	}

	if err := os.MkdirAll(filepath.Dir(snap.Path), 0750); err != nil {
		return fail(fr, fmt.Errorf("create parent directory of %s: %w", snap.Path, err))
	}
	if err := os.WriteFile(snap.Path, snap.Content, snap.Mode); err != nil {
		return fail(fr, fmt.Errorf("restore %s: %w", snap.Path, err))
	}
	if err := restoreMode(snap); err != nil {
		return fail(fr, err)
	}

	fr.Action = ActionRestored
	fr.Insertions, fr.Deletions = lineChanges(string(current), string(snap.Content))
	return fr, nil
}

func restoreMode(snap *Snapshot) error {
	info, err := os.Stat(snap.Path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", snap.Path, err)
	}
	if info.Mode().Perm() == snap.Mode {
		return nil
	}
	if err := os.Chmod(snap.Path, snap.Mode); err != nil {
		return fmt.Errorf("chmod %s: %w", snap.Path, err)
	}
	return nil
}

func fail(fr FileReport, err error) (FileReport, error) {
	fr.Action = ActionFailed
	fr.Err = err.Error()
	return fr, err
}

// lineChanges diffs from against to line by line.
func lineChanges(from, to string) (insertions, deletions int) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			insertions += countLines(d.Text)
		case diffmatchpatch.DiffDelete:
			deletions += countLines(d.Text)
		}
	}
	return insertions, deletions
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
