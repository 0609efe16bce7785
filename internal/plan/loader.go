package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/blueprint/internal/errors"
)

// LoadPlan reads a Plan from a JSON or YAML file, chosen by extension.
// The loaded plan is validated, so a plan with a dependency cycle is rejected.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- plan paths come from the command line
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodePlanNotFound, fmt.Sprintf("plan file not found: %s", path)).
				WithSuggestion("Create one with 'blueprint plan create'")
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "read plan file", err)
	}

	var p Plan
	if isYAML(path) {
		err = yaml.Unmarshal(data, &p)
	} else {
		err = json.Unmarshal(data, &p)
	}
	if err != nil {
		return nil, errors.NewFileUnmarshalError(path, formatName(path), err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validate plan: %w", err)
	}

	return &p, nil
}

// SavePlan writes a Plan to a JSON or YAML file, chosen by extension.
func SavePlan(p *Plan, path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(p)
	} else {
		data, err = json.MarshalIndent(p, "", "  ")
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "marshal plan", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.Wrap(errors.ErrCodeFileWriteFailed, "create plan directory", err)
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "write plan file", err)
	}

	return nil
}

// LoadSnapshot reads the analyzer's architectural snapshot from a JSON or
// YAML file.
func LoadSnapshot(path string) (ArchitecturalSnapshot, error) {
	var snap ArchitecturalSnapshot
	data, err := os.ReadFile(path) // #nosec G304 -- snapshot paths come from the command line
	if err != nil {
		if os.IsNotExist(err) {
			return snap, errors.NewFileNotFoundError(path)
		}
		return snap, errors.Wrap(errors.ErrCodeFileReadFailed, "read snapshot file", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, &snap)
	} else {
		err = json.Unmarshal(data, &snap)
	}
	if err != nil {
		return ArchitecturalSnapshot{}, errors.NewFileUnmarshalError(path, formatName(path), err)
	}
	return snap, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func formatName(path string) string {
	if isYAML(path) {
		return "YAML"
	}
	return "JSON"
}
