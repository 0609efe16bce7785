package spec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/blueprint/internal/errors"
)

// Repository defines the interface for loading and saving Specification files.
type Repository interface {
	// Load reads a Specification from a file
	Load(path string) (*Specification, error)

	// Save writes a Specification to a file
	Save(spec *Specification, path string) error
}

// FileRepository implements Repository for YAML files on disk
type FileRepository struct{}

// NewFileRepository creates a new file-based spec repository
func NewFileRepository() *FileRepository {
	return &FileRepository{}
}

// Load reads a Specification from a YAML file
func (r *FileRepository) Load(path string) (*Specification, error) {
	data, err := readSpecFile(path)
	if err != nil {
		return nil, err
	}

	var s Specification
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.NewFileUnmarshalError(path, "YAML", err)
	}

	return &s, nil
}

// Save writes a Specification to a YAML file
func (r *FileRepository) Save(s *Specification, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "create directory", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSpecMarshal, "marshal specification", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("write spec file %s", path), err)
	}

	return nil
}

// Default instance for package-level functions
var defaultRepository = NewFileRepository()

// Load reads a Specification from a YAML file using the default repository.
func Load(path string) (*Specification, error) {
	return defaultRepository.Load(path)
}

// Save writes a Specification to a YAML file using the default repository.
func Save(s *Specification, path string) error {
	return defaultRepository.Save(s, path)
}

// LoadAny reads a specification in whatever form path holds: YAML or JSON
// by extension, free text otherwise. For text input the returned error may
// be a recoverable ParseError alongside a usable Specification.
func LoadAny(path string) (*Specification, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return Load(path)
	case ".json":
		data, err := readSpecFile(path)
		if err != nil {
			return nil, err
		}
		var s Specification
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, errors.NewFileUnmarshalError(path, "JSON", err)
		}
		return &s, nil
	default:
		data, err := readSpecFile(path)
		if err != nil {
			return nil, err
		}
		return ParseText(string(data))
	}
}

func readSpecFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- spec paths come from the command line
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewSpecNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read spec file %s", path), err)
	}
	return data, nil
}

// Compile-time verification that FileRepository implements Repository
var _ Repository = (*FileRepository)(nil)
