package spec

import (
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"
)

// Canonicalize returns a canonical JSON representation of a specification
// with stable key ordering for consistent hashing.
func Canonicalize(s *Specification) ([]byte, error) {
	data := map[string]interface{}{
		"title":               s.Title,
		"description":         s.Description,
		"requirements":        nonNil(s.Requirements),
		"acceptance_criteria": nonNil(s.AcceptanceCriteria),
		"constraints":         nonNil(s.Constraints),
		"priority":            string(s.Priority),
		"complexity":          string(s.Complexity),
		"estimated_hours":     s.EstimatedHours,
	}

	// encoding/json sorts map keys
	return json.Marshal(data)
}

// Fingerprint computes the blake3 hash of a canonicalized specification.
// Plans record it so execution can detect a specification that changed
// after planning.
func Fingerprint(s *Specification) (string, error) {
	canonical, err := Canonicalize(s)
	if err != nil {
		return "", fmt.Errorf("canonicalize specification: %w", err)
	}

	hasher := blake3.New()
	if _, err := hasher.Write(canonical); err != nil {
		return "", fmt.Errorf("hash specification: %w", err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
