package spec

import (
	"fmt"
	"strings"
)

// Validate checks the structural rules a specification must satisfy before
// a plan is built from it.
func (s *Specification) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("specification title cannot be empty")
	}

	for i, req := range s.Requirements {
		if strings.TrimSpace(req) == "" {
			return fmt.Errorf("requirement at index %d cannot be empty", i)
		}
	}

	for i, ac := range s.AcceptanceCriteria {
		if strings.TrimSpace(ac) == "" {
			return fmt.Errorf("acceptance criterion at index %d cannot be empty", i)
		}
	}

	if s.Priority != "" {
		if err := s.Priority.Validate(); err != nil {
			return fmt.Errorf("invalid specification priority: %w", err)
		}
	}

	if s.Complexity != "" {
		if err := s.Complexity.Validate(); err != nil {
			return fmt.Errorf("invalid specification complexity: %w", err)
		}
	}

	if s.EstimatedHours < 0 {
		return fmt.Errorf("estimated hours cannot be negative, got %.1f", s.EstimatedHours)
	}

	return nil
}
