package spec

import (
	"github.com/felixgeelhaar/blueprint/internal/domain"
)

// Specification describes one feature to be planned and built.
// Complexity and EstimatedHours are derived by the Enricher when absent.
type Specification struct {
	Title              string            `json:"title" yaml:"title"`
	Description        string            `json:"description,omitempty" yaml:"description,omitempty"`
	Requirements       []string          `json:"requirements" yaml:"requirements"`
	AcceptanceCriteria []string          `json:"acceptance_criteria,omitempty" yaml:"acceptance_criteria,omitempty"`
	Constraints        []string          `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Priority           domain.Priority   `json:"priority,omitempty" yaml:"priority,omitempty"`
	Complexity         domain.Complexity `json:"complexity,omitempty" yaml:"complexity,omitempty"`
	EstimatedHours     float64           `json:"estimated_hours,omitempty" yaml:"estimated_hours,omitempty"`
}

// DefaultTitle is used when a specification carries no title.
const DefaultTitle = "Untitled Feature"

// Clone returns a deep copy of the specification.
func (s *Specification) Clone() *Specification {
	if s == nil {
		return nil
	}
	c := *s
	c.Requirements = cloneStrings(s.Requirements)
	c.AcceptanceCriteria = cloneStrings(s.AcceptanceCriteria)
	c.Constraints = cloneStrings(s.Constraints)
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
