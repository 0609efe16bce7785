package spec

import (
	"math"
	"strings"

	"github.com/felixgeelhaar/blueprint/internal/config"
	"github.com/felixgeelhaar/blueprint/internal/domain"
)

// Enricher derives complexity and effort for a specification.
type Enricher struct {
	cfg      config.EnricherConfig
	keywords []string
}

// NewEnricher creates an Enricher from configuration.
func NewEnricher(cfg config.EnricherConfig) *Enricher {
	keywords := make([]string, 0, len(cfg.ComplexityKeywords))
	seen := make(map[string]bool, len(cfg.ComplexityKeywords))
	for _, k := range cfg.ComplexityKeywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keywords = append(keywords, k)
	}
	return &Enricher{cfg: cfg, keywords: keywords}
}

// Enrich returns a copy of s with Complexity, Priority and EstimatedHours
// filled in. Values already present on s are kept.
func (e *Enricher) Enrich(s *Specification) *Specification {
	out := s.Clone()
	if out == nil {
		out = &Specification{}
	}
	if strings.TrimSpace(out.Title) == "" {
		out.Title = DefaultTitle
	}
	if out.Complexity == "" {
		out.Complexity = domain.ComplexityFromScore(e.Score(out))
	}
	if out.Priority == "" {
		out.Priority = PriorityFor(out.Complexity)
	}
	if out.EstimatedHours <= 0 {
		out.EstimatedHours = e.EstimateHours(out.Complexity, len(out.Requirements))
	}
	return out
}

// PriorityFor maps a complexity bucket to the priority given to
// specifications that do not state one.
func PriorityFor(c domain.Complexity) domain.Priority {
	switch c {
	case domain.ComplexityComplex:
		return domain.PriorityP0
	case domain.ComplexitySimple:
		return domain.PriorityP2
	default:
		return domain.PriorityP1
	}
}

// Score returns the complexity score in [0,1]:
// min(requirements/10, 0.4) + min(matchedKeywords/totalKeywords, 0.6).
func (e *Enricher) Score(s *Specification) float64 {
	reqPart := math.Min(float64(len(s.Requirements))/10, 0.4)

	if len(e.keywords) == 0 {
		return reqPart
	}

	parts := []string{s.Title, s.Description}
	parts = append(parts, s.Requirements...)
	parts = append(parts, s.AcceptanceCriteria...)
	parts = append(parts, s.Constraints...)
	text := strings.ToLower(strings.Join(parts, "\n"))

	matched := 0
	for _, k := range e.keywords {
		if strings.Contains(text, k) {
			matched++
		}
	}

	kwPart := math.Min(float64(matched)/float64(len(e.keywords)), 0.6)
	return reqPart + kwPart
}

// EstimateHours applies the configured effort formula, rounded to one decimal:
// (base[complexity] + perRequirement*n) * testing multiplier * documentation multiplier.
func (e *Enricher) EstimateHours(c domain.Complexity, requirements int) float64 {
	hours := e.cfg.BaseHours[string(c)] + e.cfg.HoursPerRequirement*float64(requirements)
	if e.cfg.IncludeTesting {
		hours *= e.cfg.TestingMultiplier
	}
	if e.cfg.IncludeDocumentation {
		hours *= e.cfg.DocumentationMultiplier
	}
	return math.Round(hours*10) / 10
}
