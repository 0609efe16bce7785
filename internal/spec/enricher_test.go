package spec

import (
	"math"
	"testing"

	"github.com/felixgeelhaar/blueprint/internal/config"
	"github.com/felixgeelhaar/blueprint/internal/domain"
	"pgregory.net/rapid"
)

func testEnricher() *Enricher {
	return NewEnricher(config.Default().Enricher)
}

func TestEnricherScore(t *testing.T) {
	cfg := config.Default().Enricher
	cfg.ComplexityKeywords = []string{"distributed", "cache", "security", "database", "migration"}
	e := NewEnricher(cfg)

	tests := []struct {
		name string
		spec *Specification
		want float64
	}{
		{"no requirements", &Specification{Title: "x"}, 0},
		{"two requirements", &Specification{Requirements: []string{"A", "B"}}, 0.2},
		{"requirements capped", &Specification{Requirements: make([]string, 12)}, 0.4},
		{"one keyword", &Specification{Title: "Distributed lock"}, 0.2},
		{"keywords capped", &Specification{
			Description:  "distributed cache with security",
			Requirements: []string{"database migration"},
		}, 0.1 + 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Score(tt.spec)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnrichDerivesFields(t *testing.T) {
	e := testEnricher()
	in := &Specification{Title: "Export", Requirements: []string{"A", "B"}}

	out := e.Enrich(in)

	if out.Complexity != domain.ComplexitySimple {
		t.Errorf("Complexity = %s, want simple", out.Complexity)
	}
	if out.Priority != domain.PriorityP2 {
		t.Errorf("Priority = %s, want P2", out.Priority)
	}
	// (8 + 4*2) * 1.3
	if out.EstimatedHours != 20.8 {
		t.Errorf("EstimatedHours = %v, want 20.8", out.EstimatedHours)
	}
	if in.Complexity != "" || in.Priority != "" || in.EstimatedHours != 0 {
		t.Error("Enrich must not modify its input")
	}
}

func TestEnrichKeepsExplicitValues(t *testing.T) {
	e := testEnricher()
	out := e.Enrich(&Specification{
		Title:          "Auth",
		Requirements:   []string{"A"},
		Priority:       domain.PriorityP2,
		Complexity:     domain.ComplexityComplex,
		EstimatedHours: 12,
	})

	if out.Priority != domain.PriorityP2 {
		t.Errorf("Priority = %s, want P2", out.Priority)
	}

	if out.Complexity != domain.ComplexityComplex {
		t.Errorf("Complexity = %s, want complex", out.Complexity)
	}
	if out.EstimatedHours != 12 {
		t.Errorf("EstimatedHours = %v, want 12", out.EstimatedHours)
	}
}

func TestEnrichNilAndUntitled(t *testing.T) {
	out := testEnricher().Enrich(nil)
	if out == nil || out.Title != DefaultTitle {
		t.Fatalf("Enrich(nil) = %+v, want default title", out)
	}
}

func TestEstimateHoursMultipliers(t *testing.T) {
	cfg := config.Default().Enricher
	cfg.IncludeTesting = false
	cfg.IncludeDocumentation = true
	e := NewEnricher(cfg)

	// (56 + 4*3) * 1.1
	if got := e.EstimateHours(domain.ComplexityComplex, 3); got != 74.8 {
		t.Errorf("EstimateHours() = %v, want 74.8", got)
	}
}

func TestScoreBoundsProperty(t *testing.T) {
	e := testEnricher()
	rapid.Check(t, func(t *rapid.T) {
		s := &Specification{
			Title:        rapid.String().Draw(t, "title"),
			Description:  rapid.String().Draw(t, "description"),
			Requirements: rapid.SliceOf(rapid.String()).Draw(t, "requirements"),
		}
		score := e.Score(s)
		if score < 0 || score > 1 {
			t.Fatalf("score %v out of [0,1]", score)
		}
		if err := domain.ComplexityFromScore(score).Validate(); err != nil {
			t.Fatal(err)
		}
	})
}

func TestEnrichAlwaysSetsValidPriority(t *testing.T) {
	tests := []struct {
		complexity domain.Complexity
		want       domain.Priority
	}{
		{domain.ComplexitySimple, domain.PriorityP2},
		{domain.ComplexityModerate, domain.PriorityP1},
		{domain.ComplexityComplex, domain.PriorityP0},
	}
	for _, tt := range tests {
		t.Run(string(tt.complexity), func(t *testing.T) {
			out := testEnricher().Enrich(&Specification{Title: "X", Requirements: []string{"A"}, Complexity: tt.complexity})
			if out.Priority != tt.want {
				t.Errorf("Priority = %s, want %s", out.Priority, tt.want)
			}
		})
	}

	rapid.Check(t, func(t *rapid.T) {
		reqs := rapid.SliceOfN(rapid.StringMatching(`[a-z ]{1,20}`), 0, 15).Draw(t, "requirements")
		out := testEnricher().Enrich(&Specification{Requirements: reqs})
		if err := out.Priority.Validate(); err != nil {
			t.Fatalf("enriched priority %q: %v", out.Priority, err)
		}
	})
}
