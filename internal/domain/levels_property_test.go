package domain

import (
	"testing"

	"pgregory.net/rapid"
)

// TestComplexityFromScore_AlwaysValid checks every score in [0,1] maps to a known bucket
func TestComplexityFromScore_AlwaysValid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		score := rapid.Float64Range(0, 1).Draw(t, "score")

		c := ComplexityFromScore(score)
		if err := c.Validate(); err != nil {
			t.Fatalf("ComplexityFromScore(%v) = %q is not valid: %v", score, c, err)
		}
	})
}

// TestComplexityFromScore_Monotonic checks a higher score never yields a simpler bucket
func TestComplexityFromScore_Monotonic(t *testing.T) {
	rank := map[Complexity]int{ComplexitySimple: 0, ComplexityModerate: 1, ComplexityComplex: 2}

	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Float64Range(0, 1).Draw(t, "a")
		b := rapid.Float64Range(0, 1).Draw(t, "b")
		if a > b {
			a, b = b, a
		}

		if rank[ComplexityFromScore(a)] > rank[ComplexityFromScore(b)] {
			t.Fatalf("score %v bucketed above score %v", a, b)
		}
	})
}
