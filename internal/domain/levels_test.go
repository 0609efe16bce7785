package domain

import "testing"

func TestComplexityFromScore(t *testing.T) {
	tests := []struct {
		score float64
		want  Complexity
	}{
		{0, ComplexitySimple},
		{0.29, ComplexitySimple},
		{0.3, ComplexityModerate},
		{0.69, ComplexityModerate},
		{0.7, ComplexityComplex},
		{1, ComplexityComplex},
	}

	for _, tt := range tests {
		if got := ComplexityFromScore(tt.score); got != tt.want {
			t.Errorf("ComplexityFromScore(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestRiskLevel_Validate(t *testing.T) {
	for _, r := range []RiskLevel{RiskLow, RiskMedium, RiskHigh} {
		if err := r.Validate(); err != nil {
			t.Errorf("%s should be valid: %v", r, err)
		}
	}
	if err := RiskLevel("severe").Validate(); err == nil {
		t.Error("unknown risk level should fail validation")
	}
	if RiskHigh.Rank() <= RiskMedium.Rank() {
		t.Error("high should outrank medium")
	}
}

func TestTaskType_Mutates(t *testing.T) {
	tests := []struct {
		typ  TaskType
		want bool
	}{
		{TaskAnalysis, false},
		{TaskDesign, false},
		{TaskImplementation, true},
		{TaskTesting, true},
		{TaskDocumentation, false},
	}

	for _, tt := range tests {
		if got := tt.typ.Mutates(); got != tt.want {
			t.Errorf("%s.Mutates() = %v, want %v", tt.typ, got, tt.want)
		}
	}
}
