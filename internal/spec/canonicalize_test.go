package spec

import (
	"encoding/json"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	s := &Specification{Title: "Login", Requirements: []string{"A"}}

	canonical, err := Canonicalize(s)
	if err != nil {
		t.Fatalf("Canonicalize() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(canonical, &decoded); err != nil {
		t.Fatalf("canonical form is not valid JSON: %v", err)
	}
	if _, ok := decoded["constraints"].([]interface{}); !ok {
		t.Error("nil slices should canonicalize to empty arrays")
	}
}

func TestFingerprint(t *testing.T) {
	base := &Specification{Title: "Login", Requirements: []string{"A", "B"}}

	hash1, err := Fingerprint(base)
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	hash2, _ := Fingerprint(base.Clone())
	if hash1 != hash2 {
		t.Error("identical specifications should have the same fingerprint")
	}
	if len(hash1) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(hash1))
	}

	// nil and empty slices are equivalent
	withEmpty := base.Clone()
	withEmpty.Constraints = []string{}
	if h, _ := Fingerprint(withEmpty); h != hash1 {
		t.Error("empty and nil constraints should hash the same")
	}

	changed := base.Clone()
	changed.Requirements = []string{"B", "A"}
	if h, _ := Fingerprint(changed); h == hash1 {
		t.Error("requirement order should change the fingerprint")
	}
}
