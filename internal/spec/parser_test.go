package spec

import (
	"testing"

	"github.com/felixgeelhaar/blueprint/internal/domain"
	"github.com/felixgeelhaar/blueprint/internal/errors"
)

func TestParseText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantErr  bool
		validate func(*testing.T, *Specification)
	}{
		{
			name: "labeled sections",
			text: `Title: User Login
Description: Let users sign in with email.
Priority: high

Requirements:
- Validate email format
- Hash passwords with bcrypt
* Lock account after 5 failures

Acceptance criteria:
1. Users can sign in
2) Wrong password is rejected

Constraints:
- No third-party identity provider
`,
			validate: func(t *testing.T, s *Specification) {
				if s.Title != "User Login" {
					t.Errorf("Title = %q, want %q", s.Title, "User Login")
				}
				if s.Description != "Let users sign in with email." {
					t.Errorf("Description = %q", s.Description)
				}
				if s.Priority != domain.PriorityP0 {
					t.Errorf("Priority = %q, want P0", s.Priority)
				}
				if len(s.Requirements) != 3 {
					t.Fatalf("got %d requirements, want 3: %v", len(s.Requirements), s.Requirements)
				}
				if s.Requirements[2] != "Lock account after 5 failures" {
					t.Errorf("Requirements[2] = %q", s.Requirements[2])
				}
				if len(s.AcceptanceCriteria) != 2 {
					t.Errorf("got %d acceptance criteria, want 2", len(s.AcceptanceCriteria))
				}
				if len(s.Constraints) != 1 {
					t.Errorf("got %d constraints, want 1", len(s.Constraints))
				}
			},
		},
		{
			name: "markdown headings",
			text: `# Export Reports

Users export monthly reports.

## Requirements
- CSV export
- PDF export
`,
			validate: func(t *testing.T, s *Specification) {
				if s.Title != "Export Reports" {
					t.Errorf("Title = %q", s.Title)
				}
				if s.Description != "Users export monthly reports." {
					t.Errorf("Description = %q", s.Description)
				}
				if len(s.Requirements) != 2 || s.Requirements[1] != "PDF export" {
					t.Errorf("Requirements = %v", s.Requirements)
				}
			},
		},
		{
			name:    "unlabeled bullets fall back to requirements",
			text:    "Title: Search\n- Full text search\n- Facets\n",
			wantErr: true,
			validate: func(t *testing.T, s *Specification) {
				if len(s.Requirements) != 2 {
					t.Errorf("Requirements = %v", s.Requirements)
				}
			},
		},
		{
			name:    "mandate sentences fall back to requirements",
			text:    "The system must export data. It looks nice. Users should receive an email.",
			wantErr: true,
			validate: func(t *testing.T, s *Specification) {
				if s.Title != DefaultTitle {
					t.Errorf("Title = %q, want default", s.Title)
				}
				if len(s.Requirements) != 2 {
					t.Fatalf("Requirements = %v", s.Requirements)
				}
				if s.Requirements[0] != "The system must export data" {
					t.Errorf("Requirements[0] = %q", s.Requirements[0])
				}
			},
		},
		{
			name:    "empty text",
			text:    "",
			wantErr: true,
			validate: func(t *testing.T, s *Specification) {
				if s.Title != DefaultTitle {
					t.Errorf("Title = %q, want default", s.Title)
				}
				if len(s.Requirements) != 0 {
					t.Errorf("Requirements = %v, want none", s.Requirements)
				}
			},
		},
		{
			name:    "unknown priority is dropped",
			text:    "Title: X\nPriority: someday\nRequirements:\n- A\n",
			wantErr: true,
			validate: func(t *testing.T, s *Specification) {
				if s.Priority != "" {
					t.Errorf("Priority = %q, want empty", s.Priority)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseText(tt.text)
			if s == nil {
				t.Fatal("ParseText() returned nil specification")
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseText() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && errors.CategoryOf(err) != errors.CategoryParse {
				t.Errorf("error category = %s, want %s", errors.CategoryOf(err), errors.CategoryParse)
			}
			tt.validate(t, s)
		})
	}
}
