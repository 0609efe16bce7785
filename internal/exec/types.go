package exec

import (
	"context"

	"github.com/felixgeelhaar/blueprint/internal/plan"
	"github.com/felixgeelhaar/blueprint/internal/result"
	"github.com/felixgeelhaar/blueprint/internal/rollback"
	"github.com/felixgeelhaar/blueprint/internal/spec"
)

// CodeGenerator produces implementation artifacts for a task. Every file it
// creates or overwrites must go through ws so the run can be rolled back.
// It returns the artifact paths, relative to the workspace root or absolute.
type CodeGenerator interface {
	Generate(ctx context.Context, task plan.Task, s *spec.Specification, ws *rollback.Workspace) ([]string, error)
}

// TestSuiteOptions configures a generated test suite.
type TestSuiteOptions struct {
	Framework string   `json:"framework"`
	TestTypes []string `json:"test_types"`
	Coverage  float64  `json:"coverage"`
}

// GeneratedTest is one generated test file.
type GeneratedTest struct {
	TestFile string `json:"test_file"`
}

// TestSuite is the output of a TestGenerator.
type TestSuite struct {
	Tests []GeneratedTest `json:"tests"`
}

// TestGenerator produces tests for the artifacts written earlier in the run.
type TestGenerator interface {
	GenerateTestSuite(ctx context.Context, files []string, opts TestSuiteOptions, ws *rollback.Workspace) (*TestSuite, error)
}

// ValidationContext tells a Validator where the artifacts come from.
type ValidationContext struct {
	OperationID string
	PhaseID     string
	Task        plan.Task
	Root        string
}

// Validator checks artifacts against criteria. It should return one result
// per criterion; criteria without a result are recorded as failed.
type Validator interface {
	Validate(ctx context.Context, criteria []plan.Criterion, artifacts []string, vctx ValidationContext) ([]result.ValidationResult, error)
}

// CodeGeneratorFunc adapts a function to CodeGenerator.
type CodeGeneratorFunc func(ctx context.Context, task plan.Task, s *spec.Specification, ws *rollback.Workspace) ([]string, error)

// Generate calls f.
func (f CodeGeneratorFunc) Generate(ctx context.Context, task plan.Task, s *spec.Specification, ws *rollback.Workspace) ([]string, error) {
	return f(ctx, task, s, ws)
}

// TestGeneratorFunc adapts a function to TestGenerator.
type TestGeneratorFunc func(ctx context.Context, files []string, opts TestSuiteOptions, ws *rollback.Workspace) (*TestSuite, error)

// GenerateTestSuite calls f.
func (f TestGeneratorFunc) GenerateTestSuite(ctx context.Context, files []string, opts TestSuiteOptions, ws *rollback.Workspace) (*TestSuite, error) {
	return f(ctx, files, opts, ws)
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, criteria []plan.Criterion, artifacts []string, vctx ValidationContext) ([]result.ValidationResult, error)

// Validate calls f.
func (f ValidatorFunc) Validate(ctx context.Context, criteria []plan.Criterion, artifacts []string, vctx ValidationContext) ([]result.ValidationResult, error) {
	return f(ctx, criteria, artifacts, vctx)
}
