// Package config holds the tunable thresholds and formulas used by the
// enricher, planner and execution engine.
package config

import (
	"fmt"

	"github.com/felixgeelhaar/blueprint/internal/errors"
	"github.com/felixgeelhaar/blueprint/internal/log"
)

// Config is the root configuration.
type Config struct {
	Log       LogConfig       `koanf:"log"`
	Enricher  EnricherConfig  `koanf:"enricher"`
	Planner   PlannerConfig   `koanf:"planner"`
	Execution ExecutionConfig `koanf:"execution"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level     string `koanf:"level"`
	Format    string `koanf:"format"`
	File      string `koanf:"file"`
	MaxSizeMB int    `koanf:"max_size_mb"`
}

// EnricherConfig drives complexity scoring and effort estimation.
type EnricherConfig struct {
	ComplexityKeywords      []string           `koanf:"complexity_keywords"`
	BaseHours               map[string]float64 `koanf:"base_hours"`
	HoursPerRequirement     float64            `koanf:"hours_per_requirement"`
	TestingMultiplier       float64            `koanf:"testing_multiplier"`
	DocumentationMultiplier float64            `koanf:"documentation_multiplier"`
	IncludeTesting          bool               `koanf:"include_testing"`
	IncludeDocumentation    bool               `koanf:"include_documentation"`
}

// PlannerConfig drives phase sizing, validation criteria and resource estimates.
type PlannerConfig struct {
	AnalysisShare       float64 `koanf:"analysis_share"`
	ImplementationShare float64 `koanf:"implementation_share"`
	IntegrationShare    float64 `koanf:"integration_share"`
	MinPhaseHours       float64 `koanf:"min_phase_hours"`
	TasksPerDeveloper   int     `koanf:"tasks_per_developer"`
	CodeSmellThreshold  int     `koanf:"code_smell_threshold"`
	ImplCoverage        float64 `koanf:"impl_coverage"`
	ImplQuality         float64 `koanf:"impl_quality"`
	IntegrationCoverage float64 `koanf:"integration_coverage"`
	TestingCoverage     float64 `koanf:"testing_coverage"`
}

// ExecutionConfig drives run outcomes and recommendations.
type ExecutionConfig struct {
	MinSuccessRate        float64 `koanf:"min_success_rate"`
	MinCoverage           float64 `koanf:"min_coverage"`
	MaxHighSeverityIssues int     `koanf:"max_high_severity_issues"`
	PartialThreshold      float64 `koanf:"partial_threshold"`
	Concurrency           int     `koanf:"concurrency"`
	WorkDir               string  `koanf:"work_dir"`
	CheckpointDir         string  `koanf:"checkpoint_dir"`
	TestFramework         string  `koanf:"test_framework"`
}

// TelemetryConfig controls tracing.
type TelemetryConfig struct {
	Enabled    bool    `koanf:"enabled"`
	Endpoint   string  `koanf:"endpoint"`
	SampleRate float64 `koanf:"sample_rate"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Enricher: EnricherConfig{
			ComplexityKeywords: []string{
				"distributed", "concurrent", "real-time", "scalable", "security",
				"authentication", "authorization", "database", "migration", "integration",
				"performance", "encryption", "microservice", "cache", "transaction",
			},
			BaseHours: map[string]float64{
				"simple":   8,
				"moderate": 24,
				"complex":  56,
			},
			HoursPerRequirement:     4,
			TestingMultiplier:       1.3,
			DocumentationMultiplier: 1.1,
			IncludeTesting:          true,
			IncludeDocumentation:    false,
		},
		Planner: PlannerConfig{
			AnalysisShare:       0.2,
			ImplementationShare: 0.6,
			IntegrationShare:    0.2,
			MinPhaseHours:       1,
			TasksPerDeveloper:   5,
			CodeSmellThreshold:  5,
			ImplCoverage:        0.8,
			ImplQuality:         0.7,
			IntegrationCoverage: 0.8,
			TestingCoverage:     0.9,
		},
		Execution: ExecutionConfig{
			MinSuccessRate:        0.8,
			MinCoverage:           0.8,
			MaxHighSeverityIssues: 3,
			PartialThreshold:      0.5,
			Concurrency:           1,
			WorkDir:               ".",
			TestFramework:         "go-test",
		},
		Telemetry: TelemetryConfig{
			SampleRate: 1.0,
		},
	}
}

// Validate resets out-of-range values to their defaults. The returned error
// joins one ConfigurationError per corrected setting; the config is usable
// either way.
func (c *Config) Validate() error {
	def := Default()
	var errs []error

	fix := func(name string, bad bool, reset func()) {
		if bad {
			reset()
			errs = append(errs, errors.New(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("configuration %s out of range, using default", name)))
		}
	}

	fix("execution.min_success_rate", !unit(c.Execution.MinSuccessRate), func() { c.Execution.MinSuccessRate = def.Execution.MinSuccessRate })
	fix("execution.min_coverage", !unit(c.Execution.MinCoverage), func() { c.Execution.MinCoverage = def.Execution.MinCoverage })
	fix("execution.partial_threshold", !unit(c.Execution.PartialThreshold), func() { c.Execution.PartialThreshold = def.Execution.PartialThreshold })
	fix("execution.max_high_severity_issues", c.Execution.MaxHighSeverityIssues < 0, func() { c.Execution.MaxHighSeverityIssues = def.Execution.MaxHighSeverityIssues })
	fix("execution.concurrency", c.Execution.Concurrency < 1, func() { c.Execution.Concurrency = def.Execution.Concurrency })

	shares := c.Planner.AnalysisShare + c.Planner.ImplementationShare + c.Planner.IntegrationShare
	fix("planner shares", c.Planner.AnalysisShare < 0 || c.Planner.ImplementationShare < 0 || c.Planner.IntegrationShare < 0 || shares <= 0, func() {
		c.Planner.AnalysisShare = def.Planner.AnalysisShare
		c.Planner.ImplementationShare = def.Planner.ImplementationShare
		c.Planner.IntegrationShare = def.Planner.IntegrationShare
	})
	fix("planner.tasks_per_developer", c.Planner.TasksPerDeveloper < 1, func() { c.Planner.TasksPerDeveloper = def.Planner.TasksPerDeveloper })
	fix("planner.code_smell_threshold", c.Planner.CodeSmellThreshold < 0, func() { c.Planner.CodeSmellThreshold = def.Planner.CodeSmellThreshold })
	fix("planner.impl_coverage", !unit(c.Planner.ImplCoverage), func() { c.Planner.ImplCoverage = def.Planner.ImplCoverage })
	fix("planner.impl_quality", !unit(c.Planner.ImplQuality), func() { c.Planner.ImplQuality = def.Planner.ImplQuality })
	fix("planner.integration_coverage", !unit(c.Planner.IntegrationCoverage), func() { c.Planner.IntegrationCoverage = def.Planner.IntegrationCoverage })
	fix("planner.testing_coverage", !unit(c.Planner.TestingCoverage), func() { c.Planner.TestingCoverage = def.Planner.TestingCoverage })

	fix("enricher.complexity_keywords", len(c.Enricher.ComplexityKeywords) == 0, func() { c.Enricher.ComplexityKeywords = def.Enricher.ComplexityKeywords })
	fix("enricher.hours_per_requirement", c.Enricher.HoursPerRequirement < 0, func() { c.Enricher.HoursPerRequirement = def.Enricher.HoursPerRequirement })
	fix("enricher.testing_multiplier", c.Enricher.TestingMultiplier < 1, func() { c.Enricher.TestingMultiplier = def.Enricher.TestingMultiplier })
	fix("enricher.documentation_multiplier", c.Enricher.DocumentationMultiplier < 1, func() { c.Enricher.DocumentationMultiplier = def.Enricher.DocumentationMultiplier })
	if c.Enricher.BaseHours == nil {
		c.Enricher.BaseHours = map[string]float64{}
	}
	for bucket, hours := range def.Enricher.BaseHours {
		if v, ok := c.Enricher.BaseHours[bucket]; !ok || v < 0 {
			c.Enricher.BaseHours[bucket] = hours
			if ok {
				errs = append(errs, errors.New(errors.ErrCodeConfigInvalid,
					fmt.Sprintf("configuration enricher.base_hours.%s out of range, using default", bucket)))
			}
		}
	}

	fix("telemetry.sample_rate", !unit(c.Telemetry.SampleRate), func() { c.Telemetry.SampleRate = def.Telemetry.SampleRate })

	return errors.Join(errs...)
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

// LoggerConfig converts the log section into a logger configuration.
func (c LogConfig) LoggerConfig() log.Config {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(c.Level)
	cfg.Format = log.ParseFormat(c.Format)
	if c.File != "" {
		cfg.Output = log.OutputFile(log.FileOutput{Path: c.File, MaxSizeMB: c.MaxSizeMB, MaxBackups: 3})
	}
	return cfg
}
