package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/felixgeelhaar/blueprint/internal/errors"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "BLUEPRINT_"

const maxConfigFileSize = 1024 * 1024

// Load builds a Config from defaults, then the YAML file at path (if any),
// then BLUEPRINT_ environment variables.
//
// Environment variables split on the first underscore after the prefix:
//
//	BLUEPRINT_EXECUTION_MIN_SUCCESS_RATE -> execution.min_success_rate
//	BLUEPRINT_LOG_LEVEL                  -> log.level
//
// The returned Config is always usable. A non-nil error reports a
// ConfigurationError (missing or unreadable file, out-of-range values) that
// was recovered by falling back to defaults.
func Load(path string) (*Config, error) {
	var problems []error
	k := koanf.New(".")

	if path != "" {
		content, err := readFile(path)
		if err != nil {
			problems = append(problems, err)
		} else if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			problems = append(problems, errors.Wrap(errors.ErrCodeConfigLoad,
				fmt.Sprintf("failed to parse config file %s", path), err).
				WithSuggestion("Continuing with defaults"))
			k = koanf.New(".")
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		problems = append(problems, errors.Wrap(errors.ErrCodeConfigLoad, "failed to load environment overrides", err))
	}

	cfg := Default()
	if k.Exists("enricher.complexity_keywords") {
		cfg.Enricher.ComplexityKeywords = nil
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		problems = append(problems, errors.Wrap(errors.ErrCodeConfigLoad, "failed to decode configuration", err))
		cfg = Default()
	}

	if err := cfg.Validate(); err != nil {
		problems = append(problems, err)
	}

	return &cfg, errors.Join(problems...)
}

func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigurationError("file", fmt.Sprintf("%s does not exist", path))
		}
		return nil, errors.Wrap(errors.ErrCodeConfigLoad, fmt.Sprintf("failed to stat config file %s", path), err)
	}
	if info.IsDir() {
		return nil, errors.NewConfigurationError("file", fmt.Sprintf("%s is a directory", path))
	}
	if info.Size() > maxConfigFileSize {
		return nil, errors.NewConfigurationError("file", fmt.Sprintf("%s exceeds %d bytes", path, maxConfigFileSize))
	}

	content, err := os.ReadFile(path) // #nosec G304 -- path is supplied by the operator
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigLoad, fmt.Sprintf("failed to read config file %s", path), err)
	}
	return content, nil
}

// envKey maps BLUEPRINT_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}
