package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/blueprint/internal/config"
	"github.com/felixgeelhaar/blueprint/internal/log"
)

// CommandContext holds the resolved configuration of one CLI invocation.
type CommandContext struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string

	Config *config.Config
	Logger *log.Logger

	shutdown func(context.Context) error
}

type commandContextKey struct{}

// NewCommandContext reads the persistent flags of cmd, loads the
// configuration and builds the logger. Configuration problems are logged
// and defaults are used in their place.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}
	logFormat, err := cmd.Flags().GetString("log-format")
	if err != nil {
		return nil, err
	}

	cfg, loadErr := config.Load(configPath)
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	logCfg := cfg.Log.LoggerConfig()
	if cfg.Log.File == "" {
		logCfg.Output = log.NewOutput(cmd.ErrOrStderr())
	}
	logger := log.New(logCfg)
	if loadErr != nil {
		logger.WithError(loadErr).Warn("configuration problems; using defaults where needed", "config", configPath)
	}

	return &CommandContext{
		ConfigPath: configPath,
		LogLevel:   logLevel,
		LogFormat:  logFormat,
		Config:     cfg,
		Logger:     logger,
	}, nil
}

// commandContext returns the context prepared by the root command, building
// one on demand for commands run outside of it.
func commandContext(cmd *cobra.Command) (*CommandContext, error) {
	if ctx := cmd.Context(); ctx != nil {
		if cc, ok := ctx.Value(commandContextKey{}).(*CommandContext); ok {
			return cc, nil
		}
	}
	return NewCommandContext(cmd)
}
