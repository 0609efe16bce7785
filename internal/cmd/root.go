package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/blueprint/internal/log"
	"github.com/felixgeelhaar/blueprint/internal/telemetry"
)

// NewRootCommand builds the blueprint command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "blueprint",
		Short: "Plan and execute feature specifications",
		Long: `blueprint turns a feature specification into a dependency-ordered,
three-phase implementation plan with risk, timeline and resource estimates.
Plans are executed phase by phase against pluggable generators and
validators, and a failed run restores the workspace to its prior state.`,
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			log.SetDefaultLogger(cc.Logger)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			shutdown, err := telemetry.InitProvider(ctx, telemetry.FromConfig(cc.Config.Telemetry))
			if err != nil {
				cc.Logger.WithError(err).Warn("tracing disabled")
			} else {
				cc.shutdown = shutdown
			}

			cmd.SetContext(context.WithValue(ctx, commandContextKey{}, cc))
			return nil
		},

		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			cc, ok := cmd.Context().Value(commandContextKey{}).(*CommandContext)
			if !ok || cc.shutdown == nil {
				return nil
			}
			if err := cc.shutdown(context.Background()); err != nil {
				cc.Logger.WithError(err).Warn("failed to flush traces")
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "configuration file (YAML); BLUEPRINT_* environment variables override it")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: json or text")

	rootCmd.AddCommand(
		newSpecCmd(),
		newPlanCmd(),
		newJournalCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, so commands observe
// cancellation.
func ExecuteContext(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
