package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/blueprint/internal/dag"
	"github.com/felixgeelhaar/blueprint/internal/errors"
	"github.com/felixgeelhaar/blueprint/internal/metrics"
	"github.com/felixgeelhaar/blueprint/internal/plan"
	"github.com/felixgeelhaar/blueprint/internal/spec"
	"github.com/felixgeelhaar/blueprint/internal/telemetry"
)

func newPlanCmd() *cobra.Command {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan management commands",
		Long:  `Create, validate and inspect execution plans.`,
	}

	createCmd := &cobra.Command{
		Use:   "create <spec-file>",
		Short: "Build a three-phase plan from a specification",
		Long: `Enrich the specification and expand it into analysis, core
implementation and integration phases with risks, a timeline and a resource
estimate. An optional architectural snapshot adds code-smell risk.`,
		Args: cobra.ExactArgs(1),
		RunE: runPlanCreate,
	}
	createCmd.Flags().StringP("out", "o", "plan.json", "output plan file (.json, .yaml)")
	createCmd.Flags().String("smells", "", "architectural snapshot file with code smells")
	createCmd.Flags().String("metrics-out", "", "write Prometheus metrics in text format to this file")

	validateCmd := &cobra.Command{
		Use:   "validate <plan-file>",
		Short: "Check a plan's structure and, optionally, its specification",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlanValidate,
	}
	validateCmd.Flags().String("spec", "", "specification the plan should have been built from")

	orderCmd := &cobra.Command{
		Use:   "order <plan-file>",
		Short: "Print the phase execution order",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlanOrder,
	}

	planCmd.AddCommand(createCmd, validateCmd, orderCmd)
	return planCmd
}

func runPlanCreate(cmd *cobra.Command, args []string) error {
	ctx, span := telemetry.StartCommandSpan(cmd.Context(), "plan.create")
	defer span.End()

	cc, err := commandContext(cmd)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	smellsPath, _ := cmd.Flags().GetString("smells")
	metricsOut, _ := cmd.Flags().GetString("metrics-out")

	s, err := loadEnriched(cc, args[0])
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	var snapshot plan.ArchitecturalSnapshot
	if smellsPath != "" {
		snapshot, err = plan.LoadSnapshot(smellsPath)
		if err != nil {
			telemetry.RecordError(span, err)
			return err
		}
	}

	p, err := plan.NewBuilder(cc.Config.Planner, plan.WithLogger(cc.Logger)).Build(ctx, s, snapshot)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	span.SetAttributes(
		attribute.String("plan.id", p.ID),
		attribute.Int("plan.tasks", p.TaskCount()),
		attribute.String("plan.risk", string(p.Risk.Level)),
	)

	if err := plan.SavePlan(p, out); err != nil {
		return err
	}

	if metricsOut != "" {
		reg, m := metrics.NewRegistry()
		m.RecordPlan(string(p.Risk.Level), p.TaskCount())
		if err := metrics.WriteTextfile(reg, metricsOut); err != nil {
			cc.Logger.WithError(err).Warn("failed to write metrics", "path", metricsOut)
		}
	}

	cc.Logger.InfoContext(ctx, "plan created", "plan_id", p.ID, "path", out)
	printPlanSummary(cmd.OutOrStdout(), p)
	fmt.Fprintf(cmd.OutOrStdout(), "\nPlan written to %s\n", out)
	return nil
}

func runPlanValidate(cmd *cobra.Command, args []string) error {
	_, span := telemetry.StartCommandSpan(cmd.Context(), "plan.validate")
	defer span.End()

	cc, err := commandContext(cmd)
	if err != nil {
		return err
	}
	specPath, _ := cmd.Flags().GetString("spec")

	p, err := plan.LoadPlan(args[0])
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if specPath != "" {
		s, err := loadEnriched(cc, specPath)
		if err != nil {
			return err
		}
		hash, err := spec.Fingerprint(s)
		if err != nil {
			return err
		}
		if hash != p.SpecHash {
			err := errors.NewPlanDriftError(p.SpecHash, hash)
			telemetry.RecordError(span, err)
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Plan %s is valid: %d phases, %d tasks\n", p.ID, len(p.Phases), p.TaskCount())
	return nil
}

func runPlanOrder(cmd *cobra.Command, args []string) error {
	p, err := plan.LoadPlan(args[0])
	if err != nil {
		return err
	}
	order, err := p.ExecutionOrder()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, dag.FormatOrder(order))
	for i, id := range order {
		ph, _ := p.Phase(id)
		ids := make([]string, 0, len(ph.Tasks))
		for _, t := range ph.Tasks {
			ids = append(ids, t.ID)
		}
		fmt.Fprintf(w, "%d. %s [%s]: %s\n", i+1, ph.ID, ph.RiskLevel, strings.Join(ids, ", "))
	}
	return nil
}

func printPlanSummary(w io.Writer, p *plan.Plan) {
	fmt.Fprintf(w, "Plan %s: %q\n", p.ID, p.Title)
	fmt.Fprintf(w, "  Risk:      %s (%d risks)\n", p.Risk.Level, len(p.Risk.Risks))
	fmt.Fprintf(w, "  Timeline:  %s -> %s\n", p.Timeline.Start.Format("2006-01-02"), p.Timeline.End.Format("2006-01-02"))
	fmt.Fprintf(w, "  Resources: %d developer(s), %.1f hours\n", p.Resources.Developers, p.Resources.TotalHours)
	for _, ph := range p.Phases {
		fmt.Fprintf(w, "  - %s (%d tasks, %s risk, %s)\n", ph.ID, len(ph.Tasks), ph.RiskLevel, ph.Duration)
	}
}
