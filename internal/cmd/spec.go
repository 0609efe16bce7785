package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/blueprint/internal/errors"
	"github.com/felixgeelhaar/blueprint/internal/spec"
	"github.com/felixgeelhaar/blueprint/internal/telemetry"
)

func newSpecCmd() *cobra.Command {
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Specification commands",
		Long:  `Enrich and fingerprint feature specifications.`,
	}

	enrichCmd := &cobra.Command{
		Use:   "enrich <spec-file>",
		Short: "Derive complexity and effort for a specification",
		Long: `Read a specification (YAML, JSON or plain text) and fill in its
complexity, priority and estimated hours. Plain text is parsed on a best
effort basis; parse problems are reported as warnings.`,
		Args: cobra.ExactArgs(1),
		RunE: runSpecEnrich,
	}
	enrichCmd.Flags().StringP("out", "o", "", "write the enriched specification to this YAML file instead of stdout")
	enrichCmd.Flags().String("format", "yaml", "stdout format: yaml or json")

	hashCmd := &cobra.Command{
		Use:   "hash <spec-file>",
		Short: "Print the fingerprint of the enriched specification",
		Args:  cobra.ExactArgs(1),
		RunE:  runSpecHash,
	}

	specCmd.AddCommand(enrichCmd, hashCmd)
	return specCmd
}

func runSpecEnrich(cmd *cobra.Command, args []string) error {
	ctx, span := telemetry.StartCommandSpan(cmd.Context(), "spec.enrich")
	defer span.End()

	cc, err := commandContext(cmd)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	format, _ := cmd.Flags().GetString("format")

	enriched, err := loadEnriched(cc, args[0])
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	span.SetAttributes(
		attribute.String("spec.complexity", string(enriched.Complexity)),
		attribute.Int("spec.requirements", len(enriched.Requirements)),
	)

	if out != "" {
		if err := spec.Save(enriched, out); err != nil {
			return err
		}
		cc.Logger.InfoContext(ctx, "specification enriched", "path", out)
		fmt.Fprintf(cmd.OutOrStdout(), "Enriched %q: %s complexity, %s priority, %.1f hours -> %s\n",
			enriched.Title, enriched.Complexity, enriched.Priority, enriched.EstimatedHours, out)
		return nil
	}

	return writeDocument(cmd.OutOrStdout(), enriched, format)
}

func runSpecHash(cmd *cobra.Command, args []string) error {
	cc, err := commandContext(cmd)
	if err != nil {
		return err
	}
	enriched, err := loadEnriched(cc, args[0])
	if err != nil {
		return err
	}
	hash, err := spec.Fingerprint(enriched)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}

// loadEnriched loads and enriches the specification at path. A recoverable
// parse error is logged and the fallback specification is used.
func loadEnriched(cc *CommandContext, path string) (*spec.Specification, error) {
	s, err := spec.LoadAny(path)
	if err != nil {
		if s == nil {
			return nil, err
		}
		cc.Logger.WithError(err).Warn("specification parsed with fallbacks", "path", path)
	}
	return spec.NewEnricher(cc.Config.Enricher).Enrich(s), nil
}

func writeDocument(w io.Writer, v any, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.Newf(errors.ErrCodeConfigInvalid, "unsupported output format %q", format).
			WithSuggestion("Use --format yaml or --format json")
	}
}
