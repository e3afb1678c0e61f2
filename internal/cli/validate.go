package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
	"github.com/arwells-research/satz-lifetime-diagnostics/internal/pipeline"
)

var (
	validateJSON      string
	validateMaxMedian float64
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the residuals against the acceptance thresholds",
	Long: `Validate derives the residual table and checks it against the
frozen-law acceptance thresholds: median absolute residual, count of
large outliers, and correlation of residual with logft.

Every criterion carries its numbers and its formula in the report, so
the verdict can be recomputed by hand. The command exits nonzero when
the verdict is fail.

Example:
  satz validate
  satz validate --json verdict.json`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateJSON, "json", "", "write the full run report to this path")
	validateCmd.Flags().Float64Var(&validateMaxMedian, "max-median", 0, "median |residual| threshold in dex (overrides config)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if validateMaxMedian > 0 {
		cfg.Acceptance.MaxMedianAbsResidual = validateMaxMedian
	}

	p := pipeline.NewPipeline(cfg, slog.Default())
	result, err := p.Validate()
	if err != nil {
		return fmt.Errorf("validate failed: %w", err)
	}

	verdict := result.Report.Validation
	fmt.Printf("Verdict: %s\n", verdict.Status)
	for _, sig := range verdict.Signals {
		fmt.Printf("  [%s] %s\n", sig.Severity, sig.Description)
	}

	if validateJSON != "" {
		if err := writeReportFile(validateJSON, *result.Report); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", validateJSON)
	}

	if verdict.Status != model.VerdictPass {
		critical := 0
		for _, sig := range verdict.Signals {
			if sig.Severity == model.SeverityCritical {
				critical++
			}
		}
		return fmt.Errorf("validation failed with %d critical signals", critical)
	}
	return nil
}
