package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/pipeline"
)

var (
	classifyParams string
	classifyFormat string
	classifyOut    string
	classifyJSON   string
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Apply the frozen law and export the residual table",
	Long: `Classify applies the frozen coefficients to every joined nuclide and
computes the structural residual

  delta_struct = log10(tau) - log10(tau_pred)

in dex. The residual table and its stratified summaries are exported
under the stable column contract.

Example:
  satz classify
  satz classify --format sqlite --out out/ --json report.json`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVar(&classifyParams, "params", "", "frozen coefficients file (overrides config)")
	classifyCmd.Flags().StringVar(&classifyFormat, "format", "", "output format: csv, json, or sqlite (overrides config)")
	classifyCmd.Flags().StringVar(&classifyOut, "out", "", "output directory (overrides config)")
	classifyCmd.Flags().StringVar(&classifyJSON, "json", "", "also write the full run report to this path")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if classifyParams != "" {
		cfg.Law.ParamsPath = classifyParams
	}
	if classifyFormat != "" {
		cfg.Output.Format = classifyFormat
	}
	if classifyOut != "" {
		cfg.Output.Dir = classifyOut
	}

	p := pipeline.NewPipeline(cfg, slog.Default())
	result, err := p.Classify()
	if err != nil {
		return fmt.Errorf("classify failed: %w", err)
	}

	paths, err := p.Export(result)
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Printf("Wrote %s\n", path)
	}

	if classifyJSON != "" {
		if err := writeReportFile(classifyJSON, *result.Report); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", classifyJSON)
	}
	return nil
}
