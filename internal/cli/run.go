package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/pipeline"
)

var (
	runJSONPath string
	runFormat   string
	runOut      string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Full diagnostic: classify, validate, probe, export",
	Long: `Run performs the complete diagnostic in one pass: joins the tables,
applies the frozen law, checks the acceptance thresholds, runs the
promise probe, exports the residual table, and writes the full report.

Example:
  satz run
  satz run --format sqlite --json report.json`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runJSONPath, "json", "report.json", "output path for the full run report")
	runCmd.Flags().StringVar(&runFormat, "format", "", "output format: csv, json, or sqlite (overrides config)")
	runCmd.Flags().StringVar(&runOut, "out", "", "output directory (overrides config)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runFormat != "" {
		cfg.Output.Format = runFormat
	}
	if runOut != "" {
		cfg.Output.Dir = runOut
	}

	p := pipeline.NewPipeline(cfg, slog.Default())
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	paths, err := p.Export(result)
	if err != nil {
		return err
	}
	if runJSONPath != "" {
		if err := writeReportFile(runJSONPath, *result.Report); err != nil {
			return err
		}
		paths = append(paths, runJSONPath)
	}

	fmt.Printf("Rows:       %d\n", result.Report.Rows)
	fmt.Printf("Validation: %s\n", result.Report.Validation.Status)
	fmt.Printf("Probe:      %s\n", result.Report.Probe.Verdict.Status)
	for _, path := range paths {
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}
