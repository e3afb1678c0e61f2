package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/pipeline"
)

var (
	probeJSON    string
	probeTopK    int
	probeMinSpan float64
)

// probeCmd represents the probe command
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Run the Phase-II promise probe over the residuals",
	Long: `Probe stratifies the residual table by parity class, magic-number
proximity, and charge, conditions the residuals on matched bins of
log10(G) crossed with logft class, and reports whether any parity
span survives the conditioning.

The verdict is go or no-go for a deeper Phase-II study. It is
descriptive: the command does not fail on no-go.

Example:
  satz probe
  satz probe --json probe.json`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().StringVar(&probeJSON, "json", "", "write the full run report to this path")
	probeCmd.Flags().IntVar(&probeTopK, "top-k", 0, "outlier composition size (overrides config)")
	probeCmd.Flags().Float64Var(&probeMinSpan, "min-span", 0, "go verdict span threshold in dex (overrides config)")
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if probeTopK > 0 {
		cfg.Probe.TopK = probeTopK
	}
	if probeMinSpan > 0 {
		cfg.Probe.MinParitySpan = probeMinSpan
	}

	p := pipeline.NewPipeline(cfg, slog.Default())
	result, err := p.Probe()
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}

	probeReport := result.Report.Probe
	fmt.Printf("Verdict: %s\n", probeReport.Verdict.Status)
	for _, sig := range probeReport.Verdict.Signals {
		fmt.Printf("  [%s] %s\n", sig.Severity, sig.Description)
	}

	if probeJSON != "" {
		if err := writeReportFile(probeJSON, *result.Report); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", probeJSON)
	}
	return nil
}
