package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/law"
	"github.com/arwells-research/satz-lifetime-diagnostics/internal/pipeline"
)

var (
	fitDecays      string
	fitTransitions string
	fitOut         string
	fitForce       bool
)

// fitCmd represents the fit command
var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit the scaling law on the joined tables (Phase I)",
	Long: `Fit derives the two coefficients of the scaling law

  log10(tau_pred) = alpha + delta * logft - log10(G)

by ordinary least squares of log10(tau) + log10(G) on logft over the
joined tables, then writes them to the coefficients file with their fit
provenance.

Once written, the coefficients are frozen: fit refuses to overwrite an
existing file unless --force is given. A law re-derived from the
residuals it is later meant to diagnose would be circular.

Example:
  satz fit
  satz fit --out data/frozen_law.json --force`,
	RunE: runFit,
}

func init() {
	rootCmd.AddCommand(fitCmd)

	fitCmd.Flags().StringVar(&fitDecays, "decays", "", "decay table CSV (overrides config)")
	fitCmd.Flags().StringVar(&fitTransitions, "transitions", "", "transition table CSV (overrides config)")
	fitCmd.Flags().StringVar(&fitOut, "out", "", "coefficients file path (overrides config)")
	fitCmd.Flags().BoolVar(&fitForce, "force", false, "overwrite an existing coefficients file")
}

func runFit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if fitDecays != "" {
		cfg.Data.DecayTable = fitDecays
	}
	if fitTransitions != "" {
		cfg.Data.TransitionTable = fitTransitions
	}
	if fitOut != "" {
		cfg.Law.ParamsPath = fitOut
	}

	p := pipeline.NewPipeline(cfg, slog.Default())
	params, diag, err := p.Fit()
	if err != nil {
		return fmt.Errorf("fit failed: %w", err)
	}

	params.Provenance = map[string]interface{}{
		"fitted_at":        time.Now().UTC().Format(time.RFC3339),
		"decay_table":      cfg.Data.DecayTable,
		"transition_table": cfg.Data.TransitionTable,
		"rows":             diag.N,
		"rmse":             diag.RMSE,
		"r_squared":        diag.RSquared,
	}

	if err := law.Save(cfg.Law.ParamsPath, params, fitForce); err != nil {
		return err
	}

	fmt.Printf("alpha = %.6f\n", params.Alpha)
	fmt.Printf("delta = %.6f\n", params.Delta)
	fmt.Printf("Wrote %s (n=%d, rmse=%.4f dex)\n", cfg.Law.ParamsPath, diag.N, diag.RMSE)
	return nil
}
