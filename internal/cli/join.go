package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/pipeline"
)

var (
	joinDecays      string
	joinTransitions string
)

// joinCmd represents the join command
var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join the half-life and logft tables and audit the match",
	Long: `Join merges the decay half-life table with the transition logft table
on exact (Z, A), selects the single dominant branch per nuclide, applies
the excited-state correction to the decay window, and computes the
phase-space factor.

The audit accounts for every record that did not survive: unmatched
keys on either side, ambiguous branch sets, and windows driven
non-positive by the excitation energy.

Example:
  satz join
  satz join --decays data/decays.csv --transitions data/transitions.csv`,
	RunE: runJoin,
}

func init() {
	rootCmd.AddCommand(joinCmd)

	joinCmd.Flags().StringVar(&joinDecays, "decays", "", "decay table CSV (overrides config)")
	joinCmd.Flags().StringVar(&joinTransitions, "transitions", "", "transition table CSV (overrides config)")
}

func runJoin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if joinDecays != "" {
		cfg.Data.DecayTable = joinDecays
	}
	if joinTransitions != "" {
		cfg.Data.TransitionTable = joinTransitions
	}

	p := pipeline.NewPipeline(cfg, slog.Default())
	result, err := p.Join()
	if err != nil {
		return fmt.Errorf("join failed: %w", err)
	}

	fmt.Printf("Matched pairs:         %d\n", result.Audit.MatchedPairs)
	fmt.Printf("Unmatched decays:      %d\n", result.Audit.UnmatchedDecays)
	fmt.Printf("Unmatched transitions: %d\n", result.Audit.UnmatchedTransitions)
	if len(result.Audit.Skipped) > 0 {
		fmt.Printf("Skipped records:\n")
		for _, skip := range result.Audit.Skipped {
			fmt.Printf("  Z=%d A=%d: %s\n", skip.Z, skip.A, skip.Reason)
		}
	}
	return nil
}
