package model

import "time"

// Report is the complete result of one diagnostic run: which tables went
// in, which coefficients were applied, what the join dropped, and the
// validation/probe outcomes. Derived tables are exported separately; the
// report itself is never an input to a later run.
type Report struct {
	GeneratedAt     time.Time `json:"generated_at"`
	DecayTable      string    `json:"decay_table"`      // Path of the half-life table
	TransitionTable string    `json:"transition_table"` // Path of the logft table
	ParamsPath      string    `json:"params_path"`      // Path of the frozen coefficients file

	Params FrozenLawParams `json:"params"` // Coefficients applied this run
	Audit  JoinAudit       `json:"audit"`  // Join match/skip accounting
	Rows   int             `json:"rows"`   // Residual rows produced

	Validation *Verdict     `json:"validation,omitempty"` // Frozen-law acceptance check
	Probe      *ProbeReport `json:"probe,omitempty"`      // Phase-II stratified probe

	Principles Principles `json:"principles"`
}

// JoinAudit accounts for every record the channel join did not emit.
// Unmatched counts cover keys present on only one side; Skipped lists
// record-level failures (ambiguous branch, non-positive effective Q).
type JoinAudit struct {
	MatchedPairs         int          `json:"matched_pairs"`
	UnmatchedDecays      int          `json:"unmatched_decays"`      // Decay keys with no transition row
	UnmatchedTransitions int          `json:"unmatched_transitions"` // Transition keys with no decay row
	Skipped              []SkipReason `json:"skipped,omitempty"`
}

// SkipReason records one dropped (Z,A) key and why it was dropped.
type SkipReason struct {
	Z      int    `json:"Z"`
	A      int    `json:"A"`
	Reason string `json:"reason"`
}

// Verdict is the outcome of an acceptance check or probe, with one signal
// per criterion so every number behind the status is visible.
type Verdict struct {
	Status  VerdictStatus `json:"status"`
	Signals []Signal      `json:"signals"`
}

// VerdictStatus is the overall outcome of a check
type VerdictStatus string

const (
	VerdictPass VerdictStatus = "pass"  // Frozen-law validation within thresholds
	VerdictFail VerdictStatus = "fail"  // At least one acceptance threshold violated
	VerdictGo   VerdictStatus = "go"    // Probe found a parity span worth pursuing
	VerdictNoGo VerdictStatus = "no-go" // No conditioned parity span reached the bar
)

// Signal is one diagnostic finding with its inputs and formula recorded in
// Data, so the verdict can be recomputed by hand from the report alone.
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies the diagnostic signal
type SignalType string

const (
	SignalMedianResidual      SignalType = "median_residual"      // Median |delta_struct| vs threshold
	SignalOutlierCount        SignalType = "outlier_count"        // Rows beyond the outlier threshold
	SignalResidualCorrelation SignalType = "residual_correlation" // corr(delta_struct, logft) vs threshold
	SignalParitySpan          SignalType = "parity_span"          // Span of parity medians within a matched bin
	SignalRankCorrelation     SignalType = "rank_correlation"     // Spearman rho of residual vs a predictor column
	SignalOutlierComposition  SignalType = "outlier_composition"  // Structural tags among top-K residuals
	SignalSparseGroup         SignalType = "sparse_group"         // Group below the minimum size for a stable median
)

// SignalSeverity indicates how loudly the signal should be read
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// GroupSummary is one row of the stratified residual summary: the median
// and spread of delta_struct within a (subset, grouping, group) cell.
type GroupSummary struct {
	Subset         string  `json:"subset"`   // ALL, beta-, or EC
	Grouping       string  `json:"grouping"` // parity_class, near_magic_n, low_z
	Group          string  `json:"group"`
	Count          int     `json:"count"`
	MedianResidual float64 `json:"median_residual"` // dex
	IQR            float64 `json:"iqr"`             // dex
}

// SpearmanResult is a rank correlation of delta_struct against a predictor
// column, reported per subset.
type SpearmanResult struct {
	Subset  string  `json:"subset"`
	Against string  `json:"against"` // logft or log10_G
	Rho     float64 `json:"rho"`
	N       int     `json:"n"`
}

// ParitySpan is the spread of parity-class residual medians inside one
// matched (G bin, logft class) conditioning cell.
type ParitySpan struct {
	GBin       string             `json:"g_bin"`       // Quantile bin of log10(G)
	LogftClass string             `json:"logft_class"` // allowed-ish, mixed, forbidden-ish
	Classes    int                `json:"classes"`     // Parity classes populated in the cell
	Span       float64            `json:"span"`        // max - min of class medians, dex
	Medians    map[string]float64 `json:"medians"`     // Median residual per parity class
}

// OutlierComposition describes the structural makeup of the K largest
// absolute residuals.
type OutlierComposition struct {
	K             int     `json:"k"`
	FracOddOdd    float64 `json:"frac_odd_odd"`
	FracNearMagic float64 `json:"frac_near_magic"`
	FracLowZ      float64 `json:"frac_low_z"`
}

// ProbeReport is the full output of the Phase-II promise probe.
type ProbeReport struct {
	GeneratedAt  time.Time          `json:"generated_at"`
	Subsets      []string           `json:"subsets"`
	Summaries    []GroupSummary     `json:"summaries"`
	Correlations []SpearmanResult   `json:"correlations,omitempty"`
	Outliers     OutlierComposition `json:"outliers"`
	Spans        []ParitySpan       `json:"spans"`
	Verdict      Verdict            `json:"verdict"`
}

// Principles documents the ground rules of the diagnostic
type Principles struct {
	NonNormative bool `json:"non_normative"` // Diagnoses fit quality, asserts no physics
	Transparent  bool `json:"transparent"`   // Every verdict carries its formula and inputs
	Frozen       bool `json:"frozen"`        // Coefficients are never refit from residuals
}

// DefaultPrinciples returns the standing principles
func DefaultPrinciples() Principles {
	return Principles{
		NonNormative: true,
		Transparent:  true,
		Frozen:       true,
	}
}
