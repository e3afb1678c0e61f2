package model

import "time"

// Config is the full runtime configuration. Values come from defaults,
// the config file, SATZ_* environment variables, and CLI flags, in
// ascending priority.
type Config struct {
	Data       DataConfig       `yaml:"data" mapstructure:"data"`
	Law        LawConfig        `yaml:"law" mapstructure:"law"`
	Acceptance AcceptanceConfig `yaml:"acceptance" mapstructure:"acceptance"`
	Probe      ProbeConfig      `yaml:"probe" mapstructure:"probe"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
}

// DataConfig locates the input tables
type DataConfig struct {
	DecayTable      string `yaml:"decay_table" mapstructure:"decay_table"`
	TransitionTable string `yaml:"transition_table" mapstructure:"transition_table"`
}

// LawConfig locates the frozen coefficients
type LawConfig struct {
	ParamsPath string `yaml:"params_path" mapstructure:"params_path"`
}

// AcceptanceConfig holds the frozen-law validation thresholds. These are
// empirical parameters tied to a dataset, not algorithmic invariants, so
// they are configuration rather than constants.
type AcceptanceConfig struct {
	MaxMedianAbsResidual float64 `yaml:"max_median_abs_residual" mapstructure:"max_median_abs_residual"` // dex
	OutlierThreshold     float64 `yaml:"outlier_threshold" mapstructure:"outlier_threshold"`             // |residual| beyond this counts as an outlier, dex
	MaxOutliers          int     `yaml:"max_outliers" mapstructure:"max_outliers"`
	MaxAbsCorrelation    float64 `yaml:"max_abs_correlation" mapstructure:"max_abs_correlation"` // |corr(residual, logft)|, checked when n > 2
}

// ProbeConfig holds the Phase-II promise-probe parameters.
type ProbeConfig struct {
	TopK          int       `yaml:"top_k" mapstructure:"top_k"`                     // Outliers to inspect by |residual|
	MinParitySpan float64   `yaml:"min_parity_span" mapstructure:"min_parity_span"` // GO bar for conditioned parity spans, dex
	GBins         int       `yaml:"g_bins" mapstructure:"g_bins"`                   // Quantile bins of log10(G)
	LogftEdges    []float64 `yaml:"logft_edges" mapstructure:"logft_edges"`         // Interior edges of the logft classes
	MagicNumbers  []int     `yaml:"magic_numbers" mapstructure:"magic_numbers"`     // Neutron magic numbers for near-magic tagging
	MagicWindow   int       `yaml:"magic_window" mapstructure:"magic_window"`       // |N - magic| <= window counts as near-magic
	LowZMax       int       `yaml:"low_z_max" mapstructure:"low_z_max"`             // Z < this counts as low-Z
	MinSubsetSize int       `yaml:"min_subset_size" mapstructure:"min_subset_size"` // Subsets below this are skipped
	MinSpearmanN  int       `yaml:"min_spearman_n" mapstructure:"min_spearman_n"`   // Minimum rows for a rank correlation
}

// CacheConfig controls the parsed-table cache. An empty Dir keeps the
// cache in memory only; a directory adds a persistent layer shared across
// commands.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir" mapstructure:"dir"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// OutputConfig controls result export
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Format  string `yaml:"format" mapstructure:"format"` // csv, json, or sqlite
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults. Threshold defaults follow
// the Phase-I acceptance sheet; probe defaults follow the Phase-II design.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			DecayTable:      "data/decays.csv",
			TransitionTable: "data/transitions.csv",
		},
		Law: LawConfig{
			ParamsPath: "data/frozen_law.json",
		},
		Acceptance: AcceptanceConfig{
			MaxMedianAbsResidual: 0.35,
			OutlierThreshold:     0.80,
			MaxOutliers:          1,
			MaxAbsCorrelation:    0.60,
		},
		Probe: ProbeConfig{
			TopK:          30,
			MinParitySpan: 0.40,
			GBins:         3,
			LogftEdges:    []float64{5.5, 6.5},
			MagicNumbers:  []int{50, 82, 126},
			MagicWindow:   1,
			LowZMax:       20,
			MinSubsetSize: 5,
			MinSpearmanN:  5,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "",
			TTL:     15 * time.Minute,
		},
		Output: OutputConfig{
			Dir:     "out",
			Format:  "csv",
			Verbose: false,
		},
	}
}
