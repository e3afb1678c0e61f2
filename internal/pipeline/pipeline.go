package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/cache"
	"github.com/arwells-research/satz-lifetime-diagnostics/internal/classify"
	"github.com/arwells-research/satz-lifetime-diagnostics/internal/export"
	"github.com/arwells-research/satz-lifetime-diagnostics/internal/ingest"
	"github.com/arwells-research/satz-lifetime-diagnostics/internal/join"
	"github.com/arwells-research/satz-lifetime-diagnostics/internal/law"
	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
	"github.com/arwells-research/satz-lifetime-diagnostics/internal/probe"
	"github.com/arwells-research/satz-lifetime-diagnostics/internal/validate"
)

// Pipeline orchestrates one diagnostic run: load tables, join channels,
// apply the frozen law, then check or probe the residuals.
type Pipeline struct {
	loader  *ingest.Loader
	joiner  *join.Joiner
	checker *validate.Checker
	prober  *probe.Prober
	config  *model.Config
	logger  *slog.Logger
}

// NewPipeline creates a pipeline with the given configuration. A nil
// logger falls back to the process default.
func NewPipeline(cfg *model.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	var c cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			c = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
		} else {
			c = cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
		}
	}

	return &Pipeline{
		loader:  ingest.NewLoader(c, cfg.Cache.TTL),
		joiner:  join.NewJoiner(),
		checker: validate.NewChecker(&cfg.Acceptance),
		prober:  probe.NewProber(&cfg.Probe),
		config:  cfg,
		logger:  logger,
	}
}

// TableSet holds both parsed input tables along with the rows their
// parsers dropped.
type TableSet struct {
	Decays          []model.DecayRecord
	Transitions     []model.TransitionRecord
	DecaySkips      []ingest.RowSkip
	TransitionSkips []ingest.RowSkip
}

// JoinResult pairs the merged per-nuclide rows with the join audit.
type JoinResult struct {
	Merged []model.MergedRecord
	Audit  model.JoinAudit
	Tables *TableSet
}

// RunResult is the complete outcome of one diagnostic run.
type RunResult struct {
	Report    *model.Report
	Residuals []model.ResidualRecord
	Summaries []model.GroupSummary
}

// LoadTables reads and validates both input tables.
func (p *Pipeline) LoadTables() (*TableSet, error) {
	decays, dskips, err := p.loader.DecayTable(p.config.Data.DecayTable)
	if err != nil {
		return nil, fmt.Errorf("load decay table: %w", err)
	}
	transitions, tskips, err := p.loader.TransitionTable(p.config.Data.TransitionTable)
	if err != nil {
		return nil, fmt.Errorf("load transition table: %w", err)
	}

	if len(dskips) > 0 {
		p.logger.Warn("decay rows skipped during parse",
			"table", p.config.Data.DecayTable, "rows", len(dskips))
	}
	if len(tskips) > 0 {
		p.logger.Warn("transition rows skipped during parse",
			"table", p.config.Data.TransitionTable, "rows", len(tskips))
	}
	p.logger.Debug("tables loaded",
		"decays", len(decays), "transitions", len(transitions))

	return &TableSet{
		Decays:          decays,
		Transitions:     transitions,
		DecaySkips:      dskips,
		TransitionSkips: tskips,
	}, nil
}

// Join loads the tables and merges the two channels on (Z, A).
func (p *Pipeline) Join() (*JoinResult, error) {
	tables, err := p.LoadTables()
	if err != nil {
		return nil, err
	}

	merged, audit := p.joiner.Join(tables.Decays, tables.Transitions)
	p.logger.Info("channels joined",
		"matched", audit.MatchedPairs,
		"unmatched_decays", audit.UnmatchedDecays,
		"unmatched_transitions", audit.UnmatchedTransitions,
		"skipped", len(audit.Skipped))

	return &JoinResult{Merged: merged, Audit: audit, Tables: tables}, nil
}

// Fit derives law coefficients from the joined tables. Fitting belongs
// to Phase I; law.Save guards against overwriting frozen coefficients.
func (p *Pipeline) Fit() (model.FrozenLawParams, law.FitDiagnostics, error) {
	jr, err := p.Join()
	if err != nil {
		return model.FrozenLawParams{}, law.FitDiagnostics{}, err
	}

	params, diag, err := law.Fit(jr.Merged)
	if err != nil {
		return model.FrozenLawParams{}, law.FitDiagnostics{}, fmt.Errorf("fit: %w", err)
	}
	p.logger.Info("law fitted",
		"alpha", params.Alpha, "delta", params.Delta,
		"rows", diag.N, "rmse", diag.RMSE, "r_squared", diag.RSquared)
	return params, diag, nil
}

// Classify runs the frozen law over the joined rows and produces the
// residual table plus the base report.
func (p *Pipeline) Classify() (*RunResult, error) {
	// 1. Frozen coefficients
	params, err := law.Load(p.config.Law.ParamsPath)
	if err != nil {
		return nil, fmt.Errorf("load frozen law: %w", err)
	}

	// 2. Join the channels
	jr, err := p.Join()
	if err != nil {
		return nil, err
	}

	// 3. Apply the law
	classifier := classify.NewClassifier(params)
	residuals, err := classifier.Classify(jr.Merged)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	p.logger.Info("residuals computed", "rows", len(residuals))

	report := &model.Report{
		GeneratedAt:     time.Now().UTC(),
		DecayTable:      p.config.Data.DecayTable,
		TransitionTable: p.config.Data.TransitionTable,
		ParamsPath:      p.config.Law.ParamsPath,
		Params:          params,
		Audit:           jr.Audit,
		Rows:            len(residuals),
		Principles:      model.DefaultPrinciples(),
	}

	return &RunResult{
		Report:    report,
		Residuals: residuals,
		Summaries: p.checker.Summaries(residuals),
	}, nil
}

// Validate classifies and then checks the residuals against the
// acceptance thresholds.
func (p *Pipeline) Validate() (*RunResult, error) {
	result, err := p.Classify()
	if err != nil {
		return nil, err
	}

	verdict := p.checker.Check(result.Residuals)
	result.Report.Validation = &verdict
	p.logger.Info("validation finished", "status", verdict.Status)
	return result, nil
}

// Probe classifies and then runs the Phase-II promise probe.
func (p *Pipeline) Probe() (*RunResult, error) {
	result, err := p.Classify()
	if err != nil {
		return nil, err
	}

	probeReport := p.prober.Probe(result.Residuals)
	result.Report.Probe = &probeReport
	p.logger.Info("probe finished", "status", probeReport.Verdict.Status)
	return result, nil
}

// Run performs the full diagnostic: classify, validate, probe.
func (p *Pipeline) Run() (*RunResult, error) {
	result, err := p.Classify()
	if err != nil {
		return nil, err
	}

	verdict := p.checker.Check(result.Residuals)
	result.Report.Validation = &verdict

	probeReport := p.prober.Probe(result.Residuals)
	result.Report.Probe = &probeReport

	p.logger.Info("run finished",
		"rows", result.Report.Rows,
		"validation", verdict.Status,
		"probe", probeReport.Verdict.Status)
	return result, nil
}

// Export writes the residual table and summaries to the configured
// output directory and format.
func (p *Pipeline) Export(result *RunResult) ([]string, error) {
	paths, err := export.Save(p.config.Output.Dir, p.config.Output.Format, result.Residuals, result.Summaries)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	for _, path := range paths {
		p.logger.Info("wrote output", "path", path)
	}
	return paths, nil
}
