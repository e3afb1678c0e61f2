package probe

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/classify"
	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
	"github.com/arwells-research/satz-lifetime-diagnostics/internal/stats"
)

// Subset and group labels used throughout the probe report.
const (
	SubsetAll = "ALL"

	GroupingParity    = "parity_class"
	GroupingNearMagic = "near_magic_n"
	GroupingLowZ      = "low_z"

	labelNearMagic = "near-magic"
	labelFar       = "far"
	labelLowZ      = "low-Z"
	labelHigherZ   = "higher-Z"
)

// parityClassCount is how many parity classes a conditioning cell must
// hold before its span can carry a go verdict.
const parityClassCount = 3

// Prober runs the Phase-II promise probe: it stratifies deviation
// residuals by structural tags, conditions out the kinematic axes, and
// reports whether any parity span survives the conditioning. The probe
// diagnoses where structure hides; it never refits anything.
type Prober struct {
	cfg model.ProbeConfig
}

// NewProber creates a prober. A nil config uses the default probe
// parameters.
func NewProber(cfg *model.ProbeConfig) *Prober {
	if cfg == nil {
		def := model.DefaultConfig().Probe
		cfg = &def
	}
	return &Prober{cfg: *cfg}
}

// Probe stratifies the residual rows and renders a go / no-go verdict on
// the Phase-II question: does parity still separate the residuals once
// log10(G) and the logft class are held fixed?
func (p *Prober) Probe(records []model.ResidualRecord) model.ProbeReport {
	report := model.ProbeReport{
		GeneratedAt: time.Now(),
		Verdict:     model.Verdict{Status: model.VerdictNoGo},
	}

	if len(records) == 0 {
		report.Verdict.Signals = append(report.Verdict.Signals, model.Signal{
			Type:        model.SignalSparseGroup,
			Severity:    model.SeverityCritical,
			Description: "No residual rows to probe",
		})
		return report
	}

	// 1. Stratified summaries and rank correlations per subset
	for _, sub := range p.subsets(records) {
		if len(sub.rows) < p.cfg.MinSubsetSize {
			if len(sub.rows) > 0 {
				report.Verdict.Signals = append(report.Verdict.Signals, model.Signal{
					Type:        model.SignalSparseGroup,
					Severity:    model.SeverityWarning,
					Description: fmt.Sprintf("Subset %s has %d rows, below the minimum %d", sub.name, len(sub.rows), p.cfg.MinSubsetSize),
					Data: map[string]interface{}{
						"subset": sub.name,
						"count":  len(sub.rows),
						"min":    p.cfg.MinSubsetSize,
					},
				})
			}
			continue
		}
		report.Subsets = append(report.Subsets, sub.name)
		report.Summaries = append(report.Summaries, p.summarize(sub.name, sub.rows)...)
		report.Correlations = append(report.Correlations, p.correlations(sub.name, sub.rows)...)
	}

	// 2. Composition of the largest absolute residuals
	report.Outliers = p.outlierComposition(records)
	report.Verdict.Signals = append(report.Verdict.Signals, p.outlierSignal(report.Outliers))

	// 3. Rank correlation of residual against the kinematic axes
	if sig := p.correlationSignal(report.Correlations); sig != nil {
		report.Verdict.Signals = append(report.Verdict.Signals, *sig)
	}

	// 4. Parity spans inside matched (G bin, logft class) cells
	report.Spans = p.paritySpans(records)

	best := bestFullSpan(report.Spans)
	if best == nil {
		report.Verdict.Signals = append(report.Verdict.Signals, model.Signal{
			Type:        model.SignalSparseGroup,
			Severity:    model.SeverityWarning,
			Description: "No conditioning cell holds all three parity classes",
			Data: map[string]interface{}{
				"cells":      len(report.Spans),
				"full_cells": 0,
			},
		})
		return report
	}

	severity := model.SeverityWarning
	if best.Span >= p.cfg.MinParitySpan {
		severity = model.SeverityInfo
		report.Verdict.Status = model.VerdictGo
	}
	report.Verdict.Signals = append(report.Verdict.Signals, model.Signal{
		Type:        model.SignalParitySpan,
		Severity:    severity,
		Description: fmt.Sprintf("Best conditioned parity span: %.3f dex in (%s, %s)", best.Span, best.GBin, best.LogftClass),
		Data: map[string]interface{}{
			"g_bin":       best.GBin,
			"logft_class": best.LogftClass,
			"span":        best.Span,
			"threshold":   p.cfg.MinParitySpan,
			"medians":     best.Medians,
			"formula":     "span = max(median delta_struct by parity) - min(median delta_struct by parity) within one (G bin, logft class) cell",
		},
	})

	return report
}

type subset struct {
	name string
	rows []model.ResidualRecord
}

// subsets splits the rows into ALL plus one subset per decay channel.
func (p *Prober) subsets(records []model.ResidualRecord) []subset {
	all := subset{name: SubsetAll, rows: records}
	beta := subset{name: string(model.ModeBetaMinus)}
	ec := subset{name: string(model.ModeEC)}
	for _, r := range records {
		switch r.Mode {
		case model.ModeBetaMinus:
			beta.rows = append(beta.rows, r)
		case model.ModeEC:
			ec.rows = append(ec.rows, r)
		}
	}
	return []subset{all, beta, ec}
}

// summarize builds the median/IQR rows for the three structural groupings.
func (p *Prober) summarize(subsetName string, rows []model.ResidualRecord) []model.GroupSummary {
	parityOrder := []string{
		string(model.ParityEvenEven),
		string(model.ParityOddA),
		string(model.ParityOddOdd),
	}
	var out []model.GroupSummary
	out = append(out, p.groupRows(subsetName, GroupingParity, rows, parityOrder, func(r model.ResidualRecord) string {
		return string(r.ParityClass)
	})...)
	out = append(out, p.groupRows(subsetName, GroupingNearMagic, rows, []string{labelNearMagic, labelFar}, func(r model.ResidualRecord) string {
		if p.nearMagic(r.N) {
			return labelNearMagic
		}
		return labelFar
	})...)
	out = append(out, p.groupRows(subsetName, GroupingLowZ, rows, []string{labelLowZ, labelHigherZ}, func(r model.ResidualRecord) string {
		if r.Z < p.cfg.LowZMax {
			return labelLowZ
		}
		return labelHigherZ
	})...)
	return out
}

func (p *Prober) groupRows(subsetName, grouping string, rows []model.ResidualRecord, order []string, labelOf func(model.ResidualRecord) string) []model.GroupSummary {
	byLabel := make(map[string][]float64)
	for _, r := range rows {
		lbl := labelOf(r)
		byLabel[lbl] = append(byLabel[lbl], r.DeltaStruct)
	}

	var out []model.GroupSummary
	for _, lbl := range order {
		res, ok := byLabel[lbl]
		if !ok {
			continue
		}
		out = append(out, model.GroupSummary{
			Subset:         subsetName,
			Grouping:       grouping,
			Group:          lbl,
			Count:          len(res),
			MedianResidual: stats.Median(res),
			IQR:            stats.IQR(res),
		})
	}
	return out
}

// correlations ranks residuals against logft and log10(G) within one
// subset. Rank correlation is used because the residual tails are heavy.
func (p *Prober) correlations(subsetName string, rows []model.ResidualRecord) []model.SpearmanResult {
	if len(rows) < p.cfg.MinSpearmanN {
		return nil
	}
	res := make([]float64, len(rows))
	lf := make([]float64, len(rows))
	lg := make([]float64, len(rows))
	for i, r := range rows {
		res[i] = r.DeltaStruct
		lf[i] = r.Logft
		lg[i] = math.Log10(r.G)
	}

	var out []model.SpearmanResult
	if rho, ok := stats.Spearman(res, lf); ok {
		out = append(out, model.SpearmanResult{Subset: subsetName, Against: "logft", Rho: rho, N: len(rows)})
	}
	if rho, ok := stats.Spearman(res, lg); ok {
		out = append(out, model.SpearmanResult{Subset: subsetName, Against: "log10_G", Rho: rho, N: len(rows)})
	}
	return out
}

// outlierComposition tags the K largest absolute residuals with the
// structural labels and reports the tag fractions. Ties at the K boundary
// break on (Z, A) so the composition is deterministic.
func (p *Prober) outlierComposition(records []model.ResidualRecord) model.OutlierComposition {
	k := p.cfg.TopK
	if k > len(records) {
		k = len(records)
	}

	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		ra, rb := records[idx[a]], records[idx[b]]
		da, db := math.Abs(ra.DeltaStruct), math.Abs(rb.DeltaStruct)
		if da != db {
			return da > db
		}
		if ra.Z != rb.Z {
			return ra.Z < rb.Z
		}
		return ra.A < rb.A
	})

	var oddOdd, nearMagic, lowZ int
	for _, i := range idx[:k] {
		r := records[i]
		if r.ParityClass == model.ParityOddOdd {
			oddOdd++
		}
		if p.nearMagic(r.N) {
			nearMagic++
		}
		if r.Z < p.cfg.LowZMax {
			lowZ++
		}
	}

	comp := model.OutlierComposition{K: k}
	if k > 0 {
		comp.FracOddOdd = float64(oddOdd) / float64(k)
		comp.FracNearMagic = float64(nearMagic) / float64(k)
		comp.FracLowZ = float64(lowZ) / float64(k)
	}
	return comp
}

func (p *Prober) outlierSignal(comp model.OutlierComposition) model.Signal {
	return model.Signal{
		Type:        model.SignalOutlierComposition,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("Top-%d outliers: %.0f%% odd-odd, %.0f%% near-magic N, %.0f%% low-Z", comp.K, comp.FracOddOdd*100, comp.FracNearMagic*100, comp.FracLowZ*100),
		Data: map[string]interface{}{
			"k":               comp.K,
			"frac_odd_odd":    comp.FracOddOdd,
			"frac_near_magic": comp.FracNearMagic,
			"frac_low_z":      comp.FracLowZ,
			"formula":         "frac = tag count / K over the K largest |delta_struct|",
		},
	}
}

// correlationSignal surfaces the strongest rank correlation found. A
// strong one means the frozen law still leaks kinematics into the
// residual, which would confound any structural reading.
func (p *Prober) correlationSignal(results []model.SpearmanResult) *model.Signal {
	if len(results) == 0 {
		return nil
	}
	strongest := results[0]
	for _, r := range results[1:] {
		if math.Abs(r.Rho) > math.Abs(strongest.Rho) {
			strongest = r
		}
	}

	severity := model.SeverityInfo
	if math.Abs(strongest.Rho) >= 0.5 {
		severity = model.SeverityWarning
	}
	return &model.Signal{
		Type:        model.SignalRankCorrelation,
		Severity:    severity,
		Description: fmt.Sprintf("Strongest rank correlation: rho=%.2f for delta_struct vs %s (%s, n=%d)", strongest.Rho, strongest.Against, strongest.Subset, strongest.N),
		Data: map[string]interface{}{
			"subset":  strongest.Subset,
			"against": strongest.Against,
			"rho":     strongest.Rho,
			"n":       strongest.N,
			"formula": "rho = spearman(delta_struct, predictor)",
		},
	}
}

// paritySpans conditions the residuals on quantile bins of log10(G)
// crossed with the fixed logft classes, then measures how far apart the
// parity-class medians sit inside each cell. Cells are emitted in bin
// order so reports are stable.
func (p *Prober) paritySpans(records []model.ResidualRecord) []model.ParitySpan {
	nbins := p.cfg.GBins
	if nbins < 1 {
		nbins = 1
	}
	gbins := classify.GBins(records, nbins)

	type cellKey struct{ g, lf string }
	cells := make(map[cellKey]map[string][]float64)
	for i, r := range records {
		key := cellKey{g: gbins[i], lf: classify.LogftClass(r.Logft, p.cfg.LogftEdges)}
		if cells[key] == nil {
			cells[key] = make(map[string][]float64)
		}
		cls := string(r.ParityClass)
		cells[key][cls] = append(cells[key][cls], r.DeltaStruct)
	}

	var spans []model.ParitySpan
	for g := 1; g <= nbins; g++ {
		for _, lf := range p.logftLabels() {
			key := cellKey{g: fmt.Sprintf("G_q%d", g), lf: lf}
			classes, ok := cells[key]
			if !ok {
				continue
			}
			medians := make(map[string]float64, len(classes))
			lo, hi := math.Inf(1), math.Inf(-1)
			for cls, res := range classes {
				m := stats.Median(res)
				medians[cls] = m
				if m < lo {
					lo = m
				}
				if m > hi {
					hi = m
				}
			}
			span := 0.0
			if len(medians) > 1 {
				span = hi - lo
			}
			spans = append(spans, model.ParitySpan{
				GBin:       key.g,
				LogftClass: lf,
				Classes:    len(medians),
				Span:       span,
				Medians:    medians,
			})
		}
	}
	return spans
}

func (p *Prober) logftLabels() []string {
	if len(p.cfg.LogftEdges) == 2 {
		return []string{classify.LogftAllowedish, classify.LogftMixed, classify.LogftForbiddenish}
	}
	labels := make([]string, 0, len(p.cfg.LogftEdges)+1)
	for i := 0; i <= len(p.cfg.LogftEdges); i++ {
		labels = append(labels, fmt.Sprintf("ft_bin%d", i+1))
	}
	return labels
}

func (p *Prober) nearMagic(n int) bool {
	for _, m := range p.cfg.MagicNumbers {
		d := n - m
		if d < 0 {
			d = -d
		}
		if d <= p.cfg.MagicWindow {
			return true
		}
	}
	return false
}

// bestFullSpan picks the widest span among cells holding every parity
// class. Cells missing a class cannot support a verdict.
func bestFullSpan(spans []model.ParitySpan) *model.ParitySpan {
	var best *model.ParitySpan
	for i := range spans {
		if spans[i].Classes != parityClassCount {
			continue
		}
		if best == nil || spans[i].Span > best.Span {
			best = &spans[i]
		}
	}
	return best
}
