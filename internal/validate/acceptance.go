// Package validate checks classified residuals against the frozen-law
// acceptance sheet. The thresholds are empirical values tied to a dataset,
// so they arrive as configuration; the checker only measures and compares,
// it never adjusts the law.
package validate

import (
	"fmt"
	"math"
	"sort"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
	"github.com/arwells-research/satz-lifetime-diagnostics/internal/stats"
)

// Checker validates residual sets against acceptance thresholds
type Checker struct {
	cfg *model.AcceptanceConfig
}

// NewChecker creates a new acceptance checker
func NewChecker(cfg *model.AcceptanceConfig) *Checker {
	if cfg == nil {
		cfg = &model.DefaultConfig().Acceptance
	}
	return &Checker{cfg: cfg}
}

// Check applies the acceptance criteria to a residual set and returns a
// pass/fail verdict with one signal per criterion. Every signal carries
// its measured value, its limit, and the formula, so the verdict can be
// recomputed from the report alone.
func (c *Checker) Check(records []model.ResidualRecord) model.Verdict {
	if len(records) == 0 {
		return model.Verdict{
			Status: model.VerdictFail,
			Signals: []model.Signal{{
				Type:        model.SignalMedianResidual,
				Severity:    model.SeverityCritical,
				Description: "No residual records to validate",
				Data:        map[string]interface{}{"n": 0},
			}},
		}
	}

	var signals []model.Signal
	passed := true

	absRes := make([]float64, len(records))
	res := make([]float64, len(records))
	logft := make([]float64, len(records))
	for i, r := range records {
		res[i] = r.DeltaStruct
		absRes[i] = math.Abs(r.DeltaStruct)
		logft[i] = r.Logft
	}

	// 1. Median absolute residual
	median := stats.Median(absRes)
	medianOK := median <= c.cfg.MaxMedianAbsResidual
	severity := model.SeverityInfo
	if !medianOK {
		severity = model.SeverityCritical
		passed = false
	}
	signals = append(signals, model.Signal{
		Type:        model.SignalMedianResidual,
		Severity:    severity,
		Description: fmt.Sprintf("Median |residual| = %.3f dex (limit %.2f)", median, c.cfg.MaxMedianAbsResidual),
		Data: map[string]interface{}{
			"median_abs_residual": median,
			"limit":               c.cfg.MaxMedianAbsResidual,
			"n":                   len(records),
			"formula":             "median(|delta_struct|) <= limit",
		},
	})

	// 2. Outlier count
	outliers := 0
	for _, v := range absRes {
		if v > c.cfg.OutlierThreshold {
			outliers++
		}
	}
	outliersOK := outliers <= c.cfg.MaxOutliers
	severity = model.SeverityInfo
	if !outliersOK {
		severity = model.SeverityCritical
		passed = false
	}
	signals = append(signals, model.Signal{
		Type:        model.SignalOutlierCount,
		Severity:    severity,
		Description: fmt.Sprintf("%d residuals beyond %.2f dex (limit %d)", outliers, c.cfg.OutlierThreshold, c.cfg.MaxOutliers),
		Data: map[string]interface{}{
			"outliers":  outliers,
			"threshold": c.cfg.OutlierThreshold,
			"limit":     c.cfg.MaxOutliers,
			"formula":   "count(|delta_struct| > threshold) <= limit",
		},
	})

	// 3. Residual correlation against logft; only meaningful with n > 2.
	if len(records) > 2 {
		corr, defined := stats.Pearson(res, logft)
		if defined {
			corrOK := math.Abs(corr) < c.cfg.MaxAbsCorrelation
			severity = model.SeverityInfo
			if !corrOK {
				severity = model.SeverityCritical
				passed = false
			}
			signals = append(signals, model.Signal{
				Type:        model.SignalResidualCorrelation,
				Severity:    severity,
				Description: fmt.Sprintf("corr(residual, logft) = %.3f (limit |r| < %.2f)", corr, c.cfg.MaxAbsCorrelation),
				Data: map[string]interface{}{
					"correlation": corr,
					"limit":       c.cfg.MaxAbsCorrelation,
					"formula":     "|pearson(delta_struct, logft)| < limit",
				},
			})
		} else {
			signals = append(signals, model.Signal{
				Type:        model.SignalResidualCorrelation,
				Severity:    model.SeverityWarning,
				Description: "Residual correlation undefined (zero variance)",
				Data:        map[string]interface{}{"n": len(records)},
			})
		}
	} else {
		signals = append(signals, model.Signal{
			Type:        model.SignalResidualCorrelation,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("Residual correlation not checked (n = %d)", len(records)),
			Data:        map[string]interface{}{"n": len(records)},
		})
	}

	status := model.VerdictPass
	if !passed {
		status = model.VerdictFail
	}
	return model.Verdict{Status: status, Signals: signals}
}

// Summaries reports the residual median and IQR per parity class and per
// element, for the validation table that accompanies the verdict. Small
// groups are still reported; their size is visible in Count.
func (c *Checker) Summaries(records []model.ResidualRecord) []model.GroupSummary {
	var out []model.GroupSummary

	byParity := make(map[model.ParityClass][]float64)
	byZ := make(map[int][]float64)
	for _, r := range records {
		byParity[r.ParityClass] = append(byParity[r.ParityClass], r.DeltaStruct)
		byZ[r.Z] = append(byZ[r.Z], r.DeltaStruct)
	}

	for _, class := range []model.ParityClass{model.ParityEvenEven, model.ParityOddA, model.ParityOddOdd} {
		vals, ok := byParity[class]
		if !ok {
			continue
		}
		out = append(out, model.GroupSummary{
			Subset:         "ALL",
			Grouping:       "parity_class",
			Group:          string(class),
			Count:          len(vals),
			MedianResidual: stats.Median(vals),
			IQR:            stats.IQR(vals),
		})
	}

	zs := make([]int, 0, len(byZ))
	for z := range byZ {
		zs = append(zs, z)
	}
	sort.Ints(zs)
	if len(zs) > 1 {
		for _, z := range zs {
			vals := byZ[z]
			out = append(out, model.GroupSummary{
				Subset:         "ALL",
				Grouping:       "element",
				Group:          fmt.Sprintf("Z=%d", z),
				Count:          len(vals),
				MedianResidual: stats.Median(vals),
				IQR:            stats.IQR(vals),
			})
		}
	}
	return out
}
