package law

import (
	"fmt"
	"math"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
	"github.com/arwells-research/satz-lifetime-diagnostics/internal/stats"
)

// minFitRows is the smallest training set a two-parameter fit will accept.
const minFitRows = 3

// FitDiagnostics summarizes the Phase-I regression quality.
type FitDiagnostics struct {
	N        int     `json:"n"`
	RMSE     float64 `json:"rmse"`      // dex
	RSquared float64 `json:"r_squared"`
}

// Fit performs the one Phase-I regression: ordinary least squares of
//
//	y = log10(tau_s) + log10(G)   on   x = logft
//
// so that slope = delta and intercept = alpha in
// log10(tau) = alpha + delta*logft - log10(G). The caller decides whether
// to freeze the result with Save; Fit itself never touches disk.
func Fit(records []model.MergedRecord) (model.FrozenLawParams, FitDiagnostics, error) {
	var params model.FrozenLawParams
	var diag FitDiagnostics

	if len(records) < minFitRows {
		return params, diag, fmt.Errorf("need at least %d records to fit, got %d", minFitRows, len(records))
	}

	x := make([]float64, 0, len(records))
	y := make([]float64, 0, len(records))
	for _, r := range records {
		if r.TauS <= 0 {
			return params, diag, &model.DomainError{Z: r.Z, A: r.A, Quantity: "tau_s", Value: r.TauS, Reason: "mean lifetime must be positive"}
		}
		if r.G <= 0 {
			return params, diag, &model.DomainError{Z: r.Z, A: r.A, Quantity: "G", Value: r.G, Reason: "phase-space factor must be positive"}
		}
		x = append(x, r.Logft)
		y = append(y, math.Log10(r.TauS)+math.Log10(r.G))
	}

	delta, alpha, ok := stats.Linear(x, y)
	if !ok {
		return params, diag, fmt.Errorf("fit undefined: logft has zero variance across %d records", len(records))
	}

	yhat := make([]float64, len(x))
	var sumSq float64
	for i := range x {
		yhat[i] = alpha + delta*x[i]
		d := y[i] - yhat[i]
		sumSq += d * d
	}

	params = model.FrozenLawParams{Alpha: alpha, Delta: delta}
	diag = FitDiagnostics{
		N:        len(x),
		RMSE:     math.Sqrt(sumSq / float64(len(x))),
		RSquared: stats.RSquared(y, yhat),
	}
	return params, diag, nil
}
