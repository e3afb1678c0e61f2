// Package classify applies the frozen scaling law to merged records and
// buckets the residuals. The coefficients are fixed at construction and
// this package exposes no way to change them: Phase II reads residuals
// against a frozen law or it measures nothing.
package classify

import (
	"math"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
)

// Classifier computes frozen-law residuals
type Classifier struct {
	params model.FrozenLawParams
}

// NewClassifier creates a classifier around frozen coefficients. The
// params are copied by value; no later call can adjust them.
func NewClassifier(params model.FrozenLawParams) *Classifier {
	return &Classifier{params: params}
}

// Params returns a copy of the coefficients in use, for run reports.
func (c *Classifier) Params() model.FrozenLawParams {
	return c.params
}

// Classify computes, for every merged record,
//
//	log10_tau_pred = alpha + delta*logft - log10(G)
//	delta_struct   = log10(tau_s) - log10_tau_pred
//
// plus the parity class from the record's own Z and N. Records reaching
// here have positive tau and G (the join guarantees it); a violation means
// the caller bypassed the join and is reported as a DomainError.
func (c *Classifier) Classify(records []model.MergedRecord) ([]model.ResidualRecord, error) {
	out := make([]model.ResidualRecord, 0, len(records))
	for _, r := range records {
		if r.TauS <= 0 {
			return nil, &model.DomainError{Z: r.Z, A: r.A, Quantity: "tau_s", Value: r.TauS, Reason: "mean lifetime must be positive"}
		}
		if r.G <= 0 {
			return nil, &model.DomainError{Z: r.Z, A: r.A, Quantity: "G", Value: r.G, Reason: "phase-space factor must be positive"}
		}

		pred := c.params.Alpha + c.params.Delta*r.Logft - math.Log10(r.G)
		out = append(out, model.ResidualRecord{
			MergedRecord: r,
			Log10TauPred: pred,
			DeltaStruct:  math.Log10(r.TauS) - pred,
			ParityClass:  ParityOf(r.Z, r.N),
		})
	}
	return out, nil
}

// ParityOf classifies a nuclide by the parity of Z and N: both even is
// even-even, both odd is odd-odd, anything else is odd-A.
func ParityOf(z, n int) model.ParityClass {
	zEven := z%2 == 0
	nEven := n%2 == 0
	switch {
	case zEven && nEven:
		return model.ParityEvenEven
	case !zEven && !nEven:
		return model.ParityOddOdd
	default:
		return model.ParityOddA
	}
}
