// Package phasespace evaluates the closed-form beta-decay phase-space
// factor used by the scaling law.
package phasespace

import (
	"math"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
)

const (
	fineStructure   = 1.0 / 137.036 // Fine-structure constant
	electronMassMeV = 0.511         // Electron rest-mass energy, fixed normalization
)

// Compute returns the dimensionless phase-space factor
//
//	G = F(Z) * (Q / 0.511)^5
//
// where F is the Primakoff-Rosen Coulomb correction
//
//	eta = 2*pi*alpha_fs*Z
//	F   = eta / (1 - exp(-eta))
//
// The fifth power is part of the law's definition, not a fit parameter.
// Returns a DomainError for Z <= 0, Q <= 0, or a non-finite result; an
// overflowing G is an error, never clamped.
func Compute(z int, qMeV float64) (float64, error) {
	if z <= 0 {
		return 0, &model.DomainError{Z: z, Quantity: "Z", Value: float64(z), Reason: "proton number must be positive"}
	}
	if qMeV <= 0 {
		return 0, &model.DomainError{Z: z, Quantity: "Q_mev", Value: qMeV, Reason: "decay energy must be positive"}
	}

	eta := 2 * math.Pi * fineStructure * float64(z)
	g := coulombFactor(eta) * math.Pow(qMeV/electronMassMeV, 5)
	if math.IsNaN(g) || math.IsInf(g, 0) || g <= 0 {
		return 0, &model.DomainError{Z: z, Quantity: "G", Value: g, Reason: "phase-space factor is not finite and positive"}
	}
	return g, nil
}

// coulombFactor evaluates eta / (1 - exp(-eta)) with the analytic limit
// F -> 1 as eta -> 0, so tiny eta never hits the 0/0 form.
func coulombFactor(eta float64) float64 {
	if eta < 1e-12 {
		return 1
	}
	return eta / (1 - math.Exp(-eta))
}
