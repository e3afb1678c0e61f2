// Package join merges the half-life table with the transition-strength
// table on exact (Z,A) keys, channel-aware: one dominant branch per
// nuclide, effective Q for branches feeding excited states. Nothing is
// dropped silently; every unmatched key and skipped record is counted in
// the audit.
package join

import (
	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
	"github.com/arwells-research/satz-lifetime-diagnostics/internal/phasespace"
)

// Joiner performs the channel-aware join
type Joiner struct{}

// NewJoiner creates a new Joiner
func NewJoiner() *Joiner {
	return &Joiner{}
}

type key struct {
	z int
	a int
}

// Join merges decays with their dominant transition branch and evaluates
// the phase-space factor at the effective Q. Join keys match exactly;
// there is no fuzzy matching on Z or A. Record-level failures (ambiguous
// branch, non-positive effective Q, factor out of domain) skip the record
// and land in the audit; they never abort the batch.
func (j *Joiner) Join(decays []model.DecayRecord, transitions []model.TransitionRecord) ([]model.MergedRecord, model.JoinAudit) {
	byKey := make(map[key][]model.TransitionRecord)
	for _, tr := range transitions {
		k := key{tr.Z, tr.A}
		byKey[k] = append(byKey[k], tr)
	}

	var merged []model.MergedRecord
	var audit model.JoinAudit
	decayKeys := make(map[key]bool)

	for _, d := range decays {
		k := key{d.Z, d.A}
		decayKeys[k] = true

		branches, ok := byKey[k]
		if !ok {
			audit.UnmatchedDecays++
			continue
		}

		branch, err := SelectDominant(branches)
		if err != nil {
			audit.Skipped = append(audit.Skipped, model.SkipReason{Z: d.Z, A: d.A, Reason: err.Error()})
			continue
		}

		qEff, err := EffectiveQ(d, branch)
		if err != nil {
			audit.Skipped = append(audit.Skipped, model.SkipReason{Z: d.Z, A: d.A, Reason: err.Error()})
			continue
		}

		g, err := phasespace.Compute(d.Z, qEff)
		if err != nil {
			audit.Skipped = append(audit.Skipped, model.SkipReason{Z: d.Z, A: d.A, Reason: err.Error()})
			continue
		}

		merged = append(merged, model.MergedRecord{
			Z:       d.Z,
			A:       d.A,
			N:       d.N,
			Mode:    d.Mode,
			TauS:    d.TauS,
			QEffMeV: qEff,
			Logft:   branch.Logft,
			G:       g,
			GSatz:   d.N - d.Z,
		})
		audit.MatchedPairs++
	}

	for k := range byKey {
		if !decayKeys[k] {
			audit.UnmatchedTransitions++
		}
	}

	return merged, audit
}

// SelectDominant returns the single is_dominant branch from the rows of
// one (Z,A) key. Zero or more than one dominant row is an
// AmbiguousBranchError; the caller never gets an arbitrary pick.
func SelectDominant(branches []model.TransitionRecord) (model.TransitionRecord, error) {
	var dominant model.TransitionRecord
	count := 0
	for _, b := range branches {
		if b.IsDominant {
			dominant = b
			count++
		}
	}
	if count != 1 {
		var z, a int
		if len(branches) > 0 {
			z, a = branches[0].Z, branches[0].A
		}
		return model.TransitionRecord{}, &model.AmbiguousBranchError{Z: z, A: a, Dominant: count}
	}
	return dominant, nil
}

// EffectiveQ returns the decay energy available to the branch: the raw Q,
// minus the daughter excitation energy when the branch feeds an excited
// state. A non-positive result is a DomainError, never floored to zero.
func EffectiveQ(d model.DecayRecord, branch model.TransitionRecord) (float64, error) {
	qEff := d.QMeV
	if branch.FeedsExcitedState {
		qEff -= branch.ExcitationEnergyMeV
	}
	if qEff <= 0 {
		return 0, &model.DomainError{
			Z:        d.Z,
			A:        d.A,
			Quantity: "Q_eff_mev",
			Value:    qEff,
			Reason:   "effective decay energy must be positive",
		}
	}
	return qEff, nil
}
