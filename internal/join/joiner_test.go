package join

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
)

func decay(z, a int, mode model.DecayMode, halfLifeS, qMeV float64) model.DecayRecord {
	return model.DecayRecord{
		Z:         z,
		A:         a,
		N:         a - z,
		Mode:      mode,
		HalfLifeS: halfLifeS,
		TauS:      halfLifeS / math.Ln2,
		QMeV:      qMeV,
	}
}

func transition(z, a int, branch string, logft float64, dominant, feeds bool, excitation float64) model.TransitionRecord {
	return model.TransitionRecord{
		Z:                   z,
		A:                   a,
		BranchID:            branch,
		Logft:               logft,
		IsDominant:          dominant,
		FeedsExcitedState:   feeds,
		ExcitationEnergyMeV: excitation,
	}
}

func TestJoiner_MatchesOnExactKey(t *testing.T) {
	joiner := NewJoiner()

	decays := []model.DecayRecord{
		decay(38, 90, model.ModeBetaMinus, 120.0, 6.0),
		decay(53, 135, model.ModeEC, 3600.0, 2.5),
	}
	transitions := []model.TransitionRecord{
		transition(38, 90, "gs", 5.0, true, false, 0),
		transition(38, 90, "L1", 7.2, false, true, 1.8),
		transition(53, 135, "gs", 6.3, true, false, 0),
	}

	merged, audit := joiner.Join(decays, transitions)
	if len(merged) != 2 {
		t.Fatalf("Expected 2 merged records, got %d", len(merged))
	}
	if audit.MatchedPairs != 2 || audit.UnmatchedDecays != 0 || audit.UnmatchedTransitions != 0 {
		t.Errorf("Unexpected audit: %+v", audit)
	}

	sr := merged[0]
	if sr.Z != 38 || sr.A != 90 || sr.N != 52 {
		t.Errorf("Expected (38,90,52), got (%d,%d,%d)", sr.Z, sr.A, sr.N)
	}
	if sr.Logft != 5.0 {
		t.Errorf("Expected the dominant branch logft 5.0, got %g", sr.Logft)
	}
	if sr.QEffMeV != 6.0 {
		t.Errorf("Expected raw Q for a ground-state branch, got %g", sr.QEffMeV)
	}
	if math.Abs(sr.G-471396.2378504116)/sr.G > 1e-12 {
		t.Errorf("Expected G = 471396.2378..., got %v", sr.G)
	}
	if sr.GSatz != 52-38 {
		t.Errorf("Expected G_satz = N-Z = 14, got %d", sr.GSatz)
	}

	iodine := merged[1]
	if math.Abs(iodine.G-7468.542202558308)/iodine.G > 1e-12 {
		t.Errorf("Expected G = 7468.5422..., got %v", iodine.G)
	}
}

func TestJoiner_ExcitedStateFeedUsesEffectiveQ(t *testing.T) {
	joiner := NewJoiner()

	decays := []model.DecayRecord{decay(38, 90, model.ModeBetaMinus, 120.0, 6.0)}
	transitions := []model.TransitionRecord{transition(38, 90, "L1", 5.4, true, true, 1.2)}

	merged, audit := joiner.Join(decays, transitions)
	if len(merged) != 1 {
		t.Fatalf("Expected 1 merged record, got %d (audit %+v)", len(merged), audit)
	}
	if math.Abs(merged[0].QEffMeV-4.8) > 1e-12 {
		t.Errorf("Expected Q_eff = 6.0 - 1.2 = 4.8, got %g", merged[0].QEffMeV)
	}
	if math.Abs(merged[0].G-154467.11921882283)/merged[0].G > 1e-12 {
		t.Errorf("Expected G at the effective Q, got %v", merged[0].G)
	}
}

func TestJoiner_UnmatchedKeysAreCountedBothSides(t *testing.T) {
	joiner := NewJoiner()

	decays := []model.DecayRecord{
		decay(38, 90, model.ModeBetaMinus, 120.0, 6.0),
		decay(40, 95, model.ModeBetaMinus, 10.0, 3.0), // no transition row
	}
	transitions := []model.TransitionRecord{
		transition(38, 90, "gs", 5.0, true, false, 0),
		transition(38, 91, "gs", 5.5, true, false, 0), // no decay row; A off by one must not match
	}

	merged, audit := joiner.Join(decays, transitions)
	if len(merged) != 1 {
		t.Fatalf("Expected exactly the (38,90) pair, got %d records", len(merged))
	}
	if audit.UnmatchedDecays != 1 {
		t.Errorf("Expected 1 unmatched decay, got %d", audit.UnmatchedDecays)
	}
	if audit.UnmatchedTransitions != 1 {
		t.Errorf("Expected 1 unmatched transition, got %d", audit.UnmatchedTransitions)
	}
}

func TestJoiner_AmbiguousBranchSkippedAndReported(t *testing.T) {
	joiner := NewJoiner()

	decays := []model.DecayRecord{decay(38, 90, model.ModeBetaMinus, 120.0, 6.0)}
	transitions := []model.TransitionRecord{
		transition(38, 90, "gs", 5.0, true, false, 0),
		transition(38, 90, "L1", 6.0, true, true, 1.0),
	}

	merged, audit := joiner.Join(decays, transitions)
	if len(merged) != 0 {
		t.Fatalf("Expected no merged record for an ambiguous key, got %d", len(merged))
	}
	if len(audit.Skipped) != 1 {
		t.Fatalf("Expected 1 skip in the audit, got %d", len(audit.Skipped))
	}
	if audit.Skipped[0].Z != 38 || audit.Skipped[0].A != 90 {
		t.Errorf("Expected the skip to name (38,90), got %+v", audit.Skipped[0])
	}
}

func TestSelectDominant_ErrorsOnZeroAndMany(t *testing.T) {
	two := []model.TransitionRecord{
		transition(38, 90, "gs", 5.0, true, false, 0),
		transition(38, 90, "L1", 6.0, true, true, 1.0),
	}
	_, err := SelectDominant(two)
	var aerr *model.AmbiguousBranchError
	if !errors.As(err, &aerr) {
		t.Fatalf("Expected AmbiguousBranchError for two dominant rows, got %T", err)
	}
	if aerr.Dominant != 2 {
		t.Errorf("Expected Dominant=2, got %d", aerr.Dominant)
	}

	none := []model.TransitionRecord{
		transition(38, 90, "gs", 5.0, false, false, 0),
	}
	_, err = SelectDominant(none)
	if !errors.As(err, &aerr) {
		t.Fatalf("Expected AmbiguousBranchError for zero dominant rows, got %T", err)
	}
	if aerr.Dominant != 0 {
		t.Errorf("Expected Dominant=0, got %d", aerr.Dominant)
	}

	one := []model.TransitionRecord{
		transition(38, 90, "gs", 5.0, true, false, 0),
		transition(38, 90, "L1", 6.0, false, true, 1.0),
	}
	branch, err := SelectDominant(one)
	if err != nil {
		t.Fatalf("Unexpected error for a unique dominant row: %v", err)
	}
	if branch.BranchID != "gs" {
		t.Errorf("Expected the dominant branch gs, got %q", branch.BranchID)
	}
}

func TestEffectiveQ_NonPositiveIsDomainError(t *testing.T) {
	d := decay(38, 90, model.ModeBetaMinus, 120.0, 1.0)

	// Excitation at least as large as Q: must error, never floor to zero.
	_, err := EffectiveQ(d, transition(38, 90, "L1", 5.0, true, true, 1.0))
	var derr *model.DomainError
	if !errors.As(err, &derr) {
		t.Fatalf("Expected DomainError for Q_eff <= 0, got %T", err)
	}
	if derr.Quantity != "Q_eff_mev" {
		t.Errorf("Expected quantity Q_eff_mev, got %q", derr.Quantity)
	}

	_, err = EffectiveQ(d, transition(38, 90, "L2", 5.0, true, true, 2.5))
	if !errors.As(err, &derr) {
		t.Fatalf("Expected DomainError for negative Q_eff, got %T", err)
	}
}

func TestJoiner_NonPositiveEffectiveQGoesToAudit(t *testing.T) {
	joiner := NewJoiner()

	decays := []model.DecayRecord{decay(38, 90, model.ModeBetaMinus, 120.0, 1.0)}
	transitions := []model.TransitionRecord{transition(38, 90, "L1", 5.0, true, true, 1.5)}

	merged, audit := joiner.Join(decays, transitions)
	if len(merged) != 0 {
		t.Fatalf("Expected no merged record, got %d", len(merged))
	}
	if len(audit.Skipped) != 1 {
		t.Fatalf("Expected 1 audit skip, got %d", len(audit.Skipped))
	}
}

func TestJoiner_Idempotent(t *testing.T) {
	joiner := NewJoiner()

	decays := []model.DecayRecord{
		decay(38, 90, model.ModeBetaMinus, 120.0, 6.0),
		decay(53, 135, model.ModeEC, 3600.0, 2.5),
		decay(40, 95, model.ModeBetaMinus, 10.0, 3.0),
	}
	transitions := []model.TransitionRecord{
		transition(38, 90, "gs", 5.0, true, false, 0),
		transition(53, 135, "gs", 6.3, true, false, 0),
		transition(47, 110, "gs", 7.0, true, false, 0),
	}

	first, firstAudit := joiner.Join(decays, transitions)
	second, secondAudit := joiner.Join(decays, transitions)

	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical merged records from identical inputs")
	}
	if !reflect.DeepEqual(firstAudit, secondAudit) {
		t.Errorf("Expected identical audits, got %+v vs %+v", firstAudit, secondAudit)
	}
}
