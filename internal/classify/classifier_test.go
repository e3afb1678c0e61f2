package classify

import (
	"math"
	"testing"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
)

func TestParityOf_KnownNuclides(t *testing.T) {
	cases := []struct {
		z, n int
		want model.ParityClass
	}{
		{50, 82, model.ParityEvenEven},
		{53, 82, model.ParityOddA},
		{53, 83, model.ParityOddOdd},
		{52, 83, model.ParityOddA},
		{2, 2, model.ParityEvenEven},
		{1, 1, model.ParityOddOdd},
	}

	for _, tc := range cases {
		if got := ParityOf(tc.z, tc.n); got != tc.want {
			t.Errorf("ParityOf(%d, %d): expected %s, got %s", tc.z, tc.n, tc.want, got)
		}
	}
}

func TestClassify_StrontiumHandComputed(t *testing.T) {
	// Z=38, Q_eff=6.0 gives G=471396.2378504116; half-life 120 s gives
	// tau=173.1234049066756. With alpha=1.8, delta=1.1, logft=5.0:
	//   log10_tau_pred = 1.8 + 1.1*5.0 - log10(G) = 1.6266138878433587
	//   delta_struct   = log10(tau) - pred      = 0.6117418971591277
	classifier := NewClassifier(model.FrozenLawParams{Alpha: 1.8, Delta: 1.1})

	records := []model.MergedRecord{{
		Z:       38,
		A:       90,
		N:       52,
		Mode:    model.ModeBetaMinus,
		TauS:    173.1234049066756,
		QEffMeV: 6.0,
		Logft:   5.0,
		G:       471396.2378504116,
		GSatz:   14,
	}}

	out, err := classifier.Classify(records)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("Expected 1 residual record, got %d", len(out))
	}

	r := out[0]
	if math.Abs(r.Log10TauPred-1.6266138878433587) > 1e-6 {
		t.Errorf("Expected log10_tau_pred = 1.6266138878, got %v", r.Log10TauPred)
	}
	if math.Abs(r.DeltaStruct-0.6117418971591277) > 1e-6 {
		t.Errorf("Expected delta_struct = 0.6117418972, got %v", r.DeltaStruct)
	}
	if r.ParityClass != model.ParityEvenEven {
		t.Errorf("Expected even-even for Z=38 N=52, got %s", r.ParityClass)
	}
}

func TestClassify_FrozenParamsNeverMutate(t *testing.T) {
	params := model.FrozenLawParams{Alpha: 1.8, Delta: 1.1}
	classifier := NewClassifier(params)

	records := []model.MergedRecord{
		{Z: 38, A: 90, N: 52, TauS: 173.12, Logft: 5.0, G: 471396.23},
		{Z: 53, A: 135, N: 82, TauS: 9000.0, Logft: 6.3, G: 7468.54},
	}

	first, err := classifier.Classify(records)
	if err != nil {
		t.Fatalf("First classify failed: %v", err)
	}
	second, err := classifier.Classify(records)
	if err != nil {
		t.Fatalf("Second classify failed: %v", err)
	}

	for i := range first {
		if first[i].DeltaStruct != second[i].DeltaStruct {
			t.Errorf("Row %d: residual changed between runs: %v vs %v", i, first[i].DeltaStruct, second[i].DeltaStruct)
		}
		if first[i].Log10TauPred != second[i].Log10TauPred {
			t.Errorf("Row %d: prediction changed between runs", i)
		}
	}

	got := classifier.Params()
	if got.Alpha != params.Alpha || got.Delta != params.Delta {
		t.Errorf("Coefficients drifted: %+v", got)
	}
}

func TestClassify_RejectsNonPositiveInputs(t *testing.T) {
	classifier := NewClassifier(model.FrozenLawParams{Alpha: 1.8, Delta: 1.1})

	if _, err := classifier.Classify([]model.MergedRecord{{Z: 38, A: 90, TauS: 0, Logft: 5, G: 100}}); err == nil {
		t.Error("Expected an error for non-positive tau")
	}
	if _, err := classifier.Classify([]model.MergedRecord{{Z: 38, A: 90, TauS: 10, Logft: 5, G: 0}}); err == nil {
		t.Error("Expected an error for non-positive G")
	}
}

func TestGBins_QuantileAssignment(t *testing.T) {
	// log10(G) = 1..6 across six records: thirds split as {1,2}, {3,4}, {5,6}.
	records := make([]model.ResidualRecord, 6)
	for i := range records {
		records[i].G = math.Pow(10, float64(i+1))
	}

	labels := GBins(records, 3)
	want := []string{"G_q1", "G_q1", "G_q2", "G_q2", "G_q3", "G_q3"}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("Record %d: expected %s, got %s", i, want[i], labels[i])
		}
	}
}

func TestGBins_EqualValuesShareABin(t *testing.T) {
	records := make([]model.ResidualRecord, 4)
	for i := range records {
		records[i].G = 1000.0
	}

	labels := GBins(records, 3)
	for i, l := range labels {
		if l != labels[0] {
			t.Errorf("Record %d: equal G values split across bins: %v", i, labels)
		}
	}
}

func TestLogftClass_CanonicalEdges(t *testing.T) {
	edges := []float64{5.5, 6.5}

	cases := []struct {
		logft float64
		want  string
	}{
		{4.2, LogftAllowedish},
		{5.5, LogftAllowedish}, // right-closed
		{5.6, LogftMixed},
		{6.5, LogftMixed},
		{6.51, LogftForbiddenish},
		{9.0, LogftForbiddenish},
	}
	for _, tc := range cases {
		if got := LogftClass(tc.logft, edges); got != tc.want {
			t.Errorf("LogftClass(%g): expected %s, got %s", tc.logft, tc.want, got)
		}
	}
}

func TestLogftClass_GenericEdges(t *testing.T) {
	edges := []float64{5.0}
	if got := LogftClass(4.0, edges); got != "ft_bin1" {
		t.Errorf("Expected ft_bin1, got %s", got)
	}
	if got := LogftClass(6.0, edges); got != "ft_bin2" {
		t.Errorf("Expected ft_bin2, got %s", got)
	}
}
