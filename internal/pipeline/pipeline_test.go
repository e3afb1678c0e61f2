package pipeline

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
)

const transitionCSV = `Z,A,branch_id,logft,is_dominant,feeds_excited_state,excitation_energy_mev
38,90,b1,5.0,true,false,0.0
53,135,g1,6.1,true,true,0.2
40,96,b1,5.5,true,false,0.0
`

// wideDecayCSV produces residuals of +0.61, -0.19, -0.41 dex against
// alpha=1.8, delta=1.1: the median and correlation checks both fail.
const wideDecayCSV = `Z,A,mode,half_life_s,Q_mev
38,90,beta-,120.0,6.0
53,135,EC,23652.0,2.6
40,96,beta-,60.0,5.5
99,250,beta-,1.0,3.0
`

// tunedDecayCSV produces residuals of +0.06, +0.05, -0.10 dex, chosen
// orthogonal to logft so all three acceptance checks pass.
const tunedDecayCSV = `Z,A,mode,half_life_s,Q_mev
38,90,beta-,33.68521695872876,6.0
53,135,EC,41326.95967317577,2.6
40,96,beta-,123.62602404605845,5.5
`

const paramsJSON = `{"alpha": 1.8, "delta": 1.1}
`

func fixtureConfig(t *testing.T, decayCSV string) *model.Config {
	t.Helper()
	dir := t.TempDir()

	decayPath := filepath.Join(dir, "decays.csv")
	if err := os.WriteFile(decayPath, []byte(decayCSV), 0644); err != nil {
		t.Fatalf("Failed to write decay fixture: %v", err)
	}
	transPath := filepath.Join(dir, "transitions.csv")
	if err := os.WriteFile(transPath, []byte(transitionCSV), 0644); err != nil {
		t.Fatalf("Failed to write transition fixture: %v", err)
	}
	paramsPath := filepath.Join(dir, "frozen_law.json")
	if err := os.WriteFile(paramsPath, []byte(paramsJSON), 0644); err != nil {
		t.Fatalf("Failed to write params fixture: %v", err)
	}

	cfg := model.DefaultConfig()
	cfg.Data.DecayTable = decayPath
	cfg.Data.TransitionTable = transPath
	cfg.Law.ParamsPath = paramsPath
	cfg.Cache.Enabled = false
	cfg.Output.Dir = filepath.Join(dir, "out")
	return cfg
}

func TestPipeline_ClassifyEndToEnd(t *testing.T) {
	cfg := fixtureConfig(t, wideDecayCSV)
	p := NewPipeline(cfg, nil)

	result, err := p.Classify()
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	if result.Report.Rows != 3 {
		t.Errorf("Expected 3 residual rows, got %d", result.Report.Rows)
	}
	if result.Report.Audit.MatchedPairs != 3 {
		t.Errorf("Expected 3 matched pairs, got %d", result.Report.Audit.MatchedPairs)
	}
	if result.Report.Audit.UnmatchedDecays != 1 {
		t.Errorf("Expected 1 unmatched decay (Z=99), got %d", result.Report.Audit.UnmatchedDecays)
	}

	var sr *model.ResidualRecord
	var iodine *model.ResidualRecord
	for i := range result.Residuals {
		switch result.Residuals[i].Z {
		case 38:
			sr = &result.Residuals[i]
		case 53:
			iodine = &result.Residuals[i]
		}
	}
	if sr == nil || iodine == nil {
		t.Fatal("Expected rows for Z=38 and Z=53")
	}

	if math.Abs(sr.DeltaStruct-0.6117418971591277) > 1e-9 {
		t.Errorf("Sr-90 residual off: got %v", sr.DeltaStruct)
	}
	if sr.ParityClass != model.ParityEvenEven {
		t.Errorf("Expected Sr-90 even-even, got %s", sr.ParityClass)
	}
	// EC row feeding an excited state: Q_eff = 2.6 - 0.2
	if math.Abs(iodine.QEffMeV-2.4) > 1e-12 {
		t.Errorf("Expected Q_eff 2.4 MeV for the EC row, got %v", iodine.QEffMeV)
	}

	if len(result.Summaries) == 0 {
		t.Fatal("Expected stratified summaries alongside the residuals")
	}
	first := result.Summaries[0]
	if first.Group != string(model.ParityEvenEven) || first.Count != 2 {
		t.Errorf("Expected the first summary to be even-even with 2 rows, got %+v", first)
	}
}

func TestPipeline_ValidateFailsOnWideResiduals(t *testing.T) {
	cfg := fixtureConfig(t, wideDecayCSV)
	p := NewPipeline(cfg, nil)

	result, err := p.Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if result.Report.Validation == nil {
		t.Fatal("Expected a validation verdict on the report")
	}
	if result.Report.Validation.Status != model.VerdictFail {
		t.Errorf("Expected fail for a 0.41 dex median, got %s", result.Report.Validation.Status)
	}
}

func TestPipeline_ValidatePassesOnTunedTable(t *testing.T) {
	cfg := fixtureConfig(t, tunedDecayCSV)
	p := NewPipeline(cfg, nil)

	result, err := p.Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if result.Report.Validation.Status != model.VerdictPass {
		t.Errorf("Expected pass for tuned residuals, got %s (signals: %+v)",
			result.Report.Validation.Status, result.Report.Validation.Signals)
	}
}

func TestPipeline_ProbeRendersVerdict(t *testing.T) {
	cfg := fixtureConfig(t, wideDecayCSV)
	p := NewPipeline(cfg, nil)

	result, err := p.Probe()
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if result.Report.Probe == nil {
		t.Fatal("Expected a probe report")
	}
	// Three rows cover only two parity classes: no cell can reach the bar.
	if result.Report.Probe.Verdict.Status != model.VerdictNoGo {
		t.Errorf("Expected no-go, got %s", result.Report.Probe.Verdict.Status)
	}
}

func TestPipeline_FitRecoversCoefficients(t *testing.T) {
	cfg := fixtureConfig(t, wideDecayCSV)
	p := NewPipeline(cfg, nil)

	params, diag, err := p.Fit()
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if diag.N != 3 {
		t.Errorf("Expected the fit to use the 3 matched rows, got %d", diag.N)
	}
	if math.Abs(params.Delta-0.4052677655635089) > 1e-9 {
		t.Errorf("Unexpected slope: %v", params.Delta)
	}
	if math.Abs(params.Alpha-5.645990917005044) > 1e-9 {
		t.Errorf("Unexpected intercept: %v", params.Alpha)
	}
}

func TestPipeline_ExportWritesFiles(t *testing.T) {
	cfg := fixtureConfig(t, wideDecayCSV)
	p := NewPipeline(cfg, nil)

	result, err := p.Classify()
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	paths, err := p.Export(result)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("Expected residuals and summaries files, got %v", paths)
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected %s to exist: %v", path, err)
		}
	}
}

func TestPipeline_MissingParamsFile(t *testing.T) {
	cfg := fixtureConfig(t, wideDecayCSV)
	cfg.Law.ParamsPath = filepath.Join(t.TempDir(), "absent.json")
	p := NewPipeline(cfg, nil)

	_, err := p.Classify()
	if err == nil {
		t.Fatal("Expected an error for missing frozen coefficients")
	}
	var perr *model.FrozenParamsError
	if !errors.As(err, &perr) {
		t.Errorf("Expected a FrozenParamsError, got %v", err)
	}
}
