package law

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frozen_law.json")

	params := model.FrozenLawParams{
		Alpha: 2.31,
		Delta: 0.94,
		Provenance: map[string]interface{}{
			"fitted_at": "2026-02-11T00:00:00Z",
			"n":         float64(57),
		},
	}
	if err := Save(path, params, false); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Alpha != 2.31 || loaded.Delta != 0.94 {
		t.Errorf("Expected alpha=2.31 delta=0.94, got %g %g", loaded.Alpha, loaded.Delta)
	}
	if loaded.Provenance["fitted_at"] != "2026-02-11T00:00:00Z" {
		t.Errorf("Expected provenance to round-trip, got %v", loaded.Provenance)
	}
	if _, ok := loaded.Provenance["alpha"]; ok {
		t.Error("Coefficient keys must not leak into provenance")
	}
}

func TestSave_RefusesOverwriteWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frozen_law.json")

	first := model.FrozenLawParams{Alpha: 2.3, Delta: 0.9}
	if err := Save(path, first, false); err != nil {
		t.Fatalf("Initial save failed: %v", err)
	}

	err := Save(path, model.FrozenLawParams{Alpha: 9.9, Delta: 9.9}, false)
	if err == nil {
		t.Fatal("Expected the second save to fail closed")
	}
	if !errors.Is(err, model.ErrFrozenLawRefit) {
		t.Errorf("Expected ErrFrozenLawRefit, got %v", err)
	}

	// The frozen file must be untouched.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load after refused overwrite failed: %v", err)
	}
	if loaded.Alpha != 2.3 || loaded.Delta != 0.9 {
		t.Errorf("Frozen coefficients changed to %g %g", loaded.Alpha, loaded.Delta)
	}

	// An explicit force is the only way through.
	if err := Save(path, model.FrozenLawParams{Alpha: 2.4, Delta: 0.91}, true); err != nil {
		t.Fatalf("Forced save failed: %v", err)
	}
	loaded, _ = Load(path)
	if loaded.Alpha != 2.4 {
		t.Errorf("Expected forced save to take effect, got alpha=%g", loaded.Alpha)
	}
}

func TestLoad_MissingFileIsFrozenParamsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	var perr *model.FrozenParamsError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected FrozenParamsError, got %T: %v", err, err)
	}
}

func TestLoad_MalformedAndIncomplete(t *testing.T) {
	dir := t.TempDir()

	malformed := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(malformed, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	var perr *model.FrozenParamsError
	if _, err := Load(malformed); !errors.As(err, &perr) {
		t.Errorf("Expected FrozenParamsError for malformed JSON, got %v", err)
	}

	missingDelta := filepath.Join(dir, "nodelta.json")
	if err := os.WriteFile(missingDelta, []byte(`{"alpha": 2.3}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(missingDelta); !errors.As(err, &perr) {
		t.Errorf("Expected FrozenParamsError for a missing delta key, got %v", err)
	}

	stringAlpha := filepath.Join(dir, "stringalpha.json")
	if err := os.WriteFile(stringAlpha, []byte(`{"alpha": "2.3", "delta": 0.9}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(stringAlpha); !errors.As(err, &perr) {
		t.Errorf("Expected FrozenParamsError for a non-numeric alpha, got %v", err)
	}
}

func TestSave_PreservesUnknownProvenanceOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frozen_law.json")

	params := model.FrozenLawParams{
		Alpha:      2.3,
		Delta:      0.9,
		Provenance: map[string]interface{}{"dataset": "phase1_training", "note": "gs-to-gs only"},
	}
	if err := Save(path, params, false); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Saved file is not valid JSON: %v", err)
	}
	if raw["dataset"] != "phase1_training" || raw["note"] != "gs-to-gs only" {
		t.Errorf("Expected provenance keys in the saved file, got %v", raw)
	}
	if raw["alpha"] != 2.3 || raw["delta"] != 0.9 {
		t.Errorf("Expected coefficients in the saved file, got %v", raw)
	}
}
