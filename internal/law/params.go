// Package law owns the frozen two-parameter scaling law: loading and
// persisting the coefficients, and the single Phase-I fit that produces
// them. Everything downstream treats the coefficients as read-only; the
// only write path is Save, and it refuses to overwrite an existing freeze
// unless explicitly forced.
package law

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
)

// Load reads the frozen coefficients from path. The file is JSON with
// required numeric keys alpha and delta; any other keys are carried as
// provenance and ignored by computation. An absent or malformed file is a
// FrozenParamsError, fatal to the run that needed it.
func Load(path string) (model.FrozenLawParams, error) {
	var params model.FrozenLawParams

	data, err := os.ReadFile(path)
	if err != nil {
		return params, &model.FrozenParamsError{Path: path, Reason: "cannot read coefficients file", Err: err}
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return params, &model.FrozenParamsError{Path: path, Reason: "malformed JSON", Err: err}
	}

	alpha, ok := numericKey(raw, "alpha")
	if !ok {
		return params, &model.FrozenParamsError{Path: path, Reason: "missing or non-numeric key alpha"}
	}
	delta, ok := numericKey(raw, "delta")
	if !ok {
		return params, &model.FrozenParamsError{Path: path, Reason: "missing or non-numeric key delta"}
	}

	provenance := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if k == "alpha" || k == "delta" {
			continue
		}
		provenance[k] = v
	}

	params = model.FrozenLawParams{Alpha: alpha, Delta: delta, Provenance: provenance}
	return params, nil
}

// Save persists the coefficients to path, provenance keys included. When
// the file already exists and force is false, Save fails closed with
// ErrFrozenLawRefit: an in-place overwrite of frozen coefficients is a
// refit, and refits must be deliberate.
func Save(path string, params model.FrozenLawParams, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already holds frozen coefficients: %w", path, model.ErrFrozenLawRefit)
		}
	}
	if math.IsNaN(params.Alpha) || math.IsInf(params.Alpha, 0) ||
		math.IsNaN(params.Delta) || math.IsInf(params.Delta, 0) {
		return &model.FrozenParamsError{Path: path, Reason: "coefficients must be finite"}
	}

	out := make(map[string]interface{}, len(params.Provenance)+2)
	for k, v := range params.Provenance {
		out[k] = v
	}
	out["alpha"] = params.Alpha
	out["delta"] = params.Delta

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal coefficients: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create coefficients dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write coefficients: %w", err)
	}
	return nil
}

func numericKey(raw map[string]interface{}, key string) (float64, bool) {
	v, ok := raw[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
