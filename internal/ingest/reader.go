// Package ingest loads the decay and transition CSV tables into typed
// records: named-column schema checks, half-life normalization to seconds,
// and decay-mode cleanup. A missing column kills the run; a bad cell only
// skips its row, with the skip recorded for the audit.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
)

// RowSkip records one input row that was dropped and why.
type RowSkip struct {
	Line   int    `json:"line"` // 1-based line number in the source table, header included
	Reason string `json:"reason"`
}

// Decay-table columns. half_life_s may be replaced by the pair
// half_life + half_life_unit, normalized at load.
var (
	decayRequired      = []string{"Z", "A", "mode", "Q_mev"}
	transitionRequired = []string{"Z", "A", "branch_id", "logft", "is_dominant", "feeds_excited_state", "excitation_energy_mev"}
)

// header maps lower-cased column names to their index.
type header map[string]int

func readHeader(rec []string) header {
	h := make(header, len(rec))
	for i, name := range rec {
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return h
}

func (h header) col(name string) (int, bool) {
	i, ok := h[strings.ToLower(name)]
	return i, ok
}

func (h header) require(table string, names ...string) error {
	for _, name := range names {
		if _, ok := h.col(name); !ok {
			return &model.SchemaError{Table: table, Column: name}
		}
	}
	return nil
}

// ReadDecayTable parses the half-life table from r. The table name is used
// in schema errors. Returns the parsed records, per-row skips, and a fatal
// error for unreadable input or a missing required column.
func ReadDecayTable(r io.Reader, table string) ([]model.DecayRecord, []RowSkip, error) {
	rows, h, err := readTable(r, table)
	if err != nil {
		return nil, nil, err
	}
	if err := h.require(table, decayRequired...); err != nil {
		return nil, nil, err
	}

	// Half-life comes either pre-normalized or as value+unit.
	_, hasSeconds := h.col("half_life_s")
	_, hasValue := h.col("half_life")
	_, hasUnit := h.col("half_life_unit")
	if !hasSeconds && !(hasValue && hasUnit) {
		return nil, nil, &model.SchemaError{Table: table, Column: "half_life_s"}
	}

	var records []model.DecayRecord
	var skips []RowSkip
	for _, row := range rows {
		rec, reason := parseDecayRow(h, row.fields, hasSeconds)
		if reason != "" {
			skips = append(skips, RowSkip{Line: row.line, Reason: reason})
			continue
		}
		records = append(records, rec)
	}
	return records, skips, nil
}

// ReadTransitionTable parses the transition-strength table from r.
func ReadTransitionTable(r io.Reader, table string) ([]model.TransitionRecord, []RowSkip, error) {
	rows, h, err := readTable(r, table)
	if err != nil {
		return nil, nil, err
	}
	if err := h.require(table, transitionRequired...); err != nil {
		return nil, nil, err
	}

	var records []model.TransitionRecord
	var skips []RowSkip
	for _, row := range rows {
		rec, reason := parseTransitionRow(h, row.fields)
		if reason != "" {
			skips = append(skips, RowSkip{Line: row.line, Reason: reason})
			continue
		}
		records = append(records, rec)
	}
	return records, skips, nil
}

type tableRow struct {
	line   int
	fields []string
}

func readTable(r io.Reader, table string) ([]tableRow, header, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	headerRec, err := cr.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("table %q is empty", table)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read %q header: %w", table, err)
	}
	h := readHeader(headerRec)

	var rows []tableRow
	line := 1
	for {
		rec, err := cr.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read %q line %d: %w", table, line, err)
		}
		rows = append(rows, tableRow{line: line, fields: rec})
	}
	return rows, h, nil
}

func parseDecayRow(h header, fields []string, hasSeconds bool) (model.DecayRecord, string) {
	var rec model.DecayRecord

	z, err := intField(h, fields, "Z")
	if err != nil {
		return rec, err.Error()
	}
	a, err := intField(h, fields, "A")
	if err != nil {
		return rec, err.Error()
	}
	if a < z {
		return rec, fmt.Sprintf("A=%d smaller than Z=%d", a, z)
	}

	modeRaw, _ := stringField(h, fields, "mode")
	mode, err := ParseMode(modeRaw)
	if err != nil {
		return rec, err.Error()
	}

	q, err := floatField(h, fields, "Q_mev")
	if err != nil {
		return rec, err.Error()
	}

	var halfLifeS float64
	if hasSeconds {
		halfLifeS, err = floatField(h, fields, "half_life_s")
		if err != nil {
			return rec, err.Error()
		}
		if halfLifeS <= 0 {
			return rec, fmt.Sprintf("half_life_s must be positive, got %g", halfLifeS)
		}
	} else {
		value, err := floatField(h, fields, "half_life")
		if err != nil {
			return rec, err.Error()
		}
		unit, _ := stringField(h, fields, "half_life_unit")
		halfLifeS, err = HalfLifeSeconds(value, unit)
		if err != nil {
			return rec, err.Error()
		}
	}

	rec = model.DecayRecord{
		Z:         z,
		A:         a,
		N:         a - z, // invariant: N is always derived
		Mode:      mode,
		HalfLifeS: halfLifeS,
		TauS:      MeanLifetime(halfLifeS),
		QMeV:      q,
	}
	return rec, ""
}

func parseTransitionRow(h header, fields []string) (model.TransitionRecord, string) {
	var rec model.TransitionRecord

	z, err := intField(h, fields, "Z")
	if err != nil {
		return rec, err.Error()
	}
	a, err := intField(h, fields, "A")
	if err != nil {
		return rec, err.Error()
	}
	branch, _ := stringField(h, fields, "branch_id")

	logft, err := floatField(h, fields, "logft")
	if err != nil {
		return rec, err.Error()
	}
	dominant, err := boolField(h, fields, "is_dominant")
	if err != nil {
		return rec, err.Error()
	}
	feeds, err := boolField(h, fields, "feeds_excited_state")
	if err != nil {
		return rec, err.Error()
	}
	excitation, err := floatField(h, fields, "excitation_energy_mev")
	if err != nil {
		return rec, err.Error()
	}
	if excitation < 0 {
		return rec, fmt.Sprintf("excitation_energy_mev must be non-negative, got %g", excitation)
	}

	rec = model.TransitionRecord{
		Z:                   z,
		A:                   a,
		BranchID:            branch,
		Logft:               logft,
		IsDominant:          dominant,
		FeedsExcitedState:   feeds,
		ExcitationEnergyMeV: excitation,
	}
	return rec, ""
}

func stringField(h header, fields []string, name string) (string, error) {
	i, ok := h.col(name)
	if !ok || i >= len(fields) {
		return "", fmt.Errorf("missing value for %s", name)
	}
	return strings.TrimSpace(fields[i]), nil
}

func intField(h header, fields []string, name string) (int, error) {
	s, err := stringField(h, fields, name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad %s value %q", name, s)
	}
	return v, nil
}

func floatField(h header, fields []string, name string) (float64, error) {
	s, err := stringField(h, fields, name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s value %q", name, s)
	}
	return v, nil
}

func boolField(h header, fields []string, name string) (bool, error) {
	s, err := stringField(h, fields, name)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(s) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("bad %s value %q", name, s)
	}
	return v, nil
}
