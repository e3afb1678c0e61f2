package model

import (
	"errors"
	"fmt"
)

// ErrFrozenLawRefit rejects any attempt to adjust frozen coefficients from
// residual data. Classification fails closed on it rather than refitting.
var ErrFrozenLawRefit = errors.New("frozen law coefficients are immutable after Phase I")

// DomainError reports a physically invalid input or computed value:
// non-positive Q or Z, or a non-finite phase-space factor. Record-level;
// the offending record is skipped and counted, the run continues.
type DomainError struct {
	Z        int
	A        int     // 0 when the error is not tied to a specific nuclide row
	Quantity string  // which quantity was out of domain, e.g. "Q_eff_mev"
	Value    float64 // the offending value
	Reason   string
}

func (e *DomainError) Error() string {
	if e.A > 0 {
		return fmt.Sprintf("domain error for (Z=%d, A=%d): %s=%g: %s", e.Z, e.A, e.Quantity, e.Value, e.Reason)
	}
	return fmt.Sprintf("domain error: Z=%d %s=%g: %s", e.Z, e.Quantity, e.Value, e.Reason)
}

// AmbiguousBranchError reports a (Z,A) key whose transition rows do not
// contain exactly one dominant branch. Surfaced, never resolved by taking
// the first match. Record-level.
type AmbiguousBranchError struct {
	Z        int
	A        int
	Dominant int // number of is_dominant rows found (0 or >1)
}

func (e *AmbiguousBranchError) Error() string {
	if e.Dominant == 0 {
		return fmt.Sprintf("no dominant branch for (Z=%d, A=%d)", e.Z, e.A)
	}
	return fmt.Sprintf("%d dominant branches for (Z=%d, A=%d), expected exactly one", e.Dominant, e.Z, e.A)
}

// SchemaError reports a required column missing from an input table.
// Run-level fatal: without the column no record can be trusted.
type SchemaError struct {
	Table  string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %q is missing required column %q", e.Table, e.Column)
}

// FrozenParamsError reports an absent or malformed coefficients file when
// frozen parameters are required. Run-level fatal.
type FrozenParamsError struct {
	Path   string
	Reason string
	Err    error
}

func (e *FrozenParamsError) Error() string {
	return fmt.Sprintf("frozen params %s: %s", e.Path, e.Reason)
}

func (e *FrozenParamsError) Unwrap() error { return e.Err }
