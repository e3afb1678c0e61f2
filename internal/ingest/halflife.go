package ingest

import (
	"fmt"
	"math"
	"strings"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
)

// Ln2 converts between half-life and mean lifetime: tau = T_1/2 / ln 2.
const Ln2 = math.Ln2

// halfLifeUnitSeconds maps a half-life unit label to its length in seconds.
// Years are Julian years (365.25 d), matching the evaluated-data convention.
var halfLifeUnitSeconds = map[string]float64{
	"s":   1,
	"sec": 1,
	"ms":  1e-3,
	"us":  1e-6,
	"µs":  1e-6,
	"ns":  1e-9,
	"ps":  1e-12,
	"m":   60,
	"min": 60,
	"h":   3600,
	"hr":  3600,
	"d":   86400,
	"y":   365.25 * 86400,
	"yr":  365.25 * 86400,
}

// HalfLifeSeconds converts a half-life given as value plus unit label to
// seconds. The label is matched case-insensitively after trimming.
func HalfLifeSeconds(value float64, unit string) (float64, error) {
	factor, ok := halfLifeUnitSeconds[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return 0, fmt.Errorf("unknown half-life unit %q", unit)
	}
	if value <= 0 {
		return 0, fmt.Errorf("half-life must be positive, got %g %s", value, unit)
	}
	return value * factor, nil
}

// MeanLifetime derives tau_s from a half-life in seconds. tau_s is always
// computed here, never read from input.
func MeanLifetime(halfLifeS float64) float64 {
	return halfLifeS / Ln2
}

// ParseMode normalizes a decay-mode label. Evaluated tables spell the same
// channel many ways (B-, beta-, β-, ec, EC); anything that is not clearly
// beta-minus or electron capture is rejected.
func ParseMode(s string) (model.DecayMode, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "β", "beta")
	norm = strings.ReplaceAll(norm, "−", "-") // unicode minus

	switch norm {
	case "b-", "beta-", "beta", "beta-minus", "betaminus":
		return model.ModeBetaMinus, nil
	case "ec", "e", "ε", "eps", "epsilon", "ec+b+", "ec/b+":
		return model.ModeEC, nil
	}
	return "", fmt.Errorf("unrecognized decay mode %q", s)
}
