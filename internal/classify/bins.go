package classify

import (
	"fmt"
	"math"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
	"github.com/arwells-research/satz-lifetime-diagnostics/internal/stats"
)

// Logft class labels for the canonical two-edge split. The edges separate
// roughly allowed transitions from first-forbidden and beyond; the labels
// are deliberately hedged, logft alone does not fix the classification.
const (
	LogftAllowedish   = "allowed-ish"
	LogftMixed        = "mixed"
	LogftForbiddenish = "forbidden-ish"
)

// GBins assigns each record a quantile-bin label of log10(G), labels
// G_q1..G_qn in ascending G. Bins are right-closed at the quantile edges,
// so equal values always share a bin. Fewer distinct values than bins
// simply leaves upper bins empty.
func GBins(records []model.ResidualRecord, n int) []string {
	if n < 1 {
		n = 1
	}
	logG := make([]float64, len(records))
	for i, r := range records {
		logG[i] = math.Log10(r.G)
	}

	edges := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		edges = append(edges, stats.Quantile(logG, float64(i)/float64(n)))
	}

	labels := make([]string, len(records))
	for i, v := range logG {
		labels[i] = binLabel(v, edges, n)
	}
	return labels
}

func binLabel(v float64, edges []float64, n int) string {
	for i, edge := range edges {
		if v <= edge {
			return fmt.Sprintf("G_q%d", i+1)
		}
	}
	return fmt.Sprintf("G_q%d", n)
}

// LogftClass buckets a logft value into fixed right-closed bins at the
// given interior edges. The canonical two-edge split gets the named
// labels; any other edge count falls back to ft_bin1..k.
func LogftClass(logft float64, edges []float64) string {
	if len(edges) == 2 {
		switch {
		case logft <= edges[0]:
			return LogftAllowedish
		case logft <= edges[1]:
			return LogftMixed
		default:
			return LogftForbiddenish
		}
	}
	for i, edge := range edges {
		if logft <= edge {
			return fmt.Sprintf("ft_bin%d", i+1)
		}
	}
	return fmt.Sprintf("ft_bin%d", len(edges)+1)
}
