package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
)

// ResidualColumns is the stable residual-table header, in order. Code
// downstream selects columns by name, so renames are breaking changes.
var ResidualColumns = []string{
	"Z", "A", "N", "mode",
	"tau_s", "Q_eff_mev", "logft",
	"G", "G_satz",
	"log10_tau_pred", "delta_struct", "parity_class",
}

// SummaryColumns is the group-summary header, in order.
var SummaryColumns = []string{
	"subset", "grouping", "group", "count", "median_residual", "iqr",
}

// WriteCSV writes the residual rows to w under the stable header.
func WriteCSV(w io.Writer, records []model.ResidualRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ResidualColumns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(residualRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummariesCSV writes the stratified group summaries to w.
func WriteSummariesCSV(w io.Writer, summaries []model.GroupSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SummaryColumns); err != nil {
		return err
	}
	for _, s := range summaries {
		row := []string{
			s.Subset,
			s.Grouping,
			s.Group,
			strconv.Itoa(s.Count),
			formatFloat(s.MedianResidual),
			formatFloat(s.IQR),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func residualRow(r model.ResidualRecord) []string {
	return []string{
		strconv.Itoa(r.Z),
		strconv.Itoa(r.A),
		strconv.Itoa(r.N),
		string(r.Mode),
		formatFloat(r.TauS),
		formatFloat(r.QEffMeV),
		formatFloat(r.Logft),
		formatFloat(r.G),
		strconv.Itoa(r.GSatz),
		formatFloat(r.Log10TauPred),
		formatFloat(r.DeltaStruct),
		string(r.ParityClass),
	}
}

// formatFloat uses the shortest representation that parses back to the
// same float64, so exports round-trip exactly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
