package export

import (
	"encoding/json"
	"io"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
)

// WriteJSON writes the residual rows to w as an indented JSON array.
func WriteJSON(w io.Writer, records []model.ResidualRecord) error {
	return writeJSON(w, records)
}

// WriteSummariesJSON writes the group summaries to w as a JSON array.
func WriteSummariesJSON(w io.Writer, summaries []model.GroupSummary) error {
	return writeJSON(w, summaries)
}

// WriteReport writes a full run report to w. Reports are JSON only;
// the tabular formats exist for the residual rows, not the verdicts.
func WriteReport(w io.Writer, report model.Report) error {
	return writeJSON(w, report)
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
