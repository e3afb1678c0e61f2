// Package export writes the residual table and its stratified summaries
// to CSV, JSON, or SQLite. The residual column set and order are a
// stable contract; downstream notebooks key on the names.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
)

// Supported output formats.
const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// Save writes the residual table, and the group summaries when present,
// under dir in the requested format. It returns the paths written.
func Save(dir, format string, records []model.ResidualRecord, summaries []model.GroupSummary) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	switch format {
	case FormatCSV:
		paths := make([]string, 0, 2)
		p := filepath.Join(dir, "residuals.csv")
		if err := writeFile(p, func(w io.Writer) error { return WriteCSV(w, records) }); err != nil {
			return nil, err
		}
		paths = append(paths, p)
		if len(summaries) > 0 {
			sp := filepath.Join(dir, "summaries.csv")
			if err := writeFile(sp, func(w io.Writer) error { return WriteSummariesCSV(w, summaries) }); err != nil {
				return nil, err
			}
			paths = append(paths, sp)
		}
		return paths, nil

	case FormatJSON:
		paths := make([]string, 0, 2)
		p := filepath.Join(dir, "residuals.json")
		if err := writeFile(p, func(w io.Writer) error { return WriteJSON(w, records) }); err != nil {
			return nil, err
		}
		paths = append(paths, p)
		if len(summaries) > 0 {
			sp := filepath.Join(dir, "summaries.json")
			if err := writeFile(sp, func(w io.Writer) error { return WriteSummariesJSON(w, summaries) }); err != nil {
				return nil, err
			}
			paths = append(paths, sp)
		}
		return paths, nil

	case FormatSQLite:
		p := filepath.Join(dir, "residuals.db")
		if err := WriteSQLite(p, records, summaries); err != nil {
			return nil, err
		}
		return []string{p}, nil

	default:
		return nil, fmt.Errorf("unknown export format: %s", format)
	}
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
