package export

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
)

const createResidualsTable = `CREATE TABLE IF NOT EXISTS residuals (
	z INTEGER NOT NULL,
	a INTEGER NOT NULL,
	n INTEGER NOT NULL,
	mode TEXT NOT NULL,
	tau_s REAL NOT NULL,
	q_eff_mev REAL NOT NULL,
	logft REAL NOT NULL,
	g REAL NOT NULL,
	g_satz INTEGER NOT NULL,
	log10_tau_pred REAL NOT NULL,
	delta_struct REAL NOT NULL,
	parity_class TEXT NOT NULL,
	PRIMARY KEY (z, a)
)`

const createSummariesTable = `CREATE TABLE IF NOT EXISTS group_summaries (
	subset TEXT NOT NULL,
	grouping TEXT NOT NULL,
	"group" TEXT NOT NULL,
	count INTEGER NOT NULL,
	median_residual REAL NOT NULL,
	iqr REAL NOT NULL
)`

// WriteSQLite writes the residual rows and group summaries into a SQLite
// database at path, replacing any rows from an earlier export. Both
// tables land in one transaction so a failed export leaves the previous
// content intact.
func WriteSQLite(path string, records []model.ResidualRecord, summaries []model.GroupSummary) (retErr error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil && retErr == nil {
			retErr = err
		}
	}()

	if _, err := db.Exec(createResidualsTable); err != nil {
		return fmt.Errorf("create residuals table: %w", err)
	}
	if _, err := db.Exec(createSummariesTable); err != nil {
		return fmt.Errorf("create group_summaries table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.Exec(`DELETE FROM residuals`); err != nil {
		retErr = fmt.Errorf("clear residuals: %w", err)
		return retErr
	}
	if _, err := tx.Exec(`DELETE FROM group_summaries`); err != nil {
		retErr = fmt.Errorf("clear group_summaries: %w", err)
		return retErr
	}

	if retErr = insertResiduals(tx, records); retErr != nil {
		return retErr
	}
	if retErr = insertSummaries(tx, summaries); retErr != nil {
		return retErr
	}

	return tx.Commit()
}

func insertResiduals(tx *sql.Tx, records []model.ResidualRecord) error {
	stmt, err := tx.Prepare(`INSERT INTO residuals
		(z, a, n, mode, tau_s, q_eff_mev, logft, g, g_satz, log10_tau_pred, delta_struct, parity_class)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare residual insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		_, err := stmt.Exec(r.Z, r.A, r.N, string(r.Mode),
			r.TauS, r.QEffMeV, r.Logft, r.G, r.GSatz,
			r.Log10TauPred, r.DeltaStruct, string(r.ParityClass))
		if err != nil {
			return fmt.Errorf("insert residual Z=%d A=%d: %w", r.Z, r.A, err)
		}
	}
	return nil
}

func insertSummaries(tx *sql.Tx, summaries []model.GroupSummary) error {
	stmt, err := tx.Prepare(`INSERT INTO group_summaries
		(subset, grouping, "group", count, median_residual, iqr)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare summary insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, s := range summaries {
		_, err := stmt.Exec(s.Subset, s.Grouping, s.Group, s.Count, s.MedianResidual, s.IQR)
		if err != nil {
			return fmt.Errorf("insert summary %s/%s/%s: %w", s.Subset, s.Grouping, s.Group, err)
		}
	}
	return nil
}
