// Package export turns evaluation records and agent summaries into
// tabular form and writes them as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/okian/agenteval/internal/domain/model"
)

// File permission constants.
const (
	filePermission      = 0o644
	directoryPermission = 0o750
)

// Column names of the detail and summary tables.
var (
	DetailColumns  = []string{"id", "question", "expected", "answer", "agent", "score", "pass", "feedback"}
	SummaryColumns = []string{"agent", "correct", "total", "avg_score", "accuracy_pct"}
)

// Table is an ordered list of named columns with one row per item.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// FloatFormat renders float cells.
type FloatFormat func(float64) string

// RawFloat keeps the shortest representation that round-trips.
func RawFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// TwoDecimals renders f with two decimal places.
func TwoDecimals(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }

// DetailTable builds the per-record table with full float precision.
func DetailTable(records []model.EvaluationRecord) Table {
	return DetailTableWith(records, RawFloat)
}

// DetailTableWith builds the per-record table rendering score with ff.
func DetailTableWith(records []model.EvaluationRecord, ff FloatFormat) Table {
	t := Table{Columns: DetailColumns, Rows: make([][]string, 0, len(records))}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(r.ID),
			r.Question,
			r.Expected,
			r.Answer,
			r.Agent,
			ff(r.Score),
			strconv.FormatBool(r.Pass),
			string(r.Feedback),
		})
	}
	return t
}

// SummaryTable builds the per-agent table with full float precision.
func SummaryTable(summaries []model.AgentSummary) Table {
	return SummaryTableWith(summaries, RawFloat)
}

// SummaryTableWith builds the per-agent table rendering floats with ff.
func SummaryTableWith(summaries []model.AgentSummary, ff FloatFormat) Table {
	t := Table{Columns: SummaryColumns, Rows: make([][]string, 0, len(summaries))}
	for _, s := range summaries {
		t.Rows = append(t.Rows, []string{
			s.Agent,
			strconv.Itoa(s.Correct),
			strconv.Itoa(s.Total),
			ff(s.AvgScore),
			ff(s.AccuracyPct),
		})
	}
	return t
}

// WriteCSV writes the header and rows of t to w.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// WriteFile writes t as CSV to path, creating parent directories.
func WriteFile(path string, t Table) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()
	return WriteCSV(f, t)
}
