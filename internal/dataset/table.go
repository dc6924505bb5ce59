// Package dataset loads tabular files of several formats into a uniform
// in-memory table, cleans them, and draws the random sample that feeds the
// analysis prompts.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
)

// Table is the uniform in-memory form of a loaded dataset: ordered columns
// and string cells. Missing values are represented by empty cells.
type Table struct {
	Columns []string
	Rows    [][]string

	// floats marks columns carrying floating-point values. Typed readers
	// (parquet, avro) set it from the source schema; text readers infer it.
	floats []bool
}

// NewTable returns an empty table with the given column names.
func NewTable(columns []string) *Table {
	return &Table{
		Columns: columns,
		floats:  make([]bool, len(columns)),
	}
}

// AppendRow adds a row sized to the column count. Short rows are padded with
// empty (missing) cells; extra trailing cells are dropped, so readers that can
// produce over-long rows must reject them before appending.
func (t *Table) AppendRow(cells []string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// MarkFloat flags a column as floating-point by index.
func (t *Table) MarkFloat(col int) {
	if col >= 0 && col < len(t.floats) {
		t.floats[col] = true
	}
}

// IsFloat reports whether a column is flagged as floating-point.
func (t *Table) IsFloat(col int) bool {
	return col >= 0 && col < len(t.floats) && t.floats[col]
}

// isMissing reports whether a cell counts as a missing value. Typed readers
// store nulls as empty cells; delimited text additionally treats the literal
// NaN as missing.
func isMissing(cell string) bool {
	return cell == "" || cell == "NaN"
}

// DropIncomplete removes every row containing a missing cell and returns the
// number of rows dropped.
func (t *Table) DropIncomplete() int {
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		complete := true
		for _, cell := range row {
			if isMissing(cell) {
				complete = false
				break
			}
		}
		if complete {
			kept = append(kept, row)
		}
	}
	dropped := len(t.Rows) - len(kept)
	t.Rows = kept
	return dropped
}

// inferFloatColumns flags columns whose every non-missing cell parses as a
// number and at least one cell carries a fractional or exponent rendering.
// Pure-integer columns stay unflagged, matching how typed readers treat them.
func (t *Table) inferFloatColumns() {
	for c := range t.Columns {
		sawValue := false
		sawFraction := false
		numeric := true
		for _, row := range t.Rows {
			v := strings.TrimSpace(row[c])
			if isMissing(v) {
				continue
			}
			sawValue = true
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				numeric = false
				break
			}
			if strings.ContainsAny(v, ".eE") {
				sawFraction = true
			}
		}
		t.floats[c] = numeric && sawValue && sawFraction
	}
}

// FormatFloats rewrites every cell of each floating-point column as fixed
// two-decimal text. The caller treats a failure as non-fatal: the table is
// left with its original values.
func (t *Table) FormatFloats() error {
	for c, isFloat := range t.floats {
		if !isFloat {
			continue
		}
		for _, row := range t.Rows {
			v := strings.TrimSpace(row[c])
			if isMissing(v) {
				continue
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("format column %q: parse %q: %w", t.Columns[c], v, err)
			}
			row[c] = strconv.FormatFloat(f, 'f', 2, 64)
		}
	}
	return nil
}

// Sample replaces the rows with an unordered random sample of exactly n rows
// drawn without replacement. Fewer than n rows is an *InsufficientRowsError.
func (t *Table) Sample(n int) error {
	if len(t.Rows) < n {
		return &InsufficientRowsError{Have: len(t.Rows), Want: n}
	}
	idx := rand.Perm(len(t.Rows))[:n]
	rows := make([][]string, n)
	for i, j := range idx {
		rows[i] = t.Rows[j]
	}
	t.Rows = rows
	return nil
}

// WriteCSV writes the table as comma-separated UTF-8 text with a header row
// and no index column.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
