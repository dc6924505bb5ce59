package dataset

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

func TestDropIncomplete(t *testing.T) {
	tbl := NewTable([]string{"a", "b"})
	tbl.AppendRow([]string{"1", "x"})
	tbl.AppendRow([]string{"", "y"})
	tbl.AppendRow([]string{"3", "NaN"})
	tbl.AppendRow([]string{"4", "z"})

	dropped := tbl.DropIncomplete()
	if dropped != 2 {
		t.Fatalf("dropped = %d, want 2", dropped)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(tbl.Rows))
	}
	for _, row := range tbl.Rows {
		for _, cell := range row {
			if isMissing(cell) {
				t.Fatalf("missing cell survived: %v", row)
			}
		}
	}
}

func TestInferFloatColumns(t *testing.T) {
	tbl := NewTable([]string{"id", "price", "name", "count"})
	tbl.AppendRow([]string{"1", "9.5", "ham", "3"})
	tbl.AppendRow([]string{"2", "12", "eggs", "7"})
	tbl.inferFloatColumns()

	if tbl.IsFloat(0) {
		t.Errorf("integer column flagged as float")
	}
	if !tbl.IsFloat(1) {
		t.Errorf("price column not flagged as float")
	}
	if tbl.IsFloat(2) {
		t.Errorf("text column flagged as float")
	}
	if tbl.IsFloat(3) {
		t.Errorf("pure-integer column flagged as float")
	}
}

func TestFormatFloatsTwoDecimals(t *testing.T) {
	tbl := NewTable([]string{"price"})
	tbl.AppendRow([]string{"9.5"})
	tbl.AppendRow([]string{"12.3"})
	tbl.AppendRow([]string{"1e2"})
	tbl.inferFloatColumns()

	if err := tbl.FormatFloats(); err != nil {
		t.Fatalf("FormatFloats: %v", err)
	}
	want := []string{"9.50", "12.30", "100.00"}
	twoDec := regexp.MustCompile(`^-?\d+\.\d{2}$`)
	for i, row := range tbl.Rows {
		if row[0] != want[i] {
			t.Errorf("row %d = %q, want %q", i, row[0], want[i])
		}
		if !twoDec.MatchString(row[0]) {
			t.Errorf("row %d = %q does not match fixed two-decimal pattern", i, row[0])
		}
	}
}

func TestFormatFloatsFailureLeavesValues(t *testing.T) {
	tbl := NewTable([]string{"price"})
	tbl.AppendRow([]string{"9.5"})
	tbl.AppendRow([]string{"oops"})
	// Force the flag past inference to simulate a schema/content mismatch.
	tbl.MarkFloat(0)

	if err := tbl.FormatFloats(); err == nil {
		t.Fatalf("expected error for unparseable float cell")
	}
	if tbl.Rows[1][0] != "oops" {
		t.Fatalf("original value not preserved: %q", tbl.Rows[1][0])
	}
}

func TestSampleExactCount(t *testing.T) {
	tbl := NewTable([]string{"n"})
	seen := map[string]bool{}
	for i := 0; i < 400; i++ {
		tbl.AppendRow([]string{strconv.Itoa(i)})
	}
	if err := tbl.Sample(250); err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(tbl.Rows) != 250 {
		t.Fatalf("sample size = %d, want 250", len(tbl.Rows))
	}
	for _, row := range tbl.Rows {
		if seen[row[0]] {
			t.Fatalf("row %s drawn twice", row[0])
		}
		seen[row[0]] = true
	}
}

func TestSampleInsufficientRows(t *testing.T) {
	tbl := NewTable([]string{"n"})
	tbl.AppendRow([]string{"1"})

	err := tbl.Sample(250)
	var insufficient *InsufficientRowsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want *InsufficientRowsError", err)
	}
	if insufficient.Have != 1 || insufficient.Want != 250 {
		t.Fatalf("unexpected error detail: %+v", insufficient)
	}
}

func TestWriteCSVHeaderNoIndex(t *testing.T) {
	tbl := NewTable([]string{"a", "b"})
	tbl.AppendRow([]string{"1", "x"})
	tbl.AppendRow([]string{"2", "y"})

	var buf strings.Builder
	if err := tbl.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if lines[0] != "a,b" {
		t.Fatalf("header = %q, want %q", lines[0], "a,b")
	}
	if lines[1] != "1,x" {
		t.Fatalf("row = %q, want %q", lines[1], "1,x")
	}
}
