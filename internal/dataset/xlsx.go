package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// readXLSX loads the first sheet of a spreadsheet. The first row is the
// header; short rows are padded with empty (missing) cells. Float columns are
// inferred from the rendered cell text, same as delimited input.
func readXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("xlsx has no sheets: %s", path)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return NewTable(nil), nil
	}

	t := NewTable(rows[0])
	for _, row := range rows[1:] {
		t.AppendRow(row)
	}
	t.inferFloatColumns()
	return t, nil
}
