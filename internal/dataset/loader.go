package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Load reads a tabular file into a Table, picking the reader from the file
// extension. Supported: .csv/.tsv (delimited text), .parquet (columnar
// binary), .avro (row-oriented binary), .json (JSON records), .xlsx
// (spreadsheet, first sheet). A missing path surfaces the wrapped
// fs.ErrNotExist; anything else fails with *UnsupportedFormatError.
func Load(path string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return readDelimited(path, ',')
	case ".tsv":
		return readDelimited(path, '\t')
	case ".parquet":
		return readParquet(path)
	case ".avro":
		return readAvro(path)
	case ".json":
		return readJSON(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, &UnsupportedFormatError{Path: path, Ext: ext}
	}
}

func readDelimited(path string, delim rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return NewTable(nil), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	t := NewTable(header)
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)
		}
		// Short rows pad out to missing values; rows wider than the header
		// are malformed and would otherwise lose cells silently.
		if len(rec) > len(header) {
			return nil, fmt.Errorf("read row %d: %d fields, header has %d", len(t.Rows)+1, len(rec), len(header))
		}
		t.AppendRow(rec)
	}
	t.inferFloatColumns()
	return t, nil
}
