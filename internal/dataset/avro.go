package dataset

import (
	"fmt"
	"os"

	"github.com/hamba/avro/v2"
	"github.com/hamba/avro/v2/ocf"
)

// readAvro loads an Avro object container file whose schema is a flat record.
// Column order and float markers come from the writer schema; null union
// branches become empty cells.
func readAvro(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	dec, err := ocf.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("open avro container: %w", err)
	}
	schema, err := avro.Parse(string(dec.Metadata()["avro.schema"]))
	if err != nil {
		return nil, fmt.Errorf("parse avro schema: %w", err)
	}
	record, ok := schema.(*avro.RecordSchema)
	if !ok {
		return nil, fmt.Errorf("avro schema is %s, want a record", schema.Type())
	}

	fields := record.Fields()
	columns := make([]string, len(fields))
	t := NewTable(nil)
	t.Columns = columns
	t.floats = make([]bool, len(fields))
	for i, fld := range fields {
		columns[i] = fld.Name()
		if avroIsFloat(fld.Type()) {
			t.MarkFloat(i)
		}
	}

	for dec.HasNext() {
		var row map[string]any
		if err := dec.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode avro row %d: %w", len(t.Rows)+1, err)
		}
		cells := make([]string, len(columns))
		for i, name := range columns {
			cells[i] = formatAny(row[name])
		}
		t.AppendRow(cells)
	}
	if err := dec.Error(); err != nil {
		return nil, fmt.Errorf("read avro container: %w", err)
	}
	return t, nil
}

func avroIsFloat(s avro.Schema) bool {
	switch s.Type() {
	case avro.Float, avro.Double:
		return true
	case avro.Union:
		if u, ok := s.(*avro.UnionSchema); ok {
			for _, branch := range u.Types() {
				if avroIsFloat(branch) {
					return true
				}
			}
		}
	}
	return false
}
