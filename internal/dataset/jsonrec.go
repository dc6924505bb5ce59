package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// readJSON loads a file containing an array of flat JSON objects. Columns
// keep first-appearance order across records (keys sorted within a record,
// since map iteration order is random); absent keys and nulls become empty
// cells. Numbers decode lexically (json.Number) so integer columns stay
// distinguishable from floating-point ones.
func readJSON(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode json records: %w", err)
	}

	var columns []string
	seen := map[string]bool{}
	for _, rec := range records {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}

	t := NewTable(columns)
	for _, rec := range records {
		cells := make([]string, len(columns))
		for i, name := range columns {
			v, ok := rec[name]
			if !ok {
				continue
			}
			cells[i] = formatAny(v)
		}
		t.AppendRow(cells)
	}
	t.inferFloatColumns()
	return t, nil
}
