package feature

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Table is a parsed tabular input: an ordered header plus string cell rows.
// Cell coercion happens later, in Clean, so a Table can hold arbitrary junk.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ParseCSV reads a CSV stream with a header row into a Table.
// Header cells are trimmed. Ragged rows are tolerated here and handled
// per-row during cleaning.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	return &Table{
		Columns: header,
		Rows:    records[1:],
	}, nil
}
