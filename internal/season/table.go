package season

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateDate means the same Saturday was appended twice,
	// which only happens when the parser misreads a month
	ErrDuplicateDate = errors.New("duplicate date in calendar table")

	// ErrOutsideMonth means a record was appended under the wrong month
	ErrOutsideMonth = errors.New("record date outside its month")
)

// Row is a Record labelled with the month it was fetched for
type Row struct {
	Month string `json:"month"`
	Record
}

// Table is the combined, ordered set of Saturday records for a fetch span.
// It is append-only and not safe for concurrent use.
type Table struct {
	rows []Row
	seen map[string]bool // YYYY-MM-DD
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{
		rows: make([]Row, 0),
		seen: make(map[string]bool),
	}
}

// AppendMonth adds the records of one month in order.
// Nothing is appended if any record is a duplicate or falls outside key.
func (t *Table) AppendMonth(key MonthKey, records []Record) error {
	batch := make(map[string]bool, len(records))
	for _, rec := range records {
		if !key.Contains(rec.Date) {
			return fmt.Errorf("%s in %s: %w", rec.DateText(), key, ErrOutsideMonth)
		}
		day := rec.DateText()
		if t.seen[day] || batch[day] {
			return fmt.Errorf("%s: %w", day, ErrDuplicateDate)
		}
		batch[day] = true
	}

	label := key.Label()
	for _, rec := range records {
		t.rows = append(t.rows, Row{Month: label, Record: rec})
		t.seen[rec.DateText()] = true
	}
	return nil
}

// Rows returns a copy of the table rows in insertion order
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Records returns the records without their month labels
func (t *Table) Records() []Record {
	out := make([]Record, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, row.Record)
	}
	return out
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}
