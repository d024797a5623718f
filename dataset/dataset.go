// Package dataset holds the two tabular representations a retrieval job can
// materialize into: a row-oriented Table and a columnar Frame. Both carry
// identical logical content; only the layout differs. Laziness lives in the
// jobs that produce them, not here. Missing values are normalized to nil.
package dataset

import "fmt"

// Table is a row-oriented result: an ordered column header and one slice
// per row, aligned to the header.
type Table struct {
	Columns []string
	Rows    [][]any
}

// NumRows returns the number of rows.
func (t Table) NumRows() int { return len(t.Rows) }

// Column returns the values of a named column in row order.
func (t Table) Column(name string) ([]any, error) {
	for i, col := range t.Columns {
		if col != name {
			continue
		}
		values := make([]any, len(t.Rows))
		for j, row := range t.Rows {
			values[j] = row[i]
		}
		return values, nil
	}
	return nil, fmt.Errorf("dataset: no column %q", name)
}

// Frame returns the columnar view of the table.
func (t Table) Frame() *Frame {
	frame := &Frame{
		order:   append([]string(nil), t.Columns...),
		columns: make(map[string][]any, len(t.Columns)),
		rows:    len(t.Rows),
	}
	for i, col := range t.Columns {
		values := make([]any, len(t.Rows))
		for j, row := range t.Rows {
			values[j] = row[i]
		}
		frame.columns[col] = values
	}
	return frame
}

// Frame is a columnar result: named columns of equal length, ordered by
// first insertion.
type Frame struct {
	order   []string
	columns map[string][]any
	rows    int
}

// NewFrame builds a frame from columns in the given order. All columns must
// have the same length.
func NewFrame(order []string, columns map[string][]any) (*Frame, error) {
	frame := &Frame{columns: make(map[string][]any, len(columns))}
	for _, name := range order {
		values, ok := columns[name]
		if !ok {
			return nil, fmt.Errorf("dataset: column %q missing from values", name)
		}
		if err := frame.AddColumn(name, values); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

// NumRows returns the row count shared by every column.
func (f *Frame) NumRows() int { return f.rows }

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string { return append([]string(nil), f.order...) }

// Column returns the values of a named column.
func (f *Frame) Column(name string) ([]any, error) {
	values, ok := f.columns[name]
	if !ok {
		return nil, fmt.Errorf("dataset: no column %q", name)
	}
	return values, nil
}

// AddColumn appends a column. It fails when the length disagrees with
// existing columns, and is a no-op for a column that is already present.
func (f *Frame) AddColumn(name string, values []any) error {
	if f.columns == nil {
		f.columns = make(map[string][]any)
	}
	if _, ok := f.columns[name]; ok {
		return nil
	}
	if len(f.order) > 0 && len(values) != f.rows {
		return fmt.Errorf("dataset: column %q has %d rows, frame has %d", name, len(values), f.rows)
	}
	f.rows = len(values)
	f.order = append(f.order, name)
	f.columns[name] = values
	return nil
}

// Merge unions the other frame's columns into this one, aligned by row
// position. Columns already present are kept as-is. Row counts must match.
func (f *Frame) Merge(other *Frame) error {
	if other.rows != f.rows && len(f.order) > 0 && len(other.order) > 0 {
		return fmt.Errorf("dataset: cannot merge %d rows into %d rows", other.rows, f.rows)
	}
	for _, name := range other.order {
		if err := f.AddColumn(name, other.columns[name]); err != nil {
			return err
		}
	}
	return nil
}

// Collect converts the frame to its row-oriented form.
func (f *Frame) Collect() Table {
	rows := make([][]any, f.rows)
	for i := range rows {
		row := make([]any, len(f.order))
		for j, name := range f.order {
			row[j] = f.columns[name][i]
		}
		rows[i] = row
	}
	return Table{Columns: f.Columns(), Rows: rows}
}
