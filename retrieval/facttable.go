package retrieval

import (
	"errors"
	"fmt"
	"sort"

	"plumage/domain"
	"plumage/literal"
)

// ErrMissingFactColumn is returned when a request references an entity the
// supplied fact table does not carry. It surfaces at grouping time, before
// any job materializes.
var ErrMissingFactColumn = errors.New("retrieval: fact column missing")

// FactTable is a typed columnar set of fact values: entity name to a
// homogeneously-typed column, validated at construction rather than at
// use. An optional event_timestamp column carries the requested as-of
// times.
type FactTable struct {
	order   []string
	columns map[string][]literal.Value
	dtypes  map[string]domain.FeatureType
	rows    int
}

// EventTimestampColumn is the reserved fact-table column naming the
// requested as-of time per row.
const EventTimestampColumn = "event_timestamp"

// NewFactTable classifies and validates raw columns. Every column must
// have the same length and a single literal tag throughout.
func NewFactTable(raw map[string][]any) (*FactTable, error) {
	table := &FactTable{
		columns: make(map[string][]literal.Value, len(raw)),
		dtypes:  make(map[string]domain.FeatureType, len(raw)),
		rows:    -1,
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		values := raw[name]
		if table.rows >= 0 && len(values) != table.rows {
			return nil, fmt.Errorf("retrieval: fact column %q has %d values, want %d", name, len(values), table.rows)
		}
		table.rows = len(values)

		column := make([]literal.Value, len(values))
		var dtype domain.FeatureType
		for i, rawValue := range values {
			value, err := literal.FromValue(rawValue)
			if err != nil {
				return nil, fmt.Errorf("retrieval: fact column %q row %d: %w", name, i, err)
			}
			vt := domain.TypeOfLiteral(value)
			if i == 0 {
				dtype = vt
			} else if vt != dtype {
				return nil, fmt.Errorf("retrieval: fact column %q mixes %s and %s", name, dtype, vt)
			}
			column[i] = value
		}
		table.order = append(table.order, name)
		table.columns[name] = column
		table.dtypes[name] = dtype
	}
	if table.rows < 0 {
		table.rows = 0
	}
	return table, nil
}

// NumRows returns the fact row count.
func (t *FactTable) NumRows() int { return t.rows }

// ColumnNames returns the column names, sorted.
func (t *FactTable) ColumnNames() []string { return append([]string(nil), t.order...) }

// HasColumn reports whether the table carries the column.
func (t *FactTable) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Column returns the typed values of a column.
func (t *FactTable) Column(name string) ([]literal.Value, error) {
	values, ok := t.columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingFactColumn, name)
	}
	return values, nil
}

// DType returns the declared type of a column.
func (t *FactTable) DType(name string) (domain.FeatureType, error) {
	dtype, ok := t.dtypes[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingFactColumn, name)
	}
	return dtype, nil
}

// Subset returns a fact table holding only the named columns, preserving
// the event-timestamp column when present.
func (t *FactTable) Subset(names []string) (*FactTable, error) {
	sub := &FactTable{
		columns: make(map[string][]literal.Value, len(names)),
		dtypes:  make(map[string]domain.FeatureType, len(names)),
		rows:    t.rows,
	}
	wanted := append([]string(nil), names...)
	if t.HasColumn(EventTimestampColumn) {
		wanted = append(wanted, EventTimestampColumn)
	}
	sort.Strings(wanted)
	seen := make(map[string]bool, len(wanted))
	for _, name := range wanted {
		if seen[name] {
			continue
		}
		seen[name] = true
		values, ok := t.columns[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingFactColumn, name)
		}
		sub.order = append(sub.order, name)
		sub.columns[name] = values
		sub.dtypes[name] = t.dtypes[name]
	}
	return sub, nil
}
