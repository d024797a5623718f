// Package sources holds the concrete batch-source descriptors the planner
// consumes: in-memory tables, CSV-backed files and PostgreSQL tables. The
// in-memory evaluation here doubles as the reference executor for job
// semantics; file and database I/O stay outside the core.
package sources

import (
	"fmt"
	"time"

	"plumage/dataset"
	"plumage/literal"
	"plumage/retrieval"
)

// columnResolver maps a logical feature name to the physical column name
// inside a materialized table.
type columnResolver func(name string) string

func identityResolver(name string) string { return name }

func mappingResolver(mapping map[string]string) columnResolver {
	if len(mapping) == 0 {
		return identityResolver
	}
	return func(name string) string {
		if physical, ok := mapping[name]; ok {
			return physical
		}
		return name
	}
}

// selectColumns projects the requested logical columns out of a physical
// table, aliasing physical names back to logical ones.
func selectColumns(table dataset.Table, names []string, resolve columnResolver) (*dataset.Frame, error) {
	frame := &dataset.Frame{}
	for _, name := range names {
		values, err := table.Column(resolve(name))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", retrieval.ErrUnknownColumn, name)
		}
		if err := frame.AddColumn(name, values); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func requestColumns(request retrieval.Request) []string {
	names := request.EntityNames()
	names = append(names, request.AllRequiredFeatureNames()...)
	if request.EventTimestamp != nil {
		names = append(names, request.EventTimestamp.Name)
	}
	return names
}

// evalFullExtract materializes the whole source, optionally capped.
func evalFullExtract(table dataset.Table, request retrieval.Request, resolve columnResolver, limit int) (*dataset.Frame, error) {
	frame, err := selectColumns(table, requestColumns(request), resolve)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit >= frame.NumRows() {
		return frame, nil
	}
	capped := frame.Collect()
	capped.Rows = capped.Rows[:limit]
	return capped.Frame(), nil
}

// evalDateRange materializes rows whose event timestamp lies in the
// inclusive range.
func evalDateRange(table dataset.Table, request retrieval.Request, resolve columnResolver, start, end time.Time) (*dataset.Frame, error) {
	if request.EventTimestamp == nil {
		return nil, retrieval.ErrMissingEventTimestamp
	}
	full := selectColumnsTable(table, request, resolve)
	if full.err != nil {
		return nil, full.err
	}
	timestamps := full.timestamps
	result := dataset.Table{Columns: full.table.Columns}
	for i, row := range full.table.Rows {
		ts := timestamps[i]
		if ts == nil || ts.Before(start) || ts.After(end) {
			continue
		}
		result.Rows = append(result.Rows, row)
	}
	return result.Frame(), nil
}

type projected struct {
	table      dataset.Table
	timestamps []*time.Time
	err        error
}

// selectColumnsTable projects the request's columns row-oriented and pulls
// out the event-timestamp column as time values.
func selectColumnsTable(table dataset.Table, request retrieval.Request, resolve columnResolver) projected {
	frame, err := selectColumns(table, requestColumns(request), resolve)
	if err != nil {
		return projected{err: err}
	}
	out := projected{table: frame.Collect()}
	if request.EventTimestamp == nil {
		return out
	}
	raw, err := frame.Column(request.EventTimestamp.Name)
	if err != nil {
		return projected{err: err}
	}
	out.timestamps = make([]*time.Time, len(raw))
	for i, cell := range raw {
		if ts, ok := cell.(time.Time); ok {
			out.timestamps[i] = &ts
		}
	}
	return out
}

// evalFacts materializes a point-in-time lookup: for each fact row, the
// most recent source observation at or before the requested event time,
// matched on entity equality. Rows with no match keep nil feature values;
// no fact row is dropped or duplicated.
func evalFacts(table dataset.Table, facts *retrieval.FactTable, requests []retrieval.SourceRequest, resolve columnResolver) (*dataset.Frame, error) {
	frame := &dataset.Frame{}

	// Fact columns come first: entities and, when present, the requested
	// event timestamps.
	var factTimestamps []literal.Value
	for _, name := range facts.ColumnNames() {
		column, err := facts.Column(name)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(column))
		for i, lit := range column {
			values[i] = lit.Any()
		}
		if err := frame.AddColumn(name, values); err != nil {
			return nil, err
		}
		if name == retrieval.EventTimestampColumn {
			factTimestamps = column
		}
	}

	for _, sr := range requests {
		request := sr.Request
		entityNames := request.EntityNames()

		entityColumns := make([][]any, len(entityNames))
		for i, name := range entityNames {
			values, err := table.Column(resolve(name))
			if err != nil {
				return nil, fmt.Errorf("%w: %q", retrieval.ErrUnknownColumn, name)
			}
			entityColumns[i] = values
		}

		var sourceTimestamps []any
		if request.EventTimestamp != nil {
			values, err := table.Column(resolve(request.EventTimestamp.Name))
			if err != nil {
				return nil, fmt.Errorf("%w: %q", retrieval.ErrUnknownColumn, request.EventTimestamp.Name)
			}
			sourceTimestamps = values
		}

		featureNames := request.AllRequiredFeatureNames()
		featureColumns := make([][]any, len(featureNames))
		for i, name := range featureNames {
			values, err := table.Column(resolve(name))
			if err != nil {
				return nil, fmt.Errorf("%w: %q", retrieval.ErrUnknownColumn, name)
			}
			featureColumns[i] = values
		}

		factColumns := make([][]literal.Value, len(entityNames))
		for i, name := range entityNames {
			column, err := facts.Column(name)
			if err != nil {
				return nil, err
			}
			factColumns[i] = column
		}

		output := make([][]any, len(featureNames))
		for i := range output {
			output[i] = make([]any, facts.NumRows())
		}

		for row := 0; row < facts.NumRows(); row++ {
			match := matchRow(entityColumns, factColumns, sourceTimestamps, factTimestamps, row, table.NumRows())
			if match < 0 {
				continue
			}
			for i := range featureNames {
				output[i][row] = featureColumns[i][match]
			}
		}

		for i, name := range featureNames {
			if err := frame.AddColumn(name, output[i]); err != nil {
				return nil, err
			}
		}
	}
	return frame, nil
}

// matchRow finds the source row serving one fact row: entity columns must
// be equal and, when both sides carry timestamps, the source observation
// must be the latest one not after the requested time.
func matchRow(entityColumns [][]any, factColumns [][]literal.Value, sourceTimestamps []any, factTimestamps []literal.Value, factRow, sourceRows int) int {
	var asOf *time.Time
	if sourceTimestamps != nil && factTimestamps != nil {
		if ts, ok := factTimestamps[factRow].(literal.Datetime); ok {
			asOf = &ts.Value
		}
	}

	best := -1
	var bestTime time.Time
	for row := 0; row < sourceRows; row++ {
		matched := true
		for i, column := range entityColumns {
			cell, err := literal.FromValue(column[row])
			if err != nil || !literal.Equal(cell, factColumns[i][factRow]) {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		if asOf == nil {
			return row
		}
		ts, ok := sourceTimestamps[row].(time.Time)
		if !ok || ts.After(*asOf) {
			continue
		}
		if best < 0 || ts.After(bestTime) {
			best = row
			bestTime = ts
		}
	}
	return best
}
