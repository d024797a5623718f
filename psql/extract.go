package psql

import (
	"fmt"
	"strings"
	"time"

	"plumage/retrieval"
)

// FullExtractSQL builds the statement reading every requested column of a
// relational source, capped at limit rows when limit is positive.
func FullExtractSQL(source retrieval.RelationalSource, request retrieval.Request, limit int) (Query, error) {
	selectList, err := selectList(source, request)
	if err != nil {
		return Query{}, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s\nFROM %s", selectList, tableReference(source))
	if limit > 0 {
		fmt.Fprintf(&b, "\nLIMIT %d", limit)
	}
	return Query{SQL: b.String()}, nil
}

// DateRangeSQL builds the statement reading rows whose event timestamp
// falls within the inclusive range. The bounds are bound arguments, never
// interpolated.
func DateRangeSQL(source retrieval.RelationalSource, request retrieval.Request, start, end time.Time) (Query, error) {
	if request.EventTimestamp == nil {
		return Query{}, retrieval.ErrMissingEventTimestamp
	}
	selectList, err := selectList(source, request)
	if err != nil {
		return Query{}, err
	}
	physical, err := source.FeatureIdentifiersFor([]string{request.EventTimestamp.Name})
	if err != nil {
		return Query{}, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s\nFROM %s\nWHERE %s BETWEEN $1 AND $2", selectList, tableReference(source), physical[0])
	return Query{SQL: b.String(), Args: []any{start, end}}, nil
}

// selectList resolves the request's columns to physical names, aliasing
// back to logical names where they differ.
func selectList(source retrieval.RelationalSource, request retrieval.Request) (string, error) {
	logical := request.EntityNames()
	logical = append(logical, request.AllRequiredFeatureNames()...)
	if request.EventTimestamp != nil {
		logical = append(logical, request.EventTimestamp.Name)
	}
	physical, err := source.FeatureIdentifiersFor(logical)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(logical))
	for i := range logical {
		parts[i] = aliased(physical[i], logical[i], physical[i])
	}
	return strings.Join(parts, ", "), nil
}
