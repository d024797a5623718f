package psql

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"plumage/retrieval"
)

// PlanFacts builds one point-in-time statement answering every request in
// the group. The fact rows become an entities CTE of bound VALUES rows
// with a sequential row_id; each request contributes one CTE picking, per
// fact row, the most recent source row at or before the requested event
// time; the final SELECT stitches the CTEs back together on row_id.
//
// Every source must be a retrieval.RelationalSource reachable from the
// same database. The generated text is parse-validated before it is
// returned.
func PlanFacts(facts *retrieval.FactTable, requests []retrieval.SourceRequest) (Query, error) {
	if facts.NumRows() == 0 {
		return Query{}, fmt.Errorf("psql: fact table has no rows")
	}
	if len(requests) == 0 {
		return Query{}, fmt.Errorf("psql: no requests to plan")
	}

	var b strings.Builder
	b.WriteString("WITH ")

	args, err := writeEntitiesCTE(&b, facts)
	if err != nil {
		return Query{}, err
	}

	ctes, err := writeSourceCTEs(&b, facts, requests)
	if err != nil {
		return Query{}, err
	}

	writeFinalSelect(&b, facts.ColumnNames(), ctes)

	query := Query{SQL: b.String(), Args: args}
	if _, err := pg_query.Parse(query.SQL); err != nil {
		return Query{}, fmt.Errorf("psql: generated statement does not parse: %w", err)
	}
	return query, nil
}

// PlanFactsFromQuery is the variant where the facts come from a SQL query
// instead of literal values: the nested statement is wrapped in an
// entities CTE that assigns row_id with ROW_NUMBER(). The nested text is
// parse-validated before being embedded; its bound arguments carry over.
// factColumns names the columns the nested query yields, including
// event_timestamp when present.
func PlanFactsFromQuery(nested Query, factColumns []string, requests []retrieval.SourceRequest) (Query, error) {
	if len(factColumns) == 0 {
		return Query{}, fmt.Errorf("psql: fact query declares no columns")
	}
	if len(requests) == 0 {
		return Query{}, fmt.Errorf("psql: no requests to plan")
	}
	if _, err := pg_query.Parse(nested.SQL); err != nil {
		return Query{}, fmt.Errorf("psql: fact query does not parse: %w", err)
	}

	var b strings.Builder
	b.WriteString("WITH entities AS (\n")
	fmt.Fprintf(&b, "    SELECT *, ROW_NUMBER() OVER (ORDER BY %s) AS row_id\n", factColumns[0])
	fmt.Fprintf(&b, "    FROM (%s) AS fact_source\n", nested.SQL)
	b.WriteString(")")

	hasTimestamp := false
	for _, name := range factColumns {
		if name == retrieval.EventTimestampColumn {
			hasTimestamp = true
		}
	}

	ctes, err := writeRequestCTEs(&b, hasTimestamp, requests)
	if err != nil {
		return Query{}, err
	}

	writeFinalSelect(&b, factColumns, ctes)

	query := Query{SQL: b.String(), Args: nested.Args}
	if _, err := pg_query.Parse(query.SQL); err != nil {
		return Query{}, fmt.Errorf("psql: generated statement does not parse: %w", err)
	}
	return query, nil
}

// writeEntitiesCTE renders the fact rows as a VALUES list. Every value is
// a numbered placeholder with an explicit type cast; only the row_id
// counter is written literally.
func writeEntitiesCTE(b *strings.Builder, facts *retrieval.FactTable) ([]any, error) {
	names := facts.ColumnNames()

	casts := make([]string, len(names))
	columns := make([][]any, len(names))
	for i, name := range names {
		dtype, err := facts.DType(name)
		if err != nil {
			return nil, err
		}
		casts[i] = dtype.SQLType()
		typed, err := facts.Column(name)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(typed))
		for j, value := range typed {
			values[j] = value.Any()
		}
		columns[i] = values
	}

	fmt.Fprintf(b, "entities (%s, row_id) AS (\nVALUES\n", strings.Join(names, ", "))

	args := make([]any, 0, facts.NumRows()*len(names))
	for row := 0; row < facts.NumRows(); row++ {
		if row > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("    (")
		for i := range names {
			args = append(args, columns[i][row])
			fmt.Fprintf(b, "$%d::%s, ", len(args), casts[i])
		}
		fmt.Fprintf(b, "%d)", row+1)
	}
	b.WriteString("\n)")
	return args, nil
}

type plannedCTE struct {
	name     string
	features []string
}

// writeSourceCTEs renders one CTE per request, joining the source table to
// the entities CTE. The as-of condition is emitted only when both the
// request and the fact table carry an event timestamp.
func writeSourceCTEs(b *strings.Builder, facts *retrieval.FactTable, requests []retrieval.SourceRequest) ([]plannedCTE, error) {
	return writeRequestCTEs(b, facts.HasColumn(retrieval.EventTimestampColumn), requests)
}

func writeRequestCTEs(b *strings.Builder, factsHaveTimestamp bool, requests []retrieval.SourceRequest) ([]plannedCTE, error) {
	ctes := make([]plannedCTE, 0, len(requests))
	used := make(map[string]int, len(requests))

	for _, sr := range requests {
		source, ok := sr.Source.(retrieval.RelationalSource)
		if !ok {
			return nil, fmt.Errorf("psql: source for %q is not relational", sr.Request.Location.Identifier())
		}
		request := sr.Request

		name := request.Location.Name + "_cte"
		if n := used[name]; n > 0 {
			used[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		} else {
			used[name] = 1
		}

		entityNames := request.EntityNames()
		physicalEntities, err := source.FeatureIdentifiersFor(entityNames)
		if err != nil {
			return nil, fmt.Errorf("psql: %s: %w", name, err)
		}

		featureNames := request.AllRequiredFeatureNames()
		physicalFeatures, err := source.FeatureIdentifiersFor(featureNames)
		if err != nil {
			return nil, fmt.Errorf("psql: %s: %w", name, err)
		}

		var physicalTimestamp string
		withTimestamp := factsHaveTimestamp && request.EventTimestamp != nil
		if withTimestamp {
			resolved, err := source.FeatureIdentifiersFor([]string{request.EventTimestamp.Name})
			if err != nil {
				return nil, fmt.Errorf("psql: %s: %w", name, err)
			}
			physicalTimestamp = resolved[0]
		}

		fmt.Fprintf(b, ",\n%s AS (\n", name)
		b.WriteString("    SELECT DISTINCT ON (entities.row_id)\n")
		b.WriteString("        entities.row_id")
		for i, logical := range featureNames {
			b.WriteString(",\n        ")
			b.WriteString(aliased("ta."+physicalFeatures[i], logical, physicalFeatures[i]))
		}
		b.WriteString("\n    FROM entities\n")
		fmt.Fprintf(b, "    LEFT JOIN %s ta\n", tableReference(source))
		for i, logical := range entityNames {
			keyword := "AND"
			if i == 0 {
				keyword = "ON"
			}
			fmt.Fprintf(b, "        %s ta.%s = entities.%s\n", keyword, physicalEntities[i], logical)
		}
		if withTimestamp {
			fmt.Fprintf(b, "        AND entities.%s >= ta.%s\n", retrieval.EventTimestampColumn, physicalTimestamp)
		}
		b.WriteString("    ORDER BY entities.row_id")
		if withTimestamp {
			fmt.Fprintf(b, ", ta.%s DESC", physicalTimestamp)
		}
		b.WriteString("\n)")

		ctes = append(ctes, plannedCTE{name: name, features: featureNames})
	}
	return ctes, nil
}

// writeFinalSelect joins every CTE back to the entities on row_id. Each
// fact row appears exactly once: the per-source CTEs are keyed by row_id,
// so the inner joins neither drop nor duplicate rows.
func writeFinalSelect(b *strings.Builder, factColumns []string, ctes []plannedCTE) {
	b.WriteString("\nSELECT\n")
	first := true
	for _, name := range factColumns {
		if !first {
			b.WriteString(",\n")
		}
		first = false
		fmt.Fprintf(b, "    entities.%s", name)
	}
	for _, cte := range ctes {
		for _, feature := range cte.features {
			fmt.Fprintf(b, ",\n    %s.%s", cte.name, feature)
		}
	}
	b.WriteString("\nFROM entities")
	for _, cte := range ctes {
		fmt.Fprintf(b, "\nINNER JOIN %s ON %s.row_id = entities.row_id", cte.name, cte.name)
	}
	b.WriteString("\n")
}

// aliased renders a select-list entry, adding an AS clause only when the
// physical column differs from the logical feature name.
func aliased(expr, logical, physical string) string {
	if logical == physical {
		return expr
	}
	return expr + " AS " + logical
}

func tableReference(source retrieval.RelationalSource) string {
	if schema := source.Schema(); schema != "" {
		return schema + "." + source.Table()
	}
	return source.Table()
}
