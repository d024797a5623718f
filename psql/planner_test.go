package psql

import (
	"strings"
	"testing"
	"time"

	"plumage/dataset"
	"plumage/domain"
	"plumage/retrieval"
	"plumage/sources"
)

var asOf = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func ordersRequest() retrieval.Request {
	return retrieval.Request{
		Location:       domain.FeatureViewLocation("orders"),
		Entities:       []domain.Feature{{Name: "user_id", DType: domain.TypeInt64}},
		Features:       []domain.Feature{{Name: "total", DType: domain.TypeFloat}},
		EventTimestamp: &domain.EventTimestamp{Name: "created_at"},
	}
}

func profilesRequest() retrieval.Request {
	return retrieval.Request{
		Location: domain.FeatureViewLocation("profiles"),
		Entities: []domain.Feature{{Name: "user_id", DType: domain.TypeInt64}},
		Features: []domain.Feature{{Name: "age", DType: domain.TypeInt32}},
	}
}

func ordersSource() *sources.PostgreSQLSource {
	return sources.NewPostgreSQLSource(sources.PostgreSQLConfig{EnvVar: "PSQL_URL"}, "orders")
}

func factTable(t *testing.T, raw map[string][]any) *retrieval.FactTable {
	t.Helper()
	facts, err := retrieval.NewFactTable(raw)
	if err != nil {
		t.Fatalf("fact table: %v", err)
	}
	return facts
}

func TestPlanFactsSingleSource(t *testing.T) {
	facts := factTable(t, map[string][]any{
		"user_id":                      {1, 2},
		retrieval.EventTimestampColumn: {asOf, asOf},
	})

	query, err := PlanFacts(facts, []retrieval.SourceRequest{
		{Source: ordersSource(), Request: ordersRequest()},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Two fact rows of two columns each: four bound arguments.
	if len(query.Args) != 4 {
		t.Fatalf("got %d args, want 4", len(query.Args))
	}
	for _, want := range []string{
		"WITH entities (event_timestamp, user_id, row_id) AS (",
		"$1::TIMESTAMP WITH TIME ZONE",
		"$2::integer",
		"orders_cte AS (",
		"SELECT DISTINCT ON (entities.row_id)",
		"LEFT JOIN orders ta",
		"ON ta.user_id = entities.user_id",
		"AND entities.event_timestamp >= ta.created_at",
		"ORDER BY entities.row_id, ta.created_at DESC",
		"INNER JOIN orders_cte ON orders_cte.row_id = entities.row_id",
	} {
		if !strings.Contains(query.SQL, want) {
			t.Errorf("generated SQL missing %q:\n%s", want, query.SQL)
		}
	}
}

func TestPlanFactsMultipleSourcesOneStatement(t *testing.T) {
	facts := factTable(t, map[string][]any{
		"user_id":                      {1, 2},
		retrieval.EventTimestampColumn: {asOf, asOf},
	})
	database := sources.PostgreSQLConfig{EnvVar: "PSQL_URL"}

	query, err := PlanFacts(facts, []retrieval.SourceRequest{
		{Source: sources.NewPostgreSQLSource(database, "orders"), Request: ordersRequest()},
		{Source: sources.NewPostgreSQLSource(database, "profiles"), Request: profilesRequest()},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := strings.Count(query.SQL, "_cte AS ("); got != 2 {
		t.Errorf("got %d source CTEs, want 2:\n%s", got, query.SQL)
	}
	// The profiles request has no event timestamp, so its join carries no
	// as-of condition.
	if !strings.Contains(query.SQL, "LEFT JOIN profiles ta\n        ON ta.user_id = entities.user_id\n    ORDER BY entities.row_id\n") {
		t.Errorf("profiles join should not be time-conditioned:\n%s", query.SQL)
	}
}

func TestPlanFactsAliasesMappedColumns(t *testing.T) {
	facts := factTable(t, map[string][]any{
		"user_id":                      {1},
		retrieval.EventTimestampColumn: {asOf},
	})
	source := ordersSource()
	source.SchemaName = "shop"
	source.MappingKeys = map[string]string{"total": "order_total"}

	query, err := PlanFacts(facts, []retrieval.SourceRequest{
		{Source: source, Request: ordersRequest()},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(query.SQL, "ta.order_total AS total") {
		t.Errorf("mapped column should be aliased to its logical name:\n%s", query.SQL)
	}
	if !strings.Contains(query.SQL, "LEFT JOIN shop.orders ta") {
		t.Errorf("table should be schema-qualified:\n%s", query.SQL)
	}
}

func TestPlanFactsWithoutTimestampColumn(t *testing.T) {
	facts := factTable(t, map[string][]any{"user_id": {1}})

	query, err := PlanFacts(facts, []retrieval.SourceRequest{
		{Source: ordersSource(), Request: ordersRequest()},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(query.SQL, ">=") {
		t.Errorf("no fact timestamps, so no as-of condition expected:\n%s", query.SQL)
	}
}

func TestPlanFactsRejectsNonRelationalSource(t *testing.T) {
	facts := factTable(t, map[string][]any{"user_id": {1}})
	source := sources.NewInMemorySource(dataset.Table{
		Columns: []string{"user_id", "total"},
		Rows:    [][]any{{1, 10.0}},
	})

	request := ordersRequest()
	request.EventTimestamp = nil
	_, err := PlanFacts(facts, []retrieval.SourceRequest{{Source: source, Request: request}})
	if err == nil {
		t.Fatal("expected error for non-relational source")
	}
	if !strings.Contains(err.Error(), "not relational") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPlanFactsEmptyInput(t *testing.T) {
	facts := factTable(t, map[string][]any{"user_id": {1}})
	if _, err := PlanFacts(facts, nil); err == nil {
		t.Error("expected error for empty request list")
	}

	empty := factTable(t, map[string][]any{"user_id": {}})
	if _, err := PlanFacts(empty, []retrieval.SourceRequest{{Source: ordersSource(), Request: ordersRequest()}}); err == nil {
		t.Error("expected error for empty fact table")
	}
}

func TestPlanFactsFromQuery(t *testing.T) {
	nested := Query{
		SQL:  "SELECT user_id, event_timestamp FROM checkouts WHERE store_id = $1",
		Args: []any{42},
	}

	query, err := PlanFactsFromQuery(nested, []string{"user_id", retrieval.EventTimestampColumn}, []retrieval.SourceRequest{
		{Source: ordersSource(), Request: ordersRequest()},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"ROW_NUMBER() OVER (ORDER BY user_id) AS row_id",
		"FROM (SELECT user_id, event_timestamp FROM checkouts WHERE store_id = $1) AS fact_source",
		"orders_cte AS (",
		"AND entities.event_timestamp >= ta.created_at",
	} {
		if !strings.Contains(query.SQL, want) {
			t.Errorf("generated SQL missing %q:\n%s", want, query.SQL)
		}
	}
	if len(query.Args) != 1 || query.Args[0] != 42 {
		t.Errorf("nested arguments should carry over, got %v", query.Args)
	}
}

func TestPlanFactsFromQueryRejectsInvalidSQL(t *testing.T) {
	nested := Query{SQL: "SELECT FROM WHERE"}
	_, err := PlanFactsFromQuery(nested, []string{"user_id"}, []retrieval.SourceRequest{
		{Source: ordersSource(), Request: ordersRequest()},
	})
	if err == nil {
		t.Fatal("expected parse error for invalid nested SQL")
	}
}

func TestPlanFactsDuplicateLocationNames(t *testing.T) {
	facts := factTable(t, map[string][]any{"user_id": {1}})
	database := sources.PostgreSQLConfig{EnvVar: "PSQL_URL"}

	request := ordersRequest()
	request.EventTimestamp = nil
	query, err := PlanFacts(facts, []retrieval.SourceRequest{
		{Source: sources.NewPostgreSQLSource(database, "orders_eu"), Request: request},
		{Source: sources.NewPostgreSQLSource(database, "orders_us"), Request: request},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(query.SQL, "orders_cte AS (") || !strings.Contains(query.SQL, "orders_cte_2 AS (") {
		t.Errorf("duplicate locations should get distinct CTE names:\n%s", query.SQL)
	}
}
