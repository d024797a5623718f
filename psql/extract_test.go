package psql

import (
	"context"
	"strings"
	"testing"
	"time"

	"plumage/retrieval"
	"plumage/sources"
)

func TestFullExtractSQL(t *testing.T) {
	source := ordersSource()
	source.SchemaName = "shop"

	query, err := FullExtractSQL(source, ordersRequest(), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"SELECT user_id, total, created_at",
		"FROM shop.orders",
		"LIMIT 100",
	} {
		if !strings.Contains(query.SQL, want) {
			t.Errorf("generated SQL missing %q:\n%s", want, query.SQL)
		}
	}
	if len(query.Args) != 0 {
		t.Errorf("full extract binds no arguments, got %v", query.Args)
	}
}

func TestFullExtractSQLNoLimit(t *testing.T) {
	query, err := FullExtractSQL(ordersSource(), ordersRequest(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(query.SQL, "LIMIT") {
		t.Errorf("limit 0 means unlimited:\n%s", query.SQL)
	}
}

func TestFullExtractSQLAliasesMapping(t *testing.T) {
	source := ordersSource()
	source.MappingKeys = map[string]string{"total": "order_total"}

	query, err := FullExtractSQL(source, ordersRequest(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(query.SQL, "order_total AS total") {
		t.Errorf("mapped column should be aliased:\n%s", query.SQL)
	}
}

func TestDateRangeSQL(t *testing.T) {
	start := asOf.Add(-24 * time.Hour)
	end := asOf

	query, err := DateRangeSQL(ordersSource(), ordersRequest(), start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(query.SQL, "WHERE created_at BETWEEN $1 AND $2") {
		t.Errorf("range bounds must be bound parameters:\n%s", query.SQL)
	}
	if len(query.Args) != 2 || query.Args[0] != start || query.Args[1] != end {
		t.Errorf("got args %v, want [%v %v]", query.Args, start, end)
	}
}

func TestDateRangeSQLRequiresTimestamp(t *testing.T) {
	request := ordersRequest()
	request.EventTimestamp = nil

	_, err := DateRangeSQL(ordersSource(), request, asOf, asOf)
	if err != retrieval.ErrMissingEventTimestamp {
		t.Fatalf("got %v, want ErrMissingEventTimestamp", err)
	}
}

func TestJobWithoutExecutorFailsAtMaterialization(t *testing.T) {
	facts := factTable(t, map[string][]any{"user_id": {1}})
	factory := JobFactory(sources.TypeNamePostgreSQL, nil)

	request := ordersRequest()
	request.EventTimestamp = nil
	combined, err := factory.Facts(facts, []retrieval.SourceRequest{
		{Source: ordersSource(), Request: request},
	})
	if err != nil {
		t.Fatalf("planning must succeed without an executor: %v", err)
	}
	if len(combined.Jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(combined.Jobs))
	}

	_, err = combined.ToFrame(context.Background())
	if err == nil {
		t.Fatal("materialization without an executor must fail")
	}
	if !strings.Contains(err.Error(), ErrNoExecutor.Error()) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDateRangeJobRange(t *testing.T) {
	start := asOf.Add(-time.Hour)
	job, err := DateRange(ordersSource(), ordersRequest(), nil, start, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gotStart, gotEnd := job.Range()
	if gotStart != start || gotEnd != asOf {
		t.Errorf("got range %v..%v, want %v..%v", gotStart, gotEnd, start, asOf)
	}
}
