package retrieval

import (
	"context"
	"errors"
	"time"

	"plumage/dataset"
)

// ErrMissingEventTimestamp is returned when a date-range job is built over
// a request that declares no event-timestamp column.
var ErrMissingEventTimestamp = errors.New("retrieval: request has no event timestamp")

// ErrUnknownColumn is returned when a source cannot resolve a logical
// feature name to a physical column.
var ErrUnknownColumn = errors.New("retrieval: unknown column")

// Job is a lazy, reusable retrieval plan. Building a job performs no I/O;
// the two materialization methods are the only boundary allowed to block,
// and both must yield identical logical content — same columns, same
// values, same row count — in different layouts.
type Job interface {
	// Requests returns the per-source requests the job serves.
	Requests() []Request
	// Result returns the declared output shape, for static introspection.
	Result() Result
	// ToTable materializes the row-oriented representation.
	ToTable(ctx context.Context) (dataset.Table, error)
	// ToFrame materializes the columnar representation.
	ToFrame(ctx context.Context) (*dataset.Frame, error)
}

// FullExtractJob materializes an entire source, optionally capped by a row
// limit.
type FullExtractJob interface {
	Job
	// Limit returns the row cap, 0 meaning unlimited.
	Limit() int
}

// DateRangeJob materializes rows whose event timestamp falls within an
// inclusive range.
type DateRangeJob interface {
	Job
	// Range returns the inclusive bounds.
	Range() (start, end time.Time)
}

// FactualJob materializes features for a specific fact table of entity
// values: a point-in-time lookup against one physical source group.
type FactualJob interface {
	Job
	// Facts returns the fact subset the job answers for.
	Facts() *FactTable
}

// BatchSource is the capability a physical batch source must expose to the
// planning core.
type BatchSource interface {
	// TypeName discriminates the source kind (csv, memory, psql, ...).
	TypeName() string
	// JobGroupKey identifies physical co-location: two sources with equal
	// keys are the same file or table and can share one physical job.
	JobGroupKey() string
}

// ColumnMappable resolves logical feature names to physical column names.
type ColumnMappable interface {
	// FeatureIdentifiersFor returns physical names positionally matching
	// the given logical names, or ErrUnknownColumn when one cannot be
	// resolved.
	FeatureIdentifiersFor(names []string) ([]string, error)
}

// RelationalSource is a batch source backed by a database table.
type RelationalSource interface {
	BatchSource
	ColumnMappable
	// Table returns the physical table name.
	Table() string
	// Schema returns the schema qualifier, empty when unset.
	Schema() string
}
