// Package psql generates point-in-time-correct retrieval SQL for
// PostgreSQL-backed sources. It only builds query text and bound
// arguments; executing them is the caller's concern.
package psql

import (
	"context"
	"errors"

	"plumage/dataset"
	"plumage/retrieval"
)

// Query is a parameterized SQL statement: placeholders $1..$n in the text,
// values in Args. Fact values are always bound, never interpolated into
// the text.
type Query struct {
	SQL  string
	Args []any
}

// Executor runs a generated query against a live database. The planning
// core ships without one; executors live outside.
type Executor interface {
	Query(ctx context.Context, query Query) (dataset.Table, error)
}

// ErrNoExecutor is returned when a SQL-backed job is materialized without
// an injected executor.
var ErrNoExecutor = errors.New("psql: no executor configured")

// Job is a lazily executed SQL statement together with the requests it
// answers.
type Job struct {
	Query    Query
	Exec     Executor
	requests []retrieval.Request
}

// NewJob wraps a planned query.
func NewJob(query Query, exec Executor, requests []retrieval.Request) *Job {
	return &Job{Query: query, Exec: exec, requests: requests}
}

// Requests implements retrieval.Job.
func (j *Job) Requests() []retrieval.Request { return j.requests }

// Result implements retrieval.Job.
func (j *Job) Result() retrieval.Result { return retrieval.ResultFromRequests(j.requests) }

// ToTable implements retrieval.Job by running the query.
func (j *Job) ToTable(ctx context.Context) (dataset.Table, error) {
	if j.Exec == nil {
		return dataset.Table{}, ErrNoExecutor
	}
	return j.Exec.Query(ctx, j.Query)
}

// ToFrame implements retrieval.Job.
func (j *Job) ToFrame(ctx context.Context) (*dataset.Frame, error) {
	table, err := j.ToTable(ctx)
	if err != nil {
		return nil, err
	}
	return table.Frame(), nil
}
