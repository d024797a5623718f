package psql

import (
	"time"

	"plumage/retrieval"
)

// FactualJob is a planned point-in-time statement together with the fact
// subset it answers for.
type FactualJob struct {
	Job
	facts *retrieval.FactTable
}

// Facts implements retrieval.FactualJob.
func (j *FactualJob) Facts() *retrieval.FactTable { return j.facts }

// JobFactory groups PostgreSQL requests by database and plans one
// statement per group. The executor may be nil; planning still works and
// only materialization fails.
func JobFactory(typeName string, exec Executor) *retrieval.JobFactory {
	return retrieval.NewJobFactory(typeName, func(facts *retrieval.FactTable, requests []retrieval.SourceRequest) (retrieval.FactualJob, error) {
		query, err := PlanFacts(facts, requests)
		if err != nil {
			return nil, err
		}
		plain := make([]retrieval.Request, len(requests))
		for i, sr := range requests {
			plain[i] = sr.Request
		}
		return &FactualJob{
			Job:   Job{Query: query, Exec: exec, requests: plain},
			facts: facts,
		}, nil
	})
}

// FullExtractJob is a lazily executed full-table read.
type FullExtractJob struct {
	Job
	limit int
}

// Limit implements retrieval.FullExtractJob.
func (j *FullExtractJob) Limit() int { return j.limit }

// FullExtract plans reading a whole relational source.
func FullExtract(source retrieval.RelationalSource, request retrieval.Request, exec Executor, limit int) (*FullExtractJob, error) {
	query, err := FullExtractSQL(source, request, limit)
	if err != nil {
		return nil, err
	}
	return &FullExtractJob{
		Job:   Job{Query: query, Exec: exec, requests: []retrieval.Request{request}},
		limit: limit,
	}, nil
}

// DateRangeJob is a lazily executed bounded read.
type DateRangeJob struct {
	Job
	start, end time.Time
}

// Range implements retrieval.DateRangeJob.
func (j *DateRangeJob) Range() (time.Time, time.Time) { return j.start, j.end }

// DateRange plans reading rows of a relational source within the
// inclusive timestamp range.
func DateRange(source retrieval.RelationalSource, request retrieval.Request, exec Executor, start, end time.Time) (*DateRangeJob, error) {
	query, err := DateRangeSQL(source, request, start, end)
	if err != nil {
		return nil, err
	}
	return &DateRangeJob{
		Job:   Job{Query: query, Exec: exec, requests: []retrieval.Request{request}},
		start: start,
		end:   end,
	}, nil
}

var _ retrieval.FactualJob = (*FactualJob)(nil)
var _ retrieval.FullExtractJob = (*FullExtractJob)(nil)
var _ retrieval.DateRangeJob = (*DateRangeJob)(nil)
