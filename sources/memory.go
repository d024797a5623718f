package sources

import (
	"context"
	"time"

	"github.com/google/uuid"

	"plumage/dataset"
	"plumage/retrieval"
)

// TypeNameMemory is the source-kind discriminator for in-memory tables.
const TypeNameMemory = "memory"

// InMemorySource serves features from a table held in memory. Every
// instance gets its own group key, so two in-memory sources never share a
// physical job.
type InMemorySource struct {
	table    dataset.Table
	groupKey string
}

// NewInMemorySource wraps a table as a batch source.
func NewInMemorySource(table dataset.Table) *InMemorySource {
	return &InMemorySource{
		table:    table,
		groupKey: TypeNameMemory + "/" + uuid.NewString(),
	}
}

// TypeName implements retrieval.BatchSource.
func (s *InMemorySource) TypeName() string { return TypeNameMemory }

// JobGroupKey implements retrieval.BatchSource.
func (s *InMemorySource) JobGroupKey() string { return s.groupKey }

// FullExtract plans reading the entire table, capped at limit rows when
// limit is positive.
func (s *InMemorySource) FullExtract(request retrieval.Request, limit int) retrieval.FullExtractJob {
	return &memoryFullExtractJob{source: s, request: request, limit: limit}
}

// DateRange plans reading rows whose event timestamp falls within the
// inclusive range. The request must declare an event timestamp.
func (s *InMemorySource) DateRange(request retrieval.Request, start, end time.Time) (retrieval.DateRangeJob, error) {
	if request.EventTimestamp == nil {
		return nil, retrieval.ErrMissingEventTimestamp
	}
	return &memoryDateRangeJob{source: s, request: request, start: start, end: end}, nil
}

// MemoryJobFactory groups in-memory requests into factual jobs.
func MemoryJobFactory() *retrieval.JobFactory {
	return retrieval.NewJobFactory(TypeNameMemory, func(facts *retrieval.FactTable, requests []retrieval.SourceRequest) (retrieval.FactualJob, error) {
		return &memoryFactualJob{facts: facts, requests: requests}, nil
	})
}

type memoryFullExtractJob struct {
	source  *InMemorySource
	request retrieval.Request
	limit   int
}

func (j *memoryFullExtractJob) Requests() []retrieval.Request { return []retrieval.Request{j.request} }

func (j *memoryFullExtractJob) Result() retrieval.Result {
	return retrieval.ResultFromRequests(j.Requests())
}

func (j *memoryFullExtractJob) Limit() int { return j.limit }

func (j *memoryFullExtractJob) ToFrame(_ context.Context) (*dataset.Frame, error) {
	return evalFullExtract(j.source.table, j.request, identityResolver, j.limit)
}

func (j *memoryFullExtractJob) ToTable(ctx context.Context) (dataset.Table, error) {
	return collect(j.ToFrame(ctx))
}

type memoryDateRangeJob struct {
	source     *InMemorySource
	request    retrieval.Request
	start, end time.Time
}

func (j *memoryDateRangeJob) Requests() []retrieval.Request { return []retrieval.Request{j.request} }

func (j *memoryDateRangeJob) Result() retrieval.Result {
	return retrieval.ResultFromRequests(j.Requests())
}

func (j *memoryDateRangeJob) Range() (time.Time, time.Time) { return j.start, j.end }

func (j *memoryDateRangeJob) ToFrame(_ context.Context) (*dataset.Frame, error) {
	return evalDateRange(j.source.table, j.request, identityResolver, j.start, j.end)
}

func (j *memoryDateRangeJob) ToTable(ctx context.Context) (dataset.Table, error) {
	return collect(j.ToFrame(ctx))
}

type memoryFactualJob struct {
	facts    *retrieval.FactTable
	requests []retrieval.SourceRequest
}

func (j *memoryFactualJob) Requests() []retrieval.Request {
	requests := make([]retrieval.Request, len(j.requests))
	for i, sr := range j.requests {
		requests[i] = sr.Request
	}
	return requests
}

func (j *memoryFactualJob) Result() retrieval.Result {
	return retrieval.ResultFromRequests(j.Requests())
}

func (j *memoryFactualJob) Facts() *retrieval.FactTable { return j.facts }

func (j *memoryFactualJob) ToFrame(_ context.Context) (*dataset.Frame, error) {
	frame := &dataset.Frame{}
	for _, sr := range j.requests {
		source, ok := sr.Source.(*InMemorySource)
		if !ok {
			continue
		}
		part, err := evalFacts(source.table, j.facts, []retrieval.SourceRequest{sr}, identityResolver)
		if err != nil {
			return nil, err
		}
		if err := frame.Merge(part); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func (j *memoryFactualJob) ToTable(ctx context.Context) (dataset.Table, error) {
	return collect(j.ToFrame(ctx))
}

func collect(frame *dataset.Frame, err error) (dataset.Table, error) {
	if err != nil {
		return dataset.Table{}, err
	}
	return frame.Collect(), nil
}
