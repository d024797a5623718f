package sources

import (
	"context"
	"time"

	"plumage/dataset"
	"plumage/retrieval"
)

// TypeNameCSV is the source-kind discriminator for CSV-backed tables.
const TypeNameCSV = "csv"

// CSVConfig describes how a CSV file is shaped on disk.
type CSVConfig struct {
	Separator   rune
	Compression string
}

// DefaultCSVConfig is a plain comma-separated file.
var DefaultCSVConfig = CSVConfig{Separator: ',', Compression: "infer"}

// TableReader loads a CSV file into a table. The planning core never
// touches the filesystem itself; the executor injects an implementation.
type TableReader interface {
	ReadTable(ctx context.Context, path string, config CSVConfig) (dataset.Table, error)
}

// CSVFileSource points at a CSV file. Two sources with the same path share
// a job group; mapping keys rename logical features to file columns.
type CSVFileSource struct {
	Path        string
	MappingKeys map[string]string
	Config      CSVConfig
	Reader      TableReader
}

// NewCSVFileSource returns a source for the given path.
func NewCSVFileSource(path string, reader TableReader) *CSVFileSource {
	return &CSVFileSource{Path: path, Config: DefaultCSVConfig, Reader: reader}
}

// TypeName implements retrieval.BatchSource.
func (s *CSVFileSource) TypeName() string { return TypeNameCSV }

// JobGroupKey implements retrieval.BatchSource: sources reading the same
// file are physically co-located.
func (s *CSVFileSource) JobGroupKey() string { return TypeNameCSV + "/" + s.Path }

// FeatureIdentifiersFor implements retrieval.ColumnMappable. Names without
// a mapping resolve to themselves; resolution cannot fail for a CSV file
// since the header is only known at read time.
func (s *CSVFileSource) FeatureIdentifiersFor(names []string) ([]string, error) {
	resolve := mappingResolver(s.MappingKeys)
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = resolve(name)
	}
	return out, nil
}

// FullExtract plans reading the whole file.
func (s *CSVFileSource) FullExtract(request retrieval.Request, limit int) retrieval.FullExtractJob {
	return &csvFullExtractJob{source: s, request: request, limit: limit}
}

// DateRange plans reading rows within the inclusive timestamp range.
func (s *CSVFileSource) DateRange(request retrieval.Request, start, end time.Time) (retrieval.DateRangeJob, error) {
	if request.EventTimestamp == nil {
		return nil, retrieval.ErrMissingEventTimestamp
	}
	return &csvDateRangeJob{source: s, request: request, start: start, end: end}, nil
}

// CSVJobFactory groups CSV requests by file into factual jobs.
func CSVJobFactory() *retrieval.JobFactory {
	return retrieval.NewJobFactory(TypeNameCSV, func(facts *retrieval.FactTable, requests []retrieval.SourceRequest) (retrieval.FactualJob, error) {
		return &csvFactualJob{facts: facts, requests: requests}, nil
	})
}

func (s *CSVFileSource) read(ctx context.Context) (dataset.Table, error) {
	return s.Reader.ReadTable(ctx, s.Path, s.Config)
}

type csvFullExtractJob struct {
	source  *CSVFileSource
	request retrieval.Request
	limit   int
}

func (j *csvFullExtractJob) Requests() []retrieval.Request { return []retrieval.Request{j.request} }

func (j *csvFullExtractJob) Result() retrieval.Result {
	return retrieval.ResultFromRequests(j.Requests())
}

func (j *csvFullExtractJob) Limit() int { return j.limit }

func (j *csvFullExtractJob) ToFrame(ctx context.Context) (*dataset.Frame, error) {
	table, err := j.source.read(ctx)
	if err != nil {
		return nil, err
	}
	return evalFullExtract(table, j.request, mappingResolver(j.source.MappingKeys), j.limit)
}

func (j *csvFullExtractJob) ToTable(ctx context.Context) (dataset.Table, error) {
	return collect(j.ToFrame(ctx))
}

type csvDateRangeJob struct {
	source     *CSVFileSource
	request    retrieval.Request
	start, end time.Time
}

func (j *csvDateRangeJob) Requests() []retrieval.Request { return []retrieval.Request{j.request} }

func (j *csvDateRangeJob) Result() retrieval.Result {
	return retrieval.ResultFromRequests(j.Requests())
}

func (j *csvDateRangeJob) Range() (time.Time, time.Time) { return j.start, j.end }

func (j *csvDateRangeJob) ToFrame(ctx context.Context) (*dataset.Frame, error) {
	table, err := j.source.read(ctx)
	if err != nil {
		return nil, err
	}
	return evalDateRange(table, j.request, mappingResolver(j.source.MappingKeys), j.start, j.end)
}

func (j *csvDateRangeJob) ToTable(ctx context.Context) (dataset.Table, error) {
	return collect(j.ToFrame(ctx))
}

type csvFactualJob struct {
	facts    *retrieval.FactTable
	requests []retrieval.SourceRequest
}

func (j *csvFactualJob) Requests() []retrieval.Request {
	requests := make([]retrieval.Request, len(j.requests))
	for i, sr := range j.requests {
		requests[i] = sr.Request
	}
	return requests
}

func (j *csvFactualJob) Result() retrieval.Result {
	return retrieval.ResultFromRequests(j.Requests())
}

func (j *csvFactualJob) Facts() *retrieval.FactTable { return j.facts }

func (j *csvFactualJob) ToFrame(ctx context.Context) (*dataset.Frame, error) {
	frame := &dataset.Frame{}
	for _, sr := range j.requests {
		source, ok := sr.Source.(*CSVFileSource)
		if !ok {
			continue
		}
		table, err := source.read(ctx)
		if err != nil {
			return nil, err
		}
		part, err := evalFacts(table, j.facts, []retrieval.SourceRequest{sr}, mappingResolver(source.MappingKeys))
		if err != nil {
			return nil, err
		}
		if err := frame.Merge(part); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func (j *csvFactualJob) ToTable(ctx context.Context) (dataset.Table, error) {
	return collect(j.ToFrame(ctx))
}
