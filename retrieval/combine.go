package retrieval

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"plumage/dataset"
)

// CombineFactualJob unions the outputs of per-group factual jobs into one
// logical table: columns are unioned, rows stay aligned by position with
// the fact table, and no fact row is dropped or duplicated. Children
// materialize concurrently; the first failure cancels the combine and its
// error is returned (in-flight siblings may run to completion, their
// results are discarded).
type CombineFactualJob struct {
	Jobs []Job
}

// NewCombineFactualJob wraps the child jobs.
func NewCombineFactualJob(jobs []Job) *CombineFactualJob {
	return &CombineFactualJob{Jobs: jobs}
}

// Requests returns the requests of every child, in child order.
func (c *CombineFactualJob) Requests() []Request {
	var requests []Request
	for _, job := range c.Jobs {
		requests = append(requests, job.Requests()...)
	}
	return requests
}

// Result returns the union of the children's declared shapes.
func (c *CombineFactualJob) Result() Result {
	return ResultFromRequests(c.Requests())
}

// ToFrame materializes every child concurrently and merges the columnar
// results.
func (c *CombineFactualJob) ToFrame(ctx context.Context) (*dataset.Frame, error) {
	frames := make([]*dataset.Frame, len(c.Jobs))
	group, ctx := errgroup.WithContext(ctx)
	for i, job := range c.Jobs {
		group.Go(func() error {
			frame, err := job.ToFrame(ctx)
			if err != nil {
				return fmt.Errorf("combine job %d: %w", i, err)
			}
			frames[i] = frame
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	merged := &dataset.Frame{}
	for _, frame := range frames {
		if err := merged.Merge(frame); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// ToTable materializes the merged result row-oriented.
func (c *CombineFactualJob) ToTable(ctx context.Context) (dataset.Table, error) {
	frame, err := c.ToFrame(ctx)
	if err != nil {
		return dataset.Table{}, err
	}
	return frame.Collect(), nil
}
