package retrieval

import (
	"fmt"
	"sort"
)

// SourceRequest pairs a batch source with the request bound to it.
type SourceRequest struct {
	Source  BatchSource
	Request Request
}

// FactsBuilder builds one factual job for a group of physically co-located
// requests, given the fact columns those requests need.
type FactsBuilder func(facts *FactTable, requests []SourceRequest) (FactualJob, error)

// JobFactory groups per-source requests into physical jobs for one source
// kind. Grouping is a pure function of JobGroupKey equality.
type JobFactory struct {
	typeName string
	facts    FactsBuilder
}

// NewJobFactory returns a factory for the given source kind.
func NewJobFactory(typeName string, facts FactsBuilder) *JobFactory {
	return &JobFactory{typeName: typeName, facts: facts}
}

// TypeName returns the source kind the factory serves.
func (f *JobFactory) TypeName() string { return f.typeName }

// Facts plans a point-in-time retrieval:
//
//  1. keep only sources of this factory's kind,
//  2. partition them by JobGroupKey — equal keys are the same physical
//     table or file and share one job,
//  3. per group, subset the fact table to the union of required entity
//     columns (a missing column fails here, not at materialization),
//  4. build one factual job per group,
//  5. wrap everything in a CombineFactualJob.
//
// Group order is sorted by key, so the same input always yields the same
// job tree regardless of map iteration order.
func (f *JobFactory) Facts(facts *FactTable, requests []SourceRequest) (*CombineFactualJob, error) {
	groups := make(map[string][]SourceRequest)
	for _, sr := range requests {
		if sr.Source.TypeName() != f.typeName {
			continue
		}
		key := sr.Source.JobGroupKey()
		groups[key] = append(groups[key], sr)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	jobs := make([]Job, 0, len(keys))
	for _, key := range keys {
		grouped := groups[key]
		sort.SliceStable(grouped, func(i, j int) bool {
			return grouped[i].Request.Location.Identifier() < grouped[j].Request.Location.Identifier()
		})

		entitySet := make(map[string]bool)
		var entityNames []string
		for _, sr := range grouped {
			for _, name := range sr.Request.EntityNames() {
				if !entitySet[name] {
					entitySet[name] = true
					entityNames = append(entityNames, name)
				}
			}
		}
		sort.Strings(entityNames)

		groupFacts, err := facts.Subset(entityNames)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", key, err)
		}
		job, err := f.facts(groupFacts, grouped)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", key, err)
		}
		jobs = append(jobs, job)
	}

	return NewCombineFactualJob(jobs), nil
}
