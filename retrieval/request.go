// Package retrieval models what must be fetched from batch sources and the
// lazy jobs that fetch it. Requests and results are built per query and
// discarded once the job tree exists; jobs are values and do no I/O until
// materialized.
package retrieval

import (
	"fmt"
	"sort"

	"plumage/compiler"
	"plumage/domain"
)

// Request describes everything needed from one physical source: the entity
// columns identifying rows, the stored features to read, the derived
// features to compute, and the optional event-timestamp column.
type Request struct {
	Location        domain.FeatureLocation
	Entities        []domain.Feature
	Features        []domain.Feature
	DerivedFeatures []domain.DerivedFeature
	EventTimestamp  *domain.EventTimestamp
}

// NewRequest validates that entities and features are disjoint.
func NewRequest(location domain.FeatureLocation, entities, features []domain.Feature, derived []domain.DerivedFeature, eventTimestamp *domain.EventTimestamp) (Request, error) {
	names := make(map[string]bool, len(entities))
	for _, entity := range entities {
		names[entity.Name] = true
	}
	for _, feature := range features {
		if names[feature.Name] {
			return Request{}, fmt.Errorf("retrieval: %q is both an entity and a feature", feature.Name)
		}
	}
	return Request{
		Location:        location,
		Entities:        entities,
		Features:        features,
		DerivedFeatures: derived,
		EventTimestamp:  eventTimestamp,
	}, nil
}

// RequestFromView builds the request covering a whole compiled view.
func RequestFromView(view *compiler.CompiledView) Request {
	return Request{
		Location:        view.Location,
		Entities:        view.Entities,
		Features:        view.Features,
		DerivedFeatures: view.DerivedFeatures,
		EventTimestamp:  view.EventTimestamp,
	}
}

// EntityNames returns the entity column names in declaration order.
func (r Request) EntityNames() []string {
	names := make([]string, len(r.Entities))
	for i, entity := range r.Entities {
		names[i] = entity.Name
	}
	return names
}

// FeatureNames returns the stored feature names in declaration order.
func (r Request) FeatureNames() []string {
	names := make([]string, len(r.Features))
	for i, feature := range r.Features {
		names[i] = feature.Name
	}
	return names
}

// AllRequiredFeatureNames returns, sorted, the stored features plus every
// derived-feature dependency that is not itself derived or an entity here
// — i.e. the columns the physical source must supply.
func (r Request) AllRequiredFeatureNames() []string {
	derived := make(map[string]bool, len(r.DerivedFeatures))
	for _, d := range r.DerivedFeatures {
		derived[d.Name] = true
	}
	entities := make(map[string]bool, len(r.Entities))
	for _, entity := range r.Entities {
		entities[entity.Name] = true
	}

	required := make(map[string]bool, len(r.Features))
	for _, feature := range r.Features {
		required[feature.Name] = true
	}
	for _, d := range r.DerivedFeatures {
		for _, dep := range d.DependingOn {
			if !derived[dep.Name] && !entities[dep.Name] {
				required[dep.Name] = true
			}
		}
	}

	names := make([]string, 0, len(required))
	for name := range required {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Result is the merged output shape of a set of requests: the union of
// their entities, features and derived features.
type Result struct {
	Entities        []domain.Feature
	Features        []domain.Feature
	DerivedFeatures []domain.DerivedFeature
}

// ResultFromRequests unions the shapes of the requests, deduplicating by
// feature name within each section.
func ResultFromRequests(requests []Request) Result {
	var result Result
	seenEntity := make(map[string]bool)
	seenFeature := make(map[string]bool)
	seenDerived := make(map[string]bool)
	for _, request := range requests {
		for _, entity := range request.Entities {
			if !seenEntity[entity.Name] {
				seenEntity[entity.Name] = true
				result.Entities = append(result.Entities, entity)
			}
		}
		for _, feature := range request.Features {
			if !seenFeature[feature.Name] {
				seenFeature[feature.Name] = true
				result.Features = append(result.Features, feature)
			}
		}
		for _, derived := range request.DerivedFeatures {
			if !seenDerived[derived.Name] {
				seenDerived[derived.Name] = true
				result.DerivedFeatures = append(result.DerivedFeatures, derived)
			}
		}
	}
	return result
}

// FeatureColumnNames returns every non-entity output column of the result.
func (r Result) FeatureColumnNames() []string {
	names := make([]string, 0, len(r.Features)+len(r.DerivedFeatures))
	for _, feature := range r.Features {
		names = append(names, feature.Name)
	}
	for _, derived := range r.DerivedFeatures {
		names = append(names, derived.Name)
	}
	return names
}
