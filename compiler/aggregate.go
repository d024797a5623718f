package compiler

import (
	"time"

	"plumage/domain"
)

// AggregationBuilder accumulates an aggregation over a node's values.
// Each terminal method allocates a new node wired to an aggregation
// descriptor; Over restricts the aggregation to a trailing time window.
type AggregationBuilder struct {
	input  *core
	window *time.Duration
}

func newAggregation(input *core) *AggregationBuilder {
	return &AggregationBuilder{input: input}
}

// Over restricts the aggregation to the trailing window.
func (a *AggregationBuilder) Over(window time.Duration) *AggregationBuilder {
	a.window = &window
	return a
}

type aggregationFactory struct {
	fn         domain.AggregationFunc
	input      *core
	window     *time.Duration
	percentile float64
	separator  string
}

func (f *aggregationFactory) usingFeatures() []*core { return []*core{f.input} }

func (f *aggregationFactory) lower() (domain.Transformation, error) {
	ref, err := f.input.FeatureReference()
	if err != nil {
		return nil, err
	}
	return domain.Aggregation{
		Func:       f.fn,
		Input:      ref,
		TimeWindow: f.window,
		Percentile: f.percentile,
		Separator:  f.separator,
	}, nil
}

func (a *AggregationBuilder) floatAgg(fn domain.AggregationFunc) *Float {
	out := NewFloat()
	out.transformation = &aggregationFactory{fn: fn, input: a.input, window: a.window}
	return out
}

func (a *AggregationBuilder) intAgg(fn domain.AggregationFunc) *Int64 {
	out := NewInt64()
	out.transformation = &aggregationFactory{fn: fn, input: a.input, window: a.window}
	return out
}

// Sum aggregates by summation.
func (a *AggregationBuilder) Sum() *Float { return a.floatAgg(domain.AggSum) }

// Mean aggregates by arithmetic mean.
func (a *AggregationBuilder) Mean() *Float { return a.floatAgg(domain.AggMean) }

// Min aggregates by minimum.
func (a *AggregationBuilder) Min() *Float { return a.floatAgg(domain.AggMin) }

// Max aggregates by maximum.
func (a *AggregationBuilder) Max() *Float { return a.floatAgg(domain.AggMax) }

// Count aggregates by row count.
func (a *AggregationBuilder) Count() *Int64 { return a.intAgg(domain.AggCount) }

// CountDistinct aggregates by distinct value count.
func (a *AggregationBuilder) CountDistinct() *Int64 { return a.intAgg(domain.AggCountDistinct) }

// Std aggregates by standard deviation.
func (a *AggregationBuilder) Std() *Float { return a.floatAgg(domain.AggStd) }

// Variance aggregates by variance.
func (a *AggregationBuilder) Variance() *Float { return a.floatAgg(domain.AggVariance) }

// Median aggregates by median.
func (a *AggregationBuilder) Median() *Float { return a.floatAgg(domain.AggMedian) }

// Percentile aggregates by the given percentile, in [0, 1].
func (a *AggregationBuilder) Percentile(p float64) *Float {
	out := NewFloat()
	out.transformation = &aggregationFactory{
		fn:         domain.AggPercentile,
		input:      a.input,
		window:     a.window,
		percentile: p,
	}
	return out
}

// StringAggregationBuilder aggregates text features.
type StringAggregationBuilder struct {
	input  *core
	window *time.Duration
}

// Aggregate starts an aggregation over the string node's values.
func (s *String) Aggregate() *StringAggregationBuilder {
	return &StringAggregationBuilder{input: s.core}
}

// Over restricts the aggregation to the trailing window.
func (a *StringAggregationBuilder) Over(window time.Duration) *StringAggregationBuilder {
	a.window = &window
	return a
}

// Concat joins the grouped values with the separator.
func (a *StringAggregationBuilder) Concat(separator string) *String {
	out := NewString()
	out.transformation = &aggregationFactory{
		fn:        domain.AggConcat,
		input:     a.input,
		window:    a.window,
		separator: separator,
	}
	return out
}
