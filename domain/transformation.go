package domain

import (
	"time"

	"plumage/literal"
)

// Transformation describes how a derived feature is computed from its
// inputs. The descriptors here are pure data: an external engine reads the
// kind and operands and evaluates them however it likes.
type Transformation interface {
	// Kind returns the stable operator name the descriptor serializes under.
	Kind() string
}

// Operand is one input to a transformation: either a reference to another
// feature or a constant.
type Operand struct {
	Feature *FeatureReference
	Literal literal.Value
}

// FeatureOperand wraps a reference as an operand.
func FeatureOperand(ref FeatureReference) Operand {
	return Operand{Feature: &ref}
}

// LiteralOperand wraps a constant as an operand.
func LiteralOperand(v literal.Value) Operand {
	return Operand{Literal: v}
}

// BinaryOp names a two-operand operator.
type BinaryOp string

const (
	OpEquals             BinaryOp = "equals"
	OpNotEquals          BinaryOp = "not-equals"
	OpGreaterThan        BinaryOp = "greater-than"
	OpGreaterThanOrEqual BinaryOp = "greater-than-or-equal"
	OpLowerThan          BinaryOp = "lower-than"
	OpLowerThanOrEqual   BinaryOp = "lower-than-or-equal"
	OpAddition           BinaryOp = "addition"
	OpDifference         BinaryOp = "difference"
	OpRatio              BinaryOp = "ratio"
	OpPower              BinaryOp = "power"
	OpAnd                BinaryOp = "and"
	OpOr                 BinaryOp = "or"
	OpTimeDifference     BinaryOp = "time-difference"
	OpAppend             BinaryOp = "append"
)

// Binary applies a two-operand operator.
type Binary struct {
	Op    BinaryOp
	Left  Operand
	Right Operand
}

func (t Binary) Kind() string { return string(t.Op) }

// UnaryOp names a single-operand operator.
type UnaryOp string

const (
	OpNot         UnaryOp = "not"
	OpAbsolute    UnaryOp = "absolute"
	OpLog1p       UnaryOp = "log1p"
	OpIsNotNull   UnaryOp = "is-not-null"
	OpToNumerical UnaryOp = "to-numerical"
)

// Unary applies a single-operand operator.
type Unary struct {
	Op    UnaryOp
	Input FeatureReference
}

func (t Unary) Kind() string { return string(t.Op) }

// IsIn tests membership of a feature value in a constant set.
type IsIn struct {
	Input  FeatureReference
	Values []literal.Value
}

func (IsIn) Kind() string { return "is-in" }

// Ordinal encodes a categorical feature by the index of its value in Orders.
type Ordinal struct {
	Input  FeatureReference
	Orders []string
}

func (Ordinal) Kind() string { return "ordinal" }

// Contains tests whether a text feature contains a substring.
type Contains struct {
	Input FeatureReference
	Value string
}

func (Contains) Kind() string { return "contains" }

// Replace substitutes occurrences per the mapping in a text feature.
type Replace struct {
	Input   FeatureReference
	Mapping map[string]string
}

func (Replace) Kind() string { return "replace" }

// DateComponent extracts a named component (year, month, day, ...) from a
// datetime feature.
type DateComponent struct {
	Input     FeatureReference
	Component string
}

func (DateComponent) Kind() string { return "date-component" }

// FillMissing replaces nulls in a feature with a constant.
type FillMissing struct {
	Input FeatureReference
	With  literal.Value
}

func (FillMissing) Kind() string { return "fill-missing" }

// AggregationFunc names an aggregation over grouped rows.
type AggregationFunc string

const (
	AggSum           AggregationFunc = "sum"
	AggMean          AggregationFunc = "mean"
	AggMin           AggregationFunc = "min"
	AggMax           AggregationFunc = "max"
	AggCount         AggregationFunc = "count"
	AggCountDistinct AggregationFunc = "count-distinct"
	AggStd           AggregationFunc = "std"
	AggVariance      AggregationFunc = "variance"
	AggMedian        AggregationFunc = "median"
	AggPercentile    AggregationFunc = "percentile"
	AggConcat        AggregationFunc = "concat"
)

// Aggregation computes a grouped statistic over a feature, optionally
// restricted to a trailing time window.
type Aggregation struct {
	Func       AggregationFunc
	Input      FeatureReference
	GroupBy    []FeatureReference
	TimeWindow *time.Duration
	// Percentile in [0, 1]; only set for AggPercentile.
	Percentile float64
	// Separator is only set for AggConcat.
	Separator string
}

func (t Aggregation) Kind() string { return "aggregation:" + string(t.Func) }
