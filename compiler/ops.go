package compiler

import (
	"fmt"

	"plumage/domain"
	"plumage/literal"
)

// transformationFactory records an operator and its operand nodes. The
// operands are retained, not copied; they are the edges of the dependency
// graph. Lowering into the IR happens at compile time, once every operand
// has a name.
type transformationFactory interface {
	// usingFeatures returns the operand nodes, in operator order.
	usingFeatures() []*core
	// lower produces the IR descriptor. Operands are bound by then.
	lower() (domain.Transformation, error)
}

// operandSpec is either a node or a constant operand, captured at the call
// site. Classification errors surface at compile time, not at DSL
// composition time.
type operandSpec struct {
	node *core
	lit  literal.Value
	err  error
}

func asOperand(value any) operandSpec {
	if n, ok := value.(Node); ok {
		return operandSpec{node: n.node()}
	}
	lit, err := literal.FromValue(value)
	if err != nil {
		return operandSpec{err: err}
	}
	return operandSpec{lit: lit}
}

func (o operandSpec) operand() (domain.Operand, error) {
	if o.err != nil {
		return domain.Operand{}, o.err
	}
	if o.node != nil {
		ref, err := o.node.FeatureReference()
		if err != nil {
			return domain.Operand{}, err
		}
		return domain.FeatureOperand(ref), nil
	}
	return domain.LiteralOperand(o.lit), nil
}

// binaryFactory covers every two-operand operator.
type binaryFactory struct {
	op    domain.BinaryOp
	left  *core
	right operandSpec
}

func newBinaryFactory(op domain.BinaryOp, left *core, right any) *binaryFactory {
	return &binaryFactory{op: op, left: left, right: asOperand(right)}
}

func (f *binaryFactory) usingFeatures() []*core {
	nodes := []*core{f.left}
	if f.right.node != nil {
		nodes = append(nodes, f.right.node)
	}
	return nodes
}

func (f *binaryFactory) lower() (domain.Transformation, error) {
	leftRef, err := f.left.FeatureReference()
	if err != nil {
		return nil, err
	}
	right, err := f.right.operand()
	if err != nil {
		return nil, fmt.Errorf("compiler: %s operand: %w", f.op, err)
	}
	return domain.Binary{Op: f.op, Left: domain.FeatureOperand(leftRef), Right: right}, nil
}

// unaryFactory covers every single-operand operator.
type unaryFactory struct {
	op    domain.UnaryOp
	input *core
}

func (f *unaryFactory) usingFeatures() []*core { return []*core{f.input} }

func (f *unaryFactory) lower() (domain.Transformation, error) {
	ref, err := f.input.FeatureReference()
	if err != nil {
		return nil, err
	}
	return domain.Unary{Op: f.op, Input: ref}, nil
}

type isInFactory struct {
	input  *core
	values []literal.Value
	err    error
}

func newIsInFactory(input *core, values []any) *isInFactory {
	f := &isInFactory{input: input}
	for _, raw := range values {
		lit, err := literal.FromValue(raw)
		if err != nil {
			f.err = err
			return f
		}
		f.values = append(f.values, lit)
	}
	return f
}

func (f *isInFactory) usingFeatures() []*core { return []*core{f.input} }

func (f *isInFactory) lower() (domain.Transformation, error) {
	if f.err != nil {
		return nil, fmt.Errorf("compiler: is-in values: %w", f.err)
	}
	ref, err := f.input.FeatureReference()
	if err != nil {
		return nil, err
	}
	return domain.IsIn{Input: ref, Values: f.values}, nil
}

type ordinalFactory struct {
	input  *core
	orders []string
}

func (f *ordinalFactory) usingFeatures() []*core { return []*core{f.input} }

func (f *ordinalFactory) lower() (domain.Transformation, error) {
	ref, err := f.input.FeatureReference()
	if err != nil {
		return nil, err
	}
	return domain.Ordinal{Input: ref, Orders: f.orders}, nil
}

type containsFactory struct {
	input *core
	value string
}

func (f *containsFactory) usingFeatures() []*core { return []*core{f.input} }

func (f *containsFactory) lower() (domain.Transformation, error) {
	ref, err := f.input.FeatureReference()
	if err != nil {
		return nil, err
	}
	return domain.Contains{Input: ref, Value: f.value}, nil
}

type replaceFactory struct {
	input   *core
	mapping map[string]string
}

func (f *replaceFactory) usingFeatures() []*core { return []*core{f.input} }

func (f *replaceFactory) lower() (domain.Transformation, error) {
	ref, err := f.input.FeatureReference()
	if err != nil {
		return nil, err
	}
	return domain.Replace{Input: ref, Mapping: f.mapping}, nil
}

type dateComponentFactory struct {
	input     *core
	component string
}

func (f *dateComponentFactory) usingFeatures() []*core { return []*core{f.input} }

func (f *dateComponentFactory) lower() (domain.Transformation, error) {
	ref, err := f.input.FeatureReference()
	if err != nil {
		return nil, err
	}
	return domain.DateComponent{Input: ref, Component: f.component}, nil
}

type fillMissingFactory struct {
	input *core
	with  operandSpec
}

func newFillMissingFactory(input *core, value any) *fillMissingFactory {
	return &fillMissingFactory{input: input, with: asOperand(value)}
}

func (f *fillMissingFactory) usingFeatures() []*core { return []*core{f.input} }

func (f *fillMissingFactory) lower() (domain.Transformation, error) {
	if f.with.err != nil {
		return nil, fmt.Errorf("compiler: fill-missing value: %w", f.with.err)
	}
	if f.with.node != nil {
		return nil, fmt.Errorf("compiler: fill-missing takes a constant, not a feature")
	}
	ref, err := f.input.FeatureReference()
	if err != nil {
		return nil, err
	}
	return domain.FillMissing{Input: ref, With: f.with.lit}, nil
}

// equatable provides equality operations; every comparison returns a new
// Bool node wired to a comparison transformation.
type equatable struct {
	self *core
}

// Equals compares against another node or constant.
func (e equatable) Equals(other any) *Bool {
	out := NewBool()
	out.transformation = newBinaryFactory(domain.OpEquals, e.self, other)
	return out
}

// NotEquals is the negated comparison.
func (e equatable) NotEquals(other any) *Bool {
	out := NewBool()
	out.transformation = newBinaryFactory(domain.OpNotEquals, e.self, other)
	return out
}

// IsIn tests membership in a constant set.
func (e equatable) IsIn(values ...any) *Bool {
	out := NewBool()
	out.transformation = newIsInFactory(e.self, values)
	return out
}

// IsNotNull tests presence of a value.
func (e equatable) IsNotNull() *Bool {
	out := NewBool()
	out.transformation = &unaryFactory{op: domain.OpIsNotNull, input: e.self}
	return out
}

// ordered extends equatable with ordering operators and bound
// constraints.
type ordered struct {
	equatable
}

// GreaterThan compares in order.
func (c ordered) GreaterThan(other any) *Bool {
	out := NewBool()
	out.transformation = newBinaryFactory(domain.OpGreaterThan, c.self, other)
	return out
}

// GreaterThanOrEqual compares in order, inclusive.
func (c ordered) GreaterThanOrEqual(other any) *Bool {
	out := NewBool()
	out.transformation = newBinaryFactory(domain.OpGreaterThanOrEqual, c.self, other)
	return out
}

// LowerThan compares in order.
func (c ordered) LowerThan(other any) *Bool {
	out := NewBool()
	out.transformation = newBinaryFactory(domain.OpLowerThan, c.self, other)
	return out
}

// LowerThanOrEqual compares in order, inclusive.
func (c ordered) LowerThanOrEqual(other any) *Bool {
	out := NewBool()
	out.transformation = newBinaryFactory(domain.OpLowerThanOrEqual, c.self, other)
	return out
}

// LowerBound constrains the feature's values from below.
func (c ordered) LowerBound(value float64, inclusive bool) {
	if inclusive {
		c.self.addConstraint(domain.LowerBoundInclusive{Value: value})
		return
	}
	c.self.addConstraint(domain.LowerBound{Value: value})
}

// UpperBound constrains the feature's values from above.
func (c ordered) UpperBound(value float64, inclusive bool) {
	if inclusive {
		c.self.addConstraint(domain.UpperBoundInclusive{Value: value})
		return
	}
	c.self.addConstraint(domain.UpperBound{Value: value})
}

// arithmetic extends ordered with numeric operators returning Float
// nodes.
type arithmetic struct {
	ordered
}

// Add produces the sum of the node and the operand.
func (a arithmetic) Add(other any) *Float {
	out := NewFloat()
	out.transformation = newBinaryFactory(domain.OpAddition, a.self, other)
	return out
}

// Sub produces the difference. Subtracting one timestamp-typed node from
// another yields a time-difference transformation; dispatch is on declared
// dtype, not on syntax.
func (a arithmetic) Sub(other any) *Float {
	out := NewFloat()
	op := domain.OpDifference
	if a.self.dtype == domain.TypeDatetime {
		if n, ok := other.(Node); ok && n.DType() == domain.TypeDatetime {
			op = domain.OpTimeDifference
		}
	}
	out.transformation = newBinaryFactory(op, a.self, other)
	return out
}

// DividedBy produces the ratio of the node to the operand.
func (a arithmetic) DividedBy(other any) *Float {
	out := NewFloat()
	out.transformation = newBinaryFactory(domain.OpRatio, a.self, other)
	return out
}

// Abs produces the absolute value.
func (a arithmetic) Abs() *Float {
	out := NewFloat()
	out.transformation = &unaryFactory{op: domain.OpAbsolute, input: a.self}
	return out
}

// Pow raises the node to the operand.
func (a arithmetic) Pow(other any) *Float {
	out := NewFloat()
	out.transformation = newBinaryFactory(domain.OpPower, a.self, other)
	return out
}

// Log1p produces log(1 + value).
func (a arithmetic) Log1p() *Float {
	out := NewFloat()
	out.transformation = &unaryFactory{op: domain.OpLog1p, input: a.self}
	return out
}

// logical provides boolean connectives over Bool nodes.
type logical struct {
	self *core
}

// And conjoins with another boolean node.
func (l logical) And(other *Bool) *Bool {
	out := NewBool()
	out.transformation = newBinaryFactory(domain.OpAnd, l.self, other)
	return out
}

// Or disjoins with another boolean node.
func (l logical) Or(other *Bool) *Bool {
	out := NewBool()
	out.transformation = newBinaryFactory(domain.OpOr, l.self, other)
	return out
}

// Not negates the node.
func (l logical) Not() *Bool {
	out := NewBool()
	out.transformation = &unaryFactory{op: domain.OpNot, input: l.self}
	return out
}

// categorical provides encodings for label-valued features.
type categorical struct {
	equatable
}

// OneHotEncode expands the feature into one boolean node per label.
func (c categorical) OneHotEncode(labels []string) []*Bool {
	out := make([]*Bool, len(labels))
	for i, label := range labels {
		out[i] = c.Equals(label)
	}
	return out
}

// OrdinalCategories encodes the feature by its index in orders.
func (c categorical) OrdinalCategories(orders []string) *Int32 {
	out := NewInt32()
	out.transformation = &ordinalFactory{input: c.self, orders: orders}
	return out
}

// AcceptedValues constrains the feature's domain.
func (c categorical) AcceptedValues(values ...string) {
	c.self.addConstraint(domain.InDomain{Values: values})
}

// lengthValidatable provides text-length constraints.
type lengthValidatable struct {
	self *core
}

// MinLength requires at least length characters.
func (l lengthValidatable) MinLength(length int) {
	l.self.addConstraint(domain.MinLength{Length: length})
}

// MaxLength requires at most length characters.
func (l lengthValidatable) MaxLength(length int) {
	l.self.addConstraint(domain.MaxLength{Length: length})
}

// numberConvertible provides numeric casts.
type numberConvertible struct {
	self *core
}

// AsFloat parses the value into a float node.
func (n numberConvertible) AsFloat() *Float {
	out := NewFloat()
	out.transformation = &unaryFactory{op: domain.OpToNumerical, input: n.self}
	return out
}

// dateFeature provides date-component extraction.
type dateFeature struct {
	self *core
}

// DateComponent extracts a named component (year, month, day, hour, ...).
func (d dateFeature) DateComponent(component string) *Int32 {
	out := NewInt32()
	out.transformation = &dateComponentFactory{input: d.self, component: component}
	return out
}
