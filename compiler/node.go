// Package compiler is the typed feature-definition DSL. Users compose typed
// nodes (Bool, Float, String, ...) through capability methods; every
// operation allocates a new unnamed node wired to a transformation factory
// that retains its operand nodes. Binding assigns names and locations in an
// explicit second phase, and Compile lowers a node into the immutable
// domain IR.
package compiler

import (
	"time"

	"plumage/domain"
)

// Node is any typed DSL node.
type Node interface {
	// DType returns the statically determined result type of the node.
	DType() domain.FeatureType

	node() *core
}

// core carries the state shared by every typed node.
type core struct {
	name           string
	location       domain.FeatureLocation
	description    string
	dtype          domain.FeatureType
	transformation transformationFactory
	constraints    domain.ConstraintSet
	isEntity       bool
}

func (c *core) node() *core { return c }

// DType returns the node's result type.
func (c *core) DType() domain.FeatureType { return c.dtype }

// Bind assigns the node's name and owning location. Binding is what turns
// an anonymous DSL node into a referencable feature.
func (c *core) Bind(name string, location domain.FeatureLocation) {
	c.name = name
	c.location = location
}

// FeatureReference returns a reference to the bound node. It fails when the
// node has not been bound to a name and location yet.
func (c *core) FeatureReference() (domain.FeatureReference, error) {
	return domain.NewFeatureReference(c.name, c.location, c.dtype)
}

// Feature returns the stored-feature view of the node.
func (c *core) Feature() (domain.Feature, error) {
	if c.name == "" {
		return domain.Feature{}, domain.ErrMissingName
	}
	return domain.Feature{
		Name:        c.name,
		DType:       c.dtype,
		Description: c.description,
		Constraints: c.constraints,
	}, nil
}

func (c *core) describe(text string) { c.description = text }

func (c *core) addConstraint(v domain.Constraint) { c.constraints.Add(v) }

func newCore(dtype domain.FeatureType) *core {
	return &core{dtype: dtype}
}

// Bool is a boolean node.
type Bool struct {
	*core
	equatable
	logical
}

// NewBool returns an unnamed boolean node.
func NewBool() *Bool {
	b := &Bool{core: newCore(domain.TypeBool)}
	b.equatable.self = b.core
	b.logical.self = b.core
	return b
}

// Description sets the human description and returns the node.
func (b *Bool) Description(text string) *Bool { b.describe(text); return b }

// IsRequired marks the feature as always present.
func (b *Bool) IsRequired() *Bool { b.addConstraint(domain.Required{}); return b }

// Float is a floating-point node.
type Float struct {
	*core
	arithmetic
}

// NewFloat returns an unnamed float node.
func NewFloat() *Float {
	f := &Float{core: newCore(domain.TypeFloat)}
	f.arithmetic.self = f.core
	return f
}

func (f *Float) Description(text string) *Float { f.describe(text); return f }
func (f *Float) IsRequired() *Float             { f.addConstraint(domain.Required{}); return f }

// FillMissing replaces nulls with a constant, producing a new node.
func (f *Float) FillMissing(value any) *Float {
	out := NewFloat()
	out.transformation = newFillMissingFactory(f.core, value)
	return out
}

// Aggregate starts an aggregation over the node's values.
func (f *Float) Aggregate() *AggregationBuilder { return newAggregation(f.core) }

// Int32 is a 32-bit integer node.
type Int32 struct {
	*core
	arithmetic
}

// NewInt32 returns an unnamed int32 node.
func NewInt32() *Int32 {
	n := &Int32{core: newCore(domain.TypeInt32)}
	n.arithmetic.self = n.core
	return n
}

func (n *Int32) Description(text string) *Int32 { n.describe(text); return n }
func (n *Int32) IsRequired() *Int32             { n.addConstraint(domain.Required{}); return n }

// AsEntity marks the node as an entity key.
func (n *Int32) AsEntity() *Entity { return newEntity(n) }

func (n *Int32) Aggregate() *AggregationBuilder { return newAggregation(n.core) }

// Int64 is a 64-bit integer node.
type Int64 struct {
	*core
	arithmetic
}

// NewInt64 returns an unnamed int64 node.
func NewInt64() *Int64 {
	n := &Int64{core: newCore(domain.TypeInt64)}
	n.arithmetic.self = n.core
	return n
}

func (n *Int64) Description(text string) *Int64 { n.describe(text); return n }
func (n *Int64) IsRequired() *Int64             { n.addConstraint(domain.Required{}); return n }
func (n *Int64) AsEntity() *Entity              { return newEntity(n) }
func (n *Int64) Aggregate() *AggregationBuilder { return newAggregation(n.core) }

// String is a text node.
type String struct {
	*core
	categorical
	lengthValidatable
	numberConvertible
}

// NewString returns an unnamed string node.
func NewString() *String {
	s := &String{core: newCore(domain.TypeString)}
	s.categorical.equatable.self = s.core
	s.lengthValidatable.self = s.core
	s.numberConvertible.self = s.core
	return s
}

func (s *String) Description(text string) *String { s.describe(text); return s }
func (s *String) IsRequired() *String             { s.addConstraint(domain.Required{}); return s }
func (s *String) AsEntity() *Entity               { return newEntity(s) }

// Contains tests for a constant substring.
func (s *String) Contains(value string) *Bool {
	out := NewBool()
	out.transformation = &containsFactory{input: s.core, value: value}
	return out
}

// Replace substitutes values per the mapping.
func (s *String) Replace(mapping map[string]string) *String {
	out := NewString()
	out.transformation = &replaceFactory{input: s.core, mapping: mapping}
	return out
}

// Append concatenates another node or constant onto the text.
func (s *String) Append(other any) *String {
	out := NewString()
	out.transformation = newBinaryFactory(domain.OpAppend, s.core, other)
	return out
}

// Timestamp is a point-in-time node.
type Timestamp struct {
	*core
	arithmetic
	dateFeature
}

// NewTimestamp returns an unnamed timestamp node.
func NewTimestamp() *Timestamp {
	t := &Timestamp{core: newCore(domain.TypeDatetime)}
	t.arithmetic.self = t.core
	t.dateFeature.self = t.core
	return t
}

func (t *Timestamp) Description(text string) *Timestamp { t.describe(text); return t }

// EventTimestamp is the timestamp marking event time on a feature view,
// with an optional time-to-live.
type EventTimestamp struct {
	*core
	arithmetic
	dateFeature
	ttl *time.Duration
}

// NewEventTimestamp returns an unnamed event-timestamp node. A zero ttl
// means observations never expire.
func NewEventTimestamp(ttl time.Duration) *EventTimestamp {
	t := &EventTimestamp{core: newCore(domain.TypeDatetime)}
	t.arithmetic.self = t.core
	t.dateFeature.self = t.core
	if ttl > 0 {
		t.ttl = &ttl
	}
	return t
}

func (t *EventTimestamp) Description(text string) *EventTimestamp { t.describe(text); return t }

// EventTimestampFeature returns the compiled event-timestamp descriptor.
func (t *EventTimestamp) EventTimestampFeature() (domain.EventTimestamp, error) {
	if t.name == "" {
		return domain.EventTimestamp{}, domain.ErrMissingName
	}
	out := domain.EventTimestamp{Name: t.name, Description: t.description}
	if t.ttl != nil {
		out.TTLSeconds = t.ttl.Seconds()
	}
	return out, nil
}

// UUID is a unique-identifier node.
type UUID struct {
	*core
	equatable
}

// NewUUID returns an unnamed uuid node.
func NewUUID() *UUID {
	u := &UUID{core: newCore(domain.TypeUUID)}
	u.equatable.self = u.core
	return u
}

func (u *UUID) Description(text string) *UUID { u.describe(text); return u }
func (u *UUID) AsEntity() *Entity             { return newEntity(u) }

// Embedding is a vector node.
type Embedding struct {
	*core
}

// NewEmbedding returns an unnamed embedding node.
func NewEmbedding() *Embedding {
	return &Embedding{core: newCore(domain.TypeEmbedding)}
}

// ImageURL is a text node pointing at image data.
type ImageURL struct {
	*core
	equatable
}

// NewImageURL returns an unnamed image-url node.
func NewImageURL() *ImageURL {
	i := &ImageURL{core: newCore(domain.TypeString)}
	i.equatable.self = i.core
	return i
}

// Image is an array node holding decoded image data.
type Image struct {
	*core
}

// NewImage returns an unnamed image node.
func NewImage() *Image {
	return &Image{core: newCore(domain.TypeArray)}
}

// Entity is an entity-key node; its type follows the wrapped node.
type Entity struct {
	*core
	equatable
}

func newEntity(inner Node) *Entity {
	e := &Entity{core: newCore(inner.DType())}
	e.isEntity = true
	e.equatable.self = e.core
	return e
}

// NewEntity wraps a typed node as an entity key.
func NewEntity(inner Node) *Entity { return newEntity(inner) }

func (e *Entity) Description(text string) *Entity { e.describe(text); return e }
