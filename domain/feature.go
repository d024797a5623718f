// Package domain holds the compiled feature intermediate representation:
// feature types, features, references between them, and derived features
// with their transformations. Everything here is an immutable value object
// once compiled; planning reads it, nothing mutates it.
package domain

import (
	"errors"
	"fmt"

	"plumage/literal"
)

// FeatureType names a first-class value type a feature can have.
type FeatureType string

const (
	TypeBool      FeatureType = "bool"
	TypeInt32     FeatureType = "int32"
	TypeInt64     FeatureType = "int64"
	TypeFloat     FeatureType = "float"
	TypeString    FeatureType = "string"
	TypeDatetime  FeatureType = "datetime"
	TypeUUID      FeatureType = "uuid"
	TypeArray     FeatureType = "array"
	TypeEmbedding FeatureType = "embedding"
)

// IsNumeric reports whether arithmetic over the type is meaningful.
func (t FeatureType) IsNumeric() bool {
	switch t {
	case TypeInt32, TypeInt64, TypeFloat:
		return true
	}
	return false
}

// SQLType returns the SQL type used to cast bound values of this type in
// generated queries.
func (t FeatureType) SQLType() string {
	switch t {
	case TypeBool:
		return "boolean"
	case TypeInt32, TypeInt64:
		return "integer"
	case TypeFloat:
		return "double precision"
	case TypeDatetime:
		return "TIMESTAMP WITH TIME ZONE"
	case TypeUUID:
		return "uuid"
	default:
		return "text"
	}
}

// TypeOfLiteral maps a literal tag to the feature type it carries.
func TypeOfLiteral(v literal.Value) FeatureType {
	switch v.Tag() {
	case literal.TagInt:
		return TypeInt64
	case literal.TagFloat:
		return TypeFloat
	case literal.TagBool:
		return TypeBool
	case literal.TagDate, literal.TagDatetime:
		return TypeDatetime
	case literal.TagArray:
		return TypeArray
	default:
		return TypeString
	}
}

// LocationKind discriminates the definition kinds a feature can live in.
type LocationKind string

const (
	LocationFeatureView LocationKind = "feature_view"
	LocationModel       LocationKind = "model"
)

// FeatureLocation scopes a feature name to its owning definition, so
// same-named features in different views stay distinct.
type FeatureLocation struct {
	Kind LocationKind
	Name string
}

// FeatureViewLocation returns the location of a named feature view.
func FeatureViewLocation(name string) FeatureLocation {
	return FeatureLocation{Kind: LocationFeatureView, Name: name}
}

// ModelLocation returns the location of a named model.
func ModelLocation(name string) FeatureLocation {
	return FeatureLocation{Kind: LocationModel, Name: name}
}

// Identifier returns the canonical "kind:name" form.
func (l FeatureLocation) Identifier() string {
	return fmt.Sprintf("%s:%s", l.Kind, l.Name)
}

// IsZero reports whether the location has not been assigned yet.
func (l FeatureLocation) IsZero() bool {
	return l.Kind == "" && l.Name == ""
}

// Feature is a named, typed value read directly from a source.
// Identity is the name, scoped by the owning location.
type Feature struct {
	Name        string
	DType       FeatureType
	Description string
	Tags        []string
	Constraints ConstraintSet
}

var (
	// ErrMissingName is returned when a reference or derived feature is
	// built from a node that was never bound to a name.
	ErrMissingName = errors.New("domain: feature has no name")
	// ErrMissingLocation is returned when a reference is built before the
	// feature is bound to a containing definition.
	ErrMissingLocation = errors.New("domain: feature has no location")
)

// FeatureReference points at a feature defined elsewhere.
type FeatureReference struct {
	Name     string
	Location FeatureLocation
	DType    FeatureType
}

// NewFeatureReference validates that both name and location are assigned.
func NewFeatureReference(name string, location FeatureLocation, dtype FeatureType) (FeatureReference, error) {
	if name == "" {
		return FeatureReference{}, ErrMissingName
	}
	if location.IsZero() {
		return FeatureReference{}, ErrMissingLocation
	}
	return FeatureReference{Name: name, Location: location, DType: dtype}, nil
}

// Identifier returns the fully scoped "kind:location:name" form.
func (r FeatureReference) Identifier() string {
	return fmt.Sprintf("%s:%s", r.Location.Identifier(), r.Name)
}

// DerivedFeature is a feature computed from other features via a
// transformation. Depth is 1 + the max depth of its direct inputs; a
// feature with no transformation has depth 0.
type DerivedFeature struct {
	Name           string
	DType          FeatureType
	DependingOn    []FeatureReference
	Transformation Transformation
	Depth          int
	Description    string
	Constraints    ConstraintSet
}

// DependingOnNames returns the names of the direct dependencies.
func (d DerivedFeature) DependingOnNames() []string {
	names := make([]string, len(d.DependingOn))
	for i, ref := range d.DependingOn {
		names[i] = ref.Name
	}
	return names
}

// Feature returns the plain feature view of the derived feature.
func (d DerivedFeature) Feature() Feature {
	return Feature{
		Name:        d.Name,
		DType:       d.DType,
		Description: d.Description,
		Constraints: d.Constraints,
	}
}

// EventTimestamp is the feature marking event time on a source, with an
// optional time-to-live bounding how far back observations stay valid.
type EventTimestamp struct {
	Name        string
	TTLSeconds  float64
	Description string
}

// Feature returns the event timestamp as a plain datetime feature.
func (e EventTimestamp) Feature() Feature {
	return Feature{Name: e.Name, DType: TypeDatetime, Description: e.Description}
}
