package compiler

import (
	"fmt"
	"sort"

	"plumage/domain"
)

// View is an unbound feature-view definition: a set of named DSL nodes.
// Binding and compilation are explicit passes; nothing is inferred from
// struct reflection.
type View struct {
	Name           string
	Entities       map[string]Node
	Features       map[string]Node
	EventTimestamp *EventTimestamp
	// EventTimestampName is the bound name of the event timestamp column.
	EventTimestampName string
}

// NewView returns an empty view definition.
func NewView(name string) *View {
	return &View{
		Name:     name,
		Entities: make(map[string]Node),
		Features: make(map[string]Node),
	}
}

// Entity registers an entity node under the given field name.
func (v *View) Entity(name string, node Node) *View {
	v.Entities[name] = node
	return v
}

// Feature registers a stored or derived node under the given field name.
func (v *View) Feature(name string, node Node) *View {
	v.Features[name] = node
	return v
}

// WithEventTimestamp registers the event-timestamp node.
func (v *View) WithEventTimestamp(name string, node *EventTimestamp) *View {
	v.EventTimestamp = node
	v.EventTimestampName = name
	return v
}

// CompiledView is the immutable result of compiling a view definition.
type CompiledView struct {
	Location        domain.FeatureLocation
	Entities        []domain.Feature
	Features        []domain.Feature
	DerivedFeatures []domain.DerivedFeature
	EventTimestamp  *domain.EventTimestamp
}

// BindView assigns each node's name from its map key, scoped to the
// location. Binding before compiling lets features reference each other
// regardless of field order.
func BindView(location domain.FeatureLocation, nodes map[string]Node) {
	for _, name := range sortedKeys(nodes) {
		nodes[name].node().Bind(name, location)
	}
}

// Compile binds every node to its field name and this view's location,
// then lowers the graph. Field names are processed in sorted order so the
// output is deterministic. Stored nodes become plain features, transformed
// nodes become derived features, and unnamed intermediates created by
// chained operations are included under generated names.
func (v *View) Compile() (*CompiledView, error) {
	location := domain.FeatureViewLocation(v.Name)
	compiled := &CompiledView{Location: location}

	BindView(location, v.Entities)
	BindView(location, v.Features)
	if v.EventTimestamp != nil {
		v.EventTimestamp.Bind(v.EventTimestampName, location)
	}

	for _, name := range sortedKeys(v.Entities) {
		feature, err := v.Entities[name].node().Feature()
		if err != nil {
			return nil, fmt.Errorf("compiler: entity %q: %w", name, err)
		}
		compiled.Entities = append(compiled.Entities, feature)
	}

	seenDerived := make(map[string]bool)
	for _, name := range sortedKeys(v.Features) {
		node := v.Features[name].node()
		if node.transformation == nil {
			feature, err := node.Feature()
			if err != nil {
				return nil, fmt.Errorf("compiler: feature %q: %w", name, err)
			}
			compiled.Features = append(compiled.Features, feature)
			continue
		}
		root, intermediates, err := node.CompileGraph()
		if err != nil {
			return nil, fmt.Errorf("compiler: feature %q: %w", name, err)
		}
		for _, derived := range append(intermediates, root) {
			if seenDerived[derived.Name] {
				continue
			}
			seenDerived[derived.Name] = true
			compiled.DerivedFeatures = append(compiled.DerivedFeatures, derived)
		}
	}

	if v.EventTimestamp != nil {
		et, err := v.EventTimestamp.EventTimestampFeature()
		if err != nil {
			return nil, fmt.Errorf("compiler: event timestamp: %w", err)
		}
		compiled.EventTimestamp = &et
	}
	return compiled, nil
}

func sortedKeys(nodes map[string]Node) []string {
	keys := make([]string, 0, len(nodes))
	for key := range nodes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
