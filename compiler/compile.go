package compiler

import (
	"errors"
	"fmt"

	"plumage/domain"
)

var (
	// ErrNotATransformation is returned when compiling a node that has no
	// transformation attached; stored features are compiled with Feature.
	ErrNotATransformation = errors.New("compiler: feature node has no transformation")
	// ErrCyclicTransformation is returned when the dependency graph is not
	// a DAG. Cycles cannot occur through the builder methods alone, but a
	// caller wiring nodes by hand can create one.
	ErrCyclicTransformation = errors.New("compiler: transformation dependency cycle")
)

// Compile lowers the node into a derived feature. The node must be bound
// to a name; unnamed intermediate nodes in its dependency graph are given
// generated names scoped to this node's location.
func (c *core) Compile() (domain.DerivedFeature, error) {
	root, _, err := c.CompileGraph()
	return root, err
}

// CompileGraph compiles the node and returns it together with the derived
// features for every unnamed intermediate in its dependency graph. A view
// compiler needs the intermediates so the full graph stays computable.
func (c *core) CompileGraph() (domain.DerivedFeature, []domain.DerivedFeature, error) {
	var zero domain.DerivedFeature
	if c.transformation == nil {
		return zero, nil, ErrNotATransformation
	}
	if c.name == "" {
		return zero, nil, domain.ErrMissingName
	}
	if err := detectCycle(c); err != nil {
		return zero, nil, err
	}

	intermediates, err := c.nameDependencies()
	if err != nil {
		return zero, nil, err
	}

	root, err := c.lowerDerived()
	if err != nil {
		return zero, nil, err
	}

	derived := make([]domain.DerivedFeature, 0, len(intermediates))
	for _, node := range intermediates {
		d, err := node.lowerDerived()
		if err != nil {
			return zero, nil, err
		}
		derived = append(derived, d)
	}
	return root, derived, nil
}

// lowerDerived converts an already-named, transformed node into the IR.
func (c *core) lowerDerived() (domain.DerivedFeature, error) {
	var zero domain.DerivedFeature
	deps := c.transformation.usingFeatures()
	refs := make([]domain.FeatureReference, len(deps))
	for i, dep := range deps {
		ref, err := dep.FeatureReference()
		if err != nil {
			return zero, fmt.Errorf("compiler: dependency %d of %q: %w", i, c.name, err)
		}
		refs[i] = ref
	}
	trans, err := c.transformation.lower()
	if err != nil {
		return zero, err
	}
	return domain.DerivedFeature{
		Name:           c.name,
		DType:          c.dtype,
		DependingOn:    refs,
		Transformation: trans,
		Depth:          depthOf(c),
		Description:    c.description,
		Constraints:    c.constraints,
	}, nil
}

// nameDependencies walks the dependency graph in operand order and assigns
// generated names to unnamed transformed intermediates. Unnamed nodes
// without a transformation cannot be referenced at all and fail the
// compile. Returns the intermediates that need their own derived feature.
func (c *core) nameDependencies() ([]*core, error) {
	var intermediates []*core
	counter := 0
	seen := make(map[*core]bool)

	var walk func(node *core) error
	walk = func(node *core) error {
		if seen[node] {
			return nil
		}
		seen[node] = true
		if node.transformation == nil {
			if node.name == "" {
				return fmt.Errorf("compiler: dependency of %q: %w", c.name, domain.ErrMissingName)
			}
			return nil
		}
		for _, dep := range node.transformation.usingFeatures() {
			if err := walk(dep); err != nil {
				return err
			}
		}
		if node != c && node.name == "" {
			node.name = fmt.Sprintf("%s_dep_%d", c.name, counter)
			node.location = c.location
			counter++
		}
		if node != c {
			intermediates = append(intermediates, node)
		}
		return nil
	}
	if err := walk(c); err != nil {
		return nil, err
	}
	return intermediates, nil
}

// depthOf computes the derivation depth: 0 for a stored feature, otherwise
// 1 + the max depth of the direct transformation inputs.
func depthOf(node *core) int {
	if node.transformation == nil {
		return 0
	}
	depth := 0
	for _, dep := range node.transformation.usingFeatures() {
		if d := depthOf(dep); d > depth {
			depth = d
		}
	}
	return depth + 1
}

// detectCycle runs a depth-first search with an in-progress set over the
// operand graph.
func detectCycle(root *core) error {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[*core]int)

	var visit func(node *core) error
	visit = func(node *core) error {
		switch state[node] {
		case visiting:
			return ErrCyclicTransformation
		case done:
			return nil
		}
		state[node] = visiting
		if node.transformation != nil {
			for _, dep := range node.transformation.usingFeatures() {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		state[node] = done
		return nil
	}
	return visit(root)
}
