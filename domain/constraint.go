package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Constraint is a validation rule attached to a feature. Constraints with
// equal keys are considered the same rule.
type Constraint interface {
	// Key uniquely identifies the rule and its parameters.
	Key() string
}

// Required marks a feature that must always be present.
type Required struct{}

func (Required) Key() string { return "required" }

// LowerBound requires values strictly above Value.
type LowerBound struct{ Value float64 }

func (c LowerBound) Key() string { return fmt.Sprintf("lower_bound:%g", c.Value) }

// LowerBoundInclusive requires values at or above Value.
type LowerBoundInclusive struct{ Value float64 }

func (c LowerBoundInclusive) Key() string { return fmt.Sprintf("lower_bound_inc:%g", c.Value) }

// UpperBound requires values strictly below Value.
type UpperBound struct{ Value float64 }

func (c UpperBound) Key() string { return fmt.Sprintf("upper_bound:%g", c.Value) }

// UpperBoundInclusive requires values at or below Value.
type UpperBoundInclusive struct{ Value float64 }

func (c UpperBoundInclusive) Key() string { return fmt.Sprintf("upper_bound_inc:%g", c.Value) }

// MinLength requires text of at least Length characters.
type MinLength struct{ Length int }

func (c MinLength) Key() string { return fmt.Sprintf("min_length:%d", c.Length) }

// MaxLength requires text of at most Length characters.
type MaxLength struct{ Length int }

func (c MaxLength) Key() string { return fmt.Sprintf("max_length:%d", c.Length) }

// InDomain requires values drawn from a fixed set.
type InDomain struct{ Values []string }

func (c InDomain) Key() string {
	sorted := make([]string, len(c.Values))
	copy(sorted, c.Values)
	sort.Strings(sorted)
	return "in_domain:" + strings.Join(sorted, ",")
}

// ConstraintSet accumulates constraints with set semantics: adding an
// equivalent constraint twice is a no-op.
type ConstraintSet struct {
	items map[string]Constraint
}

// Add inserts the constraint unless an equal one is already present.
func (s *ConstraintSet) Add(c Constraint) {
	if s.items == nil {
		s.items = make(map[string]Constraint)
	}
	s.items[c.Key()] = c
}

// Contains reports whether an equal constraint is in the set.
func (s ConstraintSet) Contains(c Constraint) bool {
	_, ok := s.items[c.Key()]
	return ok
}

// Len returns the number of distinct constraints.
func (s ConstraintSet) Len() int { return len(s.items) }

// Values returns the constraints ordered by key for deterministic output.
func (s ConstraintSet) Values() []Constraint {
	keys := make([]string, 0, len(s.items))
	for key := range s.items {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]Constraint, len(keys))
	for i, key := range keys {
		out[i] = s.items[key]
	}
	return out
}
