package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstraintSetIdempotent(t *testing.T) {
	var set ConstraintSet
	set.Add(Required{})
	set.Add(Required{})
	set.Add(LowerBoundInclusive{Value: 0})
	set.Add(LowerBoundInclusive{Value: 0})

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains(Required{}))
	assert.True(t, set.Contains(LowerBoundInclusive{Value: 0}))
	assert.False(t, set.Contains(LowerBound{Value: 0}))
}

func TestConstraintSetDistinguishesParameters(t *testing.T) {
	var set ConstraintSet
	set.Add(LowerBound{Value: 1})
	set.Add(LowerBound{Value: 2})
	set.Add(UpperBound{Value: 1})

	assert.Equal(t, 3, set.Len())
}

func TestInDomainKeyOrderInsensitive(t *testing.T) {
	a := InDomain{Values: []string{"b", "a"}}
	b := InDomain{Values: []string{"a", "b"}}
	assert.Equal(t, a.Key(), b.Key())

	var set ConstraintSet
	set.Add(a)
	set.Add(b)
	assert.Equal(t, 1, set.Len())
}

func TestConstraintSetValuesSorted(t *testing.T) {
	var set ConstraintSet
	set.Add(UpperBound{Value: 10})
	set.Add(Required{})
	set.Add(MinLength{Length: 2})

	values := set.Values()
	keys := make([]string, len(values))
	for i, c := range values {
		keys[i] = c.Key()
	}
	assert.Equal(t, []string{"min_length:2", "required", "upper_bound:10"}, keys)
}
