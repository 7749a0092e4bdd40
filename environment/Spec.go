package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SpecType is the kind of data a Spec describes
type SpecType int

const (
	Action SpecType = iota
	Observation
	Discount
	Reward
)

// Cardinality is whether the values described by a Spec are discrete
// or continuous
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec describes the shape and element-wise bounds of the actions,
// observations, or discounts of an environment
type Spec struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec returns a new Spec of type t. The bounds must have one entry
// per entry of shape, and no lower bound may exceed its upper bound.
func NewSpec(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) (Spec, error) {
	n := shape.Len()
	if lowerBound.Len() != n || upperBound.Len() != n {
		return Spec{}, fmt.Errorf("newSpec: bounds of length (%d, %d) do "+
			"not match shape length %d", lowerBound.Len(), upperBound.Len(),
			n)
	}
	for i := 0; i < n; i++ {
		if lowerBound.AtVec(i) > upperBound.AtVec(i) {
			return Spec{}, fmt.Errorf("newSpec: lower bound %v exceeds "+
				"upper bound %v at index %d", lowerBound.AtVec(i),
				upperBound.AtVec(i), i)
		}
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}, nil
}

// Contains returns whether v has the shape of the Spec and lies within
// its bounds
func (s Spec) Contains(v mat.Vector) bool {
	if v.Len() != s.Shape.Len() {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		if v.AtVec(i) < s.LowerBound.AtVec(i) ||
			v.AtVec(i) > s.UpperBound.AtVec(i) {
			return false
		}
	}
	return true
}

// NumActions returns the number of actions described by a discrete,
// one-dimensional action Spec whose actions are numbered from 0
func (s Spec) NumActions() (int, error) {
	switch {
	case s.Type != Action:
		return 0, fmt.Errorf("numActions: not an action spec")
	case s.Cardinality != Discrete:
		return 0, fmt.Errorf("numActions: actions are not discrete")
	case s.Shape.Len() != 1:
		return 0, fmt.Errorf("numActions: actions have %d dimensions",
			s.Shape.Len())
	case s.LowerBound.AtVec(0) != 0:
		return 0, fmt.Errorf("numActions: actions start at %v, not 0",
			s.LowerBound.AtVec(0))
	}
	return int(s.UpperBound.AtVec(0)) + 1, nil
}
