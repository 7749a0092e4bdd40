// Package environment outlines the interfaces and sturcts needed to implement
// concrete environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/qlambda/timestep"
)

// Starter implements a distribution of starting states and samples starting
// states for environments
type Starter interface {
	Start() mat.Vector
}

// Ender determines when an episode should end. If the episode should
// end, End modifies the TimeStep so that its StepType is
// timestep.Last and records the reason with TimeStep.SetEnd.
type Ender interface {
	End(*timestep.TimeStep) bool
}

// Task implements the reward scheme for taking actions in some
// environment, as well as the episode termination conditions.
type Task interface {
	Starter
	Ender
	GetReward(state mat.Vector, action int, nextState mat.Vector) float64
	AtGoal(state mat.Vector) bool
}

// Environment implements a simualted environment with a finite number
// of discrete actions. Each TimeStep returned by an Environment carries
// the mask of actions that are legal in its state.
type Environment interface {
	Reset() (timestep.TimeStep, error)
	Step(action int) (timestep.TimeStep, bool, error)
	CurrentTimeStep() timestep.TimeStep
	NumActions() int
	ObservationSpec() Spec
	ActionSpec() Spec
	DiscountSpec() Spec
}
