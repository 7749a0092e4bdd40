// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType describes why an episode ended
type EndType int

const (
	Unended EndType = iota
	TerminalStateReached
	Timeout
	NoValidActions
)

func (e EndType) String() string {
	switch e {
	case TerminalStateReached:
		return "TerminalStateReached"
	case Timeout:
		return "Timeout"
	case NoValidActions:
		return "NoValidActions"
	default:
		return "Unended"
	}
}

// TimeStep packages together a single timestep in an environment.
//
// ValidActions is the mask of actions that are legal in the state
// described by Observation. Its length equals the number of actions in
// the environment.
type TimeStep struct {
	StepType
	Reward       float64
	Discount     float64
	Observation  mat.Vector
	ValidActions []bool
	Number       int
	endType      EndType
}

// New creates a new TimeStep
func New(t StepType, r, d float64, o mat.Vector, valid []bool,
	n int) TimeStep {
	return TimeStep{
		StepType:     t,
		Reward:       r,
		Discount:     d,
		Observation:  o,
		ValidActions: valid,
		Number:       n,
	}
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

// SetEnd records why the episode ended on this TimeStep
func (t *TimeStep) SetEnd(e EndType) {
	t.endType = e
}

// EndType returns why the episode ended on this TimeStep. Unended is
// returned for TimeSteps that are not the last in their episode.
func (t *TimeStep) EndType() EndType {
	return t.endType
}

// AnyValid returns whether at least one action is legal on this
// TimeStep
func (t *TimeStep) AnyValid() bool {
	for _, v := range t.ValidActions {
		if v {
			return true
		}
	}
	return false
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Step Number:  %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Discount, t.Number)
}
