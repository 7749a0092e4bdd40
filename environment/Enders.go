package environment

import "github.com/samuelfneumann/qlambda/timestep"

// FunctionEnder ends an episode whenever a function of a TimeStep
// returns true, recording a fixed EndType on the final TimeStep.
type FunctionEnder struct {
	end     func(*timestep.TimeStep) bool
	endType timestep.EndType
}

// NewFunctionEnder returns a new FunctionEnder which ends episodes with
// end type endType when f returns true.
func NewFunctionEnder(f func(*timestep.TimeStep) bool,
	endType timestep.EndType) Ender {
	return &FunctionEnder{f, endType}
}

// NewNoValidActionsEnder returns an Ender which ends episodes as soon
// as a TimeStep has no legal actions
func NewNoValidActionsEnder() Ender {
	return NewFunctionEnder(func(t *timestep.TimeStep) bool {
		return !t.AnyValid()
	}, timestep.NoValidActions)
}

// NewStepLimit returns an Ender which cuts episodes off once they have
// lasted episodeSteps steps. Such episodes end with timestep.Timeout.
// A limit of 0 or less never ends an episode.
func NewStepLimit(episodeSteps int) Ender {
	return NewFunctionEnder(func(t *timestep.TimeStep) bool {
		return episodeSteps > 0 && t.Number >= episodeSteps
	}, timestep.Timeout)
}

// End marks t as the last TimeStep of its episode and returns true if
// the episode should end
func (f *FunctionEnder) End(t *timestep.TimeStep) bool {
	if !f.end(t) {
		return false
	}
	t.StepType = timestep.Last
	t.SetEnd(f.endType)
	return true
}

// Enders combines multiple Enders. The first Ender that ends an episode
// determines the episode's EndType.
type Enders []Ender

// End implements the Ender interface
func (e Enders) End(t *timestep.TimeStep) bool {
	for _, ender := range e {
		if ender.End(t) {
			return true
		}
	}
	return false
}
