package policy

import (
	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/qlambda/utils/floatutils"
)

// LinearSchedule linearly interpolates ε from Start to End over
// DecaySteps action selections, after which ε stays at End
type LinearSchedule struct {
	Start      float64
	End        float64
	DecaySteps int
}

// At returns ε after t action selections
func (l LinearSchedule) At(t int) float64 {
	frac := 1.0
	if l.DecaySteps > 0 {
		frac = floatutils.Clip(float64(t)/float64(l.DecaySteps), 0, 1)
	}
	return l.Start + frac*(l.End-l.Start)
}

// EGreedy implements an ε-greedy policy with a linearly decaying ε
type EGreedy struct {
	schedule LinearSchedule
	sampler
}

// NewEGreedy returns a new EGreedy policy which draws all of its
// randomness from src
func NewEGreedy(schedule LinearSchedule, src rand.Source) *EGreedy {
	return &EGreedy{
		schedule: schedule,
		sampler:  newSampler(src),
	}
}

// Epsilon returns the probability of selecting a random valid action
// on the t-th action selection
func (e *EGreedy) Epsilon(t int) float64 {
	return e.schedule.At(t)
}

// Choose implements the Explorer interface. With probability ε a valid
// action is selected uniformly at random; otherwise one of the valid
// actions with the highest value is selected, with ties broken
// uniformly at random.
func (e *EGreedy) Choose(values []float64, _ []int, valid []bool, t int) int {
	eps := e.Epsilon(t)

	if !anyValid(valid) {
		return e.uniform(len(valid))
	}

	if e.rng.Float64() < eps {
		return e.uniformValid(valid)
	}
	return e.argmax(values, valid)
}
