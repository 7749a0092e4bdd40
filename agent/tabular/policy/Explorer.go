// Package policy implements action selection for tabular agents. Each
// policy reads the action values (and visit counts) of a single state
// and picks an action among those allowed by a valid-action mask.
package policy

import (
	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/qlambda/utils/floatutils"
)

// Explorer selects actions during training.
//
// Choose is given the action values and visit counts of the current
// state, the mask of valid actions, and the number of actions selected
// so far including the current one. If no action is valid, Choose
// returns an action sampled uniformly from the entire action space.
type Explorer interface {
	Choose(values []float64, visits []int, valid []bool, t int) int
}

// sampler implements uniform sampling helpers shared by all policies
type sampler struct {
	rng     *rand.Rand
	scratch []int
}

func newSampler(src rand.Source) sampler {
	return sampler{rng: rand.New(src)}
}

// uniform returns an action sampled uniformly from all n actions
func (s *sampler) uniform(n int) int {
	return s.rng.Intn(n)
}

// uniformValid returns an action sampled uniformly from the valid actions.
// At least one action must be valid.
func (s *sampler) uniformValid(valid []bool) int {
	s.scratch = s.scratch[:0]
	for i, v := range valid {
		if v {
			s.scratch = append(s.scratch, i)
		}
	}
	return s.scratch[s.rng.Intn(len(s.scratch))]
}

// argmax returns one of the valid actions with the largest score,
// breaking ties uniformly at random. If no valid score compares equal
// to the maximum (for example, all are NaN), a valid action is sampled
// uniformly instead. At least one action must be valid.
func (s *sampler) argmax(scores []float64, valid []bool) int {
	_, s.scratch = floatutils.MaxSliceMasked(scores, valid, s.scratch)
	if len(s.scratch) == 0 {
		return s.uniformValid(valid)
	}
	return s.scratch[s.rng.Intn(len(s.scratch))]
}

// anyValid returns whether at least one action is valid
func anyValid(valid []bool) bool {
	for _, v := range valid {
		if v {
			return true
		}
	}
	return false
}
