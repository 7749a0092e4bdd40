package policy

import (
	"math"

	"golang.org/x/exp/rand"
)

// visitOffset is added to visit counts in the UCB bonus so that
// unvisited actions receive a large, finite bonus
const visitOffset = 1e-8

// UCB implements the UCB1 policy. Each valid action a in state s is
// scored as
//
//	Q(s, a) + c * sqrt(log(max(1, t)) / (visitOffset + N(s, a)))
//
// where t is the number of actions selected so far and N(s, a) is the
// number of times a was taken in s.
type UCB struct {
	c      float64
	scores []float64
	sampler
}

// NewUCB returns a new UCB policy with exploration constant c which
// draws all of its randomness from src
func NewUCB(c float64, src rand.Source) *UCB {
	return &UCB{
		c:       c,
		sampler: newSampler(src),
	}
}

// Bonus returns the exploration bonus of an action taken visits times
// after t action selections
func (u *UCB) Bonus(visits, t int) float64 {
	total := math.Max(1, float64(t))
	return u.c * math.Sqrt(math.Log(total)/(visitOffset+float64(visits)))
}

// Choose implements the Explorer interface
func (u *UCB) Choose(values []float64, visits []int, valid []bool, t int) int {
	if !anyValid(valid) {
		return u.uniform(len(valid))
	}

	if cap(u.scores) < len(values) {
		u.scores = make([]float64, len(values))
	}
	u.scores = u.scores[:len(values)]
	for i := range values {
		u.scores[i] = values[i] + u.Bonus(visits[i], t)
	}

	return u.argmax(u.scores, valid)
}
