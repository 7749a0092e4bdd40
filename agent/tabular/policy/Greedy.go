package policy

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/qlambda/agent"
)

// Greedy implements a greedy policy used for evaluation. It never
// explores.
type Greedy struct {
	sampler
}

// NewGreedy returns a new Greedy policy which draws its tie-breaking
// randomness from src
func NewGreedy(src rand.Source) *Greedy {
	return &Greedy{newSampler(src)}
}

// Choose returns one of the valid actions with the highest value, with
// ties broken uniformly at random. An error wrapping
// agent.ErrInvalidState is returned if no action is valid.
func (g *Greedy) Choose(values []float64, valid []bool) (int, error) {
	if !anyValid(valid) {
		return 0, fmt.Errorf("choose: %w", agent.ErrInvalidState)
	}
	return g.argmax(values, valid), nil
}
