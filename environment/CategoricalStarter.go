package environment

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// CategoricalStarter returns starting states as vectors sampled from
// a multi-dimensional categorical distribution. The categorical
// distributions sample values in (0, 1, 2, ... N).
type CategoricalStarter struct {
	features int
	rand     []distuv.Categorical
}

// NewCategoricalStarter returns a new CategoricalStarter, sampling
// dimension i from (0, 1, 2, ... bounds[i]-1) uniformly
func NewCategoricalStarter(bounds []int, seed uint64) (*CategoricalStarter,
	error) {
	weights := make([][]float64, len(bounds))
	for i := range bounds {
		if bounds[i] <= 0 {
			return nil, fmt.Errorf("newCategoricalStarter: bound %d must "+
				"be positive", i)
		}
		weights[i] = make([]float64, bounds[i])
		for j := range weights[i] {
			weights[i][j] = 1.0 / float64(bounds[i])
		}
	}
	return NewWeightedCategoricalStarter(weights, seed)
}

// NewWeightedCategoricalStarter returns a new CategoricalStarter where
// dimension i is sampled from (0, 1, ... len(weights[i])-1) in
// proportion to weights[i]
func NewWeightedCategoricalStarter(weights [][]float64,
	seed uint64) (*CategoricalStarter, error) {
	source := rand.NewSource(seed)

	dists := make([]distuv.Categorical, len(weights))
	for i := range dists {
		if len(weights[i]) == 0 {
			return nil, fmt.Errorf("newWeightedCategoricalStarter: "+
				"dimension %d has no categories", i)
		}
		dists[i] = distuv.NewCategorical(weights[i], source)
	}

	return &CategoricalStarter{len(weights), dists}, nil
}

// Start returns a starting state vector
func (c *CategoricalStarter) Start() mat.Vector {
	start := make([]float64, c.features)
	for i := range start {
		start[i] = c.rand[i].Rand()
	}

	return mat.NewVecDense(c.features, start)
}
