package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/qlambda/timestep"
)

func TestStepLimit(t *testing.T) {
	limit := NewStepLimit(3)
	obs := mat.NewVecDense(1, nil)

	step := timestep.New(timestep.Mid, 0, 1, obs, []bool{true}, 2)
	assert.False(t, limit.End(&step))

	step = timestep.New(timestep.Mid, 0, 1, obs, []bool{true}, 3)
	assert.True(t, limit.End(&step))
	assert.True(t, step.Last())
	assert.Equal(t, timestep.Timeout, step.EndType())
}

func TestEndersOrder(t *testing.T) {
	enders := Enders{NewNoValidActionsEnder(), NewStepLimit(1)}
	obs := mat.NewVecDense(1, nil)

	step := timestep.New(timestep.Mid, 0, 1, obs, []bool{false, false}, 5)
	require.True(t, enders.End(&step))
	assert.Equal(t, timestep.NoValidActions, step.EndType())
}

func TestCategoricalStarterBounds(t *testing.T) {
	starter, err := NewCategoricalStarter([]int{3, 5}, 7)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		start := starter.Start()
		assert.GreaterOrEqual(t, start.AtVec(0), 0.0)
		assert.Less(t, start.AtVec(0), 3.0)
		assert.GreaterOrEqual(t, start.AtVec(1), 0.0)
		assert.Less(t, start.AtVec(1), 5.0)
	}

	_, err = NewCategoricalStarter([]int{0}, 7)
	assert.Error(t, err)
}

func TestSpecNumActions(t *testing.T) {
	spec, err := NewSpec(mat.NewVecDense(1, nil), Action,
		mat.NewVecDense(1, []float64{0}), mat.NewVecDense(1, []float64{3}),
		Discrete)
	require.NoError(t, err)

	n, err := spec.NumActions()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = NewSpec(mat.NewVecDense(2, nil), Action,
		mat.NewVecDense(1, nil), mat.NewVecDense(1, nil), Discrete)
	assert.Error(t, err)

	_, err = NewSpec(mat.NewVecDense(1, nil), Action,
		mat.NewVecDense(1, []float64{2}), mat.NewVecDense(1, []float64{1}),
		Discrete)
	assert.Error(t, err, "lower bound above upper bound")

	obs, err := NewSpec(mat.NewVecDense(2, nil), Observation,
		mat.NewVecDense(2, []float64{-1, -1}),
		mat.NewVecDense(2, []float64{2, 2}), Discrete)
	require.NoError(t, err)
	_, err = obs.NumActions()
	assert.Error(t, err)

	assert.True(t, obs.Contains(mat.NewVecDense(2, []float64{-1, 2})))
	assert.False(t, obs.Contains(mat.NewVecDense(2, []float64{0, 3})))
	assert.False(t, obs.Contains(mat.NewVecDense(1, []float64{0})))
}
