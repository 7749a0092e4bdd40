package floatutils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClip(t *testing.T) {
	assert.Equal(t, 1.0, Clip(3, 0, 1))
	assert.Equal(t, 0.0, Clip(-3, 0, 1))
	assert.Equal(t, 0.5, Clip(0.5, 0, 1))
}

func TestMaxSliceMasked(t *testing.T) {
	values := []float64{5, 1, 3, 3}

	max, indices := MaxSliceMasked(values, []bool{false, true, true, true},
		nil)
	assert.Equal(t, 3.0, max)
	assert.Equal(t, []int{2, 3}, indices)

	max, indices = MaxSliceMasked(values, []bool{false, false, false, false},
		nil)
	assert.True(t, math.IsInf(max, -1))
	assert.Empty(t, indices)

	// A masked-in -∞ still ties with the -∞ sentinel
	max, indices = MaxSliceMasked([]float64{math.Inf(-1), 0},
		[]bool{true, false}, make([]int, 0, 2))
	assert.True(t, math.IsInf(max, -1))
	assert.Equal(t, []int{0}, indices)
}
