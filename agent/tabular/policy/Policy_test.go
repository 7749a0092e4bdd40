package policy

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/qlambda/agent"
)

func TestLinearSchedule(t *testing.T) {
	s := LinearSchedule{Start: 1.0, End: 0.05, DecaySteps: 100}

	assert.Equal(t, 1.0, s.At(0))
	assert.InDelta(t, 0.05, s.At(100), 1e-12)
	assert.InDelta(t, 0.525, s.At(50), 1e-12)
	for _, step := range []int{101, 1000, 1 << 30} {
		assert.Equal(t, s.At(100), s.At(step))
	}

	prev := s.At(0)
	for step := 1; step <= 150; step++ {
		eps := s.At(step)
		assert.LessOrEqual(t, eps, prev)
		prev = eps
	}
}

func TestLinearScheduleIncreasing(t *testing.T) {
	s := LinearSchedule{Start: 0.1, End: 0.3, DecaySteps: 10}
	assert.InDelta(t, 0.2, s.At(5), 1e-12)
	assert.InDelta(t, 0.3, s.At(20), 1e-12)
}

func TestEGreedyNoValidActions(t *testing.T) {
	e := NewEGreedy(LinearSchedule{Start: 0, End: 0, DecaySteps: 1},
		rand.NewSource(1))
	values := []float64{0, 1, 2, 3}
	visits := make([]int, 4)
	valid := make([]bool, 4)

	seen := make(map[int]bool)
	for i := 0; i < 500; i++ {
		a := e.Choose(values, visits, valid, i+1)
		require.GreaterOrEqual(t, a, 0)
		require.Less(t, a, 4)
		seen[a] = true
	}
	assert.Len(t, seen, 4)
}

func TestEGreedyGreedyRespectsMask(t *testing.T) {
	e := NewEGreedy(LinearSchedule{Start: 0, End: 0, DecaySteps: 1},
		rand.NewSource(2))
	values := []float64{10, 1, 5, 5}
	valid := []bool{false, true, true, true}

	counts := make([]int, 4)
	for i := 0; i < 2000; i++ {
		counts[e.Choose(values, make([]int, 4), valid, i+1)]++
	}

	// Ties between actions 2 and 3 are broken uniformly
	assert.Zero(t, counts[0])
	assert.Zero(t, counts[1])
	assert.InDelta(t, 1000, counts[2], 150)
	assert.InDelta(t, 1000, counts[3], 150)
}

func TestEGreedyExploresOnlyValid(t *testing.T) {
	e := NewEGreedy(LinearSchedule{Start: 1, End: 1, DecaySteps: 1},
		rand.NewSource(3))
	values := []float64{0, 100, 0, 0}
	valid := []bool{true, true, false, true}

	counts := make([]int, 4)
	for i := 0; i < 3000; i++ {
		counts[e.Choose(values, make([]int, 4), valid, i+1)]++
	}
	assert.Zero(t, counts[2])
	for _, a := range []int{0, 1, 3} {
		assert.InDelta(t, 1000, counts[a], 150)
	}
}

func TestEGreedyReproducible(t *testing.T) {
	schedule := LinearSchedule{Start: 0.5, End: 0.5, DecaySteps: 1}
	a := NewEGreedy(schedule, rand.NewSource(42))
	b := NewEGreedy(schedule, rand.NewSource(42))
	values := []float64{1, 1, 0, 1}
	valid := []bool{true, true, true, false}

	for i := 0; i < 100; i++ {
		assert.Equal(t,
			a.Choose(values, nil, valid, i),
			b.Choose(values, nil, valid, i))
	}
}

func TestUCBBonus(t *testing.T) {
	u := NewUCB(2, rand.NewSource(1))

	assert.Zero(t, u.Bonus(0, 0))
	assert.Zero(t, u.Bonus(5, 1))
	assert.InDelta(t, 2*math.Sqrt(math.Log(10)/(1e-8+4)), u.Bonus(4, 10),
		1e-12)
	assert.Greater(t, u.Bonus(0, 10), 1e4)
}

func TestUCBPrefersUnvisited(t *testing.T) {
	u := NewUCB(1, rand.NewSource(4))
	values := []float64{5, 0, 0}
	visits := []int{10, 10, 0}
	valid := []bool{true, true, true}

	assert.Equal(t, 2, u.Choose(values, visits, valid, 20))

	// Masked actions are never chosen, however large their bonus
	valid = []bool{true, true, false}
	assert.Equal(t, 0, u.Choose(values, visits, valid, 20))
}

func TestUCBNoValidActions(t *testing.T) {
	u := NewUCB(1, rand.NewSource(5))
	for i := 0; i < 100; i++ {
		a := u.Choose([]float64{0, 0, 0}, []int{0, 0, 0},
			[]bool{false, false, false}, i)
		assert.GreaterOrEqual(t, a, 0)
		assert.Less(t, a, 3)
	}
}

func TestGreedy(t *testing.T) {
	g := NewGreedy(rand.NewSource(6))

	for i := 0; i < 200; i++ {
		a, err := g.Choose([]float64{9, 1, 3, 3}, []bool{false, true, true,
			true})
		require.NoError(t, err)
		assert.Contains(t, []int{2, 3}, a)
	}

	_, err := g.Choose([]float64{1, 2}, []bool{false, false})
	assert.True(t, errors.Is(err, agent.ErrInvalidState))
}

func BenchmarkUCBChoose(b *testing.B) {
	u := NewUCB(1, rand.NewSource(7))
	values := []float64{0.1, 0.4, 0.2, 0.4}
	visits := []int{3, 8, 1, 0}
	valid := []bool{true, true, false, true}

	for i := 0; i < b.N; i++ {
		u.Choose(values, visits, valid, i+1)
	}
}
