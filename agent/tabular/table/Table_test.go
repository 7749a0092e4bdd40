package table

import (
	"bytes"
	"encoding/gob"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestKeyDeterministic(t *testing.T) {
	a := mat.NewVecDense(4, []float64{0, 1, -1, 0.5})
	b := mat.NewVecDense(4, []float64{0, 1, -1, 0.5})
	c := mat.NewVecDense(4, []float64{0, 1, -1, 0.25})

	assert.Equal(t, Key(a), Key(b))
	assert.NotEqual(t, Key(a), Key(c))

	// Views and copies of the same values share a key
	d := mat.NewVecDense(6, []float64{9, 0, 1, -1, 0.5, 9})
	assert.Equal(t, Key(a), Key(d.SliceVec(1, 5)))
}

func TestKeyNegativeZero(t *testing.T) {
	pos := mat.NewVecDense(2, []float64{0, 1})
	neg := mat.NewVecDense(2, []float64{math.Copysign(0, -1), 1})
	assert.Equal(t, Key(pos), Key(neg))
}

func TestKeyRoundTrip(t *testing.T) {
	obs := mat.NewVecDense(3, []float64{2, -1, 0.5})
	k := Key(obs)

	assert.Equal(t, 3, k.Len())
	assert.True(t, mat.Equal(obs, k.Vector()))
	assert.Nil(t, StateKey("").Vector())
}

func TestNewRejectsNoActions(t *testing.T) {
	_, err := New(0, 0)
	assert.Error(t, err)
}

func TestLazyInitialization(t *testing.T) {
	tab, err := New(3, 2.5)
	require.NoError(t, err)

	k := Key(mat.NewVecDense(1, []float64{7}))
	_, ok := tab.Lookup(k)
	assert.False(t, ok)
	assert.Equal(t, 0, tab.Len())

	id := tab.ID(k)
	assert.Equal(t, 1, tab.Len())
	assert.Equal(t, []float64{2.5, 2.5, 2.5}, tab.Values(id))
	assert.Equal(t, []float64{0, 0, 0}, tab.Traces(id))
	assert.Equal(t, []int{0, 0, 0}, tab.Visits(id))

	// Second access returns the same row
	assert.Equal(t, id, tab.ID(k))
	assert.Equal(t, 1, tab.Len())
	assert.Equal(t, []StateKey{k}, tab.Keys())
	assert.Equal(t, k, tab.Key(id))
}

func TestRowsAreIndependent(t *testing.T) {
	tab, err := New(2, 0)
	require.NoError(t, err)

	a := tab.ID(Key(mat.NewVecDense(1, []float64{1})))
	b := tab.ID(Key(mat.NewVecDense(1, []float64{2})))

	tab.Values(a)[1] = 5
	tab.Visits(b)[0] = 3

	assert.Equal(t, []float64{0, 5}, tab.Values(a))
	assert.Equal(t, []float64{0, 0}, tab.Values(b))
	assert.Equal(t, []int{0, 0}, tab.Visits(a))
	assert.Equal(t, []int{3, 0}, tab.Visits(b))

	// Appending to a row view must not clobber the next row
	_ = append(tab.Values(a), 100)
	assert.Equal(t, []float64{0, 0}, tab.Values(b))
}

func TestDecayTracesLiveSet(t *testing.T) {
	tab, err := New(2, 0)
	require.NoError(t, err)

	a := tab.ID(Key(mat.NewVecDense(1, []float64{1})))
	b := tab.ID(Key(mat.NewVecDense(1, []float64{2})))

	tab.Traces(a)[0] = 1
	tab.Activate(a)
	tab.Traces(b)[1] = 1
	tab.Activate(b)
	tab.Activate(b)
	assert.ElementsMatch(t, []int{a, b}, tab.Live())

	tab.DecayTraces(0.5, 0)
	assert.Equal(t, []float64{0.5, 0}, tab.Traces(a))
	assert.Equal(t, []float64{0, 0.5}, tab.Traces(b))
	assert.Len(t, tab.Live(), 2)

	// Traces below the cutoff are zeroed and the states leave the set
	tab.DecayTraces(0.5, 0.3)
	assert.Equal(t, []float64{0, 0}, tab.Traces(a))
	assert.Empty(t, tab.Live())
}

func TestDecayTracesZeroFactor(t *testing.T) {
	tab, err := New(3, 0)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		id := tab.ID(Key(mat.NewVecDense(1, []float64{float64(i)})))
		tab.Traces(id)[i%3] = 1
		tab.Activate(id)
	}
	tab.DecayTraces(0, 0)

	assert.Empty(t, tab.Live())
	for id := 0; id < tab.Len(); id++ {
		assert.Equal(t, []float64{0, 0, 0}, tab.Traces(id))
	}
}

func TestGobRoundTrip(t *testing.T) {
	tab, err := New(2, 1)
	require.NoError(t, err)

	k := Key(mat.NewVecDense(2, []float64{0, 1}))
	id := tab.ID(k)
	tab.Values(id)[0] = 3
	tab.Traces(id)[1] = 0.25
	tab.Visits(id)[1] = 4
	tab.Activate(id)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(tab))

	restored := &Table{}
	require.NoError(t, gob.NewDecoder(&buf).Decode(restored))

	gotID, ok := restored.Lookup(k)
	require.True(t, ok)
	assert.Equal(t, 2, restored.Actions())
	assert.Equal(t, 1.0, restored.Init())
	assert.Equal(t, []float64{3, 1}, restored.Values(gotID))
	assert.Equal(t, []float64{0, 0.25}, restored.Traces(gotID))
	assert.Equal(t, []int{0, 4}, restored.Visits(gotID))
	assert.Equal(t, []int{gotID}, restored.Live())
}
