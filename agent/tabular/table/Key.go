// Package table implements the sparse tables that make up the memory of
// a tabular agent: action values, eligibility traces, and visit counts,
// all keyed by state.
package table

import (
	"encoding/binary"
	"math"

	"gonum.org/v1/gonum/mat"
)

// StateKey uniquely identifies an observation by value. Two
// observations which are element-wise equal have equal StateKeys.
type StateKey string

// Key returns the StateKey of an observation. Each element is encoded
// as its 8 IEEE-754 bytes in little-endian order. Negative zero is
// encoded as positive zero.
func Key(obs mat.Vector) StateKey {
	n := obs.Len()
	buf := make([]byte, 8*n)
	for i := 0; i < n; i++ {
		v := obs.AtVec(i)
		if v == 0 {
			v = 0
		}
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return StateKey(buf)
}

// Len returns the number of observation elements encoded by the key
func (k StateKey) Len() int {
	return len(k) / 8
}

// Vector decodes the StateKey back into the observation it was created
// from
func (k StateKey) Vector() *mat.VecDense {
	n := k.Len()
	if n == 0 {
		return nil
	}
	data := make([]float64, n)
	for i := range data {
		bits := binary.LittleEndian.Uint64([]byte(k[8*i : 8*i+8]))
		data[i] = math.Float64frombits(bits)
	}
	return mat.NewVecDense(n, data)
}
