package gridworld

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/qlambda/environment"
)

// SingleStart starts every episode in the same cell
type SingleStart struct {
	state mat.Vector
}

// NewSingleStart returns a Starter which always starts at (x, y) in a
// gridworld with r rows and c columns
func NewSingleStart(x, y, r, c int) (*SingleStart, error) {
	if x < 0 || x >= c {
		return nil, fmt.Errorf("newSingleStart: x = %d outside of cols = %d",
			x, c)
	} else if y < 0 || y >= r {
		return nil, fmt.Errorf("newSingleStart: y = %d outside of rows = %d",
			y, r)
	}

	return &SingleStart{mat.NewVecDense(2, []float64{float64(x),
		float64(y)})}, nil
}

// Start returns the starting coordinates
func (s *SingleStart) Start() mat.Vector {
	return s.state
}

// CellStart starts each episode in a cell chosen uniformly at random
// from a set of cells
type CellStart struct {
	cells []int
	c     int
	index *environment.CategoricalStarter
}

// NewCellStart returns a Starter which starts uniformly at random in
// one of the argument cells of a gridworld with c columns
func NewCellStart(cells []int, c int, seed uint64) (*CellStart, error) {
	if len(cells) == 0 {
		return nil, fmt.Errorf("newCellStart: no starting cells")
	}

	index, err := environment.NewCategoricalStarter([]int{len(cells)}, seed)
	if err != nil {
		return nil, fmt.Errorf("newCellStart: %v", err)
	}

	starts := make([]int, len(cells))
	copy(starts, cells)
	return &CellStart{starts, c, index}, nil
}

// Start returns the starting coordinates
func (s *CellStart) Start() mat.Vector {
	i := int(s.index.Start().AtVec(0))
	x, y := indToC(s.cells[i], s.c)
	return mat.NewVecDense(2, []float64{float64(x), float64(y)})
}

// NewUniformStart returns a Starter which starts uniformly at random in
// any cell of a gridworld with r rows and c columns. GridWorlds resample
// starting cells which are walls or goals.
func NewUniformStart(r, c int, seed uint64) (environment.Starter, error) {
	s, err := environment.NewCategoricalStarter([]int{c, r}, seed)
	if err != nil {
		return nil, fmt.Errorf("newUniformStart: %v", err)
	}
	return s, nil
}

// NewLayoutStart returns a Starter for a Layout. If the Layout marks
// starting cells, episodes start uniformly in one of them. Otherwise
// episodes start uniformly in any open cell.
func NewLayoutStart(l Layout, seed uint64) (environment.Starter, error) {
	if len(l.Starts) > 0 {
		s, err := NewCellStart(l.Starts, l.Cols, seed)
		if err != nil {
			return nil, fmt.Errorf("newLayoutStart: %v", err)
		}
		return s, nil
	}
	return NewUniformStart(l.Rows, l.Cols, seed)
}
