package gridworld

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// mazeStep is an offset between neighbouring passage cells of a maze
type mazeStep struct{ dx, dy int }

var mazeSteps = []mazeStep{{-2, 0}, {2, 0}, {0, 2}, {0, -2}}

// Maze returns the Layout of a perfect maze, one in which every pair of
// passage cells is joined by exactly one path. The maze has mazeRows x
// mazeCols passage cells on even coordinates, separated by single wall
// cells, so the grid has 2*mazeRows-1 rows and 2*mazeCols-1 columns.
// Episodes start in the bottom-left cell and the goal is the top-right
// cell. Passages are carved with a randomised depth first search.
func Maze(mazeRows, mazeCols int, seed uint64) (Layout, error) {
	if mazeRows <= 0 || mazeCols <= 0 {
		return Layout{}, fmt.Errorf("maze: maze must have positive "+
			"dimensions (rows = %d, cols = %d)", mazeRows, mazeCols)
	}
	if mazeRows*mazeCols < 2 {
		return Layout{}, fmt.Errorf("maze: maze needs at least two cells")
	}

	rows, cols := 2*mazeRows-1, 2*mazeCols-1
	open := make([]bool, rows*cols)
	rng := rand.New(rand.NewSource(seed))

	// Each stack entry holds the (x, y) coordinates of a passage cell
	stack := [][2]int{{0, 0}}
	open[0] = true
	for len(stack) > 0 {
		x, y := stack[len(stack)-1][0], stack[len(stack)-1][1]

		var next []mazeStep
		for _, s := range mazeSteps {
			nx, ny := x+s.dx, y+s.dy
			if nx >= 0 && nx < cols && ny >= 0 && ny < rows &&
				!open[cToInd(nx, ny, cols)] {
				next = append(next, s)
			}
		}
		if len(next) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		s := next[rng.Intn(len(next))]
		open[cToInd(x+s.dx/2, y+s.dy/2, cols)] = true
		open[cToInd(x+s.dx, y+s.dy, cols)] = true
		stack = append(stack, [2]int{x + s.dx, y + s.dy})
	}

	layout := Layout{
		Rows:   rows,
		Cols:   cols,
		Starts: []int{0},
		Goals:  []int{rows*cols - 1},
	}
	for cell, o := range open {
		if !o {
			layout.Walls = append(layout.Walls, cell)
		}
	}
	return layout, layout.Validate()
}
