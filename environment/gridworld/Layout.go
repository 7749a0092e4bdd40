package gridworld

import (
	"fmt"
	"strings"
)

// Map characters understood by ParseLayout
const (
	EmptyChar = '.'
	WallChar  = '#'
	GoalChar  = 'G'
	StartChar = 'S'
)

// Layout describes the static structure of a GridWorld. Cells are
// indexed by y*Cols + x, where (0, 0) is the bottom-left cell and y
// grows upwards.
type Layout struct {
	Rows, Cols int
	Walls      []int
	Goals      []int
	Starts     []int
}

// ParseLayout parses a Layout from a text map. Each string is one row
// of the grid, with the first string being the top row. Walls are
// marked with '#', goals with 'G', possible starting cells with 'S',
// and empty cells with '.'.
func ParseLayout(rows []string) (Layout, error) {
	if len(rows) == 0 {
		return Layout{}, fmt.Errorf("parseLayout: empty map")
	}

	cols := len(rows[0])
	layout := Layout{Rows: len(rows), Cols: cols}
	for line, row := range rows {
		if len(row) != cols {
			return Layout{}, fmt.Errorf("parseLayout: row %d has %d cells, "+
				"expected %d", line, len(row), cols)
		}

		y := len(rows) - 1 - line
		for x, char := range row {
			cell := cToInd(x, y, cols)
			switch char {
			case EmptyChar:
			case WallChar:
				layout.Walls = append(layout.Walls, cell)
			case GoalChar:
				layout.Goals = append(layout.Goals, cell)
			case StartChar:
				layout.Starts = append(layout.Starts, cell)
			default:
				return Layout{}, fmt.Errorf("parseLayout: unknown cell %q at "+
					"row %d column %d", char, line, x)
			}
		}
	}

	return layout, layout.Validate()
}

// Validate returns an error if the Layout is malformed
func (l Layout) Validate() error {
	if l.Rows <= 0 || l.Cols <= 0 {
		return fmt.Errorf("validate: grid must have positive dimensions "+
			"(rows = %d, cols = %d)", l.Rows, l.Cols)
	}

	used := make(map[int]string)
	check := func(name string, cells []int) error {
		for _, cell := range cells {
			if cell < 0 || cell >= l.Rows*l.Cols {
				return fmt.Errorf("validate: %s cell %d outside of %dx%d "+
					"grid", name, cell, l.Rows, l.Cols)
			}
			if other, ok := used[cell]; ok {
				return fmt.Errorf("validate: cell %d is both a %s and a %s",
					cell, other, name)
			}
			used[cell] = name
		}
		return nil
	}

	if err := check("wall", l.Walls); err != nil {
		return err
	}
	if err := check("goal", l.Goals); err != nil {
		return err
	}
	return check("start", l.Starts)
}

// String returns the Layout as a text map in the format read by
// ParseLayout
func (l Layout) String() string {
	cells := make([]byte, l.Rows*l.Cols)
	for i := range cells {
		cells[i] = EmptyChar
	}
	for _, c := range l.Walls {
		cells[c] = WallChar
	}
	for _, c := range l.Goals {
		cells[c] = GoalChar
	}
	for _, c := range l.Starts {
		cells[c] = StartChar
	}

	var b strings.Builder
	for y := l.Rows - 1; y >= 0; y-- {
		b.Write(cells[y*l.Cols : (y+1)*l.Cols])
		if y > 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// cToInd converts coordinates (x, y) to a cell index
func cToInd(x, y, c int) int {
	return y*c + x
}

// indToC converts a cell index to (x, y) coordinates
func indToC(ind, c int) (int, int) {
	y := ind / c
	x := ind - (y * c)
	return x, y
}
