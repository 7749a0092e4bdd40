package gridworld

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/qlambda/timestep"
)

var corridor = []string{
	"#..G",
	"S...",
}

func newCorridor(t *testing.T, selfAvoiding bool, cutoff int) (*GridWorld,
	timestep.TimeStep) {
	t.Helper()
	layout, err := ParseLayout(corridor)
	require.NoError(t, err)

	s, err := NewLayoutStart(layout, 1)
	require.NoError(t, err)
	task, err := NewGoalFromLayout(s, layout, cutoff, -1, 10, -5)
	require.NoError(t, err)

	g, step, err := New(layout, selfAvoiding, task, 1.0)
	require.NoError(t, err)
	return g, step
}

func TestParseLayout(t *testing.T) {
	layout, err := ParseLayout(corridor)
	require.NoError(t, err)

	assert.Equal(t, 2, layout.Rows)
	assert.Equal(t, 4, layout.Cols)
	assert.Equal(t, []int{4}, layout.Walls)
	assert.Equal(t, []int{7}, layout.Goals)
	assert.Equal(t, []int{0}, layout.Starts)
	assert.Equal(t, strings.Join(corridor, "\n"), layout.String())

	_, err = ParseLayout([]string{"..", "..."})
	assert.Error(t, err)
	_, err = ParseLayout([]string{".x"})
	assert.Error(t, err)
	_, err = ParseLayout(nil)
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	g, step := newCorridor(t, false, 0)

	assert.True(t, step.First())
	x, y := g.Coordinates()
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)

	want := []float64{
		Agent, Empty, Empty, Empty,
		Wall, Empty, Empty, GoalCell,
	}
	assert.Equal(t, want, mat.Col(nil, 0, step.Observation))

	// Left and down leave the grid and up enters a wall
	assert.Equal(t, []bool{false, true, false, false}, step.ValidActions)
}

func TestStepToGoal(t *testing.T) {
	g, _ := newCorridor(t, false, 0)

	for i := 0; i < 3; i++ {
		step, done, err := g.Step(Right)
		require.NoError(t, err)
		assert.False(t, done)
		assert.Equal(t, -1.0, step.Reward)
		assert.Equal(t, i+1, step.Number)
	}

	step, done, err := g.Step(Up)
	require.NoError(t, err)
	assert.True(t, done)
	assert.True(t, step.Last())
	assert.Equal(t, timestep.TerminalStateReached, step.EndType())
	assert.Equal(t, 10.0, step.Reward)
	assert.Equal(t, Agent, g.At(1, 3))

	_, _, err = g.Step(Left)
	assert.Error(t, err)
}

func TestInvalidMoveStaysInPlace(t *testing.T) {
	g, first := newCorridor(t, false, 0)

	step, done, err := g.Step(Up)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, -1.0, step.Reward)
	assert.True(t, mat.Equal(first.Observation, step.Observation))

	_, _, err = g.Step(NumActions)
	assert.Error(t, err)
}

func TestSelfAvoidingDeadEnd(t *testing.T) {
	layout, err := ParseLayout([]string{
		"..G",
		"S.#",
	})
	require.NoError(t, err)
	s, err := NewLayoutStart(layout, 1)
	require.NoError(t, err)
	task, err := NewGoalFromLayout(s, layout, 0, -1, 10, -5)
	require.NoError(t, err)
	g, _, err := New(layout, true, task, 1.0)
	require.NoError(t, err)

	// Walk right, then up, then left: the agent is now in the top-left
	// cell with the cells below and to the right already visited
	_, _, err = g.Step(Right)
	require.NoError(t, err)
	assert.Equal(t, Visited, g.At(0, 0))

	_, _, err = g.Step(Up)
	require.NoError(t, err)

	step, done, err := g.Step(Left)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, timestep.NoValidActions, step.EndType())
	assert.Equal(t, -5.0, step.Reward)
	assert.Equal(t, []bool{false, false, false, false}, step.ValidActions)

	// Reset clears visited cells
	step, err = g.Reset()
	require.NoError(t, err)
	assert.Equal(t, Empty, g.At(0, 1))
	assert.True(t, step.AnyValid())
}

func TestStepLimit(t *testing.T) {
	g, _ := newCorridor(t, false, 2)

	_, done, err := g.Step(Up)
	require.NoError(t, err)
	assert.False(t, done)

	step, done, err := g.Step(Up)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, timestep.Timeout, step.EndType())
}

func TestUniformStartAvoidsWallsAndGoals(t *testing.T) {
	layout, err := ParseLayout([]string{
		"#G",
		"..",
	})
	require.NoError(t, err)
	s, err := NewUniformStart(layout.Rows, layout.Cols, 3)
	require.NoError(t, err)
	task, err := NewGoalFromLayout(s, layout, 0, 0, 1, 0)
	require.NoError(t, err)
	g, _, err := New(layout, false, task, 1.0)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		_, err := g.Reset()
		require.NoError(t, err)
		_, y := g.Coordinates()
		assert.Equal(t, 0, y)
	}
}

func TestNewGoalBounds(t *testing.T) {
	s, err := NewSingleStart(0, 0, 2, 2)
	require.NoError(t, err)

	_, err = NewGoal(s, []int{2}, []int{0}, 2, 2, 0, 0, 1, 0)
	assert.Error(t, err)
	_, err = NewGoal(s, []int{0, 1}, []int{0}, 2, 2, 0, 0, 1, 0)
	assert.Error(t, err)
	_, err = NewSingleStart(0, 3, 2, 2)
	assert.Error(t, err)

	task, err := NewGoal(s, []int{1}, []int{1}, 2, 2, 0, -1, 1, -3)
	require.NoError(t, err)
	assert.Equal(t, -3.0, task.Min())
	assert.Equal(t, 1.0, task.Max())
}

func TestPrint(t *testing.T) {
	g, _ := newCorridor(t, false, 0)

	var buf bytes.Buffer
	require.NoError(t, g.Print(&buf, false))
	assert.Equal(t, "#..G\n@...\n", buf.String())

	buf.Reset()
	require.NoError(t, g.Print(&buf, true))
	assert.Contains(t, buf.String(), "\x1b[")
}

// constPolicy always chooses the first valid action
type constPolicy struct{ calls int }

func (c *constPolicy) Greedy(_ mat.Vector, valid []bool) (int, error) {
	c.calls++
	for a, v := range valid {
		if v {
			return a, nil
		}
	}
	return 0, nil
}

func TestRenderPolicy(t *testing.T) {
	g, _ := newCorridor(t, false, 0)
	p := &constPolicy{}

	var buf bytes.Buffer
	require.NoError(t, g.RenderPolicy(p, &buf))

	// One query per open cell
	assert.Equal(t, 6, p.calls)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 4*CellPixels, img.Bounds().Dx())
	assert.Equal(t, 2*CellPixels, img.Bounds().Dy())
}

func TestSpecs(t *testing.T) {
	g, step := newCorridor(t, false, 0)
	assert.True(t, g.ObservationSpec().Contains(step.Observation))

	n, err := g.ActionSpec().NumActions()
	require.NoError(t, err)
	assert.Equal(t, NumActions, n)
	assert.Equal(t, 8, g.ObservationSpec().Shape.Len())
}

func TestMaze(t *testing.T) {
	layout, err := Maze(4, 6, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, layout.Rows)
	assert.Equal(t, 11, layout.Cols)
	assert.Equal(t, []int{0}, layout.Starts)
	assert.Equal(t, []int{7*11 - 1}, layout.Goals)

	// A perfect maze over n passage cells opens n-1 walls between them
	n := 4 * 6
	assert.Len(t, layout.Walls, 7*11-(2*n-1))

	walls := make(map[int]bool)
	for _, w := range layout.Walls {
		walls[w] = true
	}
	blocked := func(cell int) bool { return walls[cell] }

	// Every open cell is reachable from the start
	seen := map[int]bool{0: true}
	queue := []int{0}
	for len(queue) > 0 {
		cell := queue[0]
		queue = queue[1:]
		for a := 0; a < NumActions; a++ {
			next, ok := neighbour(cell, a, layout.Rows, layout.Cols, blocked)
			if ok && !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	assert.Len(t, seen, 2*n-1)
	assert.True(t, seen[layout.Goals[0]])

	again, err := Maze(4, 6, 3)
	require.NoError(t, err)
	assert.Equal(t, layout, again, "mazes are reproducible")

	_, err = Maze(1, 1, 0)
	assert.Error(t, err)
	_, err = Maze(0, 3, 0)
	assert.Error(t, err)
}
