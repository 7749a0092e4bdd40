// Package gridworld implements 2D gridworld environments.
//
// A GridWorld is a rectangular grid of cells, some of which are walls
// and some of which are goals. The agent moves between neighbouring
// cells and is observed as a flattened copy of the grid, in which every
// cell holds one of the cell codes below. In self-avoiding mode each
// cell the agent leaves becomes blocked, so that the agent may walk
// into a dead end with no legal moves.
package gridworld

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/qlambda/environment"
	"github.com/samuelfneumann/qlambda/timestep"
)

// Cell codes used in observations
const (
	Empty    float64 = 0.0
	Wall     float64 = -1.0
	Visited  float64 = 0.5
	Agent    float64 = 1.0
	GoalCell float64 = 2.0
)

// Actions available in a GridWorld
const (
	Left int = iota
	Right
	Up
	Down

	NumActions
)

// maxStartAttempts is the number of times a starting cell is sampled
// before Reset gives up on finding an open cell
const maxStartAttempts = 1000

// Task is an environment.Task on a GridWorld. A Task knows which cells
// are goals so that they can be shown in observations.
type Task interface {
	environment.Task
	Goals() []int
}

// GridWorld represents a gridworld environment
type GridWorld struct {
	Task
	r, c         int
	walls        []bool
	visited      []bool
	selfAvoiding bool
	position     int
	discount     float64
	currentStep  timestep.TimeStep
}

// New creates a new GridWorld with the given layout, task, and discount
// factor, returning the GridWorld and its first TimeStep. Goals and
// starting cells of the layout are ignored; the task determines both.
func New(layout Layout, selfAvoiding bool, t Task,
	discount float64) (*GridWorld, timestep.TimeStep, error) {
	if err := layout.Validate(); err != nil {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: %v", err)
	}

	cells := layout.Rows * layout.Cols
	walls := make([]bool, cells)
	for _, w := range layout.Walls {
		walls[w] = true
	}
	for _, goal := range t.Goals() {
		if goal < 0 || goal >= cells {
			return nil, timestep.TimeStep{}, fmt.Errorf("new: goal %d "+
				"outside of grid", goal)
		}
		if walls[goal] {
			return nil, timestep.TimeStep{}, fmt.Errorf("new: goal %d is "+
				"a wall", goal)
		}
	}

	g := &GridWorld{
		Task:         t,
		r:            layout.Rows,
		c:            layout.Cols,
		walls:        walls,
		visited:      make([]bool, cells),
		selfAvoiding: selfAvoiding,
		discount:     discount,
	}

	step, err := g.Reset()
	if err != nil {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: %v", err)
	}
	return g, step, nil
}

// Dims gets the rows and columns of the GridWorld
func (g *GridWorld) Dims() (r, c int) {
	return g.r, g.c
}

// At returns the cell code at position (i, j), where i is the row
// (y coordinate) and j the column (x coordinate)
func (g *GridWorld) At(i, j int) float64 {
	return g.cell(cToInd(j, i, g.c), g.position, g.visited)
}

// Coordinates returns the (x, y) coordinates of the agent
func (g *GridWorld) Coordinates() (int, int) {
	return indToC(g.position, g.c)
}

// Reset resets the environment to a starting cell and returns the
// first TimeStep of the new episode. Starting cells which are walls or
// goals are resampled.
func (g *GridWorld) Reset() (timestep.TimeStep, error) {
	for i := range g.visited {
		g.visited[i] = false
	}

	position := -1
	for i := 0; i < maxStartAttempts; i++ {
		start := g.Start()
		if start.Len() != 2 {
			return timestep.TimeStep{}, fmt.Errorf("reset: starting state "+
				"must be (x, y) coordinates, got %d values", start.Len())
		}
		x, y := int(start.AtVec(0)), int(start.AtVec(1))
		if x < 0 || x >= g.c || y < 0 || y >= g.r {
			return timestep.TimeStep{}, fmt.Errorf("reset: starting "+
				"position (%d, %d) outside of %dx%d grid", x, y, g.r, g.c)
		}

		cell := cToInd(x, y, g.c)
		if !g.walls[cell] && !g.isGoal(cell) {
			position = cell
			break
		}
	}
	if position < 0 {
		return timestep.TimeStep{}, fmt.Errorf("reset: no open starting "+
			"cell found after %d attempts", maxStartAttempts)
	}
	g.position = position

	obs := g.observation()
	g.currentStep = timestep.New(timestep.First, 0, g.discount, obs,
		g.validActions(), 0)
	return g.currentStep, nil
}

// Step takes one environmental step given some action and returns the
// next TimeStep and whether the episode ended. Actions which are not
// legal leave the agent in place.
func (g *GridWorld) Step(action int) (timestep.TimeStep, bool, error) {
	if action < 0 || action >= NumActions {
		return timestep.TimeStep{}, false, fmt.Errorf("step: action %d "+
			"outside of [0, %d)", action, NumActions)
	}
	if g.currentStep.Last() {
		return timestep.TimeStep{}, false, fmt.Errorf("step: episode " +
			"has ended, call Reset")
	}

	state := g.currentStep.Observation
	blocked := func(cell int) bool { return g.walls[cell] || g.visited[cell] }
	if next, ok := neighbour(g.position, action, g.r, g.c, blocked); ok {
		if g.selfAvoiding {
			g.visited[g.position] = true
		}
		g.position = next
	}

	obs := g.observation()
	reward := g.GetReward(state, action, obs)
	step := timestep.New(timestep.Mid, reward, g.discount, obs,
		g.validActions(), g.currentStep.Number+1)

	end := g.End(&step)
	g.currentStep = step

	return step, end, nil
}

// CurrentTimeStep returns the current TimeStep of the environment
func (g *GridWorld) CurrentTimeStep() timestep.TimeStep {
	return g.currentStep
}

// NumActions returns the number of actions in the environment
func (g *GridWorld) NumActions() int {
	return NumActions
}

// ObservationSpec returns the observation specification of the
// environment
func (g *GridWorld) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(g.r*g.c, nil)
	lower := mat.NewVecDense(g.r*g.c, nil)
	upper := mat.NewVecDense(g.r*g.c, nil)
	for i := 0; i < g.r*g.c; i++ {
		lower.SetVec(i, Wall)
		upper.SetVec(i, GoalCell)
	}

	spec, _ := environment.NewSpec(shape, environment.Observation, lower,
		upper, environment.Discrete)
	return spec
}

// ActionSpec returns the action specification of the environment
func (g *GridWorld) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lower := mat.NewVecDense(1, []float64{0})
	upper := mat.NewVecDense(1, []float64{float64(NumActions - 1)})

	spec, _ := environment.NewSpec(shape, environment.Action, lower, upper,
		environment.Discrete)
	return spec
}

// DiscountSpec returns the discount specification of the environment
func (g *GridWorld) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	bound := mat.NewVecDense(1, []float64{g.discount})

	spec, _ := environment.NewSpec(shape, environment.Discount, bound,
		bound, environment.Continuous)
	return spec
}

// String returns the GridWorld as a string
func (g *GridWorld) String() string {
	x, y := g.Coordinates()
	return fmt.Sprintf("GridWorld | At: (%d, %d) | Goals: %v | Bounds: "+
		"(%d, %d)", x, y, g.Task, g.r, g.c)
}

// cell returns the cell code of cell ind when the agent is at position
// and the cells marked in visited have been visited. A nil visited
// slice marks no cell as visited.
func (g *GridWorld) cell(ind, position int, visited []bool) float64 {
	switch {
	case ind == position:
		return Agent
	case g.walls[ind]:
		return Wall
	case visited != nil && visited[ind]:
		return Visited
	case g.isGoal(ind):
		return GoalCell
	default:
		return Empty
	}
}

func (g *GridWorld) isGoal(ind int) bool {
	for _, goal := range g.Goals() {
		if goal == ind {
			return true
		}
	}
	return false
}

// observation returns the current observation of the environment
func (g *GridWorld) observation() *mat.VecDense {
	return g.observationAt(g.position, g.visited)
}

// observationAt returns the observation of the agent at position with
// the cells marked in visited visited
func (g *GridWorld) observationAt(position int,
	visited []bool) *mat.VecDense {
	obs := mat.NewVecDense(g.r*g.c, nil)
	for i := 0; i < g.r*g.c; i++ {
		obs.SetVec(i, g.cell(i, position, visited))
	}
	return obs
}

// validActions returns the legal action mask at the current position
func (g *GridWorld) validActions() []bool {
	return g.validActionsAt(g.position, g.visited)
}

// validActionsAt returns the legal action mask of the agent at position
// with the cells marked in visited visited
func (g *GridWorld) validActionsAt(position int, visited []bool) []bool {
	blocked := func(cell int) bool {
		return g.walls[cell] || (visited != nil && visited[cell])
	}
	valid := make([]bool, NumActions)
	for a := range valid {
		_, valid[a] = neighbour(position, a, g.r, g.c, blocked)
	}
	return valid
}

// neighbour returns the cell reached by taking action in cell ind of
// an r x c grid and whether the move is legal. A move is legal if it
// stays on the grid and does not enter a blocked cell.
func neighbour(ind, action, r, c int, blocked func(int) bool) (int, bool) {
	x, y := indToC(ind, c)
	switch action {
	case Left:
		x--
	case Right:
		x++
	case Up:
		y++
	case Down:
		y--
	}

	if x < 0 || x >= c || y < 0 || y >= r {
		return ind, false
	}
	next := cToInd(x, y, c)
	if blocked(next) {
		return ind, false
	}
	return next, true
}
